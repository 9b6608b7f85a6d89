// UnitAI: a US customary / metric unit converter with language-model
// insights.
//
// Usage:
//
//	unitai units [category]              # List categories and units
//	unitai convert 12 inch foot          # Convert a value
//	unitai lookup "height of Big Ben"    # Free-text smart lookup
//	unitai insights 5 mile km            # Real-world comparisons
//	unitai serve                         # Start MCP server (stdio transport)
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(newApp()).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
