// Package logging provides a minimal logging interface and adapters for UnitAI.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the converter, insight client and model adapters use for observability.
// This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - UnitAILogger with component scoping and LLM call helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	conv := unitai.New(func(o *unitai.Options) { o.Logger = logger })
package logging
