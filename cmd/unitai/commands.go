package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bqhou/unitai"
	"github.com/bqhou/unitai/catalog"
	"github.com/bqhou/unitai/convert"
	"github.com/bqhou/unitai/mcpserver"
)

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newUnitsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "units [category]",
		Short: "List categories and their units",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cats := catalog.Categories()
			if len(args) == 1 {
				c, err := catalog.ParseCategory(args[0])
				if err != nil {
					return err
				}
				cats = []catalog.Category{c}
			}

			if a.jsonOut {
				out := make(map[string][]catalog.Unit, len(cats))
				for _, c := range cats {
					out[c.String()] = catalog.UnitsFor(c)
				}
				return a.printJSON(out)
			}

			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			for _, c := range cats {
				fmt.Fprintf(w, "%s\n", c)
				for _, u := range catalog.UnitsFor(c) {
					fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", u.ID, u.Name, u.Abbreviation, u.System)
				}
			}
			return w.Flush()
		},
	}
}

// findCategory returns the first category holding both ids.
func findCategory(fromID, toID string) (catalog.Category, bool) {
	for _, c := range catalog.Categories() {
		_, okFrom := catalog.Find(c, fromID)
		_, okTo := catalog.Find(c, toID)
		if okFrom && okTo {
			return c, true
		}
	}
	return 0, false
}

type conversionArgs struct {
	category catalog.Category
	value    float64
	from, to catalog.Unit
}

func parseConversionArgs(categoryFlag string, args []string) (conversionArgs, error) {
	value, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return conversionArgs{}, fmt.Errorf("value %q is not a number", args[0])
	}

	var c catalog.Category
	if categoryFlag != "" {
		if c, err = catalog.ParseCategory(categoryFlag); err != nil {
			return conversionArgs{}, err
		}
	} else {
		var ok bool
		if c, ok = findCategory(args[1], args[2]); !ok {
			return conversionArgs{}, fmt.Errorf("no category has both %q and %q", args[1], args[2])
		}
	}

	from, ok := catalog.Find(c, args[1])
	if !ok {
		return conversionArgs{}, fmt.Errorf("unknown %s unit %q", c, args[1])
	}
	to, ok := catalog.Find(c, args[2])
	if !ok {
		return conversionArgs{}, fmt.Errorf("unknown %s unit %q", c, args[2])
	}
	return conversionArgs{category: c, value: value, from: from, to: to}, nil
}

func newConvertCmd(a *app) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "convert <value> <from> <to>",
		Short: "Convert a value between two units",
		Example: `  unitai convert 12 inch foot
  unitai convert 100 celsius fahrenheit
  unitai convert --category Volume 2 cup ml`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := parseConversionArgs(category, args)
			if err != nil {
				return err
			}

			result := convert.Convert(in.value, in.from, in.to, in.category)
			a.logger.LogConversion(in.category.String(), in.from.ID, in.to.ID, in.value, result)

			if a.jsonOut {
				return a.printJSON(map[string]any{
					"category": in.category,
					"value":    in.value,
					"from":     in.from.ID,
					"to":       in.to.ID,
					"result":   result,
					"rate":     convert.Rate(in.from, in.to, in.category),
				})
			}
			fmt.Fprintln(a.out, convert.DefaultFormatter.Summary(in.value, in.from, in.to, in.category))
			fmt.Fprintln(a.out, convert.DefaultFormatter.RateLine(in.from, in.to, in.category))
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "category name (inferred from the unit ids when omitted)")
	return cmd
}

func newLookupCmd(a *app) *cobra.Command {
	var withInsights bool

	cmd := &cobra.Command{
		Use:   "lookup <query>",
		Short: "Estimate and convert a measurement described in words",
		Example: `  unitai lookup "height of Big Ben"
  unitai lookup --insights "weight of a blue whale"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.insights(ctx)
			if err != nil {
				return err
			}

			panels := make(chan unitai.Panel, 8)
			conv := unitai.New(func(o *unitai.Options) {
				o.Insights = client
				o.Logger = a.logger.WithComponent("converter")
				o.ContextDebounce = -1
				if withInsights {
					o.OnPanel = func(p unitai.Panel) {
						select {
						case panels <- p:
						default:
						}
					}
				}
			})
			defer conv.Close()

			resp, err := conv.Lookup(ctx, strings.Join(args, " "))
			if err != nil {
				a.logger.Debug("lookup.failed", "error", err.Error())
				return errors.New(unitai.MessageLookupFailed)
			}
			res := conv.Result()

			var panel *unitai.Panel
			if withInsights {
				p := waitPanel(ctx.Done(), panels, a.cfg.RequestTimeout)
				panel = &p
			}

			if a.jsonOut {
				out := map[string]any{
					"lookup":    resp,
					"selection": res.State,
					"result":    res.Value,
					"summary":   res.Summary,
				}
				if panel != nil && panel.Data != nil {
					out["insights"] = panel.Data
				}
				return a.printJSON(out)
			}

			fmt.Fprintln(a.out, res.Summary)
			fmt.Fprintln(a.out, res.RateText)
			if resp.Explanation != "" {
				fmt.Fprintf(a.out, "\n%s\n", resp.Explanation)
			}
			if panel != nil {
				printPanel(a, *panel)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withInsights, "insights", false, "also fetch real-world comparisons for the result")
	return cmd
}

// waitPanel blocks until the panel settles on ready or error.
func waitPanel(done <-chan struct{}, panels <-chan unitai.Panel, timeout time.Duration) unitai.Panel {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	deadline := time.After(timeout + time.Second)
	for {
		select {
		case p := <-panels:
			if p.Status == unitai.PanelReady || p.Status == unitai.PanelError {
				return p
			}
		case <-deadline:
			return unitai.Panel{Status: unitai.PanelError, Message: unitai.MessageInsightsFailed}
		case <-done:
			return unitai.Panel{Status: unitai.PanelError, Message: unitai.MessageInsightsFailed}
		}
	}
}

func printPanel(a *app, p unitai.Panel) {
	switch p.Status {
	case unitai.PanelReady:
		fmt.Fprintln(a.out, "\nIn the real world:")
		for _, ex := range p.Data.Examples {
			fmt.Fprintf(a.out, "  - %s\n", ex)
		}
		fmt.Fprintf(a.out, "Fun fact: %s\n", p.Data.FunFact)
	case unitai.PanelError:
		fmt.Fprintf(a.out, "\n%s\n", p.Message)
	}
}

func newInsightsCmd(a *app) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:     "insights <value> <from> <to>",
		Short:   "Real-world comparisons and a fun fact for a conversion",
		Example: `  unitai insights 5 mile km`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := parseConversionArgs(category, args)
			if err != nil {
				return err
			}
			client, err := a.insights(cmd.Context())
			if err != nil {
				return err
			}

			resp, err := client.Context(cmd.Context(), in.value, in.from.Name, in.to.Name)
			if err != nil {
				a.logger.Debug("insights.failed", "error", err.Error())
				return errors.New(unitai.MessageInsightsFailed)
			}

			if a.jsonOut {
				return a.printJSON(resp)
			}
			fmt.Fprintln(a.out, convert.DefaultFormatter.Summary(in.value, in.from, in.to, in.category))
			printPanel(a, unitai.Panel{Status: unitai.PanelReady, Data: &resp})
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "category name (inferred from the unit ids when omitted)")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.insights(cmd.Context())
			if err != nil {
				return err
			}
			logger := a.logger.WithComponent("mcp")
			s := mcpserver.New(func(o *mcpserver.Options) {
				o.Insights = client
				o.Logger = logger
			})
			logger.Info("mcp.serve", "version", mcpserver.Version, "ai.ready", client.Ready())
			return mcpserver.Serve(s)
		},
	}
}
