package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bitfantasy/nimo-inventory/internal/inventory/analytics"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/export"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/service"
	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
)

type reportCmd struct {
	from   string
	to     string
	format string
	top    int
	output string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "print or export the inventory report" }
func (*reportCmd) Usage() string {
	return `nimo-inventory report [-from YYYY-MM-DD] [-to YYYY-MM-DD] [-format md|json|xlsx|html] [-top n] [-o file]

  Builds the inventory report for the period. Without -from/-to the period
  runs from the start of the month two months back to the end of this month.
  Markdown is rendered to the terminal; other formats need -o unless json.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "first day of the period")
	f.StringVar(&c.to, "to", "", "last day of the period")
	f.StringVar(&c.format, "format", export.FormatMarkdown, "output format")
	f.IntVar(&c.top, "top", 0, "number of top products (0 uses report.top_products)")
	f.StringVar(&c.output, "o", "", "write the rendered file to this path")
}

func (c *reportCmd) window(now time.Time) (analytics.Window, error) {
	if c.from == "" && c.to == "" {
		return service.DefaultWindow(now), nil
	}
	def := service.DefaultWindow(now)
	start, end := def.Start, def.End
	if c.from != "" {
		t, err := service.ParseDate(c.from)
		if err != nil {
			return analytics.Window{}, fmt.Errorf("invalid -from: %w", err)
		}
		start = t
	}
	if c.to != "" {
		t, err := service.ParseDate(c.to)
		if err != nil {
			return analytics.Window{}, fmt.Errorf("invalid -to: %w", err)
		}
		end = t
	}
	if end.Before(start) {
		return analytics.Window{}, fmt.Errorf("-to is before -from")
	}
	return analytics.NewDateWindow(start, end), nil
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	w, err := c.window(time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if !export.IsSupported(c.format) {
		fmt.Fprintf(os.Stderr, "Error: unsupported format %q\n", c.format)
		return subcommands.ExitUsageError
	}
	if c.output == "" && (c.format == export.FormatXLSX || c.format == export.FormatHTML) {
		fmt.Fprintf(os.Stderr, "Error: -format %s needs -o\n", c.format)
		return subcommands.ExitUsageError
	}

	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.close()

	result, err := a.services.Report.Export(ctx, w, c.top, c.format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.output != "" {
		if err := os.WriteFile(c.output, result.Data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("wrote %s (%d bytes)\n", c.output, len(result.Data))
		return subcommands.ExitSuccess
	}

	if c.format == export.FormatMarkdown {
		printMarkdown(string(result.Data))
	} else {
		os.Stdout.Write(result.Data)
		fmt.Println()
	}
	return subcommands.ExitSuccess
}

// printMarkdown renders md for the terminal, falling back to the raw text.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
