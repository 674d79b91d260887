package check

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/broady/opgen"
	"github.com/broady/opgen/cmd/opgen/internal/cli"
	"github.com/broady/opgen/contract"
	"github.com/broady/opgen/sink"
)

type Cmd struct {
	Registry string `arg:"" optional:"" help:"Registry dump (yaml, toml or json). Default: the config file's registry." type:"path"`

	cli.Filters

	Target string `help:"Package directory the generated file will be compiled into." short:"t" required:"" type:"existingdir"`
	Strict bool   `help:"Fail when any operation is unsupported."`

	// Stdout receives the summary. Defaults to os.Stdout.
	Stdout io.Writer `kong:"-"`
}

func (c *Cmd) Run(ctx context.Context, g *cli.Globals) error {
	out := c.Stdout
	if out == nil {
		out = os.Stdout
	}

	cfg, err := g.Load(c.Registry)
	if err != nil {
		return err
	}
	if err := cli.RequireRegistry(cfg); err != nil {
		return err
	}
	c.Filters.Apply(&cfg)
	cfg.Output = ""
	cfg.Manifest = ""
	cfg.Sink = sink.NewMemorySink()

	report, err := opgen.Generate(ctx, cfg)
	if err != nil {
		return err
	}

	name := report.Library
	if report.Version != "" {
		name += " " + report.Version
	}
	fmt.Fprintf(out, "✓ %s: %d operations generated, %d unsupported\n", name, len(report.Generated), len(report.Skipped))
	for _, s := range report.Skipped {
		fmt.Fprintf(out, "  - %s: %s\n", s.Nickname, s.Reason)
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(out, "! %s: %s\n", w.Nickname, w.Message)
	}

	rep, err := contract.Check(ctx, c.Target, report.Requirements())
	if err != nil {
		return err
	}
	if !rep.OK() {
		for _, m := range rep.Missing {
			if m.Kind == "package" {
				fmt.Fprintf(out, "✗ package clause %s does not match the target package\n", m.Name)
				continue
			}
			fmt.Fprintf(out, "✗ missing %s\n", m)
		}
		return rep.Err()
	}
	fmt.Fprintf(out, "✓ %s provides all %d setters\n", rep.Package, len(report.Setters))

	if c.Strict && len(report.Skipped) > 0 {
		return errors.WithHint(
			errors.Newf("%d operations unsupported", len(report.Skipped)),
			"map their types with -D type_map.<Type>=<GoType> and -D setter_map.<Type>=<Suffix>",
		)
	}
	return nil
}
