package gen

import (
	"context"
	"io"
	"os"

	"github.com/broady/opgen"
	"github.com/broady/opgen/cmd/opgen/internal/cli"
	"github.com/broady/opgen/internal/watch"
	"github.com/broady/opgen/sink"
)

type Cmd struct {
	Registry string `arg:"" optional:"" help:"Registry dump (yaml, toml or json). Default: the config file's registry." type:"path"`

	cli.Filters

	Out       string `help:"Output file (default: stdout)." short:"o" type:"path"`
	Manifest  string `help:"Also write a JSON report of the run to this file." type:"path"`
	Timestamp bool   `help:"Stamp the autogenerated notice with the current time."`
	NoFormat  bool   `help:"Skip gofmt on the output."`
	Watch     bool   `help:"Regenerate whenever the registry or config file changes." short:"w"`

	// Stdout receives the file when Out is empty. Defaults to os.Stdout.
	Stdout io.Writer `kong:"-"`
}

func (c *Cmd) Run(ctx context.Context, g *cli.Globals) error {
	cfg, err := c.config(g)
	if err != nil {
		return err
	}
	if !c.Watch {
		_, err := opgen.Generate(ctx, cfg)
		return err
	}

	files := []string{cfg.Registry}
	if p := g.ConfigPath(); p != "" {
		files = append(files, p)
	}
	w := &watch.Watcher{Files: files, Logger: cfg.Logger}
	err = w.Run(ctx, func(ctx context.Context) error {
		// The config file may have changed too.
		cfg, err := c.config(g)
		if err != nil {
			return err
		}
		_, err = opgen.Generate(ctx, cfg)
		return err
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (c *Cmd) config(g *cli.Globals) (opgen.Config, error) {
	cfg, err := g.Load(c.Registry)
	if err != nil {
		return opgen.Config{}, err
	}
	if err := cli.RequireRegistry(cfg); err != nil {
		return opgen.Config{}, err
	}
	c.Filters.Apply(&cfg)
	if c.Out != "" {
		cfg.Output = c.Out
	}
	if c.Manifest != "" {
		cfg.Manifest = c.Manifest
	}
	if c.Timestamp {
		cfg.Timestamp = true
	}
	if c.NoFormat {
		cfg.SkipFormat = true
	}
	if cfg.Output == "" {
		out := c.Stdout
		if out == nil {
			out = os.Stdout
		}
		cfg.Sink = sink.NewWriterSink(out)
	}
	return cfg, nil
}
