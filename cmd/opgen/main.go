package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"slices"

	"github.com/alecthomas/kong"
	"github.com/cockroachdb/errors"

	"github.com/broady/opgen"
	"github.com/broady/opgen/cmd/opgen/internal/check"
	"github.com/broady/opgen/cmd/opgen/internal/cli"
	"github.com/broady/opgen/cmd/opgen/internal/gen"
)

type CLI struct {
	cli.Globals

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate Go wrappers for every operation in a registry dump."`
	Check   check.Cmd  `cmd:"" help:"Check a registry dump against the runtime of a target package without writing files."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func newParser(ctx context.Context, app *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("opgen"),
		kong.Description("Generate Go wrappers for the operations of an introspectable native library."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Bind(&app.Globals),
	}, options...)
	return kong.New(app, options...)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	parser, err := newParser(ctx, &CLI{})
	if err != nil {
		panic(err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := kctx.Run(); err != nil {
		stop()
		os.Exit(report(os.Stderr, err))
	}
}

// report prints err with its hints and returns the exit status for it.
func report(w io.Writer, err error) int {
	e := opgen.Classify(err)
	if len(e.Details) == 0 {
		fmt.Fprintf(w, "opgen: %v\n", err)
	} else {
		fmt.Fprintln(w, "opgen: invalid config")
	}
	for _, field := range slices.Sorted(maps.Keys(e.Details)) {
		fmt.Fprintf(w, "  %s: %s\n", field, e.Details[field])
	}
	if hint := errors.FlattenHints(err); hint != "" {
		fmt.Fprintf(w, "hint: %s\n", hint)
	}
	return e.Code.ExitCode()
}
