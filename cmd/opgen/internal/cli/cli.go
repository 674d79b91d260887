// Package cli holds the flags and config loading shared by opgen subcommands.
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/broady/opgen"
)

// Globals are the flags accepted by every subcommand.
type Globals struct {
	Verbose bool     `help:"Log every operation at debug level." short:"v"`
	Config  string   `help:"Config file (default: ./opgen.toml if present)." type:"path" short:"c"`
	Define  []string `help:"Override a config key, e.g. -D runtime.dispatcher=call." short:"D" sep:"none" placeholder:"KEY=VALUE"`

	// Stderr receives log output. Defaults to os.Stderr.
	Stderr io.Writer `kong:"-"`

	// Dir is where the default config file is looked up. Defaults to ".".
	Dir string `kong:"-"`
}

// Logger returns a text logger on stderr, at debug level when verbose.
func (g *Globals) Logger() *slog.Logger {
	w := g.Stderr
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelInfo
	if g.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ConfigPath returns the config file in effect, or "" if there is none.
func (g *Globals) ConfigPath() string {
	if g.Config != "" {
		return g.Config
	}
	dir := g.Dir
	if dir == "" {
		dir = "."
	}
	return opgen.FindConfigFile(dir)
}

// Load builds the config from the config file and -D overrides. A non-empty
// registry argument replaces the file's registry.
func (g *Globals) Load(registry string) (opgen.Config, error) {
	var cfg opgen.Config
	if path := g.ConfigPath(); path != "" {
		var err error
		if cfg, err = opgen.LoadConfigFile(path); err != nil {
			return opgen.Config{}, err
		}
	}
	if err := opgen.ApplyOverrides(&cfg, g.Define); err != nil {
		return opgen.Config{}, err
	}
	if registry != "" {
		cfg.Registry = registry
	}
	cfg.Logger = g.Logger()
	return cfg, nil
}

// Filters holds the flags that select and shape generated operations.
type Filters struct {
	Package        string   `help:"Package clause of the generated file." short:"p"`
	Include        []string `help:"Only generate nicknames matching these patterns." short:"i"`
	Exclude        []string `help:"Skip nicknames matching these patterns." short:"x"`
	RequireVersion string   `help:"Fail unless the library version satisfies this constraint."`
	FreeFunctions  bool     `help:"Emit package-level functions instead of methods."`
	RegistryFormat string   `help:"Registry format (yaml, toml or json). Default: from the extension." name:"registry-format"`
}

// Apply overlays the flags that were set onto cfg.
func (f *Filters) Apply(cfg *opgen.Config) {
	if f.Package != "" {
		cfg.Package = f.Package
	}
	cfg.Include = append(cfg.Include, f.Include...)
	cfg.Exclude = append(cfg.Exclude, f.Exclude...)
	if f.RequireVersion != "" {
		cfg.Version = f.RequireVersion
	}
	if f.FreeFunctions {
		cfg.FreeFunctions = true
	}
	if f.RegistryFormat != "" {
		cfg.RegistryFormat = f.RegistryFormat
	}
}

// RequireRegistry errors when no registry path is configured.
func RequireRegistry(cfg opgen.Config) error {
	if cfg.Registry == "" {
		return errors.WithHint(
			errors.New("no registry"),
			"pass a registry dump as an argument or set registry in opgen.toml",
		)
	}
	return nil
}
