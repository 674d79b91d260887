package opgen

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/gorilla/schema"

	"github.com/broady/opgen/golang"
	"github.com/broady/opgen/ir"
	"github.com/broady/opgen/provider"
	"github.com/broady/opgen/sink"
)

// ConfigFileName is the config file looked up in the working directory.
const ConfigFileName = "opgen.toml"

// LoadConfigFile decodes a TOML config file. Relative registry, output and
// manifest paths are resolved against the file's directory. Unknown keys are
// an error.
func LoadConfigFile(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.WithHint(
			errors.Newf("%s: unknown keys %s", path, strings.Join(keys, ", ")),
			"see opgen.Config for the supported keys",
		)
	}

	dir := filepath.Dir(path)
	for _, p := range []*string{&cfg.Registry, &cfg.Output, &cfg.Manifest} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	return cfg, nil
}

var overrideDecoder = schema.NewDecoder()

// ApplyOverrides applies "key=value" settings to cfg. Keys are the config
// file keys; nested runtime names use a dot ("runtime.dispatcher=call").
// Repeating a list key appends. Type and setter mappings use
// "type_map.VipsSource=*Source" and "setter_map.VipsSource=Source".
func ApplyOverrides(cfg *Config, overrides []string) error {
	values := url.Values{}
	for _, o := range overrides {
		key, value, ok := strings.Cut(o, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return errors.WithHint(errors.Newf("malformed override %q", o), "use key=value")
		}
		if native, ok := strings.CutPrefix(key, "type_map."); ok {
			cfg.TypeMap = setEntry(cfg.TypeMap, native, value)
			continue
		}
		if native, ok := strings.CutPrefix(key, "setter_map."); ok {
			cfg.SetterMap = setEntry(cfg.SetterMap, native, value)
			continue
		}
		values.Add(key, value)
	}
	if len(values) == 0 {
		return nil
	}

	// List keys append to what the file set.
	include, exclude := cfg.Include, cfg.Exclude
	if err := overrideDecoder.Decode(cfg, values); err != nil {
		return errors.Wrap(err, "apply overrides")
	}
	if _, ok := values["include"]; ok {
		cfg.Include = append(include, values["include"]...)
	}
	if _, ok := values["exclude"]; ok {
		cfg.Exclude = append(exclude, values["exclude"]...)
	}
	return nil
}

func setEntry(m map[string]string, k, v string) map[string]string {
	if m == nil {
		m = make(map[string]string)
	}
	m[k] = v
	return m
}

// Generator provides a fluent API over Generate.
//
//	report, err := opgen.FromFile("vips.yaml").
//	    Package("vips").
//	    Exclude("*_source", "*_target").
//	    ToFile("vips/operators.go")
type Generator struct {
	cfg Config
}

// FromFile starts a Generator over a registry dump.
func FromFile(path string) *Generator {
	return &Generator{cfg: Config{Registry: path}}
}

// FromRegistry starts a Generator over an in-memory registry.
func FromRegistry(reg *ir.Registry) *Generator {
	return &Generator{cfg: Config{Provider: &provider.StaticProvider{Registry: reg}}}
}

// FromConfig starts a Generator from a complete config.
func FromConfig(cfg Config) *Generator {
	return &Generator{cfg: cfg}
}

// Package sets the package clause of the output.
func (g *Generator) Package(name string) *Generator {
	g.cfg.Package = name
	return g
}

// PrimaryType overrides the registry's primary type.
func (g *Generator) PrimaryType(native string) *Generator {
	g.cfg.PrimaryType = native
	return g
}

// FreeFunctions emits package-level functions only.
func (g *Generator) FreeFunctions() *Generator {
	g.cfg.FreeFunctions = true
	return g
}

// Include restricts generation to matching nicknames.
func (g *Generator) Include(patterns ...string) *Generator {
	g.cfg.Include = append(g.cfg.Include, patterns...)
	return g
}

// Exclude skips matching nicknames.
func (g *Generator) Exclude(patterns ...string) *Generator {
	g.cfg.Exclude = append(g.cfg.Exclude, patterns...)
	return g
}

// TypeMapping maps a native type to a Go declaration and setter suffix.
func (g *Generator) TypeMapping(native, decl, setter string) *Generator {
	g.cfg.TypeMap = setEntry(g.cfg.TypeMap, native, decl)
	g.cfg.SetterMap = setEntry(g.cfg.SetterMap, native, setter)
	return g
}

// Runtime sets the runtime identifier names. Empty names keep their defaults.
func (g *Generator) Runtime(rt golang.Runtime) *Generator {
	g.cfg.Runtime = rt
	return g
}

// RequireVersion gates generation on a library version constraint.
func (g *Generator) RequireVersion(constraint string) *Generator {
	g.cfg.Version = constraint
	return g
}

// WithTimestamp stamps the notice with the generation time.
func (g *Generator) WithTimestamp() *Generator {
	g.cfg.Timestamp = true
	return g
}

// WithManifest writes a JSON report alongside the output.
func (g *Generator) WithManifest(path string) *Generator {
	g.cfg.Manifest = path
	return g
}

// Logger sets the logger.
func (g *Generator) Logger(l *slog.Logger) *Generator {
	g.cfg.Logger = l
	return g
}

// Config returns the accumulated config, without defaults applied.
func (g *Generator) Config() Config {
	return g.cfg
}

// ToWriter generates to w.
func (g *Generator) ToWriter(w io.Writer) (*Report, error) {
	return g.ToSink(context.Background(), sink.NewWriterSink(w))
}

// ToSink generates to s under DefaultFileName.
func (g *Generator) ToSink(ctx context.Context, s sink.OutputSink) (*Report, error) {
	cfg := g.cfg
	cfg.Output = ""
	cfg.Sink = s
	return Generate(ctx, cfg)
}

// ToFile generates to the file at path.
func (g *Generator) ToFile(path string) (*Report, error) {
	cfg := g.cfg
	cfg.Output = path
	return Generate(context.Background(), cfg)
}

// FindConfigFile returns ConfigFileName in dir if it exists, or "".
func FindConfigFile(dir string) string {
	p := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}
