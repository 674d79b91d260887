// Package opgen generates Go wrapper functions for the operations of an
// introspectable native library.
//
// A registry dump describes the library's operation class tree. Generate
// walks it and emits one statically typed function per concrete operation,
// each of which forwards to the library's dynamic "call by nickname"
// dispatcher through an option bag.
//
//	report, err := opgen.Generate(ctx, opgen.Config{
//	    Registry: "vips.yaml",
//	    Output:   "vips/operators.go",
//	})
package opgen

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/broady/opgen/contract"
	"github.com/broady/opgen/golang"
	"github.com/broady/opgen/ir"
	"github.com/broady/opgen/provider"
	"github.com/broady/opgen/sink"
)

// DefaultFileName is the sink path used when Output is empty.
const DefaultFileName = "operators.go"

// Config holds the configuration for one generation run.
type Config struct {
	// Registry is the registry dump to load. Ignored when Provider is set.
	Registry string `toml:"registry" schema:"registry"`

	// RegistryFormat overrides extension-based format detection.
	// One of "yaml", "toml", "json".
	RegistryFormat string `toml:"registry_format" schema:"registry_format" validate:"omitempty,oneof=yaml yml toml json"`

	// Version is a semver constraint the library version must satisfy,
	// e.g. ">= 8.10". Empty accepts any version.
	Version string `toml:"version" schema:"version" validate:"omitempty,constraint"`

	// Package is the package clause of the generated file. Default "vips".
	Package string `toml:"package" schema:"package" validate:"required,goident"`

	// PrimaryType overrides the registry's primary data-object type.
	PrimaryType string `toml:"primary_type" schema:"primary_type"`

	// FreeFunctions emits package-level functions instead of methods.
	FreeFunctions bool `toml:"free_functions" schema:"free_functions"`

	// Include restricts generation to nicknames matching these patterns.
	Include []string `toml:"include" schema:"include" validate:"dive,glob"`

	// Exclude skips nicknames matching these patterns.
	Exclude []string `toml:"exclude" schema:"exclude" validate:"dive,glob"`

	// TypeMap adds or replaces native-to-Go declaration types.
	TypeMap map[string]string `toml:"type_map" schema:"-"`

	// SetterMap adds or replaces option setter suffixes.
	SetterMap map[string]string `toml:"setter_map" schema:"-"`

	// Runtime names the identifiers generated code calls.
	Runtime golang.Runtime `toml:"runtime" schema:"runtime"`

	// Generator is named in the autogenerated notice. Default "cmd/opgen".
	Generator string `toml:"generator" schema:"generator"`

	// PkgConfig and CgoInclude form the cgo block. Defaults "vips" and
	// "vips/vips.h".
	PkgConfig  string `toml:"pkg_config" schema:"pkg_config"`
	CgoInclude string `toml:"cgo_include" schema:"cgo_include"`

	// NoCgo omits the cgo block.
	NoCgo bool `toml:"no_cgo" schema:"no_cgo"`

	// Timestamp stamps the notice with the generation time. Off by default
	// so output is byte-identical across runs.
	Timestamp bool `toml:"timestamp" schema:"timestamp"`

	// SkipFormat leaves the output unformatted.
	SkipFormat bool `toml:"skip_format" schema:"skip_format"`

	// Output is the generated file. Empty writes to Sink, or stdout.
	Output string `toml:"output" schema:"output"`

	// Manifest, if set, receives a JSON report of the run.
	Manifest string `toml:"manifest" schema:"manifest"`

	// Provider supplies the registry instead of Registry.
	Provider provider.Provider `toml:"-" schema:"-" validate:"-"`

	// Sink receives the generated file when Output is empty.
	// Defaults to stdout.
	Sink sink.OutputSink `toml:"-" schema:"-" validate:"-"`

	// Logger defaults to slog.Default().
	Logger *slog.Logger `toml:"-" schema:"-" validate:"-"`

	// Now stamps the notice when Timestamp is set. Defaults to time.Now.
	Now func() time.Time `toml:"-" schema:"-" validate:"-"`
}

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() Config {
	return applyConfigDefaults(Config{})
}

func applyConfigDefaults(cfg Config) Config {
	pre := golang.DefaultPreamble()
	if cfg.Package == "" {
		cfg.Package = pre.Package
	}
	if cfg.Generator == "" {
		cfg.Generator = pre.Generator
	}
	if cfg.PkgConfig == "" {
		cfg.PkgConfig = pre.PkgConfig
	}
	if cfg.CgoInclude == "" {
		cfg.CgoInclude = pre.Include
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cfg.Runtime = fillRuntime(cfg.Runtime)
	return cfg
}

// fillRuntime fills empty runtime names with their defaults.
func fillRuntime(rt golang.Runtime) golang.Runtime {
	return golang.NewEmitter(golang.Config{Runtime: rt}).Config().Runtime
}

// Skipped is an operation that could not be generated.
type Skipped struct {
	Nickname string `json:"nickname"`
	Reason   string `json:"reason"`
}

// Report describes the outcome of a run. It is also the manifest format.
type Report struct {
	// Package is the package clause of the generated file.
	Package string `json:"package"`

	Library     string `json:"library"`
	Version     string `json:"version,omitempty"`
	PrimaryType string `json:"primaryType"`

	// PrimaryDecl is the Go declaration of the primary type, e.g. "*Image".
	PrimaryDecl string `json:"primaryDecl,omitempty"`

	// Output is where the file was written; empty for stdout.
	Output string `json:"output,omitempty"`

	// Generated lists emitted nicknames, sorted.
	Generated []string `json:"generated"`

	// Skipped lists unsupported operations, sorted by nickname.
	Skipped []Skipped `json:"skipped,omitempty"`

	// Setters lists every option setter the generated code calls, sorted.
	Setters []string `json:"setters"`

	// Warnings are non-fatal registry lint findings.
	Warnings []ir.Warning `json:"warnings,omitempty"`

	// Runtime is the effective set of runtime names.
	Runtime golang.Runtime `json:"runtime"`

	// Source is the generated file.
	Source []byte `json:"-"`
}

// Generate loads the registry, emits every operation and writes the result.
// Unsupported operations are reported, never fatal; a registry that cannot be
// loaded, an invalid config or a failed write are.
func Generate(ctx context.Context, cfg Config) (*Report, error) {
	cfg = applyConfigDefaults(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	log := cfg.Logger

	reg, err := loadRegistry(ctx, cfg)
	if err != nil {
		return nil, err
	}
	warnings := reg.Lint()
	for _, w := range warnings {
		log.Warn("registry lint", slog.String("code", w.Code), slog.String("nickname", w.Nickname), slog.String("message", w.Message))
	}

	primary := cfg.PrimaryType
	if primary == "" {
		primary = reg.PrimaryType
	}
	types := golang.DefaultTypeMap().With(cfg.TypeMap, cfg.SetterMap)
	emitter := golang.NewEmitter(golang.Config{
		PrimaryType:   primary,
		Types:         types,
		Runtime:       cfg.Runtime,
		FreeFunctions: cfg.FreeFunctions,
		Include:       cfg.Include,
		Exclude:       cfg.Exclude,
		Logger:        log,
	})
	res := golang.NewWalker(emitter).Walk(reg.Root)

	pre := golang.Preamble{
		Package:   cfg.Package,
		Generator: cfg.Generator,
		PkgConfig: cfg.PkgConfig,
		Include:   cfg.CgoInclude,
	}
	if cfg.NoCgo {
		pre.PkgConfig = ""
	}
	if cfg.Timestamp {
		pre.GeneratedAt = cfg.Now()
	}
	header, err := pre.Render()
	if err != nil {
		return nil, err
	}

	name := DefaultFileName
	if cfg.Output != "" {
		name = filepath.Base(cfg.Output)
	}
	src := golang.Assemble(header, res)
	if !cfg.SkipFormat {
		if src, err = golang.Format(name, src); err != nil {
			return nil, err
		}
	}

	report := newReport(reg, primary, res)
	report.Package = cfg.Package
	report.Warnings = warnings
	report.Runtime = cfg.Runtime
	report.Source = src
	if decl, err := types.DeclType(primary); err == nil {
		report.PrimaryDecl = decl
	}

	out, path := cfg.Sink, name
	if cfg.Output != "" {
		out = sink.NewFilesystemSink(filepath.Dir(cfg.Output))
		report.Output = cfg.Output
	} else if out == nil {
		out = sink.NewWriterSink(os.Stdout)
	}
	if err := out.WriteFile(ctx, path, src); err != nil {
		return nil, errors.Wrap(err, "write output")
	}

	if cfg.Manifest != "" {
		if err := writeManifest(ctx, cfg.Manifest, report); err != nil {
			return nil, err
		}
	}

	log.Info("generation complete",
		slog.String("library", reg.Library),
		slog.Int("generated", len(report.Generated)),
		slog.Int("skipped", len(report.Skipped)),
		slog.String("path", report.Output),
	)
	return report, nil
}

// Requirements returns what the generated code needs from its package.
func (r *Report) Requirements() contract.Requirements {
	return contract.Requirements{
		Package:     r.Package,
		Runtime:     r.Runtime,
		PrimaryType: r.PrimaryDecl,
		Setters:     r.Setters,
	}
}

func loadRegistry(ctx context.Context, cfg Config) (*ir.Registry, error) {
	p := cfg.Provider
	if p == nil {
		if cfg.Registry == "" {
			return nil, errors.WithHint(errors.New("no registry"), "set registry in opgen.toml or pass it as an argument")
		}
		format, err := provider.ParseFormat(cfg.RegistryFormat)
		if err != nil {
			return nil, err
		}
		p = &provider.FileProvider{Path: cfg.Registry, Format: format}
	}
	if cfg.Version != "" {
		p = &provider.Versioned{Provider: p, Constraint: cfg.Version}
	}
	reg, err := p.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load registry")
	}
	return reg, nil
}

func newReport(reg *ir.Registry, primary string, res golang.Result) *Report {
	r := &Report{
		Library:     reg.Library,
		Version:     reg.Version,
		PrimaryType: primary,
		Generated:   make([]string, 0, len(res.Functions)),
		Setters:     []string{},
	}
	for _, fn := range res.Functions {
		r.Generated = append(r.Generated, fn.Nickname)
		r.Setters = append(r.Setters, fn.Setters...)
	}
	slices.Sort(r.Generated)
	slices.Sort(r.Setters)
	r.Setters = slices.Compact(r.Setters)

	for _, s := range res.Skipped {
		r.Skipped = append(r.Skipped, Skipped{Nickname: s.Nickname, Reason: s.Reason})
	}
	slices.SortFunc(r.Skipped, func(a, b Skipped) int {
		if c := strings.Compare(a.Nickname, b.Nickname); c != 0 {
			return c
		}
		return strings.Compare(a.Reason, b.Reason)
	})
	return r
}

func writeManifest(ctx context.Context, path string, report *Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode manifest")
	}
	data = append(data, '\n')
	if err := sink.NewFilesystemSink(filepath.Dir(path)).WriteFile(ctx, filepath.Base(path), data); err != nil {
		return errors.Wrap(err, "write manifest")
	}
	return nil
}
