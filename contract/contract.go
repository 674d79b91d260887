// Package contract verifies that a Go package provides the runtime the
// generated wrappers call into.
//
// Generated code references a dispatcher, an options constructor and its
// append method, a variadic option type, typed option setters and, on the
// primary object type, a history field plus copy and log methods. None of
// them are generated; Check loads the target package and reports which are
// absent.
package contract

import (
	"context"
	"go/types"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/tools/go/packages"

	"github.com/broady/opgen/golang"
)

// Requirements lists what the generated code expects from its package.
type Requirements struct {
	// Package is the package clause of the generated file. Empty skips the
	// package name check.
	Package string

	// Runtime holds the runtime identifier names.
	Runtime golang.Runtime

	// PrimaryType is the Go declaration of the primary object, e.g. "*Image".
	PrimaryType string

	// Setters are the option setter functions the generated code calls.
	Setters []string
}

// Missing is one identifier the target package lacks.
type Missing struct {
	// Kind is "package", "func", "type", "method" or "field".
	Kind string `json:"kind"`

	// Name is the identifier, qualified with its type for methods and fields.
	Name string `json:"name"`
}

func (m Missing) String() string {
	return m.Kind + " " + m.Name
}

// Report is the outcome of a contract check.
type Report struct {
	// Package is the import path of the checked package.
	Package string `json:"package"`

	// Missing lists absent identifiers, sorted by name.
	Missing []Missing `json:"missing,omitempty"`

	// TypeErrors counts type-checking errors in the target. They are expected
	// when the generated file is already present and references missing names.
	TypeErrors int `json:"typeErrors,omitempty"`
}

// OK reports whether nothing is missing.
func (r *Report) OK() bool {
	return len(r.Missing) == 0
}

// ErrContract marks a failed contract check.
var ErrContract = errors.New("runtime contract not satisfied")

// Err returns nil when the report is OK and an ErrContract error otherwise.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	names := make([]string, len(r.Missing))
	for i, m := range r.Missing {
		names[i] = m.String()
	}
	return errors.Mark(
		errors.Newf("%s is missing %s", r.Package, strings.Join(names, ", ")),
		ErrContract,
	)
}

// Check loads the package in dir and reports every required identifier it
// does not declare.
func Check(ctx context.Context, dir string, req Requirements) (*Report, error) {
	cfg := &packages.Config{
		Context: ctx,
		Dir:     dir,
		// Types come from source so unexported runtime names such as vipsCall
		// are visible; export data drops them.
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedSyntax | packages.NeedTypesInfo,
	}
	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", dir)
	}
	if len(pkgs) != 1 {
		return nil, errors.Newf("expected one package in %s, found %d", dir, len(pkgs))
	}
	pkg := pkgs[0]
	if pkg.Types == nil || pkg.Types.Scope().Len() == 0 {
		if len(pkg.Errors) > 0 {
			return nil, errors.Newf("load %s: %v", dir, pkg.Errors[0])
		}
		return nil, errors.Newf("load %s: no declarations", dir)
	}

	c := &checker{pkg: pkg.Types, report: &Report{Package: pkg.PkgPath, TypeErrors: len(pkg.Errors)}}
	rt := req.Runtime

	if req.Package != "" && pkg.Name != req.Package {
		c.missing("package", req.Package)
	}
	c.function(rt.Dispatcher)
	if ctor := c.function(rt.OptionsConstructor); ctor != nil {
		if res := ctor.Type().(*types.Signature).Results(); res.Len() > 0 {
			c.method(res.At(0).Type(), rt.OptionsMethod)
		} else {
			c.missing("method", rt.OptionsConstructor+"()."+rt.OptionsMethod)
		}
	}
	c.typeName(rt.OptionFuncType)

	if name := strings.TrimPrefix(req.PrimaryType, "*"); name != "" {
		if tn := c.typeName(name); tn != nil {
			ptr := types.NewPointer(tn.Type())
			c.method(ptr, rt.CopyHistoryMethod)
			c.method(ptr, rt.LogCallMethod)
			c.field(ptr, rt.HistoryField)
		}
	}

	setters := slices.Clone(req.Setters)
	slices.Sort(setters)
	for _, s := range slices.Compact(setters) {
		c.function(s)
	}

	slices.SortFunc(c.report.Missing, func(a, b Missing) int {
		return strings.Compare(a.Name, b.Name)
	})
	return c.report, nil
}

type checker struct {
	pkg    *types.Package
	report *Report
}

func (c *checker) missing(kind, name string) {
	c.report.Missing = append(c.report.Missing, Missing{Kind: kind, Name: name})
}

func (c *checker) function(name string) *types.Func {
	if fn, ok := c.pkg.Scope().Lookup(name).(*types.Func); ok {
		return fn
	}
	c.missing("func", name)
	return nil
}

func (c *checker) typeName(name string) *types.TypeName {
	if tn, ok := c.pkg.Scope().Lookup(name).(*types.TypeName); ok {
		return tn
	}
	c.missing("type", name)
	return nil
}

func (c *checker) method(recv types.Type, name string) {
	obj, _, _ := types.LookupFieldOrMethod(recv, true, c.pkg, name)
	if _, ok := obj.(*types.Func); !ok {
		c.missing("method", typeLabel(recv)+"."+name)
	}
}

func (c *checker) field(recv types.Type, name string) {
	obj, _, _ := types.LookupFieldOrMethod(recv, true, c.pkg, name)
	if v, ok := obj.(*types.Var); !ok || !v.IsField() {
		c.missing("field", typeLabel(recv)+"."+name)
	}
}

// typeLabel names a type without its package qualifier.
func typeLabel(t types.Type) string {
	return types.TypeString(t, func(*types.Package) string { return "" })
}
