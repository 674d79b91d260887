// Package provider loads operation class trees into the intermediate
// representation.
//
// A provider is the generator's only input boundary: whatever introspected the
// native library (a dump tool, a test fixture, an in-process binding) hands
// over an *ir.Registry through one of these.
package provider

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/broady/opgen/ir"
)

// Provider produces a validated registry.
type Provider interface {
	Load(ctx context.Context) (*ir.Registry, error)
}

// ErrInvalidRegistry marks a registry that failed validation.
var ErrInvalidRegistry = errors.New("invalid registry")

// StaticProvider returns a registry built in memory.
type StaticProvider struct {
	Registry *ir.Registry
}

// Load validates and returns the registry.
func (p *StaticProvider) Load(ctx context.Context) (*ir.Registry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := check(p.Registry); err != nil {
		return nil, err
	}
	return p.Registry, nil
}

// check runs ir validation and folds every failure into one error.
func check(reg *ir.Registry) error {
	errs := reg.Validate()
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return errors.Mark(errors.Newf("invalid registry: %s", strings.Join(msgs, "; ")), ErrInvalidRegistry)
}
