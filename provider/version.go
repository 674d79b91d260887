package provider

import (
	"context"

	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"

	"github.com/broady/opgen/ir"
)

// ErrVersionMismatch marks a registry whose library version does not satisfy
// the requested constraint.
var ErrVersionMismatch = errors.New("library version mismatch")

// CheckVersion verifies reg.Version against a semver constraint such as
// ">= 8.10, < 9". An empty constraint always passes. A registry without a
// version fails any non-empty constraint.
func CheckVersion(reg *ir.Registry, constraint string) error {
	if constraint == "" {
		return nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return errors.Wrapf(err, "parse version constraint %q", constraint)
	}
	if reg.Version == "" {
		return errors.Mark(
			errors.Newf("%s registry has no version, want %s", reg.Library, constraint),
			ErrVersionMismatch,
		)
	}
	v, err := semver.NewVersion(reg.Version)
	if err != nil {
		return errors.Wrapf(err, "parse %s version %q", reg.Library, reg.Version)
	}
	if ok, reasons := c.Validate(v); !ok {
		err := errors.Mark(
			errors.Newf("%s %s does not satisfy %s", reg.Library, v, constraint),
			ErrVersionMismatch,
		)
		for _, r := range reasons {
			err = errors.WithDetail(err, r.Error())
		}
		return err
	}
	return nil
}

// Versioned wraps a provider and gates its registry on a version constraint.
type Versioned struct {
	Provider   Provider
	Constraint string
}

// Load loads from the wrapped provider and checks the version.
func (p *Versioned) Load(ctx context.Context) (*ir.Registry, error) {
	reg, err := p.Provider.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := CheckVersion(reg, p.Constraint); err != nil {
		return nil, err
	}
	return reg, nil
}
