package provider

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/opgen/ir"
)

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		name       string
		version    string
		constraint string
		mismatch   bool
		wantErr    bool
	}{
		{name: "no constraint", version: "", constraint: ""},
		{name: "satisfied", version: "8.15.1", constraint: ">= 8.10"},
		{name: "range", version: "8.15.1", constraint: ">= 8.10, < 9"},
		{name: "too old", version: "8.9.2", constraint: ">= 8.10", mismatch: true, wantErr: true},
		{name: "too new", version: "9.0.0", constraint: "~8", mismatch: true, wantErr: true},
		{name: "unversioned", version: "", constraint: ">= 8", mismatch: true, wantErr: true},
		{name: "bad constraint", version: "8.15.1", constraint: ">= banana", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckVersion(&ir.Registry{Library: "vips", Version: tt.version}, tt.constraint)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.mismatch, errors.Is(err, ErrVersionMismatch))
		})
	}
}

func TestVersioned(t *testing.T) {
	p := &Versioned{Provider: NewFileProvider("testdata/vips.toml"), Constraint: ">= 8.12"}
	_, err := p.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVersionMismatch))
	assert.Contains(t, err.Error(), "vips 8.10.0 does not satisfy >= 8.12")

	p.Constraint = "^8.10"
	reg, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "8.10.0", reg.Version)
}
