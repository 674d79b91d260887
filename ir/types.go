// Package ir defines the intermediate representation of an introspected
// operation registry. Providers build it from whatever introspection the
// native library offers; generators read it and never mutate it.
package ir

// Registry is the complete operation class tree of one native library.
type Registry struct {
	// Library is the native library name (e.g., "vips").
	Library string `json:"library" yaml:"library" toml:"library" validate:"required"`

	// Version is the library version the dump was taken from, if known.
	// e.g. "8.15.1"
	Version string `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty" validate:"omitempty,semver"`

	// PrimaryType is the native name of the library's primary data-object
	// type. Required inputs of this type become method receivers.
	// e.g. "VipsImage"
	PrimaryType string `json:"primary_type" yaml:"primary_type" toml:"primary_type" validate:"required"`

	// Root is the root of the operation class tree (e.g., "VipsOperation").
	Root *ClassNode `json:"root" yaml:"root" toml:"root" validate:"required"`
}

// Walk visits every node of the tree depth-first in pre-order.
// Returning false from fn stops descent into that node's children.
func (r *Registry) Walk(fn func(n *ClassNode) bool) {
	if r == nil || r.Root == nil {
		return
	}
	walkNode(r.Root, fn)
}

func walkNode(n *ClassNode, fn func(n *ClassNode) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		walkNode(child, fn)
	}
}

// Concrete returns the nicknames of all non-abstract nodes in traversal
// order, duplicates included.
func (r *Registry) Concrete() []string {
	var names []string
	r.Walk(func(n *ClassNode) bool {
		if !n.Abstract {
			names = append(names, n.Nickname)
		}
		return true
	})
	return names
}

// Warning represents a non-fatal issue found in a registry.
type Warning struct {
	// Code is a machine-readable warning identifier.
	Code string `json:"code"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// Nickname is the operation that triggered the warning, if applicable.
	Nickname string `json:"nickname,omitempty"`
}

// Lint reports inconsistencies that generation tolerates but that usually
// point at a bad dump. Flags are trusted, so none of these are errors.
func (r *Registry) Lint() []Warning {
	var warnings []Warning
	r.Walk(func(n *ClassNode) bool {
		if n.Abstract {
			return true
		}
		seen := make(map[string]bool)
		for _, p := range n.Params {
			if p.Flags.Has(FlagInput | FlagOutput) {
				warnings = append(warnings, Warning{
					Code:     "input_and_output",
					Message:  "parameter " + p.Name + " is flagged both input and output",
					Nickname: n.Nickname,
				})
			}
			if seen[p.Name] {
				warnings = append(warnings, Warning{
					Code:     "duplicate_parameter",
					Message:  "duplicate parameter " + p.Name,
					Nickname: n.Nickname,
				})
			}
			seen[p.Name] = true
		}
		return true
	})
	return warnings
}
