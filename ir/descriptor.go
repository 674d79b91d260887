package ir

// OperationDescriptor identifies one library operation.
type OperationDescriptor struct {
	// Class is the internal class name (e.g., "VipsFlip").
	Class string `json:"class" yaml:"class" toml:"class" validate:"required"`

	// Nickname is the public operation name and the dedup key (e.g., "flip").
	// Abstract classes may leave it empty.
	Nickname string `json:"nickname,omitempty" yaml:"nickname,omitempty" toml:"nickname,omitempty" validate:"required_unless=Abstract true"`

	// Description is the one-line summary reported by the library.
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`

	// Abstract classes are never emitted; only their children are.
	Abstract bool `json:"abstract,omitempty" yaml:"abstract,omitempty" toml:"abstract,omitempty"`

	// Params are the formal parameters in introspection order.
	Params []ParameterDescriptor `json:"params,omitempty" yaml:"params,omitempty" toml:"params,omitempty" validate:"dive"`
}

// ParameterDescriptor is one formal parameter of an operation.
type ParameterDescriptor struct {
	// Name is the parameter name as the library knows it (e.g., "x-offset").
	Name string `json:"name" yaml:"name" toml:"name" validate:"required"`

	// Type is the native value-type name (e.g., "VipsImage", "gdouble").
	Type string `json:"type" yaml:"type" toml:"type" validate:"required"`

	// Flags is the semantic classification of the parameter.
	Flags ArgumentFlags `json:"flags" yaml:"flags" toml:"flags"`

	// Priority orders parameters; lower sorts first.
	Priority int `json:"priority" yaml:"priority" toml:"priority" validate:"gte=0"`

	// Enum marks enumeration-valued parameters, passed as their integer value.
	Enum bool `json:"enum,omitempty" yaml:"enum,omitempty" toml:"enum,omitempty"`

	// Description is the blurb reported by the library.
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
}

// IsRequired reports whether the parameter must always be supplied and is
// not deprecated.
func (p ParameterDescriptor) IsRequired() bool {
	return p.Flags.Has(FlagRequired) && !p.Flags.Has(FlagDeprecated)
}

// IsInput reports whether the INPUT flag is set.
func (p ParameterDescriptor) IsInput() bool {
	return p.Flags.Has(FlagInput)
}

// IsOutput reports whether the OUTPUT flag is set.
func (p ParameterDescriptor) IsOutput() bool {
	return p.Flags.Has(FlagOutput)
}

// ClassNode is one node of the operation class tree.
type ClassNode struct {
	OperationDescriptor `yaml:",inline"`

	// Children are the direct subclasses, in introspection order.
	Children []*ClassNode `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty" validate:"dive,required"`
}
