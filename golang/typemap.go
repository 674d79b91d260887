package golang

import (
	"maps"

	"github.com/broady/opgen/ir"
)

var defaultDeclTypes = map[string]string{
	"gboolean":                "bool",
	"gchararray":              "string",
	"gdouble":                 "float64",
	"gint":                    "int",
	"VipsBlob":                "*Blob",
	"VipsImage":               "*Image",
	"VipsInterpolate":         "*Interpolator",
	"VipsOperationMath":       "OperationMath",
	"VipsOperationMath2":      "OperationMath2",
	"VipsOperationRound":      "OperationRound",
	"VipsOperationRelational": "OperationRelational",
	"VipsOperationBoolean":    "OperationBoolean",
	"VipsOperationComplex":    "OperationComplex",
	"VipsOperationComplex2":   "OperationComplex2",
	"VipsOperationComplexget": "OperationComplexGet",
	"VipsDirection":           "Direction",
	"VipsAngle":               "Angle",
	"VipsAngle45":             "Angle45",
	"VipsCoding":              "Coding",
	"VipsInterpretation":      "Interpretation",
	"VipsBandFormat":          "BandFormat",
	"VipsOperationMorphology": "OperationMorphology",
}

var defaultSetterSuffixes = map[string]string{
	"gboolean":        "Bool",
	"gchararray":      "String",
	"gdouble":         "Double",
	"gint":            "Int",
	"VipsArrayDouble": "DoubleArray",
	"VipsArrayImage":  "ImageArray",
	"VipsBlob":        "Blob",
	"VipsImage":       "Image",
	"VipsInterpolate": "Interpolator",
}

// TypeMap translates native value-type names into Go declaration types and
// option setter suffixes. A TypeMap is immutable once built.
type TypeMap struct {
	decl    map[string]string
	setters map[string]string
}

// DefaultTypeMap returns the libvips tables.
func DefaultTypeMap() *TypeMap {
	return NewTypeMap(defaultDeclTypes, defaultSetterSuffixes)
}

// NewTypeMap builds a TypeMap from copies of the given tables.
func NewTypeMap(decl, setters map[string]string) *TypeMap {
	return &TypeMap{
		decl:    maps.Clone(decl),
		setters: maps.Clone(setters),
	}
}

// With returns a new TypeMap with the given entries added or replaced.
func (m *TypeMap) With(decl, setters map[string]string) *TypeMap {
	out := NewTypeMap(m.decl, m.setters)
	if out.decl == nil {
		out.decl = make(map[string]string)
	}
	if out.setters == nil {
		out.setters = make(map[string]string)
	}
	maps.Copy(out.decl, decl)
	maps.Copy(out.setters, setters)
	return out
}

// DeclType returns the Go type used to declare values of the native type.
func (m *TypeMap) DeclType(native string) (string, error) {
	if t, ok := m.decl[native]; ok {
		return t, nil
	}
	return "", unknownType(native)
}

// OptionSetterSuffix returns the option setter prefix for p, e.g. "Image"
// for ImageInput/ImageOutput. Enums are always passed as their integer value.
func (m *TypeMap) OptionSetterSuffix(p ir.ParameterDescriptor) (string, error) {
	if p.Enum {
		return "Int", nil
	}
	if s, ok := m.setters[p.Type]; ok {
		return s, nil
	}
	return "", unknownType(p.Type)
}
