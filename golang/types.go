// Package golang emits Go wrapper functions for the operations of an
// introspected library registry.
//
// Each concrete operation becomes one function whose required parameters are
// positional, whose first image-like input becomes the receiver, whose first
// output becomes the return value, and whose optional parameters are passed
// through a variadic option list to a dynamic dispatcher.
package golang

import "log/slog"

// DefaultDocURL is the reference documentation linked from generated doc comments.
const DefaultDocURL = "http://www.vips.ecs.soton.ac.uk/supported/current/doc/html/libvips/func-list.html"

// Runtime names the identifiers of the target package that generated code
// calls. None of them are implemented here; they must exist in the package
// the output is compiled into.
type Runtime struct {
	// Dispatcher performs the dynamic call: Dispatcher("nickname", options).
	Dispatcher string `json:"dispatcher" toml:"dispatcher" schema:"dispatcher" validate:"required"`

	// OptionsConstructor builds the option bag from the variadic options.
	OptionsConstructor string `json:"options_constructor" toml:"options_constructor" schema:"options_constructor" validate:"required"`

	// OptionsMethod appends typed options to the bag.
	OptionsMethod string `json:"options_method" toml:"options_method" schema:"options_method" validate:"required"`

	// OptionFuncType is the element type of the variadic options parameter.
	OptionFuncType string `json:"option_func_type" toml:"option_func_type" schema:"option_func_type" validate:"required"`

	// HistoryField holds the call history of a primary object.
	HistoryField string `json:"history_field" toml:"history_field" schema:"history_field" validate:"required"`

	// CopyHistoryMethod copies another object's history onto the receiver.
	CopyHistoryMethod string `json:"copy_history_method" toml:"copy_history_method" schema:"copy_history_method" validate:"required"`

	// LogCallMethod appends a call record to the receiver's history.
	LogCallMethod string `json:"log_call_method" toml:"log_call_method" schema:"log_call_method" validate:"required"`

	// ReceiverName is the identifier bound to the receiver parameter.
	ReceiverName string `json:"receiver_name" toml:"receiver_name" schema:"receiver_name" validate:"required"`

	// DocURL is linked from every generated doc comment.
	DocURL string `json:"doc_url" toml:"doc_url" schema:"doc_url"`
}

// DefaultRuntime returns the runtime names used by govips.
func DefaultRuntime() Runtime {
	return Runtime{
		Dispatcher:         "vipsCall",
		OptionsConstructor: "NewOptions",
		OptionsMethod:      "With",
		OptionFuncType:     "OptionFunc",
		HistoryField:       "callEvents",
		CopyHistoryMethod:  "CopyEvents",
		LogCallMethod:      "LogCallEvent",
		ReceiverName:       "image",
		DocURL:             DefaultDocURL,
	}
}

// withDefaults fills empty names from DefaultRuntime.
func (r Runtime) withDefaults() Runtime {
	d := DefaultRuntime()
	if r.Dispatcher == "" {
		r.Dispatcher = d.Dispatcher
	}
	if r.OptionsConstructor == "" {
		r.OptionsConstructor = d.OptionsConstructor
	}
	if r.OptionsMethod == "" {
		r.OptionsMethod = d.OptionsMethod
	}
	if r.OptionFuncType == "" {
		r.OptionFuncType = d.OptionFuncType
	}
	if r.HistoryField == "" {
		r.HistoryField = d.HistoryField
	}
	if r.CopyHistoryMethod == "" {
		r.CopyHistoryMethod = d.CopyHistoryMethod
	}
	if r.LogCallMethod == "" {
		r.LogCallMethod = d.LogCallMethod
	}
	if r.ReceiverName == "" {
		r.ReceiverName = d.ReceiverName
	}
	if r.DocURL == "" {
		r.DocURL = d.DocURL
	}
	return r
}

// Config controls how operations are turned into functions.
type Config struct {
	// PrimaryType is the native name of the primary data-object type.
	// Defaults to "VipsImage".
	PrimaryType string

	// Types maps native types to Go declarations and option setters.
	// Defaults to DefaultTypeMap().
	Types *TypeMap

	// Runtime names the identifiers generated code calls.
	Runtime Runtime

	// FreeFunctions disables receiver binding; every operation becomes a
	// package-level function.
	FreeFunctions bool

	// Include, if non-empty, restricts generation to nicknames matching one
	// of these path.Match patterns.
	Include []string

	// Exclude skips nicknames matching any of these path.Match patterns.
	Exclude []string

	// Logger receives debug records for every walker decision.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.PrimaryType == "" {
		c.PrimaryType = "VipsImage"
	}
	if c.Types == nil {
		c.Types = DefaultTypeMap()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	c.Runtime = c.Runtime.withDefaults()
	return c
}

// Function is the emitted text for one operation.
type Function struct {
	// Nickname is the operation's public name.
	Nickname string

	// Name is the generated Go identifier.
	Name string

	// Receiver reports whether the function is a method.
	Receiver bool

	// Setters lists the option setter functions the body calls, sorted.
	Setters []string

	// Text is the complete function source, without a trailing newline.
	Text string
}

// Skip records an operation that could not be generated.
type Skip struct {
	Nickname string
	Reason   string

	// Text is the comment line emitted for it.
	Text string
}

// Result holds everything one walk produced.
type Result struct {
	Functions []Function
	Skipped   []Skip
}
