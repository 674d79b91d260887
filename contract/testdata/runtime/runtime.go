// Package runtime is a minimal stand-in for the govips call layer.
package runtime

// Image is the primary object.
type Image struct {
	callEvents []string
}

// CopyEvents inherits another image's history.
func (i *Image) CopyEvents(events []string) {
	i.callEvents = append(i.callEvents[:0], events...)
}

// LogCallEvent records a call.
func (i *Image) LogCallEvent(name string, options *Options) {
	i.callEvents = append(i.callEvents, name)
}

// Options is the option bag.
type Options struct {
	set map[string]any
}

// OptionFunc mutates an option bag.
type OptionFunc func(*Options)

// NewOptions builds an option bag.
func NewOptions(opts ...OptionFunc) *Options {
	o := &Options{set: map[string]any{}}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// With adds options.
func (o *Options) With(opts ...OptionFunc) *Options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func vipsCall(name string, options *Options) {}

// ImageInput sets an input image.
func ImageInput(name string, v *Image) OptionFunc {
	return func(o *Options) { o.set[name] = v }
}

// ImageOutput sets an output image.
func ImageOutput(name string, v **Image) OptionFunc {
	return func(o *Options) { o.set[name] = v }
}

// IntInput sets an input int.
func IntInput(name string, v int) OptionFunc {
	return func(o *Options) { o.set[name] = v }
}
