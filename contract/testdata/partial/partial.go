// Package partial lacks most of the runtime.
package partial

// Image has no history.
type Image struct{}

// Options has no With method.
type Options struct{}

// NewOptions builds an option bag.
func NewOptions() *Options { return &Options{} }

func vipsCall(name string, options *Options) {}

// ImageInput sets an input image.
func ImageInput(name string, v *Image) {}
