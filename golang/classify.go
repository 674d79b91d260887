package golang

import (
	"cmp"
	"slices"

	"github.com/broady/opgen/ir"
)

// Classification is the required-parameter contract of one operation.
type Classification struct {
	// Required holds every REQUIRED, non-DEPRECATED parameter, stably sorted
	// by ascending priority.
	Required []ir.ParameterDescriptor

	// ReceiverIndex is the index in Required of the receiver, or -1.
	ReceiverIndex int

	// ResultIndex is the index in Required of the result, or -1.
	ResultIndex int
}

// ClassifyRequired computes the required parameter list of op and picks its
// receiver and result. The receiver is the first required input whose type is
// primaryType; the result is the first required output. Both are chosen from
// the full required list independently. Pass an empty primaryType to never
// choose a receiver.
func ClassifyRequired(op ir.OperationDescriptor, primaryType string) Classification {
	var required []ir.ParameterDescriptor
	for _, p := range op.Params {
		if p.IsRequired() {
			required = append(required, p)
		}
	}
	slices.SortStableFunc(required, func(a, b ir.ParameterDescriptor) int {
		return cmp.Compare(a.Priority, b.Priority)
	})

	c := Classification{Required: required, ReceiverIndex: -1, ResultIndex: -1}
	if primaryType != "" {
		c.ReceiverIndex = slices.IndexFunc(required, func(p ir.ParameterDescriptor) bool {
			return p.IsInput() && p.Type == primaryType
		})
	}
	c.ResultIndex = slices.IndexFunc(required, func(p ir.ParameterDescriptor) bool {
		return p.IsOutput()
	})
	return c
}

// Receiver returns the receiver parameter, if any.
func (c Classification) Receiver() (ir.ParameterDescriptor, bool) {
	if c.ReceiverIndex < 0 {
		return ir.ParameterDescriptor{}, false
	}
	return c.Required[c.ReceiverIndex], true
}

// Result returns the result parameter, if any.
func (c Classification) Result() (ir.ParameterDescriptor, bool) {
	if c.ResultIndex < 0 {
		return ir.ParameterDescriptor{}, false
	}
	return c.Required[c.ResultIndex], true
}

// ArgIndexes returns the indexes into Required of the positional arguments:
// every required parameter except the receiver and the result, in order.
func (c Classification) ArgIndexes() []int {
	var idx []int
	for i := range c.Required {
		if i != c.ReceiverIndex && i != c.ResultIndex {
			idx = append(idx, i)
		}
	}
	return idx
}

// Args returns the positional arguments, order preserved.
func (c Classification) Args() []ir.ParameterDescriptor {
	var args []ir.ParameterDescriptor
	for _, i := range c.ArgIndexes() {
		args = append(args, c.Required[i])
	}
	return args
}
