package golang

import "github.com/cockroachdb/errors"

var (
	// ErrUnknownType marks a native value type with no entry in the type map.
	ErrUnknownType = errors.New("unknown type")

	// ErrUnsupportedParameter marks a parameter shape generated code cannot express.
	ErrUnsupportedParameter = errors.New("unsupported parameter")
)

func unknownType(native string) error {
	err := errors.Mark(errors.Newf("unknown type %q", native), ErrUnknownType)
	return errors.WithHintf(err, "map %s with -D type_map.%s=<GoType> -D setter_map.%s=<Suffix>", native, native, native)
}

func unsupportedParameter(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrUnsupportedParameter)
}

// UnsupportedError reports why one operation could not be generated.
type UnsupportedError struct {
	Nickname string
	Err      error
}

func (e *UnsupportedError) Error() string {
	return "unsupported operation " + e.Nickname + ": " + e.Err.Error()
}

func (e *UnsupportedError) Unwrap() error {
	return e.Err
}
