package golang

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/opgen/ir"
)

const docLine = "// (see %s at " + DefaultDocURL + ")"

func quietConfig() Config {
	return Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func flipOp() ir.OperationDescriptor {
	return ir.OperationDescriptor{
		Class:    "VipsFlip",
		Nickname: "flip",
		Params: []ir.ParameterDescriptor{
			{Name: "in", Type: "VipsImage", Flags: reqIn, Priority: 0},
			{Name: "out", Type: "VipsImage", Flags: reqOut, Priority: 1},
		},
	}
}

func TestEmitter_BuildReceiverAndResult(t *testing.T) {
	fn, err := NewEmitter(quietConfig()).Build(flipOp())
	require.NoError(t, err)

	want := strings.Join([]string{
		"// Flip executes the 'flip' operation",
		strings.Replace(docLine, "%s", "flip", 1),
		"func (image *Image) Flip(opts ...OptionFunc) *Image {",
		"\tvar out *Image",
		"\toptions := NewOptions(opts...).With(",
		"\t\tImageInput(\"in\", image),",
		"\t\tImageOutput(\"out\", &out),",
		"\t)",
		"\tvipsCall(\"flip\", options)",
		"\tout.CopyEvents(image.callEvents)",
		"\tout.LogCallEvent(\"flip\", options)",
		"\treturn out",
		"}",
	}, "\n")
	assert.Equal(t, want, fn.Text)
	assert.Equal(t, "flip", fn.Nickname)
	assert.Equal(t, "Flip", fn.Name)
	assert.True(t, fn.Receiver)
	assert.Equal(t, []string{"ImageInput", "ImageOutput"}, fn.Setters)
}

func TestEmitter_BuildEnumArgument(t *testing.T) {
	op := flipOp()
	op.Params = append(op.Params, ir.ParameterDescriptor{
		Name: "direction", Type: "VipsDirection", Flags: reqIn, Priority: 2, Enum: true,
	})

	fn, err := NewEmitter(quietConfig()).Build(op)
	require.NoError(t, err)
	assert.Contains(t, fn.Text, "func (image *Image) Flip(direction Direction, opts ...OptionFunc) *Image {")
	assert.Contains(t, fn.Text, "\t\tIntInput(\"direction\", int(direction)),\n")
	assert.Equal(t, []string{"ImageInput", "ImageOutput", "IntInput"}, fn.Setters)
}

func TestEmitter_BuildFreeFunction(t *testing.T) {
	op := ir.OperationDescriptor{
		Class:    "VipsBlack",
		Nickname: "black",
		Params: []ir.ParameterDescriptor{
			{Name: "out", Type: "VipsImage", Flags: reqOut, Priority: 1},
			{Name: "width", Type: "gint", Flags: reqIn, Priority: 4},
			{Name: "height", Type: "gint", Flags: reqIn, Priority: 5},
			{Name: "bands", Type: "gint", Flags: ir.FlagInput, Priority: 6},
		},
	}

	fn, err := NewEmitter(quietConfig()).Build(op)
	require.NoError(t, err)

	want := strings.Join([]string{
		"// Black executes the 'black' operation",
		strings.Replace(docLine, "%s", "black", 1),
		"func Black(width int, height int, opts ...OptionFunc) *Image {",
		"\tvar out *Image",
		"\toptions := NewOptions(opts...).With(",
		"\t\tImageOutput(\"out\", &out),",
		"\t\tIntInput(\"width\", width),",
		"\t\tIntInput(\"height\", height),",
		"\t)",
		"\tvipsCall(\"black\", options)",
		"\tout.LogCallEvent(\"black\", options)",
		"\treturn out",
		"}",
	}, "\n")
	assert.Equal(t, want, fn.Text)
	assert.False(t, fn.Receiver)
}

func TestEmitter_BuildNonPrimaryResult(t *testing.T) {
	op := ir.OperationDescriptor{
		Class:    "VipsAvg",
		Nickname: "avg",
		Params: []ir.ParameterDescriptor{
			{Name: "in", Type: "VipsImage", Flags: reqIn, Priority: 1},
			{Name: "out", Type: "gdouble", Flags: reqOut, Priority: 2},
		},
	}

	fn, err := NewEmitter(quietConfig()).Build(op)
	require.NoError(t, err)
	assert.Contains(t, fn.Text, "func (image *Image) Avg(opts ...OptionFunc) float64 {")
	assert.Contains(t, fn.Text, "\tvar out float64\n")
	assert.Contains(t, fn.Text, "\t\tDoubleOutput(\"out\", &out),\n")
	assert.NotContains(t, fn.Text, "LogCallEvent")
	assert.NotContains(t, fn.Text, "CopyEvents")
	assert.True(t, strings.HasSuffix(fn.Text, "\tvipsCall(\"avg\", options)\n\treturn out\n}"))
}

func TestEmitter_BuildNoResult(t *testing.T) {
	op := ir.OperationDescriptor{
		Class:    "VipsSystem",
		Nickname: "system",
		Params: []ir.ParameterDescriptor{
			{Name: "cmd-format", Type: "gchararray", Flags: reqIn, Priority: 1},
		},
	}

	fn, err := NewEmitter(quietConfig()).Build(op)
	require.NoError(t, err)
	assert.Contains(t, fn.Text, "func System(cmdFormat string, opts ...OptionFunc) {")
	assert.Contains(t, fn.Text, "\t\tStringInput(\"cmd-format\", cmdFormat),\n")
	assert.NotContains(t, fn.Text, "return")
	assert.True(t, strings.HasSuffix(fn.Text, "\tvipsCall(\"system\", options)\n}"))
}

func TestEmitter_BuildSecondaryOutputIsPointerArg(t *testing.T) {
	op := ir.OperationDescriptor{
		Class:    "VipsMax",
		Nickname: "max",
		Params: []ir.ParameterDescriptor{
			{Name: "in", Type: "VipsImage", Flags: reqIn, Priority: 1},
			{Name: "out", Type: "gdouble", Flags: reqOut, Priority: 2},
			{Name: "x", Type: "gint", Flags: reqOut, Priority: 3},
		},
	}

	fn, err := NewEmitter(quietConfig()).Build(op)
	require.NoError(t, err)
	assert.Contains(t, fn.Text, "func (image *Image) Max(x *int, opts ...OptionFunc) float64 {")
	assert.Contains(t, fn.Text, "\t\tIntOutput(\"x\", x),\n")
}

func TestEmitter_BuildOptionOrderFollowsPriority(t *testing.T) {
	op := ir.OperationDescriptor{
		Class:    "VipsEmbed",
		Nickname: "embed",
		Params: []ir.ParameterDescriptor{
			{Name: "y", Type: "gint", Flags: reqIn, Priority: 5},
			{Name: "x", Type: "gint", Flags: reqIn, Priority: 4},
			{Name: "out", Type: "VipsImage", Flags: reqOut, Priority: 2},
			{Name: "in", Type: "VipsImage", Flags: reqIn, Priority: 1},
		},
	}

	fn, err := NewEmitter(quietConfig()).Build(op)
	require.NoError(t, err)
	assert.Contains(t, fn.Text, "Embed(x int, y int, opts ...OptionFunc)")

	in := strings.Index(fn.Text, `ImageInput("in"`)
	out := strings.Index(fn.Text, `ImageOutput("out"`)
	x := strings.Index(fn.Text, `IntInput("x"`)
	y := strings.Index(fn.Text, `IntInput("y"`)
	assert.True(t, in < out && out < x && x < y, "options follow the original required order")
}

func TestEmitter_BuildIdentifierCollisions(t *testing.T) {
	op := ir.OperationDescriptor{
		Class:    "VipsDrawImage",
		Nickname: "draw_image",
		Params: []ir.ParameterDescriptor{
			{Name: "in", Type: "VipsImage", Flags: reqIn, Priority: 1},
			{Name: "image", Type: "VipsImage", Flags: reqIn, Priority: 2},
			{Name: "options", Type: "gint", Flags: reqIn, Priority: 3},
			{Name: "type", Type: "gint", Flags: reqIn, Priority: 4},
		},
	}

	fn, err := NewEmitter(quietConfig()).Build(op)
	require.NoError(t, err)
	assert.Contains(t, fn.Text, "func (image *Image) DrawImage(image_ *Image, options_ int, type_ int, opts ...OptionFunc) {")
	assert.Contains(t, fn.Text, "\t\tImageInput(\"in\", image),\n")
	assert.Contains(t, fn.Text, "\t\tImageInput(\"image\", image_),\n")
	assert.Contains(t, fn.Text, "\t\tIntInput(\"options\", options_),\n")
	assert.Contains(t, fn.Text, "\t\tIntInput(\"type\", type_),\n")
}

func TestEmitter_BuildUnknownType(t *testing.T) {
	op := ir.OperationDescriptor{
		Class:    "VipsSum",
		Nickname: "sum",
		Params: []ir.ParameterDescriptor{
			{Name: "in", Type: "VipsArrayInt", Flags: reqIn, Priority: 1},
		},
	}

	_, err := NewEmitter(quietConfig()).Build(op)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownType))

	var ue *UnsupportedError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "sum", ue.Nickname)
	assert.Equal(t, `unsupported operation sum: unknown type "VipsArrayInt"`, err.Error())
}

func TestEmitter_BuildEnumOutputUnsupported(t *testing.T) {
	tests := []struct {
		name   string
		params []ir.ParameterDescriptor
	}{
		{
			name: "result",
			params: []ir.ParameterDescriptor{
				{Name: "in", Type: "VipsImage", Flags: reqIn, Priority: 1},
				{Name: "space", Type: "VipsInterpretation", Flags: reqOut, Priority: 2, Enum: true},
			},
		},
		{
			name: "extra output",
			params: []ir.ParameterDescriptor{
				{Name: "in", Type: "VipsImage", Flags: reqIn, Priority: 1},
				{Name: "out", Type: "VipsImage", Flags: reqOut, Priority: 2},
				{Name: "space", Type: "VipsInterpretation", Flags: reqOut, Priority: 3, Enum: true},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := ir.OperationDescriptor{Class: "VipsGuess", Nickname: "guess", Params: tt.params}

			_, err := NewEmitter(quietConfig()).Build(op)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupportedParameter))
			assert.False(t, errors.Is(err, ErrUnknownType))
			assert.Equal(t, `unsupported operation guess: enum output parameter "space"`, err.Error())
		})
	}
}

func TestEmitter_BuildEnumInputConverted(t *testing.T) {
	op := ir.OperationDescriptor{
		Class:    "VipsColourspace",
		Nickname: "colourspace",
		Params: []ir.ParameterDescriptor{
			{Name: "in", Type: "VipsImage", Flags: reqIn, Priority: 1},
			{Name: "out", Type: "VipsImage", Flags: reqOut, Priority: 2},
			{Name: "space", Type: "VipsInterpretation", Flags: reqIn, Priority: 3, Enum: true},
		},
	}

	fn, err := NewEmitter(quietConfig()).Build(op)
	require.NoError(t, err)
	assert.Contains(t, fn.Text, `IntInput("space", int(space)),`)
}

func TestEmitter_PositionalArgsSkipReceiverAndResult(t *testing.T) {
	op := ir.OperationDescriptor{
		Class:    "VipsMaxpos",
		Nickname: "maxpos",
		Params: []ir.ParameterDescriptor{
			{Name: "in", Type: "VipsImage", Flags: reqIn, Priority: 1},
			{Name: "size", Type: "gint", Flags: reqIn, Priority: 2},
			{Name: "out", Type: "gdouble", Flags: reqOut, Priority: 3},
			{Name: "x", Type: "gint", Flags: reqOut, Priority: 4},
		},
	}

	fn, err := NewEmitter(quietConfig()).Build(op)
	require.NoError(t, err)
	assert.Contains(t, fn.Text, "func (image *Image) Maxpos(size int, x *int, opts ...OptionFunc) float64 {")
	assert.Contains(t, fn.Text, `IntOutput("x", x),`)
}

func TestEmitter_BuildEmptyNickname(t *testing.T) {
	_, err := NewEmitter(quietConfig()).Build(ir.OperationDescriptor{Class: "VipsNothing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty nickname for class VipsNothing")
}

func TestEmitter_FreeFunctionsCopyHistoryFromInput(t *testing.T) {
	cfg := quietConfig()
	cfg.FreeFunctions = true
	op := ir.OperationDescriptor{
		Class:    "VipsAdd",
		Nickname: "add",
		Params: []ir.ParameterDescriptor{
			{Name: "left", Type: "VipsImage", Flags: reqIn, Priority: 1},
			{Name: "right", Type: "VipsImage", Flags: reqIn, Priority: 2},
			{Name: "out", Type: "VipsImage", Flags: reqOut, Priority: 3},
		},
	}

	fn, err := NewEmitter(cfg).Build(op)
	require.NoError(t, err)
	assert.Contains(t, fn.Text, "func Add(left *Image, right *Image, opts ...OptionFunc) *Image {")
	assert.Contains(t, fn.Text, "\tout.CopyEvents(left.callEvents)\n")
	assert.Contains(t, fn.Text, "\tout.LogCallEvent(\"add\", options)\n")
	assert.False(t, fn.Receiver)
}

func TestEmitter_CustomRuntimeAndTypes(t *testing.T) {
	cfg := quietConfig()
	cfg.PrimaryType = "GeglBuffer"
	cfg.Types = NewTypeMap(
		map[string]string{"GeglBuffer": "*Buffer", "gdouble": "float64"},
		map[string]string{"GeglBuffer": "Buffer", "gdouble": "Float"},
	)
	cfg.Runtime = Runtime{
		Dispatcher:         "call",
		OptionsConstructor: "Opts",
		OptionsMethod:      "Add",
		OptionFuncType:     "Option",
		HistoryField:       "history",
		CopyHistoryMethod:  "Inherit",
		LogCallMethod:      "Record",
		ReceiverName:       "buf",
		DocURL:             "https://gegl.org/operations/",
	}
	op := ir.OperationDescriptor{
		Class:    "GeglBlur",
		Nickname: "gaussian-blur",
		Params: []ir.ParameterDescriptor{
			{Name: "input", Type: "GeglBuffer", Flags: reqIn, Priority: 1},
			{Name: "output", Type: "GeglBuffer", Flags: reqOut, Priority: 2},
			{Name: "std-dev-x", Type: "gdouble", Flags: reqIn, Priority: 3},
		},
	}

	fn, err := NewEmitter(cfg).Build(op)
	require.NoError(t, err)

	want := strings.Join([]string{
		"// GaussianBlur executes the 'gaussian-blur' operation",
		"// (see gaussian-blur at https://gegl.org/operations/)",
		"func (buf *Buffer) GaussianBlur(stdDevX float64, opts ...Option) *Buffer {",
		"\tvar output *Buffer",
		"\toptions := Opts(opts...).Add(",
		"\t\tBufferInput(\"input\", buf),",
		"\t\tBufferOutput(\"output\", &output),",
		"\t\tFloatInput(\"std-dev-x\", stdDevX),",
		"\t)",
		"\tcall(\"gaussian-blur\", options)",
		"\toutput.Inherit(buf.history)",
		"\toutput.Record(\"gaussian-blur\", options)",
		"\treturn output",
		"}",
	}, "\n")
	assert.Equal(t, want, fn.Text)
}

func TestEmitter_ConfigDefaults(t *testing.T) {
	cfg := NewEmitter(Config{}).Config()
	assert.Equal(t, "VipsImage", cfg.PrimaryType)
	assert.Equal(t, DefaultRuntime(), cfg.Runtime)
	assert.NotNil(t, cfg.Types)
	assert.NotNil(t, cfg.Logger)
}
