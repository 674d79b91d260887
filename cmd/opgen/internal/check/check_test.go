package check

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/opgen"
	"github.com/broady/opgen/cmd/opgen/internal/cli"
)

var (
	registry = filepath.Join("..", "..", "..", "..", "provider", "testdata", "vips.yaml")
	target   = filepath.Join("..", "..", "..", "..", "contract", "testdata", "runtime")
)

func run(t *testing.T, c *Cmd) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	c.Stdout = &out
	if c.Registry == "" {
		c.Registry = registry
	}
	if c.Target == "" {
		c.Target = target
	}
	if c.Package == "" {
		c.Package = "runtime"
	}
	err := c.Run(context.Background(), &cli.Globals{Dir: t.TempDir(), Stderr: &logs})
	return out.String(), err
}

func TestRun_Satisfied(t *testing.T) {
	out, err := run(t, &Cmd{Filters: cli.Filters{Include: []string{"invert", "flip"}}})
	require.NoError(t, err)
	assert.Contains(t, out, "✓ vips 8.15.1: 2 operations generated, 0 unsupported\n")
	assert.Contains(t, out, "provides all 3 setters\n")
}

func TestRun_MissingSetters(t *testing.T) {
	out, err := run(t, &Cmd{})
	require.Error(t, err)
	assert.Equal(t, opgen.CodeContract, opgen.Classify(err).Code)

	assert.Contains(t, out, "8 operations generated, 2 unsupported")
	assert.Contains(t, out, "  - bandjoin: unknown type \"VipsArrayImage\"\n")
	assert.Contains(t, out, "✗ missing func BlobOutput\n")
	assert.Contains(t, out, "✗ missing func DoubleOutput\n")
	assert.Contains(t, out, "✗ missing func StringInput\n")
	assert.NotContains(t, out, "missing func ImageInput")
}

func TestRun_Strict(t *testing.T) {
	out, err := run(t, &Cmd{Filters: cli.Filters{Include: []string{"invert", "linear"}}, Strict: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 operations unsupported")
	assert.Contains(t, out, "  - linear: unknown type \"VipsArrayDouble\"\n")

	_, err = run(t, &Cmd{Filters: cli.Filters{Include: []string{"invert", "linear"}}})
	assert.NoError(t, err)
}

func TestRun_PackageMismatch(t *testing.T) {
	out, err := run(t, &Cmd{Filters: cli.Filters{Include: []string{"invert"}, Package: "vips"}})
	require.Error(t, err)
	assert.Equal(t, opgen.CodeContract, opgen.Classify(err).Code)
	assert.Contains(t, out, "✗ package clause vips does not match the target package\n")
}

func TestRun_BadTarget(t *testing.T) {
	_, err := run(t, &Cmd{
		Filters: cli.Filters{Include: []string{"invert"}},
		Target:  filepath.Join("..", "..", "..", "..", "contract", "testdata", "empty"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no declarations")
}
