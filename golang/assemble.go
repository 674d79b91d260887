package golang

import (
	"bytes"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/tools/imports"
)

// Preamble describes the fixed header of a generated file.
type Preamble struct {
	// Package is the Go package name of the output.
	Package string

	// Generator names what produced the file, shown in the notice.
	Generator string

	// PkgConfig is the pkg-config module the cgo directive links against.
	// Empty omits the cgo block.
	PkgConfig string

	// Include is the C header included by the cgo block.
	Include string

	// GeneratedAt is printed in the notice when non-zero. Leave it zero for
	// output that is byte-identical from run to run.
	GeneratedAt time.Time
}

// DefaultPreamble returns the govips header.
func DefaultPreamble() Preamble {
	return Preamble{
		Package:   "vips",
		Generator: "cmd/opgen",
		PkgConfig: "vips",
		Include:   "vips/vips.h",
	}
}

var preambleTemplate = template.Must(template.New("preamble").Parse(`package {{.Package}}

//golint:ignore

/***
 * NOTE: This file is autogenerated so you shouldn't modify it.
 * See {{.Generator}}
{{- if not .GeneratedAt.IsZero}}
 *
 * Generated at {{.GeneratedAt.Format "03:04PM on January 02, 2006"}}
{{- end}}
 */
{{- if .PkgConfig}}

// #cgo pkg-config: {{.PkgConfig}}
// #include "{{.Include}}"
import "C"
{{- end}}`))

// Render executes the preamble template. The result has no trailing newline.
func (p Preamble) Render() (string, error) {
	var buf bytes.Buffer
	if err := preambleTemplate.Execute(&buf, p); err != nil {
		return "", errors.Wrap(err, "render preamble")
	}
	return buf.String(), nil
}

// Assemble builds the output file: the preamble, a blank line, the skip
// comments (if any) and a blank line, then every function separated by blank
// lines. Both lists are sorted by text so output is deterministic.
func Assemble(preamble string, res Result) []byte {
	skipped := make([]string, len(res.Skipped))
	for i, s := range res.Skipped {
		skipped[i] = s.Text
	}
	slices.Sort(skipped)

	funcs := make([]string, len(res.Functions))
	for i, f := range res.Functions {
		funcs[i] = f.Text
	}
	slices.Sort(funcs)

	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString("\n\n")
	if len(skipped) > 0 {
		b.WriteString(strings.Join(skipped, "\n"))
		b.WriteString("\n\n")
	}
	b.WriteString(strings.Join(funcs, "\n\n"))
	b.WriteString("\n")
	return []byte(b.String())
}

// Format runs gofmt over src without touching its imports.
func Format(filename string, src []byte) ([]byte, error) {
	out, err := imports.Process(filename, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "format %s", filename)
	}
	return out, nil
}
