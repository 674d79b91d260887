package golang

import (
	"go/token"
	"strings"
	"unicode"
)

// words splits a hyphen, underscore or space delimited name into words.
func words(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
}

// titleWord upper-cases the first letter of w and every letter that follows
// a non-letter, leaving the rest untouched ("xyz2lab" -> "Xyz2Lab",
// "a.b" -> "A.B").
func titleWord(w string) string {
	var b strings.Builder
	afterLetter := false
	for _, r := range w {
		switch {
		case unicode.IsLetter(r):
			if !afterLetter {
				r = unicode.ToUpper(r)
			}
			afterLetter = true
		default:
			afterLetter = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// PascalCase converts an operation or parameter name to an exported Go
// identifier: "gaussian-blur" -> "GaussianBlur". Already canonical input is
// returned unchanged.
func PascalCase(name string) string {
	var b strings.Builder
	for _, w := range words(name) {
		b.WriteString(titleWord(w))
	}
	return b.String()
}

// CamelCase converts a name to an unexported Go identifier:
// "gaussian-blur" -> "gaussianBlur".
func CamelCase(name string) string {
	ws := words(name)
	if len(ws) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(ws[0]))
	for _, w := range ws[1:] {
		b.WriteString(titleWord(w))
	}
	return b.String()
}

// SafeIdent makes an identifier usable in Go source: keywords get a trailing
// underscore, a leading digit gets a leading one, and runes that cannot
// appear in identifiers become underscores.
func SafeIdent(name string) string {
	if name == "" {
		return "_"
	}

	var b strings.Builder
	for i, r := range name {
		if i == 0 && unicode.IsDigit(r) {
			b.WriteRune('_')
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}

	ident := b.String()
	if token.IsKeyword(ident) {
		return ident + "_"
	}
	return ident
}
