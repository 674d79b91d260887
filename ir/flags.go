package ir

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// ArgumentFlags classifies one formal parameter of an operation.
// Bit values match VipsArgumentFlags. Dumps may carry either the integer
// value or the text form produced by String.
type ArgumentFlags uint32

const (
	FlagRequired   ArgumentFlags = 1 << iota // caller must always supply it
	FlagConstruct                            // set during construction
	FlagSetOnce                              // may only be set once
	FlagSetAlways                            // must be set, even if it has a default
	FlagInput                                // value flows into the operation
	FlagOutput                               // value flows out of the operation
	FlagDeprecated                           // kept for compatibility, never emitted
	FlagModify                               // input modified in place
)

var flagNames = []struct {
	flag ArgumentFlags
	name string
}{
	{FlagRequired, "required"},
	{FlagConstruct, "construct"},
	{FlagSetOnce, "set-once"},
	{FlagSetAlways, "set-always"},
	{FlagInput, "input"},
	{FlagOutput, "output"},
	{FlagDeprecated, "deprecated"},
	{FlagModify, "modify"},
}

// Has reports whether every bit of f2 is set in f.
func (f ArgumentFlags) Has(f2 ArgumentFlags) bool {
	return f&f2 == f2
}

// String returns the flags in their text form, e.g. "required|input".
func (f ArgumentFlags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}

// MarshalText implements encoding.TextMarshaler.
func (f ArgumentFlags) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts the names
// produced by String, separated by "|" or ",", case-insensitively, with or
// without the VIPS_ARGUMENT_ prefix and with "_" in place of "-".
func (f *ArgumentFlags) UnmarshalText(text []byte) error {
	parsed, err := ParseArgumentFlags(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseArgumentFlags parses the text form of a flag set.
func ParseArgumentFlags(s string) (ArgumentFlags, error) {
	var flags ArgumentFlags
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		name := strings.ToLower(strings.TrimSpace(part))
		name = strings.TrimPrefix(name, "vips_argument_")
		name = strings.ReplaceAll(name, "_", "-")
		if name == "" || name == "none" {
			continue
		}
		found := false
		for _, fn := range flagNames {
			if fn.name == name {
				flags |= fn.flag
				found = true
				break
			}
		}
		if !found {
			return 0, errors.Newf("unknown argument flag %q", part)
		}
	}
	return flags, nil
}

// UnmarshalJSON accepts an integer or the text form.
func (f *ArgumentFlags) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var n uint32
	if err := json.Unmarshal(data, &n); err == nil {
		*f = ArgumentFlags(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Newf("argument flags: want an unsigned integer or a string, got %s", data)
	}
	return f.UnmarshalText([]byte(s))
}

// UnmarshalYAML accepts an integer or the text form.
func (f *ArgumentFlags) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!int" {
		var n uint32
		if err := node.Decode(&n); err != nil {
			return errors.Wrapf(err, "argument flags at line %d", node.Line)
		}
		*f = ArgumentFlags(n)
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return errors.Wrapf(err, "argument flags at line %d", node.Line)
	}
	return f.UnmarshalText([]byte(s))
}

// UnmarshalTOML implements toml.Unmarshaler for integer and string values.
func (f *ArgumentFlags) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case int64:
		if v < 0 || v > math.MaxUint32 {
			return errors.Newf("argument flags %d out of range", v)
		}
		*f = ArgumentFlags(v)
		return nil
	case string:
		return f.UnmarshalText([]byte(v))
	}
	return errors.Newf("argument flags: want an integer or a string, got %T", v)
}
