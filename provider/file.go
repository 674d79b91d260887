package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/broady/opgen/ir"
)

// Format is the encoding of a registry dump.
type Format string

const (
	// FormatAuto picks the format from the file extension.
	FormatAuto Format = ""
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name. The empty string is FormatAuto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatAuto, FormatYAML, FormatTOML, FormatJSON:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", errors.WithHint(
			errors.Newf("unknown registry format %q", s),
			"use yaml, toml or json",
		)
	}
}

// DetectFormat returns the format implied by the extension of path.
func DetectFormat(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.WithHint(
			errors.Newf("cannot infer registry format of %s", path),
			"name the file .yaml, .toml or .json, or pass --format",
		)
	}
}

// FileProvider loads a registry dump from disk.
type FileProvider struct {
	// Path is the dump file.
	Path string

	// Format overrides extension-based detection.
	Format Format
}

// NewFileProvider returns a FileProvider that detects the format of path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: path}
}

// Load reads, decodes and validates the dump.
func (p *FileProvider) Load(ctx context.Context) (*ir.Registry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format := p.Format
	if format == FormatAuto {
		var err error
		if format, err = DetectFormat(p.Path); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, errors.Wrap(err, "read registry")
	}

	reg, err := Decode(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", p.Path)
	}
	return reg, nil
}

// Decode parses a dump in the given format and validates the result.
func Decode(data []byte, format Format) (*ir.Registry, error) {
	reg := new(ir.Registry)

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, reg); err != nil {
			return nil, errors.Wrap(err, "decode yaml")
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), reg)
		if err != nil {
			return nil, errors.Wrap(err, "decode toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.Newf("decode toml: unknown key %s", undecoded[0])
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(reg); err != nil {
			return nil, errors.Wrap(err, "decode json")
		}
	default:
		return nil, errors.Newf("unsupported registry format %q", format)
	}

	if err := check(reg); err != nil {
		return nil, err
	}
	return reg, nil
}
