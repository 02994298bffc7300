// Package yamlutil wraps YAML decoding so the rest of the module never
// imports the YAML library directly.
package yamlutil

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// MaxInputSize caps config documents at 256KB.
var MaxInputSize = 256 << 10

var (
	ErrEmptyInput     = errors.New("yamlutil: empty input")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

// DecodeOptions controls how a document is decoded.
type DecodeOptions struct {
	// Strict rejects keys that do not map to a struct field.
	Strict bool
	// ExpandEnv substitutes ${VAR} and $VAR before parsing.
	ExpandEnv bool
}

// Decode parses data into v.
// Parse errors are rendered with the offending source line.
func Decode(data []byte, v any, opts DecodeOptions) error {
	if len(data) == 0 {
		return ErrEmptyInput
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}

	if opts.ExpandEnv {
		data = []byte(os.ExpandEnv(string(data)))
	}

	var decodeOpts []yaml.DecodeOption
	if opts.Strict {
		decodeOpts = append(decodeOpts, yaml.Strict())
	}

	if err := yaml.UnmarshalWithOptions(data, v, decodeOpts...); err != nil {
		return fmt.Errorf("yamlutil: %s", yaml.FormatError(err, false, true))
	}
	return nil
}

// Encode renders v as YAML. Used to print the effective configuration.
func Encode(v any) ([]byte, error) {
	out, err := yaml.MarshalWithOptions(v, yaml.Indent(2))
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return out, nil
}
