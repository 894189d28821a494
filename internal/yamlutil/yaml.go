// Package yamlutil wraps YAML parsing to isolate the external dependency.
// This allows swapping the underlying YAML library without modifying callers.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

var (
	ErrNilData       = errors.New("yamlutil: nil or empty data")
	ErrInputTooLarge = errors.New("yamlutil: input exceeds maximum size")
)

func validateInput(data []byte) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	return nil
}

// Unmarshal decodes YAML into v.
func Unmarshal(data []byte, v any) error {
	if err := validateInput(data); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// Tree decodes YAML into a generic value tree of mappings, sequences,
// and scalars. Mapping keys are strings.
func Tree(data []byte) (any, error) {
	var tree any
	if err := Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}
