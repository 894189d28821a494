package main

import (
	"errors"
	"os"

	md2roff "github.com/alnah/go-md2roff"
)

// Exit codes for md2roff CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, 3=I/O.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, input shape, or validation
	ExitIO      = 3 // File not found, permission denied
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrReadSchema) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	// Usage/input/validation errors (exit 2)
	if errors.Is(err, md2roff.ErrInvalidMeta) ||
		errors.Is(err, md2roff.ErrEmptyInput) ||
		errors.Is(err, md2roff.ErrMissingName) ||
		errors.Is(err, md2roff.ErrUnsupportedConstruct) ||
		errors.Is(err, md2roff.ErrMarkdownParse) ||
		errors.Is(err, md2roff.ErrYamlParse) ||
		errors.Is(err, md2roff.ErrYamlShape) ||
		errors.Is(err, md2roff.ErrSchemaLoad) ||
		errors.Is(err, md2roff.ErrSchemaValidation) {
		return ExitUsage
	}

	return ExitGeneral
}
