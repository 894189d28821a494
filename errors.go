package md2roff

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyInput = errors.New("input content cannot be empty")

	// Markdown adaptation errors.
	ErrMissingName          = errors.New("first level-1 heading with a program name is required")
	ErrUnsupportedConstruct = errors.New("unsupported markdown construct")
	ErrMarkdownParse        = errors.New("markdown parse failed")

	// YAML adaptation errors.
	ErrYamlParse = errors.New("yaml parse failed")
	ErrYamlShape = errors.New("yaml shape error")

	// Schema validation errors.
	ErrSchemaLoad       = errors.New("schema load failed")
	ErrSchemaValidation = errors.New("schema validation failed")

	// Manual metadata validation errors.
	ErrInvalidMeta = errors.New("invalid manual metadata")

	// Document construction errors. These indicate adapter defects, not
	// user input problems.
	ErrInvalidHeadingLevel = errors.New("heading level must be between 1 and 6")
	ErrEmptyList           = errors.New("list must contain at least one item")
	ErrEmptyCodeBlock      = errors.New("code block must contain at least one line")
	ErrMixedListTerms      = errors.New("list items must uniformly have or lack terms")
	ErrInternal            = errors.New("internal conversion error")
)
