package md2roff

import (
	"context"
)

// Compile-time interface implementation checks.
var _ markdownPreprocessor = (*commonMarkPreprocessor)(nil)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	validate bool
	schema   []byte
}

// Option configures a Converter.
type Option func(*Converter)

// WithValidation enables the schema validation gate for YAML manuals.
func WithValidation() Option {
	return func(c *Converter) {
		c.cfg.validate = true
	}
}

// WithSchema replaces the embedded default schema. Implies validation.
func WithSchema(schema []byte) Option {
	return func(c *Converter) {
		c.cfg.validate = true
		c.cfg.schema = schema
	}
}

// Converter orchestrates the conversion pipeline. It holds no state
// across conversions and is safe to reuse.
type Converter struct {
	cfg          converterConfig
	preprocessor markdownPreprocessor
	markdown     *markdownAdapter
}

// NewConverter creates a Converter with default configuration.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		preprocessor: &commonMarkPreprocessor{},
		markdown:     newMarkdownAdapter(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParseMarkdown adapts Markdown content into a Document.
func (c *Converter) ParseMarkdown(content string, meta ManualMeta) (*Document, error) {
	content = c.preprocessor.PreprocessMarkdown(content)
	return c.markdown.Parse(content, meta)
}

// ConvertMarkdown converts Markdown content to roff text.
func (c *Converter) ConvertMarkdown(ctx context.Context, content string, meta ManualMeta) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	doc, err := c.ParseMarkdown(content, meta)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return Render(doc)
}

// ParseYAML adapts a YAML manual into a Document by flattening it to
// Markdown and lowering the result through the Markdown adapter.
func (c *Converter) ParseYAML(content string, meta ManualMeta) (*Document, error) {
	markdown, err := ManualToMarkdown(content)
	if err != nil {
		return nil, err
	}
	return c.ParseMarkdown(markdown, meta)
}

// ConvertYAML converts a YAML manual to roff text, running the optional
// schema validation gate first.
func (c *Converter) ConvertYAML(ctx context.Context, content string, meta ManualMeta) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.cfg.validate {
		schema := c.cfg.schema
		if schema == nil {
			schema = BuiltinSchema
		}
		if err := ValidateManual([]byte(content), schema); err != nil {
			return "", err
		}
	}
	doc, err := c.ParseYAML(content, meta)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return Render(doc)
}

// ConvertMarkdown converts Markdown content to roff with a default
// converter.
func ConvertMarkdown(ctx context.Context, content string, meta ManualMeta) (string, error) {
	return NewConverter().ConvertMarkdown(ctx, content, meta)
}

// ConvertYAML converts a YAML manual to roff with a default converter.
// Validation is off; use NewConverter(WithValidation()) to enable it.
func ConvertYAML(ctx context.Context, content string, meta ManualMeta) (string, error) {
	return NewConverter().ConvertYAML(ctx, content, meta)
}

// ParseMarkdown adapts Markdown content with a default converter.
func ParseMarkdown(content string, meta ManualMeta) (*Document, error) {
	return NewConverter().ParseMarkdown(content, meta)
}

// ParseYAML adapts a YAML manual with a default converter.
func ParseYAML(content string, meta ManualMeta) (*Document, error) {
	return NewConverter().ParseYAML(content, meta)
}
