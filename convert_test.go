package md2roff

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestConvertYAMLMatchesFlattenedMarkdown(t *testing.T) {
	meta := testMeta(t)
	ctx := context.Background()

	fromYAML, err := ConvertYAML(ctx, jqManual, meta)
	if err != nil {
		t.Fatalf("ConvertYAML() unexpected error: %v", err)
	}

	markdown, err := ManualToMarkdown(jqManual)
	if err != nil {
		t.Fatalf("ManualToMarkdown() unexpected error: %v", err)
	}
	fromMarkdown, err := ConvertMarkdown(ctx, markdown, meta)
	if err != nil {
		t.Fatalf("ConvertMarkdown() unexpected error: %v", err)
	}

	if fromYAML != fromMarkdown {
		t.Errorf("YAML conversion diverged from its flattened Markdown:\n%s\nvs:\n%s", fromYAML, fromMarkdown)
	}
}

func TestConvertYAMLStructure(t *testing.T) {
	got, err := ConvertYAML(context.Background(), jqManual, testMeta(t))
	if err != nil {
		t.Fatalf("ConvertYAML() unexpected error: %v", err)
	}

	fragments := []string{
		`.TH "mytool" "1" "Mytool Manual" "" ""`,
		`.SH "NAME"`,
		`\fBjq\fR \- Command\-line JSON processor`,
		`.SH "BASIC FILTERS"`,
		`.SS "Identity"`,
		".nf",
	}
	for _, frag := range fragments {
		if !strings.Contains(got, frag) {
			t.Errorf("output missing %q:\n%s", frag, got)
		}
	}
}

func TestConvertYAMLValidationGate(t *testing.T) {
	ctx := context.Background()
	invalid := "- a\n- b\n"

	t.Run("gate off reports shape error", func(t *testing.T) {
		_, err := NewConverter().ConvertYAML(ctx, invalid, testMeta(t))
		if !errors.Is(err, ErrYamlShape) {
			t.Errorf("ConvertYAML() error = %v, want ErrYamlShape", err)
		}
	})

	t.Run("gate on reports validation error first", func(t *testing.T) {
		_, err := NewConverter(WithValidation()).ConvertYAML(ctx, invalid, testMeta(t))
		if !errors.Is(err, ErrSchemaValidation) {
			t.Errorf("ConvertYAML() error = %v, want ErrSchemaValidation", err)
		}
	})

	t.Run("valid manual passes the gate", func(t *testing.T) {
		if _, err := NewConverter(WithValidation()).ConvertYAML(ctx, jqManual, testMeta(t)); err != nil {
			t.Errorf("ConvertYAML() unexpected error: %v", err)
		}
	})
}

func TestWithSchemaImpliesValidation(t *testing.T) {
	schema := []byte("type: object\nrequired: [name]\n")
	_, err := NewConverter(WithSchema(schema)).ConvertYAML(context.Background(), "sections: []\n", testMeta(t))
	if !errors.Is(err, ErrSchemaValidation) {
		t.Errorf("ConvertYAML() error = %v, want ErrSchemaValidation", err)
	}
}

func TestConverterReuse(t *testing.T) {
	conv := NewConverter()
	ctx := context.Background()
	meta := testMeta(t)
	input := "# t -- d\n\ntext\n"

	first, err := conv.ConvertMarkdown(ctx, input, meta)
	if err != nil {
		t.Fatalf("first conversion failed: %v", err)
	}
	second, err := conv.ConvertMarkdown(ctx, input, meta)
	if err != nil {
		t.Fatalf("second conversion failed: %v", err)
	}
	if first != second {
		t.Error("converter must be stateless across conversions")
	}
}

func TestConvertContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := ConvertMarkdown(ctx, "# t -- d\n", testMeta(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("ConvertMarkdown() error = %v, want context.Canceled", err)
	}
	if _, err := ConvertYAML(ctx, jqManual, testMeta(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("ConvertYAML() error = %v, want context.Canceled", err)
	}
}

func TestParseYAMLDocument(t *testing.T) {
	doc, err := ParseYAML(jqManual, testMeta(t))
	if err != nil {
		t.Fatalf("ParseYAML() unexpected error: %v", err)
	}
	if doc.Name != "jq" {
		t.Errorf("Name = %q, want %q", doc.Name, "jq")
	}
	if doc.Description != "Command-line JSON processor" {
		t.Errorf("Description = %q, want %q", doc.Description, "Command-line JSON processor")
	}
}
