package md2roff

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/alnah/go-md2roff/internal/yamlutil"
)

// BuiltinSchema is the embedded default manual schema. It is loaded once
// at build time and never mutated; WithSchema substitutes a different
// immutable document per converter.
//
//go:embed schema/manual.yml
var BuiltinSchema []byte

// ValidateManual checks a YAML manual against a JSON Schema document
// (itself authored in YAML). It runs before adaptation; a failing check
// aborts the conversion with the collected violation paths.
func ValidateManual(content, schemaSource []byte) error {
	tree, err := yamlutil.Tree(content)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrYamlParse, err)
	}
	schemaTree, err := yamlutil.Tree(schemaSource)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaLoad, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(jsonNormalize(schemaTree)),
		gojsonschema.NewGoLoader(jsonNormalize(tree)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaLoad, err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return fmt.Errorf("%w: %s", ErrSchemaValidation, strings.Join(violations, "; "))
}

// jsonNormalize lowers a YAML tree to JSON-compatible values so the
// validator's JSON marshalling cannot choke on non-string mapping keys.
func jsonNormalize(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = jsonNormalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[scalarString(k)] = jsonNormalize(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = jsonNormalize(item)
		}
		return out
	default:
		return v
	}
}
