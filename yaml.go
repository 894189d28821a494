package md2roff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alnah/go-md2roff/internal/yamlutil"
)

// ManualToMarkdown flattens a YAML manual into a single Markdown
// document: intro, body, one "## SECTION" per section with optional
// "### entry" subsections, and example groups rendered as fenced code.
// Converting the result to roff is byte-identical to converting an
// equivalent hand-written Markdown manual.
func ManualToMarkdown(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyInput
	}
	tree, err := yamlutil.Tree([]byte(content))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrYamlParse, err)
	}

	manual, err := asMapping(tree, "$")
	if err != nil {
		return "", err
	}

	var out strings.Builder

	intro, ok, err := mapString(manual, "manpage_intro", "$")
	if err != nil {
		return "", err
	}
	if !ok {
		intro = "\n"
	}
	out.WriteString(intro)

	body, ok, err := mapString(manual, "body", "$")
	if err != nil {
		return "", err
	}
	if !ok {
		body = "\n"
	}
	out.WriteString(dedentBody(body))

	sections, ok, err := mapSequence(manual, "sections", "$")
	if err != nil {
		return "", err
	}
	if ok {
		for i, section := range sections {
			if err := writeSection(&out, section, fmt.Sprintf("sections[%d]", i)); err != nil {
				return "", err
			}
		}
	}

	epilogue, _, err := mapString(manual, "manpage_epilogue", "$")
	if err != nil {
		return "", err
	}
	out.WriteString(epilogue)
	return out.String(), nil
}

// writeSection flattens one named section and its entries.
func writeSection(out *strings.Builder, value any, path string) error {
	section, err := asMapping(value, path)
	if err != nil {
		return err
	}

	title, _, err := mapString(section, "title", path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "## %s\n", strings.ToUpper(title))

	body, ok, err := mapString(section, "body", path)
	if err != nil {
		return err
	}
	if !ok {
		body = "\n"
	}
	out.WriteString(dedentBody(body))
	out.WriteByte('\n')

	entries, ok, err := mapSequence(section, "entries", path)
	if err != nil {
		return err
	}
	if ok {
		for i, entry := range entries {
			if err := writeEntry(out, entry, fmt.Sprintf("%s.entries[%d]", path, i)); err != nil {
				return err
			}
		}
	}
	out.WriteByte('\n')
	return nil
}

// writeEntry flattens one entry with its optional example group.
func writeEntry(out *strings.Builder, value any, path string) error {
	entry, err := asMapping(value, path)
	if err != nil {
		return err
	}

	title, _, err := mapString(entry, "title", path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "### %s\n", title)

	body, ok, err := mapString(entry, "body", path)
	if err != nil {
		return err
	}
	if !ok {
		body = "\n"
	}
	out.WriteString(dedentBody(body))
	out.WriteByte('\n')

	examples, ok, err := mapSequence(entry, "examples", path)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	out.WriteString("~~~~\n")
	for i, example := range examples {
		if i > 0 {
			out.WriteByte('\n')
		}
		if err := writeExample(out, example, fmt.Sprintf("%s.examples[%d]", path, i)); err != nil {
			return err
		}
	}
	out.WriteString("~~~~\n")
	return nil
}

// writeExample renders one program/input/output triple inside the
// example fence.
func writeExample(out *strings.Builder, value any, path string) error {
	example, err := asMapping(value, path)
	if err != nil {
		return err
	}

	program, _, err := mapString(example, "program", path)
	if err != nil {
		return err
	}
	input, _, err := mapString(example, "input", path)
	if err != nil {
		return err
	}
	outputs, ok, err := mapSequence(example, "output", path)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "jq '%s'\n", program)
	fmt.Fprintf(out, "   %s\n", input)

	rendered := make([]string, 0, len(outputs))
	if ok {
		for _, o := range outputs {
			rendered = append(rendered, scalarString(o))
		}
	}
	fmt.Fprintf(out, "=> %s\n", strings.Join(rendered, ", "))
	return nil
}

// dedentBody strips the two-space block scalar indent from body fields,
// leaving deeper indentation (code, nested lists) intact.
func dedentBody(body string) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		rest, found := strings.CutPrefix(line, "  ")
		if !found || rest == "" {
			continue
		}
		if rest[0] != ' ' && rest[0] != '\t' {
			lines[i] = rest
		}
	}
	return strings.Join(lines, "\n")
}

// shapeError reports a YAML value of the wrong kind with a path precise
// enough to locate the offending line in the source.
func shapeError(path, expected string, found any) error {
	return fmt.Errorf("%w at %s: expected %s, found %s", ErrYamlShape, path, expected, typeName(found))
}

// asMapping asserts that a value is a mapping with string keys.
func asMapping(value any, path string) (map[string]any, error) {
	switch m := value.(type) {
	case map[string]any:
		return m, nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[scalarString(k)] = v
		}
		return out, nil
	default:
		return nil, shapeError(path, "mapping", value)
	}
}

// mapString fetches an optional string field. Missing or null fields
// report ok=false; any other kind is a shape error.
func mapString(m map[string]any, key, path string) (string, bool, error) {
	value, present := m[key]
	if !present || value == nil {
		return "", false, nil
	}
	s, ok := value.(string)
	if !ok {
		return "", false, shapeError(path+"."+key, "string", value)
	}
	return s, true, nil
}

// mapSequence fetches an optional sequence field.
func mapSequence(m map[string]any, key, path string) ([]any, bool, error) {
	value, present := m[key]
	if !present || value == nil {
		return nil, false, nil
	}
	seq, ok := value.([]any)
	if !ok {
		return nil, false, shapeError(path+"."+key, "sequence", value)
	}
	return seq, true, nil
}

// scalarString renders any YAML value as display text for example
// outputs and error messages.
func scalarString(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case bool:
		return fmt.Sprintf("%t", v)
	case string:
		return v
	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = scalarString(item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case map[string]any:
		return mappingString(v)
	case map[any]any:
		m, _ := asMapping(v, "")
		return mappingString(m)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// mappingString renders a mapping in insertion-independent sorted order.
func mappingString(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + ": " + scalarString(m[k])
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

// typeName names a YAML value's kind for shape error messages.
func typeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case int, int64, uint64:
		return "int"
	case float32, float64:
		return "float"
	case string:
		return "string"
	case []any:
		return "sequence"
	case map[string]any, map[any]any:
		return "mapping"
	default:
		return fmt.Sprintf("%T", value)
	}
}
