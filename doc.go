// Package md2roff converts CommonMark Markdown or YAML manuals into
// man-compatible roff source.
//
// # Quick Start
//
// Create a converter and convert markdown:
//
//	conv := md2roff.NewConverter()
//	meta, err := md2roff.NewManualMeta("mytool", "1", "Mytool Manual", "", "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	roff, err := conv.ConvertMarkdown(ctx, "# mytool(1) -- Example tool\n\nText.", meta)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("mytool.1", []byte(roff), 0644)
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Markdown preprocessing (line ending normalization)
//  2. Markdown to document adaptation via Goldmark event folding
//  3. Document structure passes (NAME splitting, definition lists, code merging)
//  4. Roff rendering (.TH/.SH/.SS/.TP/.nf macros, inline escaping)
//
// YAML manuals are flattened to a Markdown document first, then lowered
// through the same pipeline, so a YAML manual and its flattened Markdown
// equivalent always produce identical roff.
//
// # Input Restrictions
//
// Tables, footnotes, strikethrough, and definition-list source syntax are
// rejected with ErrUnsupportedConstruct rather than rendered; conversion
// never produces partial output. Links keep only their
// text, images keep only their alt text, and raw HTML degrades to literal
// text.
//
// # Schema Validation
//
// YAML manuals can be checked against a JSON Schema before adaptation:
//
//	conv := md2roff.NewConverter(md2roff.WithValidation())
//
// The embedded default schema can be replaced with WithSchema.
package md2roff
