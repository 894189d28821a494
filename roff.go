package md2roff

import (
	"fmt"
	"strings"
)

// roffWriter accumulates man-macro roff output. Output is a pure function
// of the document: no timestamps, no environment lookups.
type roffWriter struct {
	out strings.Builder
}

// Render walks a populated document and produces the final roff text.
// Errors indicate invariant violations (adapter defects), never problems
// with user input.
func Render(doc *Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("%w: nil document", ErrInternal)
	}
	if err := checkRenderable(doc.Blocks); err != nil {
		return "", err
	}

	w := &roffWriter{}
	w.writeHeader(doc.Meta)
	w.writeName(doc.Name, doc.Description)
	w.writeBlocks(doc.Blocks, false)
	return w.finish(), nil
}

// checkRenderable verifies the invariants the renderer depends on.
func checkRenderable(blocks []Block) error {
	for _, b := range blocks {
		switch b.Kind {
		case KindQuote:
			return fmt.Errorf("%w: quote block reached renderer", ErrInternal)
		case KindList:
			if len(b.Items) == 0 {
				return fmt.Errorf("%w: empty list reached renderer", ErrInternal)
			}
			for _, item := range b.Items {
				if err := checkRenderable(item.Body); err != nil {
					return err
				}
			}
		case KindCodeBlock:
			if len(b.Lines) == 0 {
				return fmt.Errorf("%w: empty code block reached renderer", ErrInternal)
			}
		}
	}
	return nil
}

// writeHeader emits the .TH line with quoted, sanitized fields.
func (w *roffWriter) writeHeader(meta ManualMeta) {
	w.writeCmd(fmt.Sprintf(".TH \"%s\" \"%s\" \"%s\" \"%s\" \"%s\"",
		w.sanitize(meta.Program),
		w.sanitize(meta.Section),
		w.sanitize(meta.Title),
		w.sanitize(meta.ManualSection),
		w.sanitize(meta.Source),
	))
}

// writeName emits the NAME section with the roff-escaped hyphen separator.
func (w *roffWriter) writeName(name, description string) {
	w.writeCmd(".SH \"NAME\"")
	if description == "" {
		w.writeRaw(fmt.Sprintf("\\fB%s\\fR\n", w.sanitize(name)))
		return
	}
	w.writeRaw(fmt.Sprintf("\\fB%s\\fR \\- %s\n", w.sanitize(name), w.sanitize(description)))
}

// writeBlocks renders a block sequence. inListItem suppresses paragraph
// break macros and switches hard break handling.
func (w *roffWriter) writeBlocks(blocks []Block, inListItem bool) {
	lastHeading := false
	for idx := 0; idx < len(blocks); idx++ {
		switch b := blocks[idx]; b.Kind {
		case KindHeading:
			w.writeHeading(b.Level, b.Text)
			lastHeading = true
		case KindParagraph:
			if !inListItem && !lastHeading {
				w.writeCmd(".P")
			}
			w.writeInlines(b.Text, inListItem)
			w.writeRaw("\n")
			lastHeading = false
		case KindList:
			codeFollows := idx+1 < len(blocks) && blocks[idx+1].Kind == KindCodeBlock
			w.writeList(b, codeFollows)
			lastHeading = false
		case KindCodeBlock:
			w.writeCodeBlock(b)
			lastHeading = false
		}
	}
}

// writeHeading maps heading levels onto section macros: H1 is handled by
// the NAME logic before rendering, so a stray H1 here renders like a
// section boundary; H2 is a section, H3 and deeper flatten to subsections.
func (w *roffWriter) writeHeading(level int, content []Inline) {
	text := inlineText(content)
	if level <= 2 {
		w.writeCmd(fmt.Sprintf(".SH \"%s\"", w.sanitize(strings.ToUpper(text))))
		return
	}
	w.writeCmd(fmt.Sprintf(".SS \"%s\"", w.subsectionSanitize(text)))
}

// writeList renders either a term/definition pair or a plain list.
// codeFollows suppresses the indent reset so a following .nf region
// stays attached, matching the absorption contract.
func (w *roffWriter) writeList(b Block, codeFollows bool) {
	if b.Items[0].Term != nil {
		w.writeDefinition(b.Items[0])
		return
	}
	number := b.Start
	if number <= 0 {
		number = 1
	}
	for _, item := range b.Items {
		if b.Ordered {
			w.writeCmd(fmt.Sprintf(".IP \"%d.\" 4", number))
			number++
		} else {
			w.writeCmd(".IP \"\\(bu\" 4")
		}
		w.writeListItem(item)
		w.writeRaw("\n")
	}
	if !codeFollows {
		w.writeCmd(".IP \"\" 0")
	}
}

// writeDefinition emits the .TP idiom: term line, then each absorbed
// paragraph as indented definition body.
func (w *roffWriter) writeDefinition(item ListItem) {
	w.writeCmd(".TP")
	w.writeInlines(item.Term, false)
	w.ensureNewline()
	for _, b := range item.Body {
		if b.Kind != KindParagraph {
			continue
		}
		w.writeCmd(".IP")
		w.writeInlines(b.Text, false)
		w.writeRaw("\n")
	}
}

// writeListItem renders an item's first paragraph inline, then any
// remaining body blocks with list item break semantics.
func (w *roffWriter) writeListItem(item ListItem) {
	if len(item.Body) == 0 {
		return
	}
	rest := item.Body
	if rest[0].Kind == KindParagraph {
		w.writeInlines(rest[0].Text, true)
		if len(rest) > 1 {
			w.writeRaw("\n")
		}
		rest = rest[1:]
	}
	if len(rest) > 0 {
		w.writeBlocks(rest, true)
	}
}

// writeCodeBlock emits an indented .nf/.fi region. Merged regions arrive
// as a single block, so every code block gets its own fences.
func (w *roffWriter) writeCodeBlock(b Block) {
	w.writeCmd(".IP \"\" 4")
	w.writeCmd(".nf")
	for _, line := range b.Lines {
		w.writeRaw(w.baseSanitize(line))
		w.writeRaw("\n")
	}
	w.writeCmd(".fi")
	w.writeCmd(".IP \"\" 0")
}

// writeInlines renders an inline run. Hard breaks become newlines only
// inside list item bodies; everywhere else they collapse to spaces.
func (w *roffWriter) writeInlines(inlines []Inline, inList bool) {
	for _, in := range inlines {
		switch in.Kind {
		case SpanText:
			w.writeRaw(w.sanitize(in.Text))
		case SpanCode:
			w.writeRaw(fmt.Sprintf("\\fB%s\\fR", w.codeSanitize(in.Text)))
		case SpanEmphasis:
			w.writeRaw(fmt.Sprintf("\\fI%s\\fR", w.sanitize(inlineText(in.Children))))
		case SpanStrong:
			w.writeRaw(fmt.Sprintf("\\fB%s\\fR", w.sanitize(inlineText(in.Children))))
		case SpanSoftBreak:
			w.writeRaw(" ")
		case SpanHardBreak:
			if inList {
				w.writeRaw("\n")
			} else {
				w.writeRaw(" ")
			}
		}
	}
}

// sanitize escapes roff-special characters in flowing text, collapses
// whitespace runs, and renders <placeholder> spans in italics.
func (w *roffWriter) sanitize(text string) string {
	var out strings.Builder
	lastSpace := false
	for _, ch := range text {
		if isSpace(ch) {
			if lastSpace {
				continue
			}
			lastSpace = true
			out.WriteByte(' ')
			continue
		}
		lastSpace = false
		switch ch {
		case '\\':
			out.WriteString("\\e")
		case '.':
			out.WriteString("\\.")
		case '\'':
			out.WriteString("\\'")
		case '-':
			out.WriteString("\\-")
		default:
			out.WriteRune(ch)
		}
	}
	return w.sanitizeAngleBrackets(out.String())
}

// sanitizeAngleBrackets renders <word> argument placeholders as italics.
func (w *roffWriter) sanitizeAngleBrackets(text string) string {
	var out, buffer strings.Builder
	inAngle := false
	for _, ch := range text {
		switch {
		case ch == '<':
			if inAngle {
				out.WriteByte('<')
				out.WriteString(buffer.String())
			}
			inAngle = true
			buffer.Reset()
		case ch == '>' && inAngle:
			out.WriteString("\\fI" + buffer.String() + "\\fR")
			buffer.Reset()
			inAngle = false
		case inAngle:
			buffer.WriteRune(ch)
		default:
			out.WriteRune(ch)
		}
	}
	if inAngle {
		out.WriteByte('<')
		out.WriteString(buffer.String())
	}
	return out.String()
}

// codeSanitize escapes code span content, flattening whitespace.
func (w *roffWriter) codeSanitize(text string) string {
	var out strings.Builder
	for _, ch := range text {
		if isSpace(ch) {
			out.WriteByte(' ')
			continue
		}
		out.WriteString(w.baseSanitize(string(ch)))
	}
	return out.String()
}

// subsectionSanitize escapes a subsection label, collapsing newlines.
func (w *roffWriter) subsectionSanitize(text string) string {
	return strings.Join(strings.Split(w.baseSanitize(text), "\n"), " ")
}

// baseSanitize escapes roff-special characters without collapsing
// whitespace; used for code block lines where layout is literal.
func (w *roffWriter) baseSanitize(text string) string {
	var out strings.Builder
	for _, ch := range text {
		switch ch {
		case '\\':
			out.WriteString("\\e")
		case '.':
			out.WriteString("\\.")
		case '\'':
			out.WriteString("\\'")
		case '-':
			out.WriteString("\\-")
		default:
			out.WriteRune(ch)
		}
	}
	return out.String()
}

func isSpace(ch rune) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func (w *roffWriter) writeCmd(cmd string) {
	w.ensureNewline()
	w.out.WriteString(cmd)
	w.out.WriteByte('\n')
}

func (w *roffWriter) writeRaw(text string) {
	w.out.WriteString(text)
}

func (w *roffWriter) ensureNewline() {
	s := w.out.String()
	if len(s) > 0 && !strings.HasSuffix(s, "\n") {
		w.out.WriteByte('\n')
	}
}

// finish guards lines whose escaped text begins with \. so the man
// parser cannot mistake them for macro requests.
func (w *roffWriter) finish() string {
	lines := strings.Split(w.out.String(), "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "\\.") {
			lines[i] = "\\&" + line
		}
	}
	return strings.Join(lines, "\n")
}
