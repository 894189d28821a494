package md2roff

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// trailingParen matches a parenthesized suffix at the end of a description.
var trailingParen = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

// nameSeparators, in priority order, split the first H1 into name and
// description. The leftmost match wins; ties go to the earlier entry.
var nameSeparators = []string{" -- ", " - ", " — "}

// markdownAdapter folds the Goldmark event stream into a Document.
type markdownAdapter struct {
	md goldmark.Markdown
}

// newMarkdownAdapter creates an adapter with the extensions required to
// recognize constructs this converter must reject. Tables, strikethrough,
// footnotes, and definition lists are parsed deliberately so they surface
// as typed nodes instead of leaking through as literal text.
func newMarkdownAdapter() *markdownAdapter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
			extension.Footnote,
			extension.DefinitionList,
		),
	)
	return &markdownAdapter{md: md}
}

// Parse adapts Markdown content into a Document carrying the given
// metadata. The first H1 becomes the NAME entry; its absence is an error.
func (a *markdownAdapter) Parse(content string, meta ManualMeta) (*Document, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyInput
	}
	source := []byte(content)
	root := a.md.Parser().Parse(text.NewReader(source))

	blocks, err := foldEvents(root, source)
	if err != nil {
		return nil, err
	}

	name, description, rest, err := extractName(blocks)
	if err != nil {
		return nil, err
	}

	return &Document{
		Meta:        meta,
		Name:        name,
		Description: description,
		Blocks:      transformBlocks(rest),
	}, nil
}

// frameKind identifies an open frame on the fold stack.
type frameKind int

const (
	frameDocument frameKind = iota + 1
	frameQuote
	frameList
	frameListItem
	frameParagraph
	frameHeading
	frameEmphasis
	frameStrong
	frameLink
	frameImage
)

// frame is one open block or inline construct during event folding.
type frame struct {
	kind frameKind

	// Block container state (document, quote, list item).
	blocks  []Block
	pending []Inline

	// Inline container state (paragraph, heading, emphasis, strong, link, image).
	inlines []Inline
	level   int

	// List state.
	ordered bool
	start   int
	items   []ListItem
}

func (f *frame) isBlockContainer() bool {
	switch f.kind {
	case frameDocument, frameQuote, frameListItem:
		return true
	}
	return false
}

// flushPending wraps stray inline content into an implicit paragraph.
func (f *frame) flushPending() {
	if len(f.pending) > 0 {
		f.blocks = append(f.blocks, NewParagraph(f.pending))
		f.pending = nil
	}
}

func (f *frame) pushBlock(b Block) {
	f.flushPending()
	f.blocks = append(f.blocks, b)
}

func (f *frame) finish() []Block {
	f.flushPending()
	return f.blocks
}

// foldStack folds enter/exit events into completed blocks.
type foldStack struct {
	frames []*frame
}

func (s *foldStack) push(f *frame) {
	s.frames = append(s.frames, f)
}

func (s *foldStack) pop() *frame {
	if len(s.frames) == 0 {
		return nil
	}
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return f
}

func (s *foldStack) top() *frame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// pushInline attaches an inline span to the innermost open frame.
func (s *foldStack) pushInline(in Inline) error {
	top := s.top()
	if top == nil {
		return fmt.Errorf("%w: inline content without container", ErrMarkdownParse)
	}
	switch {
	case top.isBlockContainer():
		top.pending = append(top.pending, in)
	case top.kind == frameList:
		return fmt.Errorf("%w: inline content directly inside list", ErrMarkdownParse)
	default:
		top.inlines = append(top.inlines, in)
	}
	return nil
}

// pushBlock attaches a completed block to the innermost block container.
func (s *foldStack) pushBlock(b Block) error {
	top := s.top()
	if top == nil {
		return fmt.Errorf("%w: block without container", ErrMarkdownParse)
	}
	if !top.isBlockContainer() {
		return fmt.Errorf("%w: block inside non-container frame", ErrMarkdownParse)
	}
	top.pushBlock(b)
	return nil
}

// flushContainer closes any implicit paragraph before a new block opens.
func (s *foldStack) flushContainer() {
	if top := s.top(); top != nil && top.isBlockContainer() {
		top.flushPending()
	}
}

// popKind pops the top frame, verifying its kind.
func (s *foldStack) popKind(kind frameKind, what string) (*frame, error) {
	f := s.pop()
	if f == nil || f.kind != kind {
		return nil, fmt.Errorf("%w: %s frame mismatch", ErrMarkdownParse, what)
	}
	return f, nil
}

// foldEvents walks the parsed tree, treating enter/exit callbacks as the
// event stream and folding them with an explicit frame stack.
func foldEvents(root ast.Node, source []byte) ([]Block, error) {
	stack := &foldStack{}

	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Document:
			if entering {
				stack.push(&frame{kind: frameDocument})
			}
			return ast.WalkContinue, nil

		case *ast.Heading:
			if entering {
				stack.flushContainer()
				stack.push(&frame{kind: frameHeading, level: node.Level})
				return ast.WalkContinue, nil
			}
			f, err := stack.popKind(frameHeading, "heading")
			if err != nil {
				return ast.WalkStop, err
			}
			heading, err := NewHeading(f.level, f.inlines)
			if err != nil {
				return ast.WalkStop, err
			}
			return walkPush(stack, heading)

		case *ast.Paragraph, *ast.TextBlock:
			if entering {
				stack.flushContainer()
				stack.push(&frame{kind: frameParagraph})
				return ast.WalkContinue, nil
			}
			f, err := stack.popKind(frameParagraph, "paragraph")
			if err != nil {
				return ast.WalkStop, err
			}
			return walkPush(stack, NewParagraph(f.inlines))

		case *ast.List:
			if entering {
				stack.flushContainer()
				stack.push(&frame{kind: frameList, ordered: node.IsOrdered(), start: node.Start})
				return ast.WalkContinue, nil
			}
			f, err := stack.popKind(frameList, "list")
			if err != nil {
				return ast.WalkStop, err
			}
			list, err := NewList(f.ordered, f.start, f.items)
			if err != nil {
				return ast.WalkStop, err
			}
			return walkPush(stack, list)

		case *ast.ListItem:
			if entering {
				stack.push(&frame{kind: frameListItem})
				return ast.WalkContinue, nil
			}
			f, err := stack.popKind(frameListItem, "list item")
			if err != nil {
				return ast.WalkStop, err
			}
			parent := stack.top()
			if parent == nil || parent.kind != frameList {
				return ast.WalkStop, fmt.Errorf("%w: list item outside list", ErrMarkdownParse)
			}
			parent.items = append(parent.items, ListItem{Body: f.finish()})
			return ast.WalkContinue, nil

		case *ast.Blockquote:
			if entering {
				stack.flushContainer()
				stack.push(&frame{kind: frameQuote})
				return ast.WalkContinue, nil
			}
			f, err := stack.popKind(frameQuote, "block quote")
			if err != nil {
				return ast.WalkStop, err
			}
			// Quote bodies splice directly into the parent sequence; no
			// quoting marker survives into the document model.
			for _, b := range f.finish() {
				if err := stack.pushBlock(b); err != nil {
					return ast.WalkStop, err
				}
			}
			return ast.WalkContinue, nil

		case *ast.FencedCodeBlock:
			if !entering {
				return ast.WalkContinue, nil
			}
			stack.flushContainer()
			lines := segmentLines(node.Lines(), source)
			if len(lines) == 0 {
				lines = []string{""}
			}
			cb, err := NewCodeBlock(lines, string(node.Language(source)))
			if err != nil {
				return ast.WalkStop, err
			}
			if err := stack.pushBlock(cb); err != nil {
				return ast.WalkStop, err
			}
			return ast.WalkSkipChildren, nil

		case *ast.CodeBlock:
			if !entering {
				return ast.WalkContinue, nil
			}
			stack.flushContainer()
			lines := segmentLines(node.Lines(), source)
			if len(lines) == 0 {
				lines = []string{""}
			}
			cb, err := NewCodeBlock(lines, "")
			if err != nil {
				return ast.WalkStop, err
			}
			if err := stack.pushBlock(cb); err != nil {
				return ast.WalkStop, err
			}
			return ast.WalkSkipChildren, nil

		case *ast.HTMLBlock:
			if !entering {
				return ast.WalkContinue, nil
			}
			stack.flushContainer()
			lines := segmentLines(node.Lines(), source)
			if node.HasClosure() {
				lines = append(lines, strings.TrimRight(string(node.ClosureLine.Value(source)), "\n"))
			}
			// HTML is never interpreted; the raw markup becomes a literal
			// paragraph.
			literal := Inline{Kind: SpanText, Text: strings.Join(lines, "\n")}
			if err := stack.pushBlock(NewParagraph([]Inline{literal})); err != nil {
				return ast.WalkStop, err
			}
			return ast.WalkSkipChildren, nil

		case *ast.ThematicBreak:
			// Horizontal rules produce no output.
			return ast.WalkSkipChildren, nil

		case *ast.Emphasis:
			kind, fk := SpanEmphasis, frameEmphasis
			if node.Level >= 2 {
				kind, fk = SpanStrong, frameStrong
			}
			if entering {
				stack.push(&frame{kind: fk})
				return ast.WalkContinue, nil
			}
			f, err := stack.popKind(fk, "emphasis")
			if err != nil {
				return ast.WalkStop, err
			}
			if err := stack.pushInline(Inline{Kind: kind, Children: f.inlines}); err != nil {
				return ast.WalkStop, err
			}
			return ast.WalkContinue, nil

		case *ast.Link:
			if entering {
				stack.push(&frame{kind: frameLink})
				return ast.WalkContinue, nil
			}
			f, err := stack.popKind(frameLink, "link")
			if err != nil {
				return ast.WalkStop, err
			}
			// Destination discarded; only the text survives.
			if err := stack.pushInline(Inline{Kind: SpanText, Text: flattenInline(f.inlines)}); err != nil {
				return ast.WalkStop, err
			}
			return ast.WalkContinue, nil

		case *ast.Image:
			if entering {
				stack.push(&frame{kind: frameImage})
				return ast.WalkContinue, nil
			}
			f, err := stack.popKind(frameImage, "image")
			if err != nil {
				return ast.WalkStop, err
			}
			// Source discarded; only the alt text survives.
			if err := stack.pushInline(Inline{Kind: SpanText, Text: flattenInline(f.inlines)}); err != nil {
				return ast.WalkStop, err
			}
			return ast.WalkContinue, nil

		case *ast.AutoLink:
			if entering {
				if err := stack.pushInline(Inline{Kind: SpanText, Text: string(node.Label(source))}); err != nil {
					return ast.WalkStop, err
				}
			}
			return ast.WalkSkipChildren, nil

		case *ast.CodeSpan:
			if !entering {
				return ast.WalkContinue, nil
			}
			if err := stack.pushInline(Inline{Kind: SpanCode, Text: nodeText(node, source)}); err != nil {
				return ast.WalkStop, err
			}
			return ast.WalkSkipChildren, nil

		case *ast.RawHTML:
			if !entering {
				return ast.WalkContinue, nil
			}
			var raw strings.Builder
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				raw.Write(seg.Value(source))
			}
			if err := stack.pushInline(Inline{Kind: SpanText, Text: raw.String()}); err != nil {
				return ast.WalkStop, err
			}
			return ast.WalkSkipChildren, nil

		case *ast.Text:
			if !entering {
				return ast.WalkContinue, nil
			}
			if err := stack.pushInline(Inline{Kind: SpanText, Text: string(node.Segment.Value(source))}); err != nil {
				return ast.WalkStop, err
			}
			if node.HardLineBreak() {
				if err := stack.pushInline(Inline{Kind: SpanHardBreak}); err != nil {
					return ast.WalkStop, err
				}
			} else if node.SoftLineBreak() {
				if err := stack.pushInline(Inline{Kind: SpanSoftBreak}); err != nil {
					return ast.WalkStop, err
				}
			}
			return ast.WalkContinue, nil

		case *ast.String:
			if entering {
				if err := stack.pushInline(Inline{Kind: SpanText, Text: string(node.Value)}); err != nil {
					return ast.WalkStop, err
				}
			}
			return ast.WalkContinue, nil

		case *east.TaskCheckBox:
			// Checkbox markers are dropped silently.
			return ast.WalkSkipChildren, nil

		case *east.Table, *east.TableHeader, *east.TableRow, *east.TableCell:
			return ast.WalkStop, unsupported("table")

		case *east.Strikethrough:
			return ast.WalkStop, unsupported("strikethrough")

		case *east.FootnoteList, *east.Footnote, *east.FootnoteLink, *east.FootnoteBacklink:
			return ast.WalkStop, unsupported("footnote")

		case *east.DefinitionList, *east.DefinitionTerm, *east.DefinitionDescription:
			return ast.WalkStop, unsupported("definition list")

		default:
			return ast.WalkStop, unsupported(n.Kind().String())
		}
	})
	if err != nil {
		return nil, err
	}

	if len(stack.frames) != 1 {
		return nil, fmt.Errorf("%w: unbalanced structure at end of document", ErrMarkdownParse)
	}
	doc, err := stack.popKind(frameDocument, "document")
	if err != nil {
		return nil, err
	}
	return doc.finish(), nil
}

func walkPush(stack *foldStack, b Block) (ast.WalkStatus, error) {
	if err := stack.pushBlock(b); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkContinue, nil
}

func unsupported(kind string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedConstruct, kind)
}

// segmentLines extracts source lines without trailing newlines.
func segmentLines(lines *text.Segments, source []byte) []string {
	out := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		out = append(out, strings.TrimRight(string(seg.Value(source)), "\n"))
	}
	return out
}

// nodeText collects the literal text beneath an inline node.
func nodeText(n ast.Node, source []byte) string {
	var out strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch child := c.(type) {
		case *ast.Text:
			out.Write(child.Segment.Value(source))
		case *ast.String:
			out.Write(child.Value)
		default:
			out.WriteString(nodeText(c, source))
		}
	}
	return out.String()
}

// flattenInline renders an inline run to plain text with breaks as spaces.
func flattenInline(inlines []Inline) string {
	return strings.ReplaceAll(inlineText(inlines), "\n", " ")
}

// extractName removes the first H1 from the block sequence and splits it
// into the document name and description.
func extractName(blocks []Block) (name, description string, rest []Block, err error) {
	idx := -1
	for i, b := range blocks {
		if b.Kind == KindHeading && b.Level == 1 {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", "", nil, ErrMissingName
	}

	name, description, ok := splitNameDescription(inlineText(blocks[idx].Text))
	if !ok || name == "" {
		return "", "", nil, ErrMissingName
	}

	rest = make([]Block, 0, len(blocks)-1)
	rest = append(rest, blocks[:idx]...)
	rest = append(rest, blocks[idx+1:]...)
	return name, description, rest, nil
}

// splitNameDescription splits H1 text on the leftmost name separator.
// The name is truncated at its first parenthesis, the description loses
// any trailing parenthesized suffix. A heading without any separator is
// not a valid NAME entry.
func splitNameDescription(text string) (name, description string, ok bool) {
	best := -1
	width := 0
	for _, sep := range nameSeparators {
		if idx := strings.Index(text, sep); idx >= 0 && (best < 0 || idx < best) {
			best = idx
			width = len(sep)
		}
	}
	if best < 0 {
		return "", "", false
	}
	name = text[:best]
	description = strings.TrimSpace(text[best+width:])
	description = trailingParen.ReplaceAllString(description, "")
	if idx := strings.Index(name, "("); idx >= 0 {
		name = name[:idx]
	}
	return strings.TrimSpace(name), description, true
}

// transformBlocks applies the structural passes the renderer relies on:
// adjacent code block merging and definition list recognition with
// paragraph absorption. It recurses into list item bodies.
func transformBlocks(blocks []Block) []Block {
	out := make([]Block, 0, len(blocks))
	i := 0
	for i < len(blocks) {
		b := blocks[i]
		switch b.Kind {
		case KindList:
			for j := range b.Items {
				b.Items[j].Body = transformBlocks(b.Items[j].Body)
			}
			if isDefinitionCandidate(b) {
				list, consumed := buildDefinitionList(b, blocks[i+1:])
				out = append(out, list)
				i += 1 + consumed
				continue
			}
		case KindCodeBlock:
			lines := append([]string(nil), b.Lines...)
			j := i + 1
			for j < len(blocks) && blocks[j].Kind == KindCodeBlock {
				lines = append(lines, "")
				lines = append(lines, blocks[j].Lines...)
				j++
			}
			merged, err := NewCodeBlock(lines, b.Language)
			if err == nil {
				out = append(out, merged)
				i = j
				continue
			}
		}
		out = append(out, b)
		i++
	}
	return out
}

// isDefinitionCandidate reports whether a list should be reclassified as
// a term/definition list: exactly one item, whose sole paragraph ends in
// a literal colon.
func isDefinitionCandidate(b Block) bool {
	if len(b.Items) != 1 || b.Items[0].Term != nil {
		return false
	}
	body := b.Items[0].Body
	if len(body) != 1 || body[0].Kind != KindParagraph {
		return false
	}
	return strings.HasSuffix(strings.TrimSpace(inlineText(body[0].Text)), ":")
}

// buildDefinitionList converts a candidate list into a definition list,
// absorbing the paragraphs that follow it until a code block (or any
// other block kind) terminates the definition body. Returns the new list
// and the number of following blocks consumed.
func buildDefinitionList(b Block, following []Block) (Block, int) {
	term := stripTrailingColon(b.Items[0].Body[0].Text)
	var body []Block
	consumed := 0
	for consumed < len(following) && following[consumed].Kind == KindParagraph {
		body = append(body, following[consumed])
		consumed++
	}
	list, err := NewList(b.Ordered, b.Start, []ListItem{{Term: term, Body: body}})
	if err != nil {
		// Single constructed item; cannot fail, but keep the original on
		// the defect path.
		return b, 0
	}
	return list, consumed
}

// stripTrailingColon removes the trailing colon from a term's inline run.
func stripTrailingColon(inlines []Inline) []Inline {
	out := append([]Inline(nil), inlines...)
	for i := len(out) - 1; i >= 0; i-- {
		span := out[i]
		switch span.Kind {
		case SpanSoftBreak, SpanHardBreak:
			continue
		case SpanEmphasis, SpanStrong:
			out[i].Children = stripTrailingColon(span.Children)
			return out
		case SpanText, SpanCode:
			trimmed := strings.TrimRight(span.Text, " \t")
			if strings.HasSuffix(trimmed, ":") {
				out[i].Text = strings.TrimSuffix(trimmed, ":")
				return out
			}
			if trimmed == "" {
				continue
			}
			return out
		}
	}
	if len(out) == 0 {
		out = []Inline{{Kind: SpanText, Text: ""}}
	}
	return out
}
