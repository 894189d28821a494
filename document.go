package md2roff

import (
	"fmt"
	"strings"
)

// BlockKind identifies the variant held by a Block.
type BlockKind int

// Block variants.
const (
	KindHeading BlockKind = iota + 1
	KindParagraph
	KindList
	KindCodeBlock
	KindQuote
)

// InlineKind identifies the variant held by an Inline span.
type InlineKind int

// Inline variants. Links and images never appear in a finished document:
// the adapter degrades them to plain text spans.
const (
	SpanText InlineKind = iota + 1
	SpanCode
	SpanEmphasis
	SpanStrong
	SpanSoftBreak
	SpanHardBreak
)

// Inline is a single span within an inline run.
// Text and Code use the Text field; Emphasis and Strong use Children.
type Inline struct {
	Kind     InlineKind
	Text     string
	Children []Inline
}

// Block is the atomic unit of the document model.
type Block struct {
	Kind BlockKind

	// Heading fields.
	Level int

	// Heading and Paragraph content.
	Text []Inline

	// List fields.
	Ordered bool
	Start   int
	Items   []ListItem

	// CodeBlock fields.
	Lines    []string
	Language string

	// Quote body. Quotes exist only transiently during adaptation; the
	// adapter splices their body into the parent sequence.
	Body []Block
}

// ListItem is one entry of a list. Term is set only when the enclosing
// list was recognized as a term/definition list; in that case every item
// of the list carries a term.
type ListItem struct {
	Term []Inline
	Body []Block
}

// ManualMeta holds the man page header fields. It is supplied by the
// caller, never derived from document content.
type ManualMeta struct {
	Program       string
	Section       string
	Title         string
	ManualSection string // optional, fourth .TH field
	Source        string // optional, fifth .TH field
}

// NewManualMeta validates and builds manual metadata.
// ManualSection and source may be empty.
func NewManualMeta(program, section, title, manualSection, source string) (ManualMeta, error) {
	if strings.TrimSpace(program) == "" {
		return ManualMeta{}, fmt.Errorf("%w: program name is required", ErrInvalidMeta)
	}
	if strings.TrimSpace(section) == "" {
		return ManualMeta{}, fmt.Errorf("%w: section is required", ErrInvalidMeta)
	}
	if strings.TrimSpace(title) == "" {
		return ManualMeta{}, fmt.Errorf("%w: title is required", ErrInvalidMeta)
	}
	return ManualMeta{
		Program:       program,
		Section:       section,
		Title:         title,
		ManualSection: manualSection,
		Source:        source,
	}, nil
}

// Document is the shared intermediate representation. One Document is
// built per conversion, consumed once by the renderer, then discarded.
type Document struct {
	Meta        ManualMeta
	Name        string
	Description string
	Blocks      []Block
}

// NewHeading builds a heading block, rejecting levels outside 1-6.
func NewHeading(level int, text []Inline) (Block, error) {
	if level < 1 || level > 6 {
		return Block{}, fmt.Errorf("%w: got %d", ErrInvalidHeadingLevel, level)
	}
	return Block{Kind: KindHeading, Level: level, Text: text}, nil
}

// NewParagraph builds a paragraph block.
func NewParagraph(text []Inline) Block {
	return Block{Kind: KindParagraph, Text: text}
}

// NewList builds a list block, rejecting empty item sequences and lists
// that mix term-bearing and term-free items.
func NewList(ordered bool, start int, items []ListItem) (Block, error) {
	if len(items) == 0 {
		return Block{}, ErrEmptyList
	}
	withTerm := 0
	for _, item := range items {
		if item.Term != nil {
			withTerm++
		}
	}
	if withTerm != 0 && withTerm != len(items) {
		return Block{}, ErrMixedListTerms
	}
	return Block{Kind: KindList, Ordered: ordered, Start: start, Items: items}, nil
}

// NewCodeBlock builds a code block, rejecting empty line sequences.
func NewCodeBlock(lines []string, language string) (Block, error) {
	if len(lines) == 0 {
		return Block{}, ErrEmptyCodeBlock
	}
	return Block{Kind: KindCodeBlock, Lines: lines, Language: language}, nil
}

// NewQuote builds a transient quote block.
func NewQuote(body []Block) Block {
	return Block{Kind: KindQuote, Body: body}
}

// inlineText flattens an inline run to plain text. Breaks become
// newlines; emphasis, strong, and code markers are dropped.
func inlineText(inlines []Inline) string {
	var out strings.Builder
	for _, inline := range inlines {
		switch inline.Kind {
		case SpanText, SpanCode:
			out.WriteString(inline.Text)
		case SpanEmphasis, SpanStrong:
			out.WriteString(inlineText(inline.Children))
		case SpanSoftBreak, SpanHardBreak:
			out.WriteByte('\n')
		}
	}
	return out.String()
}
