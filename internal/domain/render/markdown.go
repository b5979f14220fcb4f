// Package render turns API results into display forms: a block model for
// narrative markdown, sanitized HTML, terminal output, and structured views
// of analysis results.
package render

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Kind identifies a rendered block.
type Kind string

const (
	KindHeading   Kind = "heading"
	KindParagraph Kind = "paragraph"
	KindList      Kind = "list"
	KindCode      Kind = "code"
	KindQuote     Kind = "quote"
	KindTable     Kind = "table"
	KindRule      Kind = "rule"
)

// Block is one element of a rendered narrative. Only the fields relevant to
// Kind are set.
type Block struct {
	Kind    Kind
	Level   int
	Text    string
	Items   []string
	Ordered bool
	Rows    [][]string
	Lang    string
}

// Link is a hyperlink found in the narrative. Links always open in a new context.
type Link struct {
	Text string
	URL  string
}

// Document is narrative markdown reduced to a fixed set of block kinds.
// Raw HTML is dropped.
type Document struct {
	Blocks []Block
	Links  []Link
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown parses src into a Document.
func Markdown(src string) Document {
	source := []byte(src)
	root := md.Parser().Parse(text.NewReader(source))
	w := &walker{src: source}
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if b, ok := w.block(n); ok {
			w.doc.Blocks = append(w.doc.Blocks, b)
		}
	}
	return w.doc
}

type walker struct {
	src []byte
	doc Document
}

func (w *walker) block(n ast.Node) (Block, bool) {
	switch node := n.(type) {
	case *ast.Heading:
		return Block{Kind: KindHeading, Level: node.Level, Text: w.inline(node)}, true
	case *ast.Paragraph, *ast.TextBlock:
		t := w.inline(node)
		if t == "" {
			return Block{}, false
		}
		return Block{Kind: KindParagraph, Text: t}, true
	case *ast.List:
		return Block{Kind: KindList, Ordered: node.IsOrdered(), Items: w.items(node, 0)}, true
	case *ast.FencedCodeBlock:
		return Block{Kind: KindCode, Lang: string(node.Language(w.src)), Text: w.lines(node)}, true
	case *ast.CodeBlock:
		return Block{Kind: KindCode, Text: w.lines(node)}, true
	case *ast.Blockquote:
		var parts []string
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			if b, ok := w.block(c); ok && b.Text != "" {
				parts = append(parts, b.Text)
			}
		}
		return Block{Kind: KindQuote, Text: strings.Join(parts, "\n")}, true
	case *ast.ThematicBreak:
		return Block{Kind: KindRule}, true
	case *extast.Table:
		var rows [][]string
		for r := node.FirstChild(); r != nil; r = r.NextSibling() {
			var cells []string
			for c := r.FirstChild(); c != nil; c = c.NextSibling() {
				cells = append(cells, w.inline(c))
			}
			rows = append(rows, cells)
		}
		return Block{Kind: KindTable, Rows: rows}, true
	}
	// HTML blocks and anything unknown are not rendered.
	return Block{}, false
}

// items flattens a list; nested items are indented two spaces per level.
func (w *walker) items(list *ast.List, depth int) []string {
	var out []string
	indent := strings.Repeat("  ", depth)
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		var parts []string
		var nested []string
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				nested = append(nested, w.items(sub, depth+1)...)
				continue
			}
			if t := w.inline(c); t != "" {
				parts = append(parts, t)
			}
		}
		out = append(out, indent+strings.Join(parts, " "))
		out = append(out, nested...)
	}
	return out
}

func (w *walker) lines(n ast.Node) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(w.src))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (w *walker) inline(n ast.Node) string {
	var sb strings.Builder
	w.collect(n, &sb)
	return strings.TrimSpace(sb.String())
}

func (w *walker) collect(n ast.Node, sb *strings.Builder) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.CodeSpan:
			for t := node.FirstChild(); t != nil; t = t.NextSibling() {
				if txt, ok := t.(*ast.Text); ok {
					sb.Write(txt.Segment.Value(w.src))
				}
			}
		case *ast.Text:
			sb.Write(decode(node.Segment.Value(w.src)))
			switch {
			case node.HardLineBreak():
				sb.WriteByte('\n')
			case node.SoftLineBreak():
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(node.Value)
		case *ast.RawHTML:
			// dropped
		case *ast.AutoLink:
			url := string(node.URL(w.src))
			label := string(node.Label(w.src))
			sb.WriteString(label)
			w.doc.Links = append(w.doc.Links, Link{Text: label, URL: url})
		case *ast.Link:
			var label strings.Builder
			w.collect(node, &label)
			sb.WriteString(label.String())
			w.doc.Links = append(w.doc.Links, Link{Text: label.String(), URL: string(node.Destination)})
		default:
			w.collect(c, sb)
		}
	}
}

// decode resolves backslash escapes and character references in inline text.
func decode(b []byte) []byte {
	return util.ResolveNumericReferences(util.ResolveEntityNames(util.UnescapePunctuations(b)))
}

// Text renders the document as plain text with no markdown markers.
func (d Document) Text() string {
	var parts []string
	for _, b := range d.Blocks {
		switch b.Kind {
		case KindHeading, KindParagraph, KindCode:
			parts = append(parts, b.Text)
		case KindQuote:
			parts = append(parts, "“"+b.Text+"”")
		case KindList:
			items := make([]string, len(b.Items))
			n := 0
			for i, it := range b.Items {
				trimmed := strings.TrimLeft(it, " ")
				indent := it[:len(it)-len(trimmed)]
				marker := "•"
				if b.Ordered && indent == "" {
					n++
					marker = strconv.Itoa(n) + "."
				}
				items[i] = indent + marker + " " + trimmed
			}
			parts = append(parts, strings.Join(items, "\n"))
		case KindTable:
			rows := make([]string, len(b.Rows))
			for i, r := range b.Rows {
				rows[i] = strings.Join(r, " | ")
			}
			parts = append(parts, strings.Join(rows, "\n"))
		case KindRule:
			parts = append(parts, "────")
		}
	}
	return strings.Join(parts, "\n\n")
}

// Headings returns the heading texts in order.
func (d Document) Headings() []string {
	var out []string
	for _, b := range d.Blocks {
		if b.Kind == KindHeading {
			out = append(out, b.Text)
		}
	}
	return out
}
