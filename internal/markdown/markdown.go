// Package markdown reduces a markdown document to the speakable prose
// inside it, so whole documents can be piped into synthesis.
package markdown

import (
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// Speakable extracts the prose of a markdown document: headings,
// paragraphs, list items, block quotes and link labels. Code, raw HTML,
// images and bare URLs are dropped. Block boundaries become sentence
// breaks so downstream chunking splits where a reader would pause.
func Speakable(source string) string {
	src := []byte(source)
	doc := goldmark.New().Parser().Parse(gmtext.NewReader(src))

	var buf strings.Builder
	walk(doc, src, &buf)

	return strings.Join(strings.Fields(buf.String()), " ")
}

func walk(node ast.Node, source []byte, buf *strings.Builder) {
	switch n := node.(type) {
	case *ast.CodeBlock, *ast.FencedCodeBlock, *ast.HTMLBlock:
		// Nothing in a code or HTML block reads well aloud.
		return

	case *ast.RawHTML, *ast.Image, *ast.AutoLink:
		return

	case *ast.Text:
		buf.Write(n.Segment.Value(source))
		if n.SoftLineBreak() || n.HardLineBreak() {
			buf.WriteByte(' ')
		}

	case *ast.CodeSpan:
		// Inline code is usually a command or identifier; speak it bare.
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return

	case *ast.Heading:
		walkChildren(n, source, buf)
		sentenceBreak(buf)
		return

	case *ast.Paragraph:
		walkChildren(n, source, buf)
		sentenceBreak(buf)
		return

	case *ast.ListItem:
		walkChildren(n, source, buf)
		sentenceBreak(buf)
		return
	}

	// Links, emphasis, lists and quotes unwrap to their children.
	walkChildren(node, source, buf)
}

func walkChildren(node ast.Node, source []byte, buf *strings.Builder) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		walk(c, source, buf)
	}
}

// sentenceBreak closes the current block with a period unless it
// already ends in terminal punctuation.
func sentenceBreak(buf *strings.Builder) {
	content := strings.TrimRight(buf.String(), " \t\n")
	if content == "" {
		return
	}
	switch last, _ := utf8.DecodeLastRuneInString(content); last {
	case '.', '!', '?', ':', ';', '।':
	default:
		content += "."
	}
	buf.Reset()
	buf.WriteString(content)
	buf.WriteByte(' ')
}
