package engine

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/dgallion1/docslice/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownEngine handles Markdown files. Content positions are byte offsets.
type MarkdownEngine struct{}

func (e *MarkdownEngine) Open(path string) (Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}
	return &markdownDocument{src: src}, nil
}

type markdownDocument struct {
	src []byte
}

func (d *markdownDocument) Paragraphs() []doctree.ParagraphRecord {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(d.src))

	var records []doctree.ParagraphRecord
	last := -1
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		off, ok := blockStart(n, d.src)
		if !ok || off <= last {
			continue
		}
		last = off

		rec := doctree.ParagraphRecord{
			StyleName:    "Normal",
			StartOffset:  off,
			OutlineLevel: doctree.BodyTextLevel,
		}
		if h, ok := n.(*ast.Heading); ok {
			rec.Text = strings.TrimSpace(string(h.Text(d.src)))
			rec.StyleName = fmt.Sprintf("Heading %d", h.Level)
			rec.OutlineLevel = h.Level
		} else {
			rec.Text = extractText(n, d.src)
		}
		records = append(records, rec)
	}
	return records
}

func (d *markdownDocument) Length() int {
	return len(d.src)
}

func (d *markdownDocument) DeleteRange(start, end int) error {
	start, end = clampRange(start, end, len(d.src))
	if start == end {
		return nil
	}
	out := make([]byte, 0, len(d.src)-(end-start))
	out = append(out, d.src[:start]...)
	out = append(out, d.src[end:]...)
	d.src = out
	return nil
}

func (d *markdownDocument) SaveAs(path string) error {
	if err := os.WriteFile(path, d.src, 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// blockStart returns the offset of the line on which a block begins.
func blockStart(n ast.Node, src []byte) (int, bool) {
	for cur := n; cur != nil; cur = cur.FirstChild() {
		if cur.Type() != ast.TypeBlock {
			return 0, false
		}
		if lines := cur.Lines(); lines.Len() > 0 {
			off := lines.At(0).Start
			for off > 0 && src[off-1] != '\n' {
				off--
			}
			return off, true
		}
	}
	return 0, false
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
