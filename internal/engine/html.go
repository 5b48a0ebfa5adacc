package engine

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docslice/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLEngine handles HTML files. Blocks are the leaf-level children of
// <body>: container elements such as <div> or <section> are descended into,
// everything else (headings, paragraphs, lists, tables, text) is one block.
type HTMLEngine struct{}

func (e *HTMLEngine) Open(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open html: %w", err)
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	body := findBody(doc)
	if body == nil {
		return nil, fmt.Errorf("parse html: no body element")
	}
	return &htmlDocument{doc: doc, body: body}, nil
}

type htmlDocument struct {
	doc  *html.Node
	body *html.Node
}

// containers are descended into instead of being treated as one block.
var containers = map[string]bool{
	"div":     true,
	"section": true,
	"article": true,
	"main":    true,
	"aside":   true,
	"header":  true,
	"footer":  true,
	"nav":     true,
}

// children returns the blocks of the body in document order.
func (d *htmlDocument) children() []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(parent *html.Node) {
		for c := parent.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && containers[c.Data] {
				walk(c)
				continue
			}
			out = append(out, c)
		}
	}
	walk(d.body)
	return out
}

func (d *htmlDocument) blocks(nodes []*html.Node) []block {
	out := make([]block, len(nodes))
	for i, n := range nodes {
		switch n.Type {
		case html.ElementNode:
			out[i] = block{width: utf8.RuneCountInString(textContent(n)) + 1}
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				out[i] = block{width: utf8.RuneCountInString(t) + 1}
			}
		}
	}
	return out
}

func (d *htmlDocument) Paragraphs() []doctree.ParagraphRecord {
	nodes := d.children()
	offs, _ := offsets(d.blocks(nodes))

	var records []doctree.ParagraphRecord
	for i, n := range nodes {
		if n.Type != html.ElementNode {
			continue
		}
		rec := doctree.ParagraphRecord{
			Text:         textContent(n),
			StyleName:    "Normal",
			StartOffset:  offs[i],
			OutlineLevel: doctree.BodyTextLevel,
		}
		if level := headingLevel(n.Data); level > 0 {
			rec.StyleName = fmt.Sprintf("Heading %d", level)
			rec.OutlineLevel = level
		}
		records = append(records, rec)
	}
	return records
}

func (d *htmlDocument) Length() int {
	_, total := offsets(d.blocks(d.children()))
	return total
}

func (d *htmlDocument) DeleteRange(start, end int) error {
	nodes := d.children()
	blocks := d.blocks(nodes)
	_, total := offsets(blocks)
	start, end = clampRange(start, end, total)
	if start == end {
		return nil
	}
	mask := deletionMask(blocks, start, end)
	for i, n := range nodes {
		if mask[i] {
			n.Parent.RemoveChild(n)
		}
	}
	return nil
}

func (d *htmlDocument) SaveAs(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := html.Render(f, d.doc); err != nil {
		f.Close()
		return fmt.Errorf("render html: %w", err)
	}
	return f.Close()
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
