package engine

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docslice/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXEngine handles .docx files (and .doc files that are really docx).
type DOCXEngine struct{}

func (e *DOCXEngine) Open(path string) (Document, error) {
	// Read fully so no handle on path outlives Open.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}
	// Parse accepts any zip archive.
	if !hasPart(data, documentPart) {
		return nil, fmt.Errorf("parse docx: missing %s", documentPart)
	}

	styles, err := readStyles(data)
	if err != nil {
		// Documents without a readable styles part still expose style ids.
		styles = styleTable{}
	}

	return &docxDocument{doc: doc, styles: styles}, nil
}

type docxDocument struct {
	doc    *docx.Docx
	styles styleTable
}

func (d *docxDocument) items() []interface{} {
	return d.doc.Document.Body.Items
}

func (d *docxDocument) blocks() []block {
	items := d.items()
	out := make([]block, len(items))
	for i, item := range items {
		switch it := item.(type) {
		case *docx.Paragraph:
			// Paragraph text plus its paragraph mark.
			out[i] = block{width: utf8.RuneCountInString(docxParagraphText(it)) + 1}
		case *docx.Table:
			out[i] = block{width: 1}
		default:
			out[i] = block{pinned: true}
		}
	}
	return out
}

func (d *docxDocument) Paragraphs() []doctree.ParagraphRecord {
	items := d.items()
	offs, _ := offsets(d.blocks())

	var records []doctree.ParagraphRecord
	for i, item := range items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		styleID := docxStyleID(para)
		records = append(records, doctree.ParagraphRecord{
			Text:         strings.TrimSpace(docxParagraphText(para)),
			StyleName:    d.styles.name(styleID),
			StartOffset:  offs[i],
			OutlineLevel: d.styles.level(styleID),
		})
	}
	return records
}

func (d *docxDocument) Length() int {
	_, total := offsets(d.blocks())
	return total
}

func (d *docxDocument) DeleteRange(start, end int) error {
	start, end = clampRange(start, end, d.Length())
	if start == end {
		return nil
	}
	items := d.items()
	mask := deletionMask(d.blocks(), start, end)
	kept := make([]interface{}, 0, len(items))
	for i, item := range items {
		if !mask[i] {
			kept = append(kept, item)
		}
	}
	d.doc.Document.Body.Items = kept
	return nil
}

func (d *docxDocument) SaveAs(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := d.doc.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write docx: %w", err)
	}
	return f.Close()
}

func docxStyleID(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return buf.String()
}
