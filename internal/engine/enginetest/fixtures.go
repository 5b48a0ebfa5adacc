// Package enginetest builds document fixtures for tests.
package enginetest

import (
	"os"
	"testing"

	"github.com/fumiama/go-docx"
)

// Para is one fixture paragraph. An empty Style writes a plain paragraph.
type Para struct {
	Text  string
	Style string
}

// H returns a heading paragraph using the built-in HeadingN style id.
func H(level int, text string) Para {
	return Para{Text: text, Style: "Heading" + string(rune('0'+level))}
}

// P returns a body paragraph.
func P(text string) Para {
	return Para{Text: text}
}

// WriteDOCX writes a .docx file containing paras to path.
func WriteDOCX(t testing.TB, path string, paras ...Para) {
	t.Helper()
	w := docx.New().WithDefaultTheme()
	for _, p := range paras {
		para := w.AddParagraph()
		para.AddText(p.Text)
		if p.Style != "" {
			para.Properties = &docx.ParagraphProperties{Style: &docx.Style{Val: p.Style}}
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()
	if _, err := w.WriteTo(f); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

// DOCXTexts returns the paragraph texts of the .docx file at path.
func DOCXTexts(t testing.TB, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	doc, err := docx.Parse(f, int64(len(data)))
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	var out []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		var text string
		for _, child := range para.Children {
			run, ok := child.(*docx.Run)
			if !ok {
				continue
			}
			for _, rc := range run.Children {
				if t, ok := rc.(*docx.Text); ok {
					text += t.Text
				}
			}
		}
		out = append(out, text)
	}
	return out
}
