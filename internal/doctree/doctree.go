package doctree

// BodyTextLevel is the outline level reported for paragraphs outside the outline.
const BodyTextLevel = 10

// ParagraphRecord is one paragraph as reported by a document engine.
type ParagraphRecord struct {
	Text         string // Paragraph text, trimmed
	StyleName    string // Style display name (falls back to style id)
	StartOffset  int    // Content position of the paragraph start
	OutlineLevel int    // 1-9 for outline paragraphs, BodyTextLevel otherwise
}

// HeadingNode is a heading in the document outline.
type HeadingNode struct {
	Title    string
	Offset   int
	Level    int
	Children []*HeadingNode // Subheadings in document order
}

// SliceRange is a half-open span of content positions to keep.
type SliceRange struct {
	Start int
	End   int
}

// Len returns the number of content positions covered by the range.
func (r SliceRange) Len() int {
	return r.End - r.Start
}
