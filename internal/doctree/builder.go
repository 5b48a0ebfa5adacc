package doctree

import "fmt"

// StructureError reports a paragraph sequence that cannot form a heading forest.
type StructureError struct {
	Offset int
	Reason string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("heading structure at offset %d: %s", e.Offset, e.Reason)
}

// Headings returns the records whose style is a heading style and whose
// outline level is within 1-9, in document order.
func Headings(records []ParagraphRecord, styles StyleSet) []ParagraphRecord {
	var out []ParagraphRecord
	for _, r := range records {
		if r.OutlineLevel < 1 || r.OutlineLevel >= BodyTextLevel {
			continue
		}
		if styles.IsHeading(r.StyleName) {
			out = append(out, r)
		}
	}
	return out
}

// Build turns an ordered paragraph sequence into a forest of level-1 roots.
//
// A non-level-1 heading is attached along the right spine of the latest
// root: descend into the last child while that child is shallower than the
// new heading, then append. A heading that skips levels is attached to the
// nearest shallower node on that spine.
func Build(records []ParagraphRecord, styles StyleSet) ([]*HeadingNode, error) {
	headings := Headings(records, styles)
	if len(headings) == 0 {
		return nil, &StructureError{Reason: "no headings found"}
	}

	var forest []*HeadingNode
	// spine holds the path from the current root to its deepest last child.
	var spine []*HeadingNode

	for _, h := range headings {
		node := &HeadingNode{Title: h.Text, Offset: h.StartOffset, Level: h.OutlineLevel}

		if h.OutlineLevel == 1 {
			forest = append(forest, node)
			spine = append(spine[:0], node)
			continue
		}
		if len(forest) == 0 {
			return nil, &StructureError{
				Offset: h.StartOffset,
				Reason: fmt.Sprintf("first heading %q is level %d, want level 1", h.Text, h.OutlineLevel),
			}
		}

		// Pop back to the deepest ancestor shallower than the new node.
		for len(spine) > 1 && spine[len(spine)-1].Level >= node.Level {
			spine = spine[:len(spine)-1]
		}
		parent := spine[len(spine)-1]
		parent.Children = append(parent.Children, node)
		spine = append(spine, node)
	}

	return forest, nil
}

// Flatten returns every node of the forest in document order.
func Flatten(forest []*HeadingNode) []*HeadingNode {
	var out []*HeadingNode
	stack := make([]*HeadingNode, 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, forest[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return out
}

// AtLevel returns the nodes of the given level in document order.
func AtLevel(forest []*HeadingNode, level int) []*HeadingNode {
	var out []*HeadingNode
	for _, n := range Flatten(forest) {
		if n.Level == level {
			out = append(out, n)
		}
	}
	return out
}
