package section

import (
	"fmt"

	"github.com/dgallion1/docslice/internal/doctree"
)

// Side selects one boundary of a slice.
type Side struct {
	Keywords []string // Alternatives, tried in order
	Level    int      // Heading level searched
	Offset   int      // Index advance applied after the match
}

// Query pairs the start and end boundaries of a section.
type Query struct {
	Start Side
	End   Side

	// NewMatcher builds keyword matchers. Nil means Contains.
	NewMatcher MatcherFactory
}

// RangeResolutionError reports a query that does not resolve to a range.
type RangeResolutionError struct {
	Side   string
	Reason string
}

func (e *RangeResolutionError) Error() string {
	return fmt.Sprintf("resolve %s section: %s", e.Side, e.Reason)
}

type candidate struct {
	title  string
	offset int
}

// Resolve turns a heading forest and a query into the range of content to keep.
// docLength is the document's total content length.
func Resolve(forest []*doctree.HeadingNode, q Query, docLength int) (doctree.SliceRange, error) {
	newMatcher := q.NewMatcher
	if newMatcher == nil {
		newMatcher = Contains
	}

	starts := candidates(forest, q.Start.Level)
	ends := candidates(forest, q.End.Level)

	startIdx, err := match(starts, q.Start, newMatcher, "start")
	if err != nil {
		return doctree.SliceRange{}, err
	}
	endIdx, err := match(ends, q.End, newMatcher, "end")
	if err != nil {
		return doctree.SliceRange{}, err
	}

	startTarget := startIdx + q.Start.Offset
	endTarget := endIdx + q.End.Offset

	if startTarget < 0 || startTarget >= len(starts) {
		return doctree.SliceRange{}, &RangeResolutionError{
			Side:   "start",
			Reason: fmt.Sprintf("target index %d outside %d level-%d headings", startTarget, len(starts), q.Start.Level),
		}
	}
	if endTarget < 0 || endTarget > len(ends) {
		return doctree.SliceRange{}, &RangeResolutionError{
			Side:   "end",
			Reason: fmt.Sprintf("target index %d outside %d level-%d headings", endTarget, len(ends), q.End.Level),
		}
	}

	r := doctree.SliceRange{Start: starts[startTarget].offset, End: docLength}
	if endTarget < len(ends) {
		r.End = ends[endTarget].offset
	}
	if r.End > docLength {
		r.End = docLength
	}
	if r.Start > r.End {
		return doctree.SliceRange{}, &RangeResolutionError{
			Side:   "start",
			Reason: fmt.Sprintf("start %d is after end %d", r.Start, r.End),
		}
	}
	return r, nil
}

func candidates(forest []*doctree.HeadingNode, level int) []candidate {
	nodes := doctree.AtLevel(forest, level)
	out := make([]candidate, len(nodes))
	for i, n := range nodes {
		out[i] = candidate{title: n.Title, offset: n.Offset}
	}
	return out
}

// match applies the first-matching-keyword policy: keywords are tried in
// query order and the first keyword with any hit wins, taking its first hit
// in document order.
func match(cands []candidate, side Side, newMatcher MatcherFactory, name string) (int, error) {
	for _, kw := range side.Keywords {
		if kw == "" {
			continue
		}
		m := newMatcher(kw)
		for i, c := range cands {
			if m.Matches(c.title) {
				return i, nil
			}
		}
	}
	return 0, &RangeResolutionError{
		Side:   name,
		Reason: fmt.Sprintf("no level-%d heading matches %q", side.Level, side.Keywords),
	}
}
