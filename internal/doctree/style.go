package doctree

import "strings"

// DefaultHeadingStyles are the style-name prefixes recognized as headings.
var DefaultHeadingStyles = []string{"Heading", "标题"}

// StyleSet decides whether a paragraph style marks a heading.
type StyleSet struct {
	prefixes []string
}

// NewStyleSet builds a StyleSet from style-name prefixes. Matching is
// case-insensitive. An empty list falls back to DefaultHeadingStyles.
func NewStyleSet(prefixes ...string) StyleSet {
	var s StyleSet
	for _, p := range prefixes {
		p = strings.TrimSpace(p)
		if p != "" {
			s.prefixes = append(s.prefixes, strings.ToLower(p))
		}
	}
	if len(s.prefixes) == 0 {
		return NewStyleSet(DefaultHeadingStyles...)
	}
	return s
}

// IsHeading reports whether styleName starts with one of the prefixes.
func (s StyleSet) IsHeading(styleName string) bool {
	name := strings.ToLower(strings.TrimSpace(styleName))
	for _, p := range s.prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
