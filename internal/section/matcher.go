package section

import (
	"fmt"
	"strings"
)

// Matcher decides whether a heading title satisfies a keyword.
type Matcher interface {
	Matches(title string) bool
}

// MatcherFunc adapts a function to Matcher.
type MatcherFunc func(title string) bool

func (f MatcherFunc) Matches(title string) bool { return f(title) }

// MatcherFactory builds a Matcher for one keyword.
type MatcherFactory func(keyword string) Matcher

// Contains matches titles containing the keyword.
func Contains(keyword string) Matcher {
	return MatcherFunc(func(title string) bool { return strings.Contains(title, keyword) })
}

// Exact matches titles equal to the keyword after trimming spaces.
func Exact(keyword string) Matcher {
	return MatcherFunc(func(title string) bool { return strings.TrimSpace(title) == keyword })
}

// Prefix matches titles starting with the keyword.
func Prefix(keyword string) Matcher {
	return MatcherFunc(func(title string) bool { return strings.HasPrefix(strings.TrimSpace(title), keyword) })
}

// FactoryByName returns the matcher factory for a configured strategy name.
func FactoryByName(name string) (MatcherFactory, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "contains":
		return Contains, nil
	case "exact":
		return Exact, nil
	case "prefix":
		return Prefix, nil
	default:
		return nil, fmt.Errorf("unknown match strategy: %s", name)
	}
}
