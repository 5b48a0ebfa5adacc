package section_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docslice/internal/doctree"
	"github.com/dgallion1/docslice/internal/section"
)

func roots(pairs ...any) []*doctree.HeadingNode {
	var out []*doctree.HeadingNode
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, &doctree.HeadingNode{Title: pairs[i].(string), Offset: pairs[i+1].(int), Level: 1})
	}
	return out
}

func side(level, offset int, keywords ...string) section.Side {
	return section.Side{Keywords: keywords, Level: level, Offset: offset}
}

func TestResolve_WorkedExample(t *testing.T) {
	forest := roots("前言", 0, "总论", 50, "建设方案", 120, "附录", 400)
	q := section.Query{Start: side(1, 1, "总论"), End: side(1, 1, "建设方案")}

	r, err := section.Resolve(forest, q, 500)
	require.NoError(t, err)
	assert.Equal(t, doctree.SliceRange{Start: 120, End: 400}, r)
}

func TestResolve_KeywordOrderBeatsDocumentOrder(t *testing.T) {
	forest := roots("x contains B", 0, "y contains A", 10, "z", 20)
	q := section.Query{Start: side(1, 0, "A", "B"), End: side(1, 1, "z")}

	r, err := section.Resolve(forest, q, 30)
	require.NoError(t, err)
	assert.Equal(t, 10, r.Start, "keyword A precedes B so y must win")
}

func TestResolve_FallsBackToLaterKeyword(t *testing.T) {
	forest := roots("intro", 0, "overview", 10, "plan", 20)
	q := section.Query{Start: side(1, 0, "missing", "overview"), End: side(1, 0, "plan")}

	r, err := section.Resolve(forest, q, 30)
	require.NoError(t, err)
	assert.Equal(t, doctree.SliceRange{Start: 10, End: 20}, r)
}

func TestResolve_LastSectionRunsToDocumentEnd(t *testing.T) {
	forest := roots("前言", 0, "总论", 50, "附录", 400)
	q := section.Query{Start: side(1, 1, "前言"), End: side(1, 1, "附录")}

	r, err := section.Resolve(forest, q, 500)
	require.NoError(t, err)
	assert.Equal(t, doctree.SliceRange{Start: 50, End: 500}, r)
}

func TestResolve_Errors(t *testing.T) {
	forest := roots("前言", 0, "总论", 50, "附录", 400)

	tests := []struct {
		name     string
		query    section.Query
		wantSide string
	}{
		{"start keyword missing", section.Query{Start: side(1, 1, "无"), End: side(1, 1, "附录")}, "start"},
		{"end keyword missing", section.Query{Start: side(1, 1, "前言"), End: side(1, 1, "无")}, "end"},
		{"start target past last heading", section.Query{Start: side(1, 1, "附录"), End: side(1, 1, "附录")}, "start"},
		{"end target beyond document end", section.Query{Start: side(1, 1, "前言"), End: side(1, 2, "附录")}, "end"},
		{"negative start target", section.Query{Start: side(1, -1, "前言"), End: side(1, 1, "附录")}, "start"},
		{"start after end", section.Query{Start: side(1, 1, "总论"), End: side(1, 0, "前言")}, "start"},
		{"no headings at level", section.Query{Start: side(2, 1, "前言"), End: side(1, 1, "附录")}, "start"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := section.Resolve(forest, tt.query, 500)
			var re *section.RangeResolutionError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.wantSide, re.Side)
		})
	}
}

func TestResolve_NestedLevels(t *testing.T) {
	forest := []*doctree.HeadingNode{
		{Title: "一", Offset: 0, Level: 1, Children: []*doctree.HeadingNode{
			{Title: "1.1 背景", Offset: 10, Level: 2},
			{Title: "1.2 目标", Offset: 30, Level: 2},
		}},
		{Title: "二", Offset: 60, Level: 1, Children: []*doctree.HeadingNode{
			{Title: "2.1 方案", Offset: 70, Level: 2},
		}},
	}
	q := section.Query{Start: side(2, 0, "目标"), End: side(1, 1, "二")}

	r, err := section.Resolve(forest, q, 100)
	require.NoError(t, err)
	assert.Equal(t, doctree.SliceRange{Start: 30, End: 100}, r)
}

func TestResolve_RangeInvariant(t *testing.T) {
	forest := roots("a", 0, "b", 10, "c", 25, "d", 40)
	const docLength = 50
	titles := []string{"a", "b", "c", "d"}
	for _, s := range titles {
		for _, e := range titles {
			for so := 0; so <= 2; so++ {
				for eo := 0; eo <= 2; eo++ {
					q := section.Query{Start: side(1, so, s), End: side(1, eo, e)}
					r, err := section.Resolve(forest, q, docLength)
					if err != nil {
						continue
					}
					assert.True(t, 0 <= r.Start && r.Start <= r.End && r.End <= docLength,
						"start=%s+%d end=%s+%d gave %+v", s, so, e, eo, r)
				}
			}
		}
	}
}

func TestResolve_PluggableMatcher(t *testing.T) {
	forest := roots("总论", 0, "总论补充", 10, "结论", 20)
	q := section.Query{
		Start:      side(1, 0, "总论补充"),
		End:        side(1, 0, "结论"),
		NewMatcher: section.Exact,
	}
	r, err := section.Resolve(forest, q, 30)
	require.NoError(t, err)
	assert.Equal(t, 10, r.Start)

	q.Start = side(1, 0, "总")
	_, err = section.Resolve(forest, q, 30)
	require.Error(t, err)
}

func TestFactoryByName(t *testing.T) {
	for _, name := range []string{"", "contains", "EXACT", "prefix"} {
		f, err := section.FactoryByName(name)
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}
	_, err := section.FactoryByName("regex")
	assert.Error(t, err)

	p, _ := section.FactoryByName("prefix")
	assert.True(t, p("第一章").Matches(" 第一章 总论"))
	assert.False(t, p("总论").Matches("第一章 总论"))
}
