package engine

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/antchfx/xmlquery"

	"github.com/dgallion1/docslice/internal/doctree"
)

const (
	documentPart = "word/document.xml"
	stylesPart   = "word/styles.xml"
)

// hasPart reports whether the docx archive in data contains name.
func hasPart(data []byte, name string) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if f.Name == name {
			return true
		}
	}
	return false
}

type styleInfo struct {
	name    string
	basedOn string
	outline int // outlineLvl + 1, 0 if unset
}

// styleTable maps style ids to their definitions in styles.xml.
type styleTable map[string]styleInfo

func readStyles(data []byte) (styleTable, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}
	f, err := zr.Open(stylesPart)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", stylesPart, err)
	}
	defer f.Close()

	root, err := xmlquery.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", stylesPart, err)
	}

	table := styleTable{}
	for _, s := range xmlquery.Find(root, "//*[local-name()='style']") {
		id := attrLocal(s, "styleId")
		if id == "" {
			continue
		}
		info := styleInfo{}
		if n := xmlquery.FindOne(s, "*[local-name()='name']"); n != nil {
			info.name = attrLocal(n, "val")
		}
		if n := xmlquery.FindOne(s, "*[local-name()='basedOn']"); n != nil {
			info.basedOn = attrLocal(n, "val")
		}
		if n := xmlquery.FindOne(s, "*[local-name()='pPr']/*[local-name()='outlineLvl']"); n != nil {
			if lvl, err := strconv.Atoi(attrLocal(n, "val")); err == nil {
				info.outline = lvl + 1
			}
		}
		table[id] = info
	}
	return table, nil
}

// attrLocal returns the value of the attribute with the given local name,
// ignoring its namespace prefix.
func attrLocal(n *xmlquery.Node, local string) string {
	for _, a := range n.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// name returns the display name of a style, falling back to its id.
func (t styleTable) name(id string) string {
	if info, ok := t[id]; ok && info.name != "" {
		return info.name
	}
	return id
}

// level resolves the outline level of a style: the nearest outlineLvl along
// the basedOn chain, then a trailing digit in the style name or id.
func (t styleTable) level(id string) int {
	if id == "" {
		return doctree.BodyTextLevel
	}
	cur := id
	for depth := 0; cur != "" && depth < 16; depth++ {
		info, ok := t[cur]
		if !ok {
			break
		}
		if info.outline > 0 {
			return clampLevel(info.outline)
		}
		cur = info.basedOn
	}
	if lvl := trailingLevel(t.name(id)); lvl > 0 {
		return lvl
	}
	if lvl := trailingLevel(id); lvl > 0 {
		return lvl
	}
	return doctree.BodyTextLevel
}

func clampLevel(lvl int) int {
	if lvl < 1 || lvl >= doctree.BodyTextLevel {
		return doctree.BodyTextLevel
	}
	return lvl
}

// trailingLevel parses "heading 2", "Heading2" or "标题 3" into 2 or 3.
func trailingLevel(s string) int {
	s = strings.TrimSpace(s)
	i := len(s)
	for i > 0 && unicode.IsDigit(rune(s[i-1])) {
		i--
	}
	if i == len(s) {
		return 0
	}
	lvl, err := strconv.Atoi(s[i:])
	if err != nil || lvl < 1 || lvl > 9 {
		return 0
	}
	return lvl
}
