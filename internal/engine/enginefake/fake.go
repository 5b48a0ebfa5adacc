// Package enginefake provides in-memory engine documents for tests.
package enginefake

import (
	"fmt"
	"os"

	"github.com/dgallion1/docslice/internal/doctree"
	"github.com/dgallion1/docslice/internal/engine"
)

// Doc is an in-memory engine.Document that records the calls it receives.
type Doc struct {
	Records []doctree.ParagraphRecord
	Size    int

	Deletes []doctree.SliceRange
	Saves   []string

	DeleteErr error
	SaveErr   error
}

func (d *Doc) Paragraphs() []doctree.ParagraphRecord { return d.Records }

func (d *Doc) Length() int { return d.Size }

func (d *Doc) DeleteRange(start, end int) error {
	if d.DeleteErr != nil {
		return d.DeleteErr
	}
	d.Deletes = append(d.Deletes, doctree.SliceRange{Start: start, End: end})
	if end > start {
		d.Size -= end - start
	}
	return nil
}

// SaveAs writes a small marker file so filesystem steps after a save can run.
func (d *Doc) SaveAs(path string) error {
	if d.SaveErr != nil {
		return d.SaveErr
	}
	d.Saves = append(d.Saves, path)
	return os.WriteFile(path, []byte(fmt.Sprintf("sliced:%d", d.Size)), 0o644)
}

// Opener serves Docs by path.
type Opener struct {
	Docs    map[string]*Doc
	OpenErr error
	Opened  []string
}

func (o *Opener) Open(path string) (engine.Document, error) {
	o.Opened = append(o.Opened, path)
	if o.OpenErr != nil {
		return nil, o.OpenErr
	}
	d, ok := o.Docs[path]
	if !ok {
		return nil, fmt.Errorf("no document for %s", path)
	}
	return d, nil
}
