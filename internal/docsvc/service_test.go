package docsvc

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docslice/internal/doctree"
	"github.com/dgallion1/docslice/internal/engine/enginefake"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFake() (*enginefake.Opener, *enginefake.Doc) {
	doc := &enginefake.Doc{
		Records: []doctree.ParagraphRecord{
			{Text: "a", StyleName: "Heading 1", StartOffset: 0, OutlineLevel: 1},
			{Text: "b", StyleName: "Normal", StartOffset: 2, OutlineLevel: doctree.BodyTextLevel},
		},
		Size: 10,
	}
	return &enginefake.Opener{Docs: map[string]*enginefake.Doc{"doc.docx": doc}}, doc
}

func TestService_Lifecycle(t *testing.T) {
	opener, doc := newFake()
	svc := New(opener, quietLogger())

	h, records, err := svc.Open("doc.docx")
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.EqualValues(t, 2, svc.ParagraphsRead())
	assert.Equal(t, 1, svc.OpenCount())

	n, err := svc.Length(h)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	require.NoError(t, svc.DeleteRange(h, doctree.SliceRange{Start: 8, End: 10}))
	assert.Equal(t, []doctree.SliceRange{{Start: 8, End: 10}}, doc.Deletes)

	out := filepath.Join(t.TempDir(), "out.docx")
	require.NoError(t, svc.SaveAs(h, out))
	assert.Equal(t, []string{out}, doc.Saves)

	require.NoError(t, svc.Close(h, true))
	assert.Equal(t, 0, svc.OpenCount())
	assert.Len(t, doc.Saves, 1, "discarding close must not save")

	err = svc.Close(h, true)
	assert.ErrorIs(t, err, ErrUnknownHandle)
}

func TestService_OpenFailureIsEngineSessionError(t *testing.T) {
	opener, _ := newFake()
	opener.OpenErr = errors.New("zip: not a valid zip file")
	svc := New(opener, quietLogger())

	_, _, err := svc.Open("doc.docx")
	var ese *EngineSessionError
	require.ErrorAs(t, err, &ese)
	assert.Equal(t, "open", ese.Op)
	assert.Equal(t, 0, svc.OpenCount())
}

func TestService_ShutdownClosesOrphans(t *testing.T) {
	opener, doc := newFake()
	svc := New(opener, quietLogger())

	h, _, err := svc.Open("doc.docx")
	require.NoError(t, err)

	svc.Shutdown()
	assert.Equal(t, 0, svc.OpenCount())
	assert.Empty(t, doc.Saves, "orphans are discarded, not saved")

	// Second call is a no-op.
	svc.Shutdown()

	_, _, err = svc.Open("doc.docx")
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.ErrorIs(t, svc.DeleteRange(h, doctree.SliceRange{}), ErrSessionClosed)
}

func TestService_SaveFailure(t *testing.T) {
	opener, doc := newFake()
	doc.SaveErr = errors.New("disk full")
	svc := New(opener, quietLogger())

	h, _, err := svc.Open("doc.docx")
	require.NoError(t, err)

	err = svc.SaveAs(h, "x.docx")
	var ese *EngineSessionError
	require.ErrorAs(t, err, &ese)
	assert.Equal(t, "save", ese.Op)
}

func TestService_CloseSavesBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.docx")
	doc := &enginefake.Doc{Size: 10}
	opener := &enginefake.Opener{Docs: map[string]*enginefake.Doc{path: doc}}
	svc := New(opener, quietLogger())

	h, _, err := svc.Open(path)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteRange(h, doctree.SliceRange{Start: 0, End: 4}))
	require.NoError(t, svc.Close(h, false))

	assert.Equal(t, []string{path}, doc.Saves)
	assert.Equal(t, 0, svc.OpenCount())
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sliced:6", string(got))
}

func TestService_CloseSaveBackFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.docx")
	doc := &enginefake.Doc{Size: 10, SaveErr: errors.New("locked")}
	opener := &enginefake.Opener{Docs: map[string]*enginefake.Doc{path: doc}}
	svc := New(opener, quietLogger())

	h, _, err := svc.Open(path)
	require.NoError(t, err)

	err = svc.Close(h, false)
	var ese *EngineSessionError
	require.ErrorAs(t, err, &ese)
	assert.Equal(t, "close", ese.Op)
	assert.Equal(t, path, ese.Path)
	assert.Equal(t, 0, svc.OpenCount(), "handle is released even when the save fails")
}
