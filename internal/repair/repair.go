// Package repair fixes Word files whose extension does not match their
// content: zip-based documents saved as .doc, and legacy binaries saved as
// .docx.
package repair

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docslice/internal/engine"
	"github.com/dgallion1/docslice/internal/fileops"
)

// Action is what Fix did with a file.
type Action string

const (
	ActionRenamed Action = "renamed"
	ActionOK      Action = "ok"
	// ActionReview means the file is a zip archive but not a readable
	// document; it is left alone.
	ActionReview Action = "review"
	// ActionSkipped means the rename target already exists.
	ActionSkipped Action = "skipped"
	ActionError   Action = "error"
)

// Outcome describes one examined file.
type Outcome struct {
	Path    string
	NewPath string
	Action  Action
	Err     error
}

var zipMagic = []byte("PK\x03\x04")

// Fix examines one .doc or .docx file and renames it when its content
// belongs to the other format. Other extensions are reported as ok.
func Fix(path string) Outcome {
	out := Outcome{Path: path, Action: ActionOK}
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".doc":
		if !isDOCX(path) {
			return out
		}
		out.NewPath = path + "x"
	case ".docx":
		if isDOCX(path) {
			return out
		}
		isZip, err := hasZipMagic(path)
		if err != nil {
			out.Action, out.Err = ActionError, err
			return out
		}
		if isZip {
			out.Action = ActionReview
			return out
		}
		out.NewPath = path[:len(path)-1]
	default:
		return out
	}

	if fileops.Exists(out.NewPath) {
		out.Action = ActionSkipped
		return out
	}
	if err := fileops.Move(path, out.NewPath); err != nil {
		out.Action, out.Err = ActionError, err
		return out
	}
	out.Action = ActionRenamed
	return out
}

// Dir runs Fix on every .doc and .docx file directly inside dir.
func Dir(dir string, log *slog.Logger) ([]Outcome, error) {
	files, err := fileops.ListFiles(dir)
	if err != nil {
		return nil, err
	}
	var outcomes []Outcome
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f))
		if ext != ".doc" && ext != ".docx" {
			continue
		}
		o := Fix(f)
		attrs := []any{"file", filepath.Base(f), "action", o.Action}
		if o.NewPath != "" {
			attrs = append(attrs, "new_path", filepath.Base(o.NewPath))
		}
		switch o.Action {
		case ActionError:
			log.Error("extension repair failed", append(attrs, "error", o.Err)...)
		case ActionReview, ActionSkipped:
			log.Warn("extension repair", attrs...)
		default:
			log.Info("extension repair", attrs...)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

func isDOCX(path string) bool {
	_, err := (&engine.DOCXEngine{}).Open(path)
	return err == nil
}

func hasZipMagic(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, &fileops.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()
	head := make([]byte, len(zipMagic))
	if _, err := io.ReadFull(f, head); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, nil
		}
		return false, &fileops.IOError{Op: "read", Path: path, Err: err}
	}
	return bytes.Equal(head, zipMagic), nil
}
