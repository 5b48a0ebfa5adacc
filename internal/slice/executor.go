package slice

import (
	"log/slog"

	"github.com/dgallion1/docslice/internal/docsvc"
	"github.com/dgallion1/docslice/internal/doctree"
	"github.com/dgallion1/docslice/internal/fileops"
)

// TempSuffix is appended to the target path while the trimmed copy is written.
const TempSuffix = ".tmp"

// Executor trims open documents to a range and persists the result.
type Executor struct {
	svc *docsvc.Service
	log *slog.Logger
}

func NewExecutor(svc *docsvc.Service, log *slog.Logger) *Executor {
	return &Executor{svc: svc, log: log}
}

// Execute keeps only r of the document open under h and replaces target
// with the result. The handle is closed on every path. On failure target is
// left untouched.
func (e *Executor) Execute(h docsvc.Handle, r doctree.SliceRange, target string) error {
	log := e.log.With("target", target)

	length, err := e.svc.Length(h)
	if err != nil {
		e.discard(h, log)
		return err
	}
	r = Clamp(r, length)

	// Tail first: deleting trailing content never shifts r.Start.
	log.Info("slicing", "start", r.Start, "end", r.End, "length", length)
	if err := e.svc.DeleteRange(h, doctree.SliceRange{Start: r.End, End: length}); err != nil {
		e.discard(h, log)
		return err
	}
	if err := e.svc.DeleteRange(h, doctree.SliceRange{Start: 0, End: r.Start}); err != nil {
		e.discard(h, log)
		return err
	}

	tmp := target + TempSuffix
	if err := e.svc.SaveAs(h, tmp); err != nil {
		e.discard(h, log)
		e.removeTemp(tmp, log)
		return err
	}
	log.Info("temp file saved", "path", tmp)

	if err := e.svc.Close(h, true); err != nil {
		e.removeTemp(tmp, log)
		return err
	}
	if err := fileops.Replace(tmp, target); err != nil {
		e.removeTemp(tmp, log)
		return err
	}
	log.Info("slice saved")
	return nil
}

// Clamp bounds r to [0, length] and keeps Start <= End.
func Clamp(r doctree.SliceRange, length int) doctree.SliceRange {
	if r.End > length {
		r.End = length
	}
	if r.Start < 0 {
		r.Start = 0
	}
	if r.Start > r.End {
		r.Start = r.End
	}
	return r
}

func (e *Executor) discard(h docsvc.Handle, log *slog.Logger) {
	if err := e.svc.Close(h, true); err != nil {
		log.Error("close document failed", "error", err)
	}
}

func (e *Executor) removeTemp(tmp string, log *slog.Logger) {
	if err := fileops.RemoveIfExists(tmp); err != nil {
		log.Warn("remove temp file failed", "path", tmp, "error", err)
	}
}
