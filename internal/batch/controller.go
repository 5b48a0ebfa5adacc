package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/docslice/internal/docsvc"
	"github.com/dgallion1/docslice/internal/doctree"
	"github.com/dgallion1/docslice/internal/fileops"
	"github.com/dgallion1/docslice/internal/journal"
	"github.com/dgallion1/docslice/internal/section"
	"github.com/dgallion1/docslice/internal/slice"
)

// SliceSuffix is inserted between the base name and extension of outputs.
const SliceSuffix = "_slice"

// Folders are the directories a run moves files between.
type Folders struct {
	Input     string
	Output    string
	Unsupport string
	Old       string
	Temp      string
}

func (f Folders) all() []string {
	return []string{f.Input, f.Output, f.Unsupport, f.Old, f.Temp}
}

// Options configure a Controller.
type Options struct {
	RunID   string
	Folders Folders
	Query   section.Query
	Styles  doctree.StyleSet
	// Settle is waited after a document is closed and before files move.
	Settle time.Duration
}

// Supporter reports whether a file can be sliced; *engine.Registry satisfies it.
type Supporter interface {
	Supports(path string) bool
}

// Recorder persists transitions; *journal.Store satisfies it.
type Recorder interface {
	Record(e journal.Entry) error
}

// Controller moves every input file through staging, slicing, archiving and
// final placement, one file at a time.
type Controller struct {
	svc      *docsvc.Service
	exec     *slice.Executor
	supports Supporter
	opts     Options
	rec      Recorder
	log      *slog.Logger
	sleep    func(time.Duration)
	progress tracker
}

func NewController(svc *docsvc.Service, supports Supporter, opts Options, log *slog.Logger) *Controller {
	c := &Controller{
		svc:      svc,
		exec:     slice.NewExecutor(svc, log),
		supports: supports,
		opts:     opts,
		log:      log,
		sleep:    time.Sleep,
	}
	c.progress.p.RunID = opts.RunID
	return c
}

// WithRecorder makes the controller persist every transition to r.
func (c *Controller) WithRecorder(r Recorder) *Controller {
	c.rec = r
	return c
}

// Progress returns a snapshot of the run.
func (c *Controller) Progress() Progress {
	p := c.progress.snapshot()
	p.ParagraphsRead = c.svc.ParagraphsRead()
	return p
}

// Run processes every file in the input folder and shuts the document
// session down. Cancelling ctx stops the run between files.
func (c *Controller) Run(ctx context.Context) (Result, error) {
	defer c.svc.Shutdown()

	var result Result
	if err := fileops.EnsureDirs(c.opts.Folders.all()...); err != nil {
		return result, err
	}
	files, err := fileops.ListFiles(c.opts.Folders.Input)
	if err != nil {
		return result, err
	}

	c.progress.update(func(p *Progress) {
		p.FilesTotal = len(files)
		p.StartedAt = time.Now()
	})
	c.log.Info("run started",
		"run_id", c.opts.RunID,
		"files", len(files),
		"start_keywords", c.opts.Query.Start.Keywords,
		"end_keywords", c.opts.Query.End.Keywords,
		"start_offset", c.opts.Query.Start.Offset,
		"end_offset", c.opts.Query.End.Offset,
		"start_level", c.opts.Query.Start.Level,
		"end_level", c.opts.Query.End.Level,
	)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			c.log.Warn("run cancelled", "run_id", c.opts.RunID, "remaining", len(files)-result.Total())
			c.finish(result)
			return result, err
		}

		c.progress.update(func(p *Progress) { p.Current = filepath.Base(path) })
		task := c.Process(path)
		result.add(task.State)
		c.progress.update(func(p *Progress) {
			p.FilesDone++
			p.Counts = result
			p.Current = ""
		})
	}

	c.finish(result)
	return result, nil
}

func (c *Controller) finish(result Result) {
	c.progress.update(func(p *Progress) { p.Finished = true })
	c.log.Info("run complete",
		"run_id", c.opts.RunID,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"errored", result.Errored,
		"unsupported", result.Unsupported,
	)
}

// Process runs one file to a terminal state and returns its task.
func (c *Controller) Process(path string) *FileTask {
	name := filepath.Base(path)
	log := c.log.With("run_id", c.opts.RunID, "file", name)
	task := NewFileTask(path)
	f := c.opts.Folders

	if !c.supports.Supports(path) {
		if err := fileops.Move(path, filepath.Join(f.Unsupport, name)); err != nil {
			c.fail(task, StateErrored, err, log)
			return task
		}
		c.transition(task, StateUnsupported, log)
		return task
	}

	task.StagedPath = filepath.Join(f.Temp, name)
	err := c.stage(task, log)
	if err == nil {
		c.transition(task, StateStaged, log)
		if err = c.slice(task, log); err == nil {
			c.transition(task, StateSliced, log)
		}
	}

	c.sleep(c.opts.Settle)

	// The original is archived whatever happened above.
	archiveErr := fileops.Move(path, filepath.Join(f.Old, name))
	if archiveErr != nil {
		log.Error("archive original failed", "error", archiveErr)
	} else {
		log.Info("original archived", "path", filepath.Join(f.Old, name))
	}

	switch {
	case err == nil:
		c.sleep(c.opts.Settle / 2)
		out := filepath.Join(f.Output, OutputName(name))
		if mvErr := fileops.Move(task.StagedPath, out); mvErr != nil {
			c.evict(task, log)
			c.fail(task, StateErrored, mvErr, log)
			return task
		}
		if archiveErr != nil {
			c.fail(task, StateErrored, archiveErr, log)
			return task
		}
		log.Info("slice placed", "path", out)
		c.transition(task, StateSucceeded, log)

	case IsSliceFailure(err):
		c.sleep(c.opts.Settle / 2)
		if mvErr := fileops.Move(task.StagedPath, filepath.Join(f.Unsupport, name)); mvErr != nil {
			c.evict(task, log)
			c.fail(task, StateErrored, mvErr, log)
			return task
		}
		c.fail(task, StateFailed, err, log)

	default:
		c.evict(task, log)
		c.fail(task, StateErrored, err, log)
	}
	return task
}

// stage copies the input into the staging folder and makes the copy writable.
func (c *Controller) stage(task *FileTask, log *slog.Logger) error {
	if err := fileops.Copy(task.Path, task.StagedPath); err != nil {
		return err
	}
	if err := fileops.MakeWritable(task.StagedPath); err != nil {
		log.Warn("permission repair failed", "error", err)
	}
	return nil
}

// slice trims the staged copy in place. Structure and range errors leave the
// staged copy unchanged.
func (c *Controller) slice(task *FileTask, log *slog.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("slice %s: panic: %v", task.StagedPath, r)
		}
	}()

	h, records, err := c.svc.Open(task.StagedPath)
	if err != nil {
		return err
	}
	log.Info("document opened", "paragraphs", len(records))

	forest, err := doctree.Build(records, c.opts.Styles)
	if err != nil {
		c.discard(h, log)
		return err
	}
	length, err := c.svc.Length(h)
	if err != nil {
		c.discard(h, log)
		return err
	}
	rng, err := section.Resolve(forest, c.opts.Query, length)
	if err != nil {
		c.discard(h, log)
		return err
	}
	log.Info("range resolved", "start", rng.Start, "end", rng.End, "length", length)

	return c.exec.Execute(h, rng, task.StagedPath)
}

func (c *Controller) discard(h docsvc.Handle, log *slog.Logger) {
	if err := c.svc.Close(h, true); err != nil {
		log.Error("close document failed", "error", err)
	}
}

// evict removes a staged copy that has nowhere to go.
func (c *Controller) evict(task *FileTask, log *slog.Logger) {
	if task.StagedPath == "" {
		return
	}
	for _, p := range []string{task.StagedPath, task.StagedPath + slice.TempSuffix} {
		if err := fileops.RemoveIfExists(p); err != nil {
			log.Error("remove staged copy failed", "path", p, "error", err)
		}
	}
}

func (c *Controller) fail(task *FileTask, to State, err error, log *slog.Logger) {
	task.Err = err
	c.transition(task, to, log)
}

func (c *Controller) transition(task *FileTask, to State, log *slog.Logger) {
	from := task.State
	if err := task.Advance(to); err != nil {
		log.Error("state transition rejected", "error", err)
		return
	}

	attrs := []any{"from", from, "to", to}
	if task.Err != nil {
		attrs = append(attrs, "error", task.Err)
	}
	switch to {
	case StateErrored:
		log.Error("file transition", attrs...)
	case StateFailed:
		log.Warn("file transition", attrs...)
	default:
		log.Info("file transition", attrs...)
	}

	if c.rec == nil {
		return
	}
	entry := journal.Entry{
		RunID: c.opts.RunID,
		File:  task.Path,
		From:  string(from),
		To:    string(to),
		At:    task.UpdatedAt,
	}
	if task.Err != nil {
		entry.Error = task.Err.Error()
	}
	if err := c.rec.Record(entry); err != nil {
		log.Warn("journal write failed", "error", err)
	}
}

// OutputName returns "<base>_slice<ext>" for name.
func OutputName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + SliceSuffix + ext
}

// IsSliceFailure reports whether err means the document could not be sliced
// as asked, as opposed to an engine or filesystem failure.
func IsSliceFailure(err error) bool {
	var se *doctree.StructureError
	var re *section.RangeResolutionError
	return errors.As(err, &se) || errors.As(err, &re)
}
