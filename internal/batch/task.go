package batch

import (
	"fmt"
	"sync"
	"time"
)

// State is the lifecycle state of a FileTask.
type State string

const (
	StateDiscovered  State = "discovered"
	StateStaged      State = "staged"
	StateSliced      State = "sliced"
	StateSucceeded   State = "succeeded"
	StateFailed      State = "failed"
	StateErrored     State = "errored"
	StateUnsupported State = "unsupported"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateErrored, StateUnsupported:
		return true
	}
	return false
}

// allowed lists the legal successors of each state. States only move forward.
var allowed = map[State][]State{
	StateDiscovered: {StateStaged, StateUnsupported, StateErrored},
	StateStaged:     {StateSliced, StateFailed, StateErrored},
	StateSliced:     {StateSucceeded, StateErrored},
}

// FileTask tracks one input file through a run.
type FileTask struct {
	Path       string
	State      State
	StagedPath string
	Err        error
	UpdatedAt  time.Time
}

func NewFileTask(path string) *FileTask {
	return &FileTask{Path: path, State: StateDiscovered, UpdatedAt: time.Now()}
}

// Advance moves the task to next, rejecting backward or skipped transitions.
func (t *FileTask) Advance(next State) error {
	for _, s := range allowed[t.State] {
		if s == next {
			t.State = next
			t.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("invalid transition %s -> %s", t.State, next)
}

// Result counts files per terminal state.
type Result struct {
	Succeeded   int `json:"succeeded"`
	Failed      int `json:"failed"`
	Errored     int `json:"errored"`
	Unsupported int `json:"unsupported"`
}

func (r *Result) add(s State) {
	switch s {
	case StateSucceeded:
		r.Succeeded++
	case StateFailed:
		r.Failed++
	case StateErrored:
		r.Errored++
	case StateUnsupported:
		r.Unsupported++
	}
}

// Total returns the number of files counted.
func (r Result) Total() int {
	return r.Succeeded + r.Failed + r.Errored + r.Unsupported
}

// Progress is a point-in-time view of a run.
type Progress struct {
	RunID          string    `json:"run_id"`
	FilesTotal     int       `json:"files_total"`
	FilesDone      int       `json:"files_done"`
	Current        string    `json:"current,omitempty"`
	ParagraphsRead int64     `json:"paragraphs_read"`
	Counts         Result    `json:"counts"`
	StartedAt      time.Time `json:"started_at"`
	Finished       bool      `json:"finished"`
}

// tracker holds the live Progress behind a mutex.
type tracker struct {
	mu sync.Mutex
	p  Progress
}

func (t *tracker) update(fn func(p *Progress)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.p)
}

func (t *tracker) snapshot() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.p
}
