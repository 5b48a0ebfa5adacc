// Package journal persists file lifecycle transitions in a bbolt database,
// one nested bucket per run.
package journal

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var runsBucket = []byte("runs")

// DefaultRun holds entries recorded without a run id.
const DefaultRun = "default"

func runKey(runID string) []byte {
	if runID == "" {
		return []byte(DefaultRun)
	}
	return []byte(runID)
}

// Entry is one recorded transition.
type Entry struct {
	Seq   uint64    `json:"seq"`
	RunID string    `json:"run_id"`
	File  string    `json:"file"`
	From  string    `json:"from"`
	To    string    `json:"to"`
	Error string    `json:"error,omitempty"`
	At    time.Time `json:"at"`
}

type Store struct {
	db *bolt.DB
}

// Open opens or creates the journal database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(runsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create runs bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Record appends e to its run. Seq is assigned by the store. Entries with
// no run id go to DefaultRun.
func (s *Store) Record(e Entry) error {
	if e.RunID == "" {
		e.RunID = DefaultRun
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		run, err := tx.Bucket(runsBucket).CreateBucketIfNotExists(runKey(e.RunID))
		if err != nil {
			return err
		}
		seq, err := run.NextSequence()
		if err != nil {
			return err
		}
		e.Seq = seq
		v, err := json.Marshal(e)
		if err != nil {
			return err
		}
		return run.Put(seqKey(seq), v)
	})
}

// Entries returns the transitions of a run in recording order.
func (s *Store) Entries(runID string) ([]Entry, error) {
	var out []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		run := tx.Bucket(runsBucket).Bucket(runKey(runID))
		if run == nil {
			return nil
		}
		return run.ForEach(func(_, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			out = append(out, e)
			return nil
		})
	})
	return out, err
}

// Runs returns the ids of every recorded run.
func (s *Store) Runs() ([]string, error) {
	var out []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(runsBucket).ForEach(func(k, v []byte) error {
			if v == nil {
				out = append(out, string(k))
			}
			return nil
		})
	})
	return out, err
}

func (s *Store) Close() error {
	return s.db.Close()
}

func seqKey(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}
