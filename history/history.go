// Package history keeps the JSON log of processed uploads.
package history

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
)

// Entry is one processed upload.
type Entry struct {
	Timestamp string `json:"timestamp"`
	Filename  string `json:"filename"`
	Result    string `json:"result"`
}

type fileShape struct {
	History []Entry `json:"history"`
}

// Store appends to and lists a history file. It serializes access
// within one process; the file itself is the unit of persistence.
type Store struct {
	mu     sync.Mutex
	path   string
	clk    clock.Clock
	logger golog.Logger
}

// NewStore returns a store backed by the JSON file at path. The file
// appears on first append. A nil clk falls back to the wall clock.
func NewStore(path string, clk clock.Clock, logger golog.Logger) *Store {
	if clk == nil {
		clk = clock.New()
	}
	return &Store{path: path, clk: clk, logger: logger}
}

// Append records a processed upload under today's date.
func (s *Store) Append(filename, result string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		// one corrupt write must not brick every future upload
		s.logger.Errorw("history file unreadable, starting fresh", "path", s.path, "error", err)
		entries = nil
	}
	entries = append(entries, Entry{
		Timestamp: s.clk.Now().Format("2006-01-02"),
		Filename:  filename,
		Result:    result,
	})
	data, err := json.MarshalIndent(fileShape{History: entries}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding history")
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return errors.Wrap(err, "writing history")
	}
	return nil
}

// List returns all recorded entries, oldest first. A missing file is an
// empty history.
func (s *Store) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading history")
	}
	var shape fileShape
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, errors.Wrapf(err, "parsing history at %q", s.path)
	}
	if shape.History == nil {
		shape.History = []Entry{}
	}
	return shape.History, nil
}
