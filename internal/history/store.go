// Package history persists run outcomes as compressed JSON files with
// bounded retention.
package history

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/gauntlet-dev/gauntlet/internal/models"
)

const fileSuffix = ".json.gz"

// timestampLayout orders files lexically by time.
const timestampLayout = "20060102T150405.000000000"

// Store writes one file per run under dir and keeps at most retention
// files, oldest pruned first. Zero retention disables pruning.
type Store struct {
	dir       string
	retention int

	mu sync.Mutex
}

// NewStore creates a store rooted at dir. The directory is created on
// first save.
func NewStore(dir string, retention int) *Store {
	return &Store{dir: dir, retention: retention}
}

// Save persists the outcome and returns the file path written.
func (s *Store) Save(outcome *models.RunOutcome) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating history dir: %w", err)
	}

	name := outcome.Timestamp.UTC().Format(timestampLayout) + fileSuffix
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating history file: %w", err)
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outcome); err != nil {
		return "", fmt.Errorf("encoding outcome: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("flushing history file: %w", err)
	}

	s.prune()
	return path, nil
}

// Entry describes one stored run.
type Entry struct {
	Path      string
	Timestamp time.Time
}

// List returns stored runs, newest first.
func (s *Store) List() ([]Entry, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), fileSuffix) {
			continue
		}
		stamp := strings.TrimSuffix(f.Name(), fileSuffix)
		ts, err := time.Parse(timestampLayout, stamp)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Path: filepath.Join(s.dir, f.Name()), Timestamp: ts})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Timestamp.After(entries[j].Timestamp) })
	return entries, nil
}

// Load reads one stored outcome.
func (s *Store) Load(path string) (*models.RunOutcome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer zr.Close()

	var outcome models.RunOutcome
	if err := json.NewDecoder(zr).Decode(&outcome); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &outcome, nil
}

// Latest returns the newest stored outcome, or nil when the store is
// empty.
func (s *Store) Latest() (*models.RunOutcome, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return s.Load(entries[0].Path)
}

// prune removes the oldest files beyond the retention limit. Callers
// hold the store lock.
func (s *Store) prune() {
	if s.retention <= 0 {
		return
	}
	entries, err := s.List()
	if err != nil {
		slog.Warn("could not list history for pruning", "error", err)
		return
	}
	for _, e := range entries[min(s.retention, len(entries)):] {
		if err := os.Remove(e.Path); err != nil {
			slog.Warn("could not prune history file", "path", e.Path, "error", err)
		}
	}
}
