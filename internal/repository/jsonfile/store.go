package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"jarvis/internal/domain"
	"jarvis/internal/repository"

	"go.uber.org/zap"
)

// Store implements repository.StateStore on top of a single JSON file.
// Every operation reads the whole document and every write replaces it.
type Store struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

var _ repository.StateStore = (*Store)(nil)

// NewStore creates a new JSON file store
func NewStore(path string, logger *zap.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Load reads the persisted document. A missing or empty file is an empty document.
func (s *Store) Load(ctx context.Context) (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

// Save atomically replaces the persisted document
func (s *Store) Save(ctx context.Context, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(ctx, doc)
}

// GetRecord returns the stored record and whether it existed
func (s *Store) GetRecord(ctx context.Context, userID int64) (domain.UserRecord, bool, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return domain.UserRecord{}, false, err
	}

	rec, ok := doc[userID]
	if !ok {
		return domain.NewUserRecord(), false, nil
	}
	return rec, true, nil
}

// UpdateRecord runs fn on the user's record and persists the result.
// The store lock is held for the whole load, mutate, save cycle.
func (s *Store) UpdateRecord(ctx context.Context, userID int64, fn repository.UpdateFunc) (domain.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return domain.UserRecord{}, err
	}

	current, existed := doc[userID]
	if !existed {
		current = domain.NewUserRecord()
	}

	next := current.Clone()
	if err := fn(&next); err != nil {
		return current, err
	}
	next.Normalize()

	if existed && next.Equal(current) {
		return next, nil
	}

	doc[userID] = next
	if err := s.save(ctx, doc); err != nil {
		return current, err
	}

	return next, nil
}

// Ping checks that the data file's directory is usable
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(s.dir())
	if err != nil {
		return fmt.Errorf("stat data dir: %v: %w", err, domain.ErrPersistence)
	}
	if !info.IsDir() {
		return fmt.Errorf("data dir %s is not a directory: %w", s.dir(), domain.ErrPersistence)
	}
	return nil
}

func (s *Store) load(ctx context.Context) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("Data file does not exist, starting empty", zap.String("path", s.path))
			return domain.Document{}, nil
		}
		return nil, fmt.Errorf("read %s: %v: %w", s.path, err, domain.ErrPersistence)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return domain.Document{}, nil
	}

	doc := domain.Document{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %v: %w", s.path, err, domain.ErrPersistence)
	}
	doc.Normalize()

	return doc, nil
}

func (s *Store) save(ctx context.Context, doc domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc = doc.Clone()
	doc.Normalize()

	// map keys are sorted by encoding/json, so output is stable
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %v: %w", err, domain.ErrPersistence)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir(), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %v: %w", err, domain.ErrPersistence)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %v: %w", err, domain.ErrPersistence)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %v: %w", err, domain.ErrPersistence)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %v: %w", err, domain.ErrPersistence)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %v: %w", s.path, err, domain.ErrPersistence)
	}

	return nil
}

func (s *Store) dir() string {
	return filepath.Dir(s.path)
}
