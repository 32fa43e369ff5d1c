package testutil

import (
	"context"
	"sync"

	"jarvis/internal/domain"
	"jarvis/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockStateStore is a mock for repository.StateStore. UpdateRecord applies
// the mutation to the record returned by the expectation.
type MockStateStore struct {
	mock.Mock
}

func (m *MockStateStore) Load(ctx context.Context) (domain.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Document), args.Error(1)
}

func (m *MockStateStore) Save(ctx context.Context, doc domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockStateStore) GetRecord(ctx context.Context, userID int64) (domain.UserRecord, bool, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.UserRecord), args.Bool(1), args.Error(2)
}

func (m *MockStateStore) UpdateRecord(ctx context.Context, userID int64, fn repository.UpdateFunc) (domain.UserRecord, error) {
	args := m.Called(ctx, userID)
	current := args.Get(0).(domain.UserRecord)
	if err := args.Error(1); err != nil {
		return current, err
	}

	next := current.Clone()
	if err := fn(&next); err != nil {
		return current, err
	}
	return next, nil
}

func (m *MockStateStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MemoryStore is an in-memory repository.StateStore
type MemoryStore struct {
	mu  sync.Mutex
	doc domain.Document
}

var _ repository.StateStore = (*MemoryStore)(nil)

// NewMemoryStore creates a store seeded with doc
func NewMemoryStore(doc domain.Document) *MemoryStore {
	if doc == nil {
		doc = domain.Document{}
	}
	return &MemoryStore{doc: doc}
}

func (s *MemoryStore) Load(context.Context) (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(domain.Document, len(s.doc))
	for id, rec := range s.doc {
		out[id] = rec.Clone()
	}
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = make(domain.Document, len(doc))
	for id, rec := range doc {
		s.doc[id] = rec.Clone()
	}
	return nil
}

func (s *MemoryStore) GetRecord(_ context.Context, userID int64) (domain.UserRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.doc[userID]
	if !ok {
		return domain.NewUserRecord(), false, nil
	}
	return rec.Clone(), true, nil
}

func (s *MemoryStore) UpdateRecord(_ context.Context, userID int64, fn repository.UpdateFunc) (domain.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.doc[userID]
	if !ok {
		current = domain.NewUserRecord()
	}

	next := current.Clone()
	if err := fn(&next); err != nil {
		return current, err
	}
	next.Normalize()
	s.doc[userID] = next
	return next.Clone(), nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// Record returns the stored record for assertions
func (s *MemoryStore) Record(userID int64) (domain.UserRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.doc[userID]
	return rec.Clone(), ok
}
