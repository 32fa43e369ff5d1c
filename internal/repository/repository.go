package repository

import (
	"context"
	"io"

	"jarvis/internal/domain"
)

// UpdateFunc mutates a user record in place. Returning an error aborts the
// update and nothing is written.
type UpdateFunc func(rec *domain.UserRecord) error

// StateStore defines user state persistence
type StateStore interface {
	Load(ctx context.Context) (domain.Document, error)
	Save(ctx context.Context, doc domain.Document) error
	GetRecord(ctx context.Context, userID int64) (domain.UserRecord, bool, error)
	UpdateRecord(ctx context.Context, userID int64, fn UpdateFunc) (domain.UserRecord, error)
	Ping(ctx context.Context) error
}

// VoiceArchive defines voice clip storage
type VoiceArchive interface {
	Save(ctx context.Context, userID int64, fileID string, r io.Reader) (int, error)
	List(ctx context.Context, userID int64) ([]string, error)
}
