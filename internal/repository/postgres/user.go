package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"jarvis/internal/domain"
	"jarvis/internal/repository"

	"github.com/jmoiron/sqlx"
)

const (
	selectAllQuery = `
		SELECT user_id, menu, notes
		FROM user_records
		ORDER BY user_id
	`
	selectOneQuery = `
		SELECT user_id, menu, notes
		FROM user_records
		WHERE user_id = $1
	`
	selectForUpdateQuery = `
		SELECT user_id, menu, notes
		FROM user_records
		WHERE user_id = $1
		FOR UPDATE
	`
	upsertQuery = `
		INSERT INTO user_records (user_id, menu, notes, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET menu = EXCLUDED.menu, notes = EXCLUDED.notes, updated_at = NOW()
	`
	deleteAllQuery = `DELETE FROM user_records`
)

// userRow is a user_records row
type userRow struct {
	UserID int64  `db:"user_id"`
	Menu   string `db:"menu"`
	Notes  []byte `db:"notes"`
}

func (r userRow) record() (domain.UserRecord, error) {
	rec := domain.UserRecord{Menu: domain.ParseMenuState(r.Menu)}
	if len(r.Notes) > 0 {
		if err := json.Unmarshal(r.Notes, &rec.Notes); err != nil {
			return domain.UserRecord{}, fmt.Errorf("decode notes of user %d: %w", r.UserID, err)
		}
	}
	rec.Normalize()
	return rec, nil
}

// UserRepo implements repository.StateStore with one row per user
type UserRepo struct {
	db *sqlx.DB
}

var _ repository.StateStore = (*UserRepo)(nil)

// NewUserRepo creates a new user state repository
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Load returns every stored record
func (r *UserRepo) Load(ctx context.Context) (domain.Document, error) {
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, selectAllQuery); err != nil {
		return nil, persistenceError("select records", err)
	}

	doc := make(domain.Document, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, persistenceError("load records", err)
		}
		doc[row.UserID] = rec
	}

	return doc, nil
}

// Save replaces the table contents with doc in a single transaction
func (r *UserRepo) Save(ctx context.Context, doc domain.Document) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return persistenceError("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteAllQuery); err != nil {
		return persistenceError("clear records", err)
	}

	ids := make([]int64, 0, len(doc))
	for id := range doc {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if err := upsert(ctx, tx, id, doc[id]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return persistenceError("commit", err)
	}
	return nil
}

// GetRecord returns the stored record and whether it existed
func (r *UserRepo) GetRecord(ctx context.Context, userID int64) (domain.UserRecord, bool, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, selectOneQuery, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewUserRecord(), false, nil
	}
	if err != nil {
		return domain.UserRecord{}, false, persistenceError("select record", err)
	}

	rec, err := row.record()
	if err != nil {
		return domain.UserRecord{}, false, persistenceError("load record", err)
	}
	return rec, true, nil
}

// UpdateRecord locks the user's row, applies fn and writes the result
func (r *UserRepo) UpdateRecord(ctx context.Context, userID int64, fn repository.UpdateFunc) (domain.UserRecord, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.UserRecord{}, persistenceError("begin transaction", err)
	}
	defer tx.Rollback()

	current := domain.NewUserRecord()
	existed := true

	var row userRow
	err = tx.GetContext(ctx, &row, selectForUpdateQuery, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		existed = false
	case err != nil:
		return domain.UserRecord{}, persistenceError("lock record", err)
	default:
		if current, err = row.record(); err != nil {
			return domain.UserRecord{}, persistenceError("load record", err)
		}
	}

	next := current.Clone()
	if err := fn(&next); err != nil {
		return current, err
	}
	next.Normalize()

	if !existed || !next.Equal(current) {
		if err := upsert(ctx, tx, userID, next); err != nil {
			return current, err
		}
	}

	if err := tx.Commit(); err != nil {
		return current, persistenceError("commit", err)
	}
	return next, nil
}

// Ping checks the database connection
func (r *UserRepo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return persistenceError("ping", err)
	}
	return nil
}

func upsert(ctx context.Context, tx *sqlx.Tx, userID int64, rec domain.UserRecord) error {
	rec.Normalize()
	notes, err := json.Marshal(rec.Notes)
	if err != nil {
		return persistenceError("encode notes", err)
	}

	if _, err := tx.ExecContext(ctx, upsertQuery, userID, rec.Menu.String(), string(notes)); err != nil {
		return persistenceError("upsert record", err)
	}
	return nil
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, domain.ErrPersistence)
}
