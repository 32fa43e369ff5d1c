package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"jarvis/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var recordColumns = []string{"user_id", "menu", "notes"}

func newMockRepo(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewUserRepo(sqlx.NewDb(db, "postgres")), mock
}

func q(query string) string {
	return regexp.QuoteMeta(query)
}

func TestUserRepo_Load(t *testing.T) {
	tests := []struct {
		name          string
		rows          *sqlmock.Rows
		mockError     error
		expected      domain.Document
		expectedError bool
	}{
		{
			name: "records with defaults",
			rows: sqlmock.NewRows(recordColumns).
				AddRow(1, "notes", []byte(`["a","b"]`)).
				AddRow(2, "bogus", []byte(`[]`)).
				AddRow(3, "weather", nil),
			expected: domain.Document{
				1: {Menu: domain.MenuNotes, Notes: []string{"a", "b"}},
				2: {Menu: domain.MenuMain, Notes: []string{}},
				3: {Menu: domain.MenuWeather, Notes: []string{}},
			},
		},
		{
			name:     "empty table",
			rows:     sqlmock.NewRows(recordColumns),
			expected: domain.Document{},
		},
		{
			name:          "query error",
			mockError:     errors.New("connection refused"),
			expectedError: true,
		},
		{
			name:          "corrupt notes",
			rows:          sqlmock.NewRows(recordColumns).AddRow(1, "main", []byte(`{`)),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)

			if tt.mockError != nil {
				mock.ExpectQuery(q(selectAllQuery)).WillReturnError(tt.mockError)
			} else {
				mock.ExpectQuery(q(selectAllQuery)).WillReturnRows(tt.rows)
			}

			doc, err := repo.Load(context.Background())

			if tt.expectedError {
				assert.ErrorIs(t, err, domain.ErrPersistence)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, doc)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepo_Save(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(q(deleteAllQuery)).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(q(upsertQuery)).
		WithArgs(int64(1), "main", "[]").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(upsertQuery)).
		WithArgs(int64(9), "notes", `["buy milk"]`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Save(context.Background(), domain.Document{
		9: {Menu: domain.MenuNotes, Notes: []string{"buy milk"}},
		1: domain.NewUserRecord(),
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Save_ExecError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(q(deleteAllQuery)).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Save(context.Background(), domain.Document{1: domain.NewUserRecord()})

	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetRecord(t *testing.T) {
	tests := []struct {
		name          string
		rows          *sqlmock.Rows
		mockError     error
		expected      domain.UserRecord
		expectedFound bool
		expectedError bool
	}{
		{
			name:          "existing user",
			rows:          sqlmock.NewRows(recordColumns).AddRow(5, "convert", []byte(`["x"]`)),
			expected:      domain.UserRecord{Menu: domain.MenuConvert, Notes: []string{"x"}},
			expectedFound: true,
		},
		{
			name:      "unknown user",
			mockError: sql.ErrNoRows,
			expected:  domain.NewUserRecord(),
		},
		{
			name:          "query error",
			mockError:     errors.New("timeout"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)

			expectation := mock.ExpectQuery(q(selectOneQuery)).WithArgs(int64(5))
			if tt.mockError != nil {
				expectation.WillReturnError(tt.mockError)
			} else {
				expectation.WillReturnRows(tt.rows)
			}

			rec, found, err := repo.GetRecord(context.Background(), 5)

			if tt.expectedError {
				assert.ErrorIs(t, err, domain.ErrPersistence)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedFound, found)
				assert.Equal(t, tt.expected, rec)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepo_UpdateRecord(t *testing.T) {
	appendNote := func(rec *domain.UserRecord) error {
		rec.AppendNote("buy milk")
		return nil
	}
	noop := func(*domain.UserRecord) error { return nil }

	t.Run("first contact inserts defaults", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(q(selectForUpdateQuery)).WithArgs(int64(42)).WillReturnError(sql.ErrNoRows)
		mock.ExpectExec(q(upsertQuery)).
			WithArgs(int64(42), "main", "[]").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		rec, err := repo.UpdateRecord(context.Background(), 42, noop)

		require.NoError(t, err)
		assert.Equal(t, domain.NewUserRecord(), rec)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("existing record is updated", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(q(selectForUpdateQuery)).WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(recordColumns).AddRow(7, "notes", []byte(`[]`)))
		mock.ExpectExec(q(upsertQuery)).
			WithArgs(int64(7), "notes", `["buy milk"]`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		rec, err := repo.UpdateRecord(context.Background(), 7, appendNote)

		require.NoError(t, err)
		assert.Equal(t, domain.UserRecord{Menu: domain.MenuNotes, Notes: []string{"buy milk"}}, rec)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unchanged record skips write", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(q(selectForUpdateQuery)).WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(recordColumns).AddRow(7, "main", []byte(`["a"]`)))
		mock.ExpectCommit()

		rec, err := repo.UpdateRecord(context.Background(), 7, noop)

		require.NoError(t, err)
		assert.Equal(t, domain.UserRecord{Menu: domain.MenuMain, Notes: []string{"a"}}, rec)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("mutation error rolls back", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		boom := errors.New("boom")

		mock.ExpectBegin()
		mock.ExpectQuery(q(selectForUpdateQuery)).WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(recordColumns).AddRow(7, "notes", []byte(`["a"]`)))
		mock.ExpectRollback()

		rec, err := repo.UpdateRecord(context.Background(), 7, func(*domain.UserRecord) error { return boom })

		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, domain.ErrPersistence)
		assert.Equal(t, []string{"a"}, rec.Notes)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("upsert error", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(q(selectForUpdateQuery)).WithArgs(int64(7)).WillReturnError(sql.ErrNoRows)
		mock.ExpectExec(q(upsertQuery)).WillReturnError(errors.New("constraint"))
		mock.ExpectRollback()

		_, err := repo.UpdateRecord(context.Background(), 7, appendNote)

		assert.ErrorIs(t, err, domain.ErrPersistence)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin error", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

		_, err := repo.UpdateRecord(context.Background(), 7, appendNote)

		assert.ErrorIs(t, err, domain.ErrPersistence)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepo_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(sqlx.NewDb(db, "postgres"))

	mock.ExpectPing()
	assert.NoError(t, repo.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("down"))
	assert.ErrorIs(t, repo.Ping(context.Background()), domain.ErrPersistence)

	assert.NoError(t, mock.ExpectationsWereMet())
}
