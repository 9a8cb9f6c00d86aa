package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/modulehub/internal/model"
)

const moduleColumns = "id, name, description, version, content_type, content_size, created_at, updated_at"

func newMockConnection(t *testing.T) (*Connection, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewConnectionFromDB(db), mock
}

func moduleRows(now time.Time, modules ...model.Module) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "name", "description", "version", "content_type", "content_size", "created_at", "updated_at"})
	for _, m := range modules {
		rows.AddRow(m.ID, m.Name, m.Description, m.Version, m.ContentType, m.ContentSize, now, now)
	}
	return rows
}

func TestTable_Create(t *testing.T) {
	db, mock := newMockConnection(t)
	table := NewModuleTable(db)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO modules (name, description, version, content_type, content_size) VALUES ($1, $2, $3, $4, $5) RETURNING "+moduleColumns).
		WithArgs("core", "desc", "1.0.0", "", int64(0)).
		WillReturnRows(moduleRows(now, model.Module{ID: 7, Name: "core", Description: "desc", Version: "1.0.0"}))

	saved, err := table.Create(context.Background(), model.Module{Name: "core", Description: "desc", Version: "1.0.0"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), saved.ID)
	assert.Equal(t, "core", saved.Name)
	assert.Equal(t, now, saved.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTable_Create_InsertKey(t *testing.T) {
	db, mock := newMockConnection(t)
	table := NewCredentialTable(db)
	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery("INSERT INTO user_credentials (user_id, password_hash) VALUES ($1, $2) RETURNING user_id, password_hash, created_at, updated_at").
		WithArgs(userID, "hash").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "password_hash", "created_at", "updated_at"}).
			AddRow(userID.String(), "hash", now, now))

	saved, err := table.Create(context.Background(), model.Credential{UserID: userID, PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, userID, saved.UserID)
	assert.Equal(t, "hash", saved.PasswordHash)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTable_Create_UniqueViolation(t *testing.T) {
	db, mock := newMockConnection(t)
	table := NewUserTable(db)

	mock.ExpectQuery("INSERT INTO users (email, username, first_name, last_name) VALUES ($1, $2, $3, $4) RETURNING id, email, username, first_name, last_name, created_at, updated_at").
		WithArgs("a@x.com", "", "", "").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := table.Create(context.Background(), model.User{Email: "a@x.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTable_Find(t *testing.T) {
	db, mock := newMockConnection(t)
	table := NewModuleTable(db)
	now := time.Now()

	mock.ExpectQuery("SELECT "+moduleColumns+" FROM modules WHERE name = $1 AND version = $2 ORDER BY id DESC LIMIT $3 OFFSET $4").
		WithArgs("core", "1.0.0", 10, 5).
		WillReturnRows(moduleRows(now,
			model.Module{ID: 2, Name: "core", Version: "1.0.0"},
			model.Module{ID: 1, Name: "core", Version: "1.0.0"},
		))

	got, err := table.Find(context.Background(), model.Filter{
		Where:  model.Where{"version": "1.0.0", "name": "core"},
		Order:  []string{"id desc"},
		Limit:  10,
		Offset: 5,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTable_Find_Empty(t *testing.T) {
	db, mock := newMockConnection(t)
	table := NewModuleTable(db)

	mock.ExpectQuery("SELECT " + moduleColumns + " FROM modules").
		WillReturnRows(moduleRows(time.Now()))

	got, err := table.Find(context.Background(), model.Filter{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTable_Find_InvalidFilter(t *testing.T) {
	db, _ := newMockConnection(t)
	table := NewModuleTable(db)

	tests := []struct {
		name   string
		filter model.Filter
	}{
		{name: "unknown where field", filter: model.Filter{Where: model.Where{"owner": "x"}}},
		{name: "unknown order field", filter: model.Filter{Order: []string{"owner ASC"}}},
		{name: "bad direction", filter: model.Filter{Order: []string{"name SIDEWAYS"}}},
		{name: "too many order terms", filter: model.Filter{Order: []string{"name ASC NULLS"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := table.Find(context.Background(), tt.filter)
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrInvalidInput)
		})
	}
}

func TestTable_FindByID(t *testing.T) {
	db, mock := newMockConnection(t)
	table := NewModuleTable(db)
	now := time.Now()

	mock.ExpectQuery("SELECT " + moduleColumns + " FROM modules WHERE id = $1").
		WithArgs(int64(3)).
		WillReturnRows(moduleRows(now, model.Module{ID: 3, Name: "three"}))
	mock.ExpectQuery("SELECT " + moduleColumns + " FROM modules WHERE id = $1").
		WithArgs(int64(4)).
		WillReturnRows(moduleRows(now))

	got, err := table.FindByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "three", got.Name)

	_, err = table.FindByID(context.Background(), 4)
	assert.ErrorIs(t, err, model.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTable_Count(t *testing.T) {
	db, mock := newMockConnection(t)
	table := NewModuleTable(db)

	mock.ExpectQuery("SELECT COUNT(*) FROM modules WHERE description IS NULL AND version = $1").
		WithArgs("2").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))

	n, err := table.Count(context.Background(), model.Where{"version": "2", "description": nil})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTable_Create_NotNullViolation(t *testing.T) {
	db, mock := newMockConnection(t)
	table := NewUserTable(db)

	mock.ExpectQuery("INSERT INTO users (email, username, first_name, last_name) VALUES ($1, $2, $3, $4) RETURNING id, email, username, first_name, last_name, created_at, updated_at").
		WithArgs("a@x.com", "", "", "").
		WillReturnError(&pgconn.PgError{Code: "23502", ColumnName: "email"})

	_, err := table.Create(context.Background(), model.User{Email: "a@x.com"})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	var inputErr *model.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "required field is missing", inputErr.Msg)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTable_UpdateByID(t *testing.T) {
	db, mock := newMockConnection(t)
	table := NewModuleTable(db)

	mock.ExpectExec("UPDATE modules SET name = $1, version = $2, updated_at = NOW() WHERE id = $3").
		WithArgs("renamed", "2.0.0", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE modules SET name = $1, updated_at = NOW() WHERE id = $2").
		WithArgs("ghost", int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := table.UpdateByID(context.Background(), 1, model.Patch{"version": "2.0.0", "name": "renamed"})
	require.NoError(t, err)

	err = table.UpdateByID(context.Background(), 9, model.Patch{"name": "ghost"})
	assert.ErrorIs(t, err, model.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTable_UpdateByID_ReadOnlyField(t *testing.T) {
	db, mock := newMockConnection(t)
	table := NewModuleTable(db)

	for _, field := range []string{"id", "createdAt", "nope"} {
		err := table.UpdateByID(context.Background(), 1, model.Patch{field: "x"})
		assert.ErrorIs(t, err, model.ErrInvalidInput, field)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTable_UpdateByID_NullValue(t *testing.T) {
	db, mock := newMockConnection(t)
	table := NewModuleTable(db)

	err := table.UpdateByID(context.Background(), 1, model.Patch{"name": nil})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = table.UpdateAll(context.Background(), model.Patch{"description": nil}, nil)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTable_ReplaceByID(t *testing.T) {
	db, mock := newMockConnection(t)
	table := NewModuleTable(db)

	mock.ExpectExec("UPDATE modules SET name = $1, description = $2, version = $3, content_type = $4, content_size = $5, updated_at = NOW() WHERE id = $6").
		WithArgs("n", "d", "v", "text/plain", int64(12), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := table.ReplaceByID(context.Background(), 5, model.Module{Name: "n", Description: "d", Version: "v", ContentType: "text/plain", ContentSize: 12})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTable_DeleteByID(t *testing.T) {
	db, mock := newMockConnection(t)
	table := NewModuleTable(db)

	mock.ExpectExec("DELETE FROM modules WHERE id = $1").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM modules WHERE id = $1").
		WithArgs(int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM modules WHERE id = $1").
		WithArgs(int64(7)).
		WillReturnError(errors.New("connection reset"))

	require.NoError(t, table.DeleteByID(context.Background(), 5))
	assert.ErrorIs(t, table.DeleteByID(context.Background(), 6), model.ErrNotFound)

	err := table.DeleteByID(context.Background(), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to delete from modules")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTable_UpdateAll(t *testing.T) {
	db, mock := newMockConnection(t)
	table := NewModuleTable(db)

	mock.ExpectExec("UPDATE modules SET version = $1, updated_at = NOW() WHERE name = $2").
		WithArgs("3.0.0", "core").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := table.UpdateAll(context.Background(), model.Patch{"version": "3.0.0"}, model.Where{"name": "core"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTable_UpdateAll_EmptyPatchCounts(t *testing.T) {
	db, mock := newMockConnection(t)
	table := NewModuleTable(db)

	mock.ExpectQuery("SELECT COUNT(*) FROM modules").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))

	n, err := table.UpdateAll(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
