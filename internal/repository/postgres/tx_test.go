package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/modulehub/internal/model"
)

func TestConnection_WithinTx_Commit(t *testing.T) {
	db, mock := newMockConnection(t)
	table := NewModuleTable(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO modules (name, description, version, content_type, content_size) VALUES ($1, $2, $3, $4, $5) RETURNING "+moduleColumns).
		WithArgs("a", "", "", "", int64(0)).
		WillReturnRows(moduleRows(time.Now(), model.Module{ID: 1, Name: "a"}))
	mock.ExpectExec("DELETE FROM modules WHERE id = $1").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := db.WithinTx(context.Background(), func(ctx context.Context) error {
		m, err := table.Create(ctx, model.Module{Name: "a"})
		if err != nil {
			return err
		}
		return db.WithinTx(ctx, func(ctx context.Context) error {
			return table.DeleteByID(ctx, m.ID)
		})
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConnection_WithinTx_Rollback(t *testing.T) {
	db, mock := newMockConnection(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := db.WithinTx(context.Background(), func(context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConnection_WithinTx_BeginError(t *testing.T) {
	db, mock := newMockConnection(t)

	mock.ExpectBegin().WillReturnError(errors.New("no connections"))

	called := false
	err := db.WithinTx(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.Contains(t, err.Error(), "failed to begin transaction")
}

func TestConnection_Ping(t *testing.T) {
	assert.Error(t, (&Connection{}).Ping(context.Background()))

	conn, _ := newMockConnection(t)
	assert.NoError(t, conn.Ping(context.Background()))
}
