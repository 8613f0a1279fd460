package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wanjalab/pesaflow/pkg/domain"
	"github.com/wanjalab/pesaflow/pkg/dto"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	dialector := postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestSessionRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository{db: db}

	create := dto.SessionCreate{
		ID:         uuid.NewString(),
		OwnerPhone: "254712345678",
		Kind:       "receive",
		CreatedAt:  time.Now(),
		ExpiresAt:  time.Now().Add(5 * time.Minute),
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "qr_sessions" (.+) VALUES (.+)`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), create))

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "qr_sessions" (.+) VALUES (.+)`).
		WillReturnError(errors.New("create error"))
	mock.ExpectRollback()

	require.Error(t, repo.Create(context.Background(), create))
}

func TestSessionRepository_Get(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository{db: db}
	id := uuid.NewString()
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "qr_sessions" WHERE id = (.+)`).
		WithArgs(id, 1).
		WillReturnRows(
			sqlmock.NewRows([]string{"id", "owner_phone", "amount", "kind", "created_at", "expires_at", "used_at"}).
				AddRow(id, "254712345678", nil, "send", now, now.Add(5*time.Minute), nil),
		)

	read, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, read.ID)
	assert.Equal(t, "send", read.Kind)
	assert.Nil(t, read.UsedAt)
}

func TestSessionRepository_Get_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository{db: db}
	id := uuid.NewString()

	mock.ExpectQuery(`SELECT \* FROM "qr_sessions" WHERE id = (.+)`).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Get(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionRepository_MarkUsed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository{db: db}
	id := uuid.NewString()
	usedAt := time.Now()

	// The conditional UPDATE hits an eligible row.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "qr_sessions" SET "used_at"=(.+) WHERE id = (.+) AND used_at IS NULL AND expires_at > (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ok, err := repo.MarkUsed(context.Background(), id, usedAt)
	require.NoError(t, err)
	assert.True(t, ok)

	// Already used or expired: zero rows, no error.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "qr_sessions" SET "used_at"=(.+) WHERE id = (.+) AND used_at IS NULL AND expires_at > (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ok, err = repo.MarkUsed(context.Background(), id, usedAt)
	require.NoError(t, err)
	assert.False(t, ok)
}
