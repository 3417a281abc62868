package repository

import (
	"context"
	"testing"
	"time"

	"passwordless-auth/internal/data/entity"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var sessionColumns = []string{"id", "user_id", "created_at", "expires_at"}

func newTestSession() *entity.Session {
	now := time.Now().UTC()
	return &entity.Session{
		ID:        "4b227777d4dd1fc61c6f884f48641d02b4d121d3fd328cb08b5531fcacdabf8a",
		UserID:    uuid.New(),
		CreatedAt: now,
		ExpiresAt: now.Add(30 * 24 * time.Hour),
	}
}

func TestSessionRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	session := newTestSession()

	mock.ExpectExec(`INSERT INTO sessions`).
		WithArgs(session.ID, session.UserID, session.CreatedAt, session.ExpiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`FROM sessions\s+WHERE id = \$1`).
		WithArgs(session.ID).
		WillReturnRows(pgxmock.NewRows(sessionColumns).
			AddRow(session.ID, session.UserID, session.CreatedAt, session.ExpiresAt))
	mock.ExpectQuery(`FROM sessions\s+WHERE id = \$1`).
		WithArgs("unknown").
		WillReturnRows(pgxmock.NewRows(sessionColumns))

	repo := NewSessionRepository(mock, zap.NewNop())
	require.NoError(t, repo.Create(ctx, session))

	got, err := repo.FindByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session, got)

	missing, err := repo.FindByID(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSessionRepository_FindByUserID(t *testing.T) {
	mock := newMock(t)
	a, b := newTestSession(), newTestSession()
	b.ID = "other"
	b.UserID = a.UserID

	mock.ExpectQuery(`FROM sessions\s+WHERE user_id = \$1`).
		WithArgs(a.UserID).
		WillReturnRows(pgxmock.NewRows(sessionColumns).
			AddRow(a.ID, a.UserID, a.CreatedAt, a.ExpiresAt).
			AddRow(b.ID, b.UserID, b.CreatedAt, b.ExpiresAt))

	sessions, err := NewSessionRepository(mock, zap.NewNop()).FindByUserID(context.Background(), a.UserID)
	require.NoError(t, err)
	assert.Equal(t, []*entity.Session{a, b}, sessions)
}

func TestSessionRepository_UpdateExpiry(t *testing.T) {
	ctx := context.Background()
	expiresAt := time.Now().Add(time.Hour)

	t.Run("updates", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`UPDATE sessions SET expires_at = \$2 WHERE id = \$1`).
			WithArgs("sid", expiresAt).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, NewSessionRepository(mock, zap.NewNop()).UpdateExpiry(ctx, "sid", expiresAt))
	})

	t.Run("vanished session", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`UPDATE sessions`).
			WithArgs("sid", expiresAt).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := NewSessionRepository(mock, zap.NewNop()).UpdateExpiry(ctx, "sid", expiresAt)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSessionRepository_Deletes(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	mock := newMock(t)

	mock.ExpectExec(`DELETE FROM sessions WHERE id = \$1`).
		WithArgs("sid").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM sessions WHERE user_id = \$1`).
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec(`DELETE FROM sessions WHERE expires_at <= \$1`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	repo := NewSessionRepository(mock, zap.NewNop())

	n, err := repo.Delete(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = repo.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
