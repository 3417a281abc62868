package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"passwordless-auth/internal/data/entity"
	"passwordless-auth/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	user := &entity.User{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now().UTC()},
		Email:      "a@example.com",
	}

	t.Run("inserts", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(user.ID, user.Email, user.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, NewUserRepository(mock, zap.NewNop()).Create(ctx, user))
	})

	t.Run("duplicate email stays detectable", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(user.ID, user.Email, user.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := NewUserRepository(mock, zap.NewNop()).Create(ctx, user)
		require.Error(t, err)
		assert.True(t, database.IsUniqueViolation(err))
	})
}

func TestUserRepository_FindByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock := newMock(t)
		id := uuid.New()
		created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		mock.ExpectQuery(`SELECT id, email, created_at\s+FROM users\s+WHERE email = \$1`).
			WithArgs("a@example.com").
			WillReturnRows(pgxmock.NewRows([]string{"id", "email", "created_at"}).
				AddRow(id, "a@example.com", created))

		user, err := NewUserRepository(mock, zap.NewNop()).FindByEmail(ctx, "a@example.com")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, created, user.CreatedAt)
	})

	t.Run("missing is nil without error", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM users`).
			WithArgs("nobody@example.com").
			WillReturnRows(pgxmock.NewRows([]string{"id", "email", "created_at"}))

		user, err := NewUserRepository(mock, zap.NewNop()).FindByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("driver error is wrapped", func(t *testing.T) {
		mock := newMock(t)
		boom := errors.New("connection reset")
		mock.ExpectQuery(`FROM users`).
			WithArgs("a@example.com").
			WillReturnError(boom)

		_, err := NewUserRepository(mock, zap.NewNop()).FindByEmail(ctx, "a@example.com")
		assert.ErrorIs(t, err, boom)
	})
}

func TestUserRepository_FindByID(t *testing.T) {
	mock := newMock(t)
	id := uuid.New()
	mock.ExpectQuery(`WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "created_at"}).
			AddRow(id, "a@example.com", time.Now().UTC()))

	user, err := NewUserRepository(mock, zap.NewNop()).FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email)
}
