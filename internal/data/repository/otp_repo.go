package repository

import (
	"context"
	"fmt"
	"time"

	"passwordless-auth/internal/data/entity"
	"passwordless-auth/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OTPRepository interface {
	Replace(ctx context.Context, otp *entity.OTP) (int64, error)
	FindByCodeHash(ctx context.Context, codeHash string) (*entity.OTP, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type otpRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOTPRepository(db database.PgxIface, log *zap.Logger) OTPRepository {
	return &otpRepository{
		db:  db,
		log: log.With(zap.String("repository", "otp")),
	}
}

// Replace makes otp the only code of its user. The owning user row is locked
// for the duration of the transaction so concurrent issues for the same user
// run one after another and never leave two live codes behind.
// It returns the number of previous codes removed.
func (r *otpRepository) Replace(ctx context.Context, otp *entity.OTP) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin OTP transaction",
			zap.Error(err),
			zap.String("user_id", otp.UserID.String()),
		)
		return 0, fmt.Errorf("begin OTP transaction: %w", err)
	}

	var lockedID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, otp.UserID).Scan(&lockedID)
	if err != nil {
		_ = tx.Rollback(ctx)
		if database.IsNotFound(err) {
			return 0, fmt.Errorf("lock user %s: %w", otp.UserID.String(), ErrNotFound)
		}
		r.log.Error("Failed to lock user for OTP",
			zap.Error(err),
			zap.String("user_id", otp.UserID.String()),
		)
		return 0, fmt.Errorf("lock user %s: %w", otp.UserID.String(), err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM otp_codes WHERE user_id = $1`, otp.UserID)
	if err != nil {
		_ = tx.Rollback(ctx)
		r.log.Error("Failed to delete previous OTPs",
			zap.Error(err),
			zap.String("user_id", otp.UserID.String()),
		)
		return 0, fmt.Errorf("delete previous OTPs for %s: %w", otp.UserID.String(), err)
	}

	query := `
		INSERT INTO otp_codes (id, user_id, code_hash, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = tx.Exec(ctx, query,
		otp.ID,
		otp.UserID,
		otp.CodeHash,
		otp.CreatedAt,
		otp.ExpiresAt,
	)
	if err != nil {
		_ = tx.Rollback(ctx)
		if !database.IsUniqueViolation(err) {
			r.log.Error("Failed to create OTP",
				zap.Error(err),
				zap.String("user_id", otp.UserID.String()),
			)
		}
		return 0, fmt.Errorf("create OTP for %s: %w", otp.UserID.String(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit OTP transaction",
			zap.Error(err),
			zap.String("user_id", otp.UserID.String()),
		)
		return 0, fmt.Errorf("commit OTP for %s: %w", otp.UserID.String(), err)
	}

	return result.RowsAffected(), nil
}

func (r *otpRepository) FindByCodeHash(ctx context.Context, codeHash string) (*entity.OTP, error) {
	query := `
		SELECT id, user_id, code_hash, created_at, expires_at
		FROM otp_codes
		WHERE code_hash = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var otp entity.OTP
	err := r.db.QueryRow(ctx, query, codeHash).Scan(
		&otp.ID,
		&otp.UserID,
		&otp.CodeHash,
		&otp.CreatedAt,
		&otp.ExpiresAt,
	)

	if database.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find OTP", zap.Error(err))
		return nil, fmt.Errorf("find OTP by hash: %w", err)
	}

	return &otp, nil
}

func (r *otpRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM otp_codes WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete OTP",
			zap.Error(err),
			zap.String("otp_id", id.String()),
		)
		return fmt.Errorf("delete OTP %s: %w", id.String(), err)
	}

	return nil
}

func (r *otpRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM otp_codes WHERE user_id = $1`, userID)
	if err != nil {
		r.log.Error("Failed to delete user OTPs",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("delete OTPs for %s: %w", userID.String(), err)
	}

	return result.RowsAffected(), nil
}

func (r *otpRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM otp_codes WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count user OTPs",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count OTPs for %s: %w", userID.String(), err)
	}

	return count, nil
}

// DeleteExpired removes every code whose expiry is before now, regardless of owner.
func (r *otpRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM otp_codes WHERE expires_at < $1`, now)
	if err != nil {
		r.log.Error("Failed to delete expired OTPs", zap.Error(err))
		return 0, fmt.Errorf("delete expired OTPs: %w", err)
	}

	return result.RowsAffected(), nil
}
