package usecase

import (
	"context"
	"errors"
	"time"

	"passwordless-auth/internal/data/entity"
	"passwordless-auth/internal/data/repository"
	"passwordless-auth/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IssuedSession pairs a new session row with the raw token only its holder ever sees.
type IssuedSession struct {
	Token   string
	Session *entity.Session
}

// SessionService manages server-side sessions with sliding expiration.
type SessionService interface {
	Create(ctx context.Context, userID uuid.UUID) (*IssuedSession, error)
	Validate(ctx context.Context, rawToken string) (*entity.Session, error)
	Invalidate(ctx context.Context, sessionID string) error
	InvalidateAll(ctx context.Context, userID uuid.UUID) (int64, error)
	ListActive(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error)
	SweepExpired(ctx context.Context) (int64, error)
	TTL() time.Duration
}

type sessionService struct {
	sessionRepo repository.SessionRepository
	ttl         time.Duration
	renewWindow time.Duration
	log         *zap.Logger
	now         func() time.Time
	newToken    func() (string, error)
}

func NewSessionService(
	sessionRepo repository.SessionRepository,
	config utils.SessionConfig,
	log *zap.Logger,
) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		ttl:         config.TTL(),
		renewWindow: config.RenewWindow(),
		log:         log.With(zap.String("service", "session")),
		now:         time.Now,
		newToken:    utils.NewOpaqueToken,
	}
}

// SessionID derives the storage id of a raw session token.
func SessionID(rawToken string) string {
	return utils.HashSecret(rawToken)
}

func (s *sessionService) TTL() time.Duration {
	return s.ttl
}

func (s *sessionService) Create(ctx context.Context, userID uuid.UUID) (*IssuedSession, error) {
	token, err := s.newToken()
	if err != nil {
		s.log.Error("Failed to generate session token", zap.Error(err))
		return nil, err
	}

	now := s.now().UTC()
	session := &entity.Session{
		ID:        SessionID(token),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, storageError("create session", err)
	}

	s.log.Info("Session created",
		zap.String("user_id", userID.String()),
		zap.Time("expires_at", session.ExpiresAt),
	)

	return &IssuedSession{Token: token, Session: session}, nil
}

// Validate looks the token up on every call. Expired sessions are deleted on
// sight; sessions inside the renewal window get a fresh full TTL before returning.
func (s *sessionService) Validate(ctx context.Context, rawToken string) (*entity.Session, error) {
	if rawToken == "" {
		return nil, ErrInvalidSession
	}

	session, err := s.sessionRepo.FindByID(ctx, SessionID(rawToken))
	if err != nil {
		return nil, storageError("find session", err)
	}
	if session == nil {
		return nil, ErrInvalidSession
	}

	now := s.now().UTC()
	if session.IsExpired(now) {
		if _, err := s.sessionRepo.Delete(ctx, session.ID); err != nil {
			return nil, storageError("delete expired session", err)
		}
		s.log.Debug("Expired session removed", zap.String("user_id", session.UserID.String()))
		return nil, ErrInvalidSession
	}

	if session.NeedsRenewal(now, s.renewWindow) {
		expiresAt := now.Add(s.ttl)
		if err := s.sessionRepo.UpdateExpiry(ctx, session.ID, expiresAt); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// Deleted by a concurrent logout.
				return nil, ErrInvalidSession
			}
			return nil, storageError("extend session", err)
		}
		session.ExpiresAt = expiresAt
		s.log.Debug("Session extended",
			zap.String("user_id", session.UserID.String()),
			zap.Time("expires_at", expiresAt),
		)
	}

	return session, nil
}

// Invalidate deletes one session by its storage id. Unknown ids are a no-op.
func (s *sessionService) Invalidate(ctx context.Context, sessionID string) error {
	if _, err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		return storageError("delete session", err)
	}
	return nil
}

// InvalidateAll deletes every session of the user.
func (s *sessionService) InvalidateAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	deleted, err := s.sessionRepo.DeleteByUserID(ctx, userID)
	if err != nil {
		return 0, storageError("delete user sessions", err)
	}

	s.log.Info("All sessions invalidated",
		zap.String("user_id", userID.String()),
		zap.Int64("deleted", deleted),
	)
	return deleted, nil
}

// ListActive returns the user's sessions that have not expired yet.
func (s *sessionService) ListActive(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error) {
	sessions, err := s.sessionRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, storageError("list sessions", err)
	}

	now := s.now().UTC()
	active := make([]*entity.Session, 0, len(sessions))
	for _, session := range sessions {
		if !session.IsExpired(now) {
			active = append(active, session)
		}
	}

	return active, nil
}

func (s *sessionService) SweepExpired(ctx context.Context) (int64, error) {
	deleted, err := s.sessionRepo.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, storageError("sweep sessions", err)
	}

	s.log.Info("Cleaned up expired sessions", zap.Int64("deleted", deleted))
	return deleted, nil
}
