package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"passwordless-auth/internal/data/entity"
	"passwordless-auth/internal/data/repository"
	"passwordless-auth/pkg/mailer"
	"passwordless-auth/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// memStore backs the in-memory repositories. Setting err makes every call fail.
type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]entity.User
	otps     map[uuid.UUID]entity.OTP
	sessions map[string]entity.Session
	err      error
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uuid.UUID]entity.User),
		otps:     make(map[uuid.UUID]entity.OTP),
		sessions: make(map[string]entity.Session),
	}
}

func (m *memStore) otpCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.otps)
}

func (m *memStore) session(id string) (entity.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

var errUniqueViolation = &pgconn.PgError{Code: "23505"}

type memUserRepo struct{ *memStore }

func (r memUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("create user: %w", errUniqueViolation)
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

type memOTPRepo struct{ *memStore }

func (r memOTPRepo) Replace(_ context.Context, otp *entity.OTP) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	if _, ok := r.users[otp.UserID]; !ok {
		return 0, fmt.Errorf("lock user: %w", repository.ErrNotFound)
	}
	for _, o := range r.otps {
		if o.CodeHash == otp.CodeHash && o.UserID != otp.UserID {
			return 0, fmt.Errorf("create OTP: %w", errUniqueViolation)
		}
	}
	var replaced int64
	for id, o := range r.otps {
		if o.UserID == otp.UserID {
			delete(r.otps, id)
			replaced++
		}
	}
	r.otps[otp.ID] = *otp
	return replaced, nil
}

func (r memOTPRepo) FindByCodeHash(_ context.Context, codeHash string) (*entity.OTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, o := range r.otps {
		if o.CodeHash == codeHash {
			return &o, nil
		}
	}
	return nil, nil
}

func (r memOTPRepo) DeleteByID(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	delete(r.otps, id)
	return nil
}

func (r memOTPRepo) DeleteByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	var n int64
	for id, o := range r.otps {
		if o.UserID == userID {
			delete(r.otps, id)
			n++
		}
	}
	return n, nil
}

func (r memOTPRepo) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	var n int64
	for _, o := range r.otps {
		if o.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r memOTPRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	var n int64
	for id, o := range r.otps {
		if o.ExpiresAt.Before(now) {
			delete(r.otps, id)
			n++
		}
	}
	return n, nil
}

type memSessionRepo struct{ *memStore }

func (r memSessionRepo) Create(_ context.Context, session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sessions[session.ID] = *session
	return nil
}

func (r memSessionRepo) FindByID(_ context.Context, id string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r memSessionRepo) FindByUserID(_ context.Context, userID uuid.UUID) ([]*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []*entity.Session
	for _, s := range r.sessions {
		if s.UserID == userID {
			s := s
			out = append(out, &s)
		}
	}
	return out, nil
}

func (r memSessionRepo) UpdateExpiry(_ context.Context, id string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	s, ok := r.sessions[id]
	if !ok {
		return fmt.Errorf("extend session: %w", repository.ErrNotFound)
	}
	s.ExpiresAt = expiresAt
	r.sessions[id] = s
	return nil
}

func (r memSessionRepo) Delete(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	if _, ok := r.sessions[id]; !ok {
		return 0, nil
	}
	delete(r.sessions, id)
	return 1, nil
}

func (r memSessionRepo) DeleteByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	var n int64
	for id, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r memSessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	var n int64
	for id, s := range r.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// outbox records every message handed to the mailer.
type outbox struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (o *outbox) Send(_ context.Context, msg mailer.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, msg)
	return nil
}

func (o *outbox) last() mailer.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sent[len(o.sent)-1]
}

type testEnv struct {
	store    *memStore
	clock    *fakeClock
	mail     *outbox
	users    *userService
	otps     *otpService
	sessions *sessionService
	auth     AuthService
}

var (
	testOTPConfig     = utils.OTPConfig{ExpiryMinutes: 10, Length: 6}
	testSessionConfig = utils.SessionConfig{TTLDays: 30, RenewWindowDays: 15}
)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemStore()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	mail := &outbox{}
	log := zap.NewNop()

	users := NewUserService(memUserRepo{store}, log).(*userService)
	users.now = clock.Now
	otps := NewOTPService(memOTPRepo{store}, memUserRepo{store}, testOTPConfig, log).(*otpService)
	otps.now = clock.Now
	sessions := NewSessionService(memSessionRepo{store}, testSessionConfig, log).(*sessionService)
	sessions.now = clock.Now

	return &testEnv{
		store:    store,
		clock:    clock,
		mail:     mail,
		users:    users,
		otps:     otps,
		sessions: sessions,
		auth:     NewAuthService(users, otps, sessions, memUserRepo{store}, mail, log),
	}
}

func (e *testEnv) mustUser(t *testing.T, email string) *entity.User {
	t.Helper()
	res, err := e.users.FindOrCreate(context.Background(), email)
	if err != nil {
		t.Fatalf("find or create %s: %v", email, err)
	}
	return res.User
}

// codeSequence returns a generator that yields codes in order.
func codeSequence(codes ...string) func(int) (string, error) {
	var i int
	return func(int) (string, error) {
		if i >= len(codes) {
			return "", fmt.Errorf("code sequence exhausted")
		}
		c := codes[i]
		i++
		return c, nil
	}
}
