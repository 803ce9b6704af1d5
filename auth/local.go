package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// timeLayout is fixed width so expiry comparisons work on the stored text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Local is a Provider backed by users and sessions tables in the
// dashboard's SQLite database.
type Local struct {
	db     *sql.DB
	tokens *TokenManager
	ttl    time.Duration
	notify *notifier
	now    func() time.Time
	cost   int
}

// LocalOption configures a Local provider.
type LocalOption func(*Local)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) LocalOption {
	return func(l *Local) { l.now = now }
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) LocalOption {
	return func(l *Local) { l.cost = cost }
}

// NewLocal creates the provider and its tables. Sessions live for ttl.
func NewLocal(db *sql.DB, tokens *TokenManager, ttl time.Duration, opts ...LocalOption) (*Local, error) {
	l := &Local{
		db:     db,
		tokens: tokens,
		ttl:    ttl,
		notify: newNotifier(),
		now:    time.Now,
		cost:   bcrypt.DefaultCost,
	}
	for _, o := range opts {
		o(l)
	}
	if err := l.ensureSchema(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Local) ensureSchema() error {
	_, err := l.db.Exec(`
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at TEXT NOT NULL,
    expires_at TEXT NOT NULL
);
`)
	if err != nil {
		return fmt.Errorf("auth: schema: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp validates the form and creates the account. It does not sign in.
func (l *Local) SignUp(ctx context.Context, r Registration) (*User, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), l.cost)
	if err != nil {
		return nil, fmt.Errorf("auth: sign up: %w", err)
	}
	u := User{
		ID:        uuid.NewString(),
		Email:     normalizeEmail(r.Email),
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
		CreatedAt: l.now().UTC(),
	}
	u.FullName = strings.TrimSpace(u.FirstName + " " + u.LastName)

	var exists int
	err = l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, u.Email).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("auth: sign up: %w", err)
	}
	if exists > 0 {
		return nil, ErrEmailTaken
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, first_name, last_name, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, string(hash), u.FirstName, u.LastName, u.CreatedAt.Format(timeLayout))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("auth: sign up: %w", err)
	}
	return &u, nil
}

// SignIn checks the password and opens a new session.
func (l *Local) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var (
		u       User
		hash    string
		created string
	)
	err := l.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, first_name, last_name, created_at FROM users WHERE email = ?`,
		normalizeEmail(email)).Scan(&u.ID, &u.Email, &hash, &u.FirstName, &u.LastName, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("auth: sign in: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	u.CreatedAt, _ = time.Parse(timeLayout, created)
	u.FullName = strings.TrimSpace(u.FirstName + " " + u.LastName)

	now := l.now().UTC()
	s := &Session{ID: uuid.NewString(), User: u, ExpiresAt: now.Add(l.ttl)}
	s.AccessToken, err = l.tokens.Generate(s.ID, u, now, s.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("auth: sign in: %w", err)
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		s.ID, u.ID, now.Format(timeLayout), s.ExpiresAt.Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("auth: sign in: %w", err)
	}
	l.notify.publish(Event{Type: SignedIn, SessionID: s.ID, UserID: u.ID})
	return s, nil
}

// CurrentSession resolves token to its live session.
func (l *Local) CurrentSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := l.tokens.Validate(token)
	if err != nil {
		return nil, nil
	}
	var (
		s       Session
		expires string
		created string
	)
	err = l.db.QueryRowContext(ctx, `
SELECT s.id, s.expires_at, u.id, u.email, u.first_name, u.last_name, u.created_at
FROM sessions s JOIN users u ON u.id = s.user_id
WHERE s.id = ?`, claims.ID).Scan(&s.ID, &expires, &s.User.ID, &s.User.Email, &s.User.FirstName, &s.User.LastName, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("auth: current session: %w", err)
	}
	s.ExpiresAt, err = time.Parse(timeLayout, expires)
	if err != nil {
		return nil, fmt.Errorf("auth: current session: %w", err)
	}
	if !l.now().Before(s.ExpiresAt) {
		return nil, nil
	}
	s.User.CreatedAt, _ = time.Parse(timeLayout, created)
	s.User.FullName = strings.TrimSpace(s.User.FirstName + " " + s.User.LastName)
	return &s, nil
}

// SignOut ends the token's session. Unknown or already ended sessions are
// not an error.
func (l *Local) SignOut(ctx context.Context, token string) error {
	id, err := l.tokens.SessionID(token)
	if err != nil {
		return nil
	}
	var userID string
	err = l.db.QueryRowContext(ctx, `DELETE FROM sessions WHERE id = ? RETURNING user_id`, id).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("auth: sign out: %w", err)
	}
	l.notify.publish(Event{Type: SignedOut, SessionID: id, UserID: userID})
	return nil
}

// OnSessionChange registers fn for sign-in and sign-out events.
func (l *Local) OnSessionChange(fn func(Event)) Subscription {
	return l.notify.subscribe(fn)
}

// PurgeExpired deletes sessions past their expiry and returns how many.
func (l *Local) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := l.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, l.now().UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("auth: purge sessions: %w", err)
	}
	return res.RowsAffected()
}
