package infra

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/Vovarama1992/dreamcatcher/internal/ports"
)

const pqUniqueViolation = "23505"

type AuthRepo struct {
	db *sql.DB
}

func NewAuthRepo(db *sql.DB) *AuthRepo {
	return &AuthRepo{db: db}
}

func (r *AuthRepo) CreateUser(ctx context.Context, email, passwordHash string) (*ports.User, error) {
	u := ports.User{Email: email, PasswordHash: passwordHash}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, email, passwordHash).Scan(&u.ID, &u.CreatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return nil, ports.ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *AuthRepo) GetUserByEmail(ctx context.Context, email string) (*ports.User, error) {
	return r.getUser(ctx, `
		SELECT id, email, password_hash, verified_at, created_at
		FROM users
		WHERE email = $1
	`, email)
}

func (r *AuthRepo) GetUserByID(ctx context.Context, id string) (*ports.User, error) {
	return r.getUser(ctx, `
		SELECT id, email, password_hash, verified_at, created_at
		FROM users
		WHERE id = $1
	`, id)
}

func (r *AuthRepo) getUser(ctx context.Context, query string, arg any) (*ports.User, error) {
	var u ports.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.VerifiedAt,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *AuthRepo) CreateVerification(ctx context.Context, token, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO email_verifications (token, user_id)
		VALUES ($1, $2)
	`, token, userID)
	return err
}

// DeleteUser: токены и сессии уходят каскадом
func (r *AuthRepo) DeleteUser(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

// ConsumeVerification: токен одноразовый
func (r *AuthRepo) ConsumeVerification(ctx context.Context, token string) (string, error) {
	var userID string
	err := r.db.QueryRowContext(ctx, `
		DELETE FROM email_verifications
		WHERE token = $1
		RETURNING user_id
	`, token).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ports.ErrTokenNotFound
	}
	return userID, err
}

func (r *AuthRepo) MarkVerified(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET verified_at = COALESCE(verified_at, $2)
		WHERE id = $1
	`, userID, at)
	return err
}

func (r *AuthRepo) CreateSession(ctx context.Context, s ports.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, s.Token, s.UserID, s.CreatedAt, s.ExpiresAt)
	return err
}

func (r *AuthRepo) GetSession(ctx context.Context, token string) (*ports.Session, error) {
	var s ports.Session
	err := r.db.QueryRowContext(ctx, `
		SELECT token, user_id, created_at, expires_at
		FROM sessions
		WHERE token = $1
	`, token).Scan(&s.Token, &s.UserID, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *AuthRepo) DeleteSession(ctx context.Context, token string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ports.ErrSessionNotFound
	}
	return nil
}

// CleanupSessions удаляет протухшие сессии
func (r *AuthRepo) CleanupSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
