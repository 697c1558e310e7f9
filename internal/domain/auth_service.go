package domain

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Vovarama1992/dreamcatcher/internal/ports"
)

var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrNotVerified        = errors.New("email not confirmed")
	ErrSessionExpired     = errors.New("session expired")
	ErrWeakPassword       = errors.New("password should be at least 6 characters")
	ErrInvalidEmail       = errors.New("invalid email address")
)

const minPasswordLen = 6

type authService struct {
	repo       ports.AuthRepo
	mailer     ports.Mailer
	verifyURL  string
	sessionTTL time.Duration
	now        func() time.Time
}

func NewAuthService(repo ports.AuthRepo, mailer ports.Mailer, baseURL string, sessionTTL time.Duration) ports.AuthService {
	return &authService{
		repo:       repo,
		mailer:     mailer,
		verifyURL:  strings.TrimSuffix(baseURL, "/") + "/auth/verify?token=",
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

func (s *authService) SignUp(ctx context.Context, email, password string) (*ports.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.repo.CreateUser(ctx, email, string(hash))
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	if err := s.repo.CreateVerification(ctx, token, u.ID); err != nil {
		return nil, s.rollbackSignUp(ctx, u.ID, fmt.Errorf("create verification: %w", err))
	}
	if err := s.mailer.SendVerification(ctx, u.Email, s.verifyURL+token); err != nil {
		return nil, s.rollbackSignUp(ctx, u.ID, fmt.Errorf("send verification: %w", err))
	}
	return u, nil
}

// rollbackSignUp удаляет пользователя без токена, чтобы почту можно было зарегистрировать снова
func (s *authService) rollbackSignUp(ctx context.Context, userID string, cause error) error {
	if err := s.repo.DeleteUser(context.WithoutCancel(ctx), userID); err != nil {
		return errors.Join(cause, fmt.Errorf("rollback sign up: %w", err))
	}
	return cause
}

func (s *authService) VerifyEmail(ctx context.Context, token string) (*ports.User, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, ports.ErrTokenNotFound
	}
	userID, err := s.repo.ConsumeVerification(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.repo.MarkVerified(ctx, userID, s.now()); err != nil {
		return nil, err
	}
	return s.repo.GetUserByID(ctx, userID)
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ports.ErrUserNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	if u.VerifiedAt == nil {
		return "", ErrNotVerified
	}

	now := s.now()
	sess := ports.Session{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return sess.Token, nil
}

func (s *authService) CurrentUser(ctx context.Context, token string) (*ports.User, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, ports.ErrSessionNotFound
	}
	sess, err := s.repo.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if s.now().After(sess.ExpiresAt) {
		return nil, ErrSessionExpired
	}
	return s.repo.GetUserByID(ctx, sess.UserID)
}

func (s *authService) SignOut(ctx context.Context, token string) error {
	return s.repo.DeleteSession(ctx, token)
}
