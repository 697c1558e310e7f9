package ports

import "context"

// AuthService это провайдер сессий: регистрация, подтверждение почты, вход, выход.
type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*User, error)
	VerifyEmail(ctx context.Context, token string) (*User, error)
	Login(ctx context.Context, email, password string) (token string, err error)
	CurrentUser(ctx context.Context, token string) (*User, error)
	SignOut(ctx context.Context, token string) error
}

// Mailer доставляет ссылку подтверждения
type Mailer interface {
	SendVerification(ctx context.Context, email, link string) error
}
