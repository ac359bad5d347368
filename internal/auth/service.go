package auth

import (
	"context"
	"errors"
	"time"

	"bookcatalog/internal/platform/crypto"
	"bookcatalog/internal/user"
)

var ErrUnauthorized = errors.New("unauthorized")

// Users looks up credentials by username.
type Users interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
}

type Service struct {
	secret string
	ttl    time.Duration
	users  Users
}

func NewService(secret string, ttl time.Duration, users Users) *Service {
	return &Service{secret: secret, ttl: ttl, users: users}
}

// Login checks the credentials and issues a signed access token. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (token string, expiresIn int, err error) {
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, user.ErrNotFound) {
		return "", 0, ErrUnauthorized
	}
	if err != nil {
		return "", 0, err
	}
	if !crypto.VerifyPassword(u.Password, password) {
		return "", 0, ErrUnauthorized
	}

	token, err = crypto.GenerateToken(s.secret, u.ID, u.Username, s.ttl)
	if err != nil {
		return "", 0, err
	}
	return token, int(s.ttl.Seconds()), nil
}
