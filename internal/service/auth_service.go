package service

import (
	"context"
	"strings"
	"time"

	"github.com/wildtrail/safaridesk/internal/model"
	appErr "github.com/wildtrail/safaridesk/internal/pkg/errors"
	"github.com/wildtrail/safaridesk/internal/pkg/jwt"
	"github.com/wildtrail/safaridesk/internal/pkg/password"
	"github.com/wildtrail/safaridesk/internal/pkg/timeutil"
	"github.com/wildtrail/safaridesk/internal/repo"
)

type AuthService struct {
	users  *repo.UserRepo
	secret []byte
	ttl    time.Duration
}

func NewAuthService(users *repo.UserRepo, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{users: users, secret: secret, ttl: ttl}
}

func (s *AuthService) Register(ctx context.Context, email, plainPassword, name string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || len(plainPassword) < 8 {
		return nil, appErr.ErrInvalid
	}
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, err
	}
	now := timeutil.NowUnix()
	user := &model.User{
		ID:           newID(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Ctime:        now,
		Mtime:        now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (string, *model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if appErr.IsNotFound(err) {
			return "", nil, appErr.ErrUnauthorized
		}
		return "", nil, err
	}
	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		return "", nil, appErr.ErrUnauthorized
	}
	token, err := jwt.GenerateToken(user.ID, user.Email, user.Name, s.secret, s.ttl)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
