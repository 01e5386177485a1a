package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"varirunBack/internal/models"
)

type TokenIssuer interface {
	NewJWT(userID int64, role string) (string, time.Time, error)
}

type AuthService struct {
	Users  UserStore
	Tokens TokenIssuer
}

// SignIn checks an email or phone and password pair and issues an access token.
func (s *AuthService) SignIn(ctx context.Context, req models.SignInRequest) (models.SignInResponse, error) {
	login := strings.TrimSpace(req.Login)
	fields := map[string]string{}
	if login == "" {
		fields["login"] = "login is required"
	}
	if req.Password == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		return models.SignInResponse{}, models.InvalidInput("validation failed", fields)
	}

	user, err := s.Users.GetByLogin(ctx, login)
	if errors.Is(err, models.ErrNoRecord) {
		return models.SignInResponse{}, models.Unauthorized("invalid login or password")
	}
	if err != nil {
		return models.SignInResponse{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return models.SignInResponse{}, &models.AppError{Kind: models.ErrUnauthorized, Message: "invalid login or password", Err: models.ErrInvalidCredentials}
	}

	token, expires, err := s.Tokens.NewJWT(user.ID, user.Role)
	if err != nil {
		return models.SignInResponse{}, err
	}
	return models.SignInResponse{AccessToken: token, ExpiresAt: expires.Unix(), User: user}, nil
}
