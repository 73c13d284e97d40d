package service

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/chatter-dev/chatter/internal/domain"
	internal_errors "github.com/chatter-dev/chatter/internal/errors"
	"github.com/chatter-dev/chatter/internal/jwt"
	"github.com/chatter-dev/chatter/internal/logger"
)

const minPasswordLen = 8

type AuthStorage interface {
	SaveUser(user domain.User) (domain.UserId, error)
	UserByEmail(email domain.Email) (domain.User, error)
	User(id domain.UserId) (domain.User, error)
}

type Auth struct {
	storage AuthStorage
	jwt     jwt.JwtService
}

func NewAuth(storage AuthStorage, jwt jwt.JwtService) *Auth {
	return &Auth{storage, jwt}
}

// Register creates the user and signs them in. The password never leaves
// this function unhashed.
func (a *Auth) Register(name string, creds domain.Credentials) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &internal_errors.ValidationError{Message: "name is required"}
	}
	if len(creds.Password) < minPasswordLen {
		return "", &internal_errors.ValidationError{Message: "password is too short"}
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("can't hash password", "error", err)
		return "", err
	}

	user := domain.User{
		Name:     name,
		Email:    strings.ToLower(strings.TrimSpace(creds.Email)),
		PassHash: string(passHash),
	}
	id, err := a.storage.SaveUser(user)
	if err != nil {
		return "", err
	}
	user.Id = id

	return a.jwt.NewToken(user)
}

// Login verifies credentials and mints an access token. Unknown email and
// wrong password produce the same response.
func (a *Auth) Login(creds domain.Credentials) (string, error) {
	invalid := &internal_errors.ErrorWithStatusCode{Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}

	user, err := a.storage.UserByEmail(strings.ToLower(strings.TrimSpace(creds.Email)))
	if err != nil {
		if internal_errors.IsNotFound(err) {
			return "", invalid
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(creds.Password)); err != nil {
		return "", invalid
	}

	return a.jwt.NewToken(user)
}

func (a *Auth) User(id domain.UserId) (domain.User, error) {
	return a.storage.User(id)
}
