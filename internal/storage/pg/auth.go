package pg

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/lib/pq"

	"github.com/chatter-dev/chatter/internal/domain"
	internal_errors "github.com/chatter-dev/chatter/internal/errors"
)

func (s *Storage) SaveUser(user domain.User) (domain.UserId, error) {
	var id domain.UserId
	created := time.Now().UTC().Round(time.Microsecond) // database anyway round to microsecond
	err := s.db.QueryRow(`
	INSERT INTO users(name, email, pass_hash, image, created)
	VALUES($1, $2, $3, $4, $5)
	RETURNING id`,
		user.Name, user.Email, user.PassHash, user.Image, created).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return -1, &internal_errors.ErrorWithStatusCode{Message: "Email already registered", StatusCode: http.StatusConflict}
		}
		return -1, err
	}
	return id, nil
}

func (s *Storage) UserByEmail(email domain.Email) (domain.User, error) {
	var user domain.User
	err := s.db.QueryRow(`
	SELECT id, name, email, pass_hash, image, created
	FROM users
	WHERE email = $1`, email).Scan(&user.Id, &user.Name, &user.Email, &user.PassHash, &user.Image, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, internal_errors.NotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *Storage) User(id domain.UserId) (domain.User, error) {
	var user domain.User
	err := s.db.QueryRow(`
	SELECT id, name, email, pass_hash, image, created
	FROM users
	WHERE id = $1`, id).Scan(&user.Id, &user.Name, &user.Email, &user.PassHash, &user.Image, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, internal_errors.NotFound
		}
		return domain.User{}, err
	}
	return user, nil
}
