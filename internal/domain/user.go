package domain

import "time"

type User struct {
	Id        UserId
	Name      string
	Email     Email
	PassHash  string `json:"-"`
	Image     string
	CreatedAt time.Time
}

type Credentials struct {
	Email    Email
	Password string
}
