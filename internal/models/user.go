package models

import (
	"time"

	"github.com/julianstephens/habitshare/internal/constants"
)

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email" validate:"required,email"`
	DisplayName  string    `json:"displayName" validate:"max=80"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session is the signed-in identity the client keeps in the OS keyring
type Session struct {
	Token       string `json:"token"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// Name returns the display name, falling back to Anonymous
func (s Session) Name() string {
	if s.DisplayName == "" {
		return constants.AnonymousName
	}
	return s.DisplayName
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"displayName" validate:"max=80"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by both auth endpoints
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// SessionFrom turns an auth response into the identity the client keeps
func SessionFrom(r AuthResponse) Session {
	return Session{
		Token:       r.Token,
		UserID:      r.User.ID,
		DisplayName: r.User.DisplayName,
		Email:       r.User.Email,
	}
}
