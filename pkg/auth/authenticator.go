package auth

import (
	"crypto/subtle"
	"log/slog"
)

type authenticator struct {
	password string
}

// NewAuthenticator checks admin passwords. An empty password disables admin access.
func NewAuthenticator(password string) *authenticator {
	if password == "" {
		slog.Warn("Admin password is not set, admin actions are disabled")
	}

	return &authenticator{
		password: password,
	}
}

func (a *authenticator) IsAuthorized(password string) bool {
	if a.password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
}
