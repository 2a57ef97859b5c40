package service

import (
	"github.com/google/uuid"
)

const maxSessionIDLength = 128

// NewSessionID returns a fresh cart session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// ValidSessionID reports whether id can be used as a cart session key.
// Clients may supply their own opaque identifiers through the header,
// so any short URL-safe token is accepted.
func ValidSessionID(id string) bool {
	if id == "" || len(id) > maxSessionIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '=' || r == '.':
		default:
			return false
		}
	}
	return true
}
