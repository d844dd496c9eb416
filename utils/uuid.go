package utils

import "github.com/google/uuid"

// NewRequestID returns a random request identifier.
func NewRequestID() string {
	return uuid.NewString()
}
