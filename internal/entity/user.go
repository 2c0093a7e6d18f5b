package entity

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account for data transfer between layers.
// PasswordHash and Salt are hex-encoded and never serialized.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
