package types

import (
	"time"

	"github.com/google/uuid"
)

// Brand is a vehicle brand managed by administrators.
type Brand struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
