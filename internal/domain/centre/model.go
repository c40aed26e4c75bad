package centre

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Centre is one care site. Patients carry a home centre; clinical events and
// staff assignments reference the centre they happen at.
type Centre struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   *string   `db:"address" json:"address,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (c *Centre) validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}
