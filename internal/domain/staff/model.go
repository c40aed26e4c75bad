package staff

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinrec/clinrec/internal/access"
)

// Member is a staff account: an identity, a role profile, and the centres
// the member is attached to. The JWT claims mirror this record; disabling a
// member here is what revokes their access at the next token refresh.
type Member struct {
	ID        uuid.UUID   `db:"id" json:"id"`
	FirstName string      `db:"first_name" json:"first_name"`
	LastName  string      `db:"last_name" json:"last_name"`
	Email     string      `db:"email" json:"email"`
	Role      access.Role `db:"role" json:"role"`
	Centres   []uuid.UUID `db:"centres" json:"centres"`
	Disabled  bool        `db:"disabled" json:"disabled"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}

func (m *Member) validate() error {
	if m.FirstName == "" || m.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	if m.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !m.Role.Valid() {
		return fmt.Errorf("invalid role %q", m.Role)
	}
	return nil
}
