package staff

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinrec/clinrec/internal/access"
)

type Repository interface {
	Create(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*Member, error)
	Update(ctx context.Context, m *Member) error
	List(ctx context.Context, limit, offset int) ([]*Member, int, error)
	CountByRole(ctx context.Context) (map[access.Role]int, error)
}
