package centre

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, c *Centre) error
	GetByID(ctx context.Context, id uuid.UUID) (*Centre, error)
	Update(ctx context.Context, c *Centre) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Centre, int, error)
}
