package patient

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinrec/clinrec/internal/access"
)

// Repository is the patient store. List and Search receive the scope
// predicate built by the access.Resolver and translate it into query
// filters; they never widen it.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, scope access.ScopePredicate, limit, offset int) ([]*Patient, int, error)
	Search(ctx context.Context, scope access.ScopePredicate, query string, limit, offset int) ([]*Patient, int, error)
}
