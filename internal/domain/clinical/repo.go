package clinical

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinrec/clinrec/internal/access"
)

// Repository stores clinical events of all four kinds. List applies the
// scope predicate built by the access.Resolver; ListByPatient powers the
// patient history view and is scoped by the caller through authorization of
// the patient itself.
type Repository interface {
	Create(ctx context.Context, e Event) error
	Get(ctx context.Context, kind access.Resource, id uuid.UUID) (Event, error)
	Update(ctx context.Context, e Event) error
	Delete(ctx context.Context, kind access.Resource, id uuid.UUID) error
	List(ctx context.Context, kind access.Resource, scope access.ScopePredicate, limit, offset int) ([]Event, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) (map[access.Resource][]Event, error)

	// PatientHospitalisedIn implements access.HospitalisationChecker.
	PatientHospitalisedIn(ctx context.Context, patientID uuid.UUID, centres []uuid.UUID) (bool, error)
}
