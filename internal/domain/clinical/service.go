package clinical

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinrec/clinrec/internal/access"
	"github.com/clinrec/clinrec/internal/listcache"
	"github.com/clinrec/clinrec/pkg/pagination"
)

// historyKeys maps an event kind to its key in the patient history payload.
var historyKeys = map[access.Resource]string{
	access.ResourceConsultation:    "consultations",
	access.ResourceHospitalisation: "hospitalisations",
	access.ResourceEmergency:       "emergencies",
	access.ResourceAppointment:     "appointments",
}

// EventPage is one page of visible events of a single kind.
type EventPage struct {
	Events     []access.Fields `json:"events"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// Service handles clinical events and appointments. It reuses the same
// scope/authorize/redact pipeline as the patient façade and doubles as the
// patient service's history provider.
type Service struct {
	repo     Repository
	authz    *access.Authorizer
	resolver access.Resolver
	redactor *access.Redactor
	cache    *listcache.Cache
}

func NewService(repo Repository, authz *access.Authorizer, redactor *access.Redactor, cache *listcache.Cache) *Service {
	return &Service{repo: repo, authz: authz, redactor: redactor, cache: cache}
}

// mutationAction picks the object action guarding writes of a kind.
// Appointments are administrative data; the other kinds are medical records.
func mutationAction(kind access.Resource) access.Action {
	if kind == access.ResourceAppointment {
		return access.ActionManageAdminFields
	}
	return access.ActionManageMedicalFields
}

func eventKind(kind access.Resource) error {
	if _, ok := historyKeys[kind]; !ok {
		return fmt.Errorf("resource %q is not a clinical event", kind)
	}
	return nil
}

// List returns the page of events of one kind the actor may enumerate.
// Denied scopes produce an empty page, never an error.
func (s *Service) List(ctx context.Context, actor access.Actor, kind access.Resource, pg pagination.Params) (*EventPage, error) {
	if err := eventKind(kind); err != nil {
		return nil, err
	}
	pg = pg.Normalize()
	scope := s.resolver.Resolve(actor, kind)
	if scope.Denies() {
		return s.emptyPage(pg), nil
	}

	key := listcache.Key{
		ActorID:  actor.ID,
		Role:     actor.Role,
		Resource: kind,
		Page:     pg.Page,
		PageSize: pg.PageSize,
	}
	v, err := s.cache.GetOrCompute(ctx, key, func(ctx context.Context) (interface{}, error) {
		return s.fetchPage(ctx, actor, kind, scope, pg)
	})
	if err != nil {
		return nil, err
	}
	return v.(*EventPage), nil
}

// ListMine returns the actor's own dashboard: events where they are the
// attending doctor. The plain listing and the dashboard would collide on the
// same cache key, so the narrower view is always computed fresh.
func (s *Service) ListMine(ctx context.Context, actor access.Actor, kind access.Resource, pg pagination.Params) (*EventPage, error) {
	if err := eventKind(kind); err != nil {
		return nil, err
	}
	pg = pg.Normalize()
	scope := s.resolver.ResolveMyEvents(actor, kind)
	if scope.Denies() {
		return s.emptyPage(pg), nil
	}
	return s.fetchPage(ctx, actor, kind, scope, pg)
}

func (s *Service) fetchPage(ctx context.Context, actor access.Actor, kind access.Resource, scope access.ScopePredicate, pg pagination.Params) (*EventPage, error) {
	items, total, err := s.repo.List(ctx, kind, scope, pg.Limit(), pg.Offset())
	if err != nil {
		return nil, err
	}
	visible := make([]access.Fields, 0, len(items))
	for _, e := range items {
		visible = append(visible, s.redactor.FilterRead(actor, kind, e.Fields()))
	}
	return &EventPage{
		Events:     visible,
		Total:      total,
		Page:       pg.Page,
		PageSize:   pg.PageSize,
		TotalPages: pg.TotalPages(total),
	}, nil
}

func (s *Service) emptyPage(pg pagination.Params) *EventPage {
	return &EventPage{Events: []access.Fields{}, Page: pg.Page, PageSize: pg.PageSize}
}

// Get returns one event's visible projection. Out-of-scope events read as
// access denials, never as not-found.
func (s *Service) Get(ctx context.Context, actor access.Actor, kind access.Resource, id uuid.UUID) (access.Fields, error) {
	if err := eventKind(kind); err != nil {
		return nil, err
	}
	e, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeEvent(ctx, actor, access.ActionRead, kind, e.Ref()); err != nil {
		return nil, err
	}
	return s.redactor.FilterRead(actor, kind, e.Fields()), nil
}

// Create records a new event from the submitted fields.
func (s *Service) Create(ctx context.Context, actor access.Actor, kind access.Resource, submitted access.Fields) (access.Fields, error) {
	if err := eventKind(kind); err != nil {
		return nil, err
	}
	e := NewEvent(kind)
	accepted := s.redactor.FilterWrite(actor, kind, submitted)
	if err := e.Apply(accepted); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeEvent(ctx, actor, mutationAction(kind), kind, e.Ref()); err != nil {
		return nil, err
	}

	s.invalidate(kind, actor)
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	s.invalidate(kind, actor)

	return s.redactor.FilterRead(actor, kind, e.Fields()), nil
}

// Update modifies an event from the submitted fields.
func (s *Service) Update(ctx context.Context, actor access.Actor, kind access.Resource, id uuid.UUID, submitted access.Fields) (access.Fields, error) {
	if err := eventKind(kind); err != nil {
		return nil, err
	}
	e, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeEvent(ctx, actor, mutationAction(kind), kind, e.Ref()); err != nil {
		return nil, err
	}

	accepted := s.redactor.FilterWrite(actor, kind, submitted)
	if err := e.Apply(accepted); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}

	s.invalidate(kind, actor)
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	s.invalidate(kind, actor)

	return s.redactor.FilterRead(actor, kind, e.Fields()), nil
}

// Discharge closes an open hospitalisation. A closed stay keeps linking
// nurses of the centre to the patient; only its active flag changes.
func (s *Service) Discharge(ctx context.Context, actor access.Actor, id uuid.UUID, submitted access.Fields) (access.Fields, error) {
	e, err := s.repo.Get(ctx, access.ResourceHospitalisation, id)
	if err != nil {
		return nil, err
	}
	h := e.(*Hospitalisation)
	if err := s.authz.AuthorizeEvent(ctx, actor, access.ActionManageMedicalFields,
		access.ResourceHospitalisation, h.Ref()); err != nil {
		return nil, err
	}
	if !h.Active() {
		return nil, fmt.Errorf("%w: hospitalisation already discharged", access.ErrConflict)
	}

	accepted := s.redactor.FilterWrite(actor, access.ResourceHospitalisation, submitted)
	if _, ok := accepted["discharge_date"]; !ok {
		return nil, fmt.Errorf("discharge_date is required")
	}
	if err := h.Apply(accepted); err != nil {
		return nil, err
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}

	s.invalidate(access.ResourceHospitalisation, actor)
	if err := s.repo.Update(ctx, h); err != nil {
		return nil, err
	}
	s.invalidate(access.ResourceHospitalisation, actor)

	return s.redactor.FilterRead(actor, access.ResourceHospitalisation, h.Fields()), nil
}

// Delete removes an event. Admin only.
func (s *Service) Delete(ctx context.Context, actor access.Actor, kind access.Resource, id uuid.UUID) error {
	if err := eventKind(kind); err != nil {
		return err
	}
	e, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return err
	}
	if err := s.authz.AuthorizeEvent(ctx, actor, access.ActionDelete, kind, e.Ref()); err != nil {
		return err
	}

	s.invalidate(kind, actor)
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		return err
	}
	s.invalidate(kind, actor)
	return nil
}

// PatientHistory returns a patient's full event history, redacted for the
// actor. Object access to the patient is the caller's responsibility; this
// runs behind the patient façade's own authorization.
func (s *Service) PatientHistory(ctx context.Context, actor access.Actor, patientID uuid.UUID) (map[string][]access.Fields, error) {
	byKind, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]access.Fields, len(byKind))
	for kind, items := range byKind {
		visible := make([]access.Fields, 0, len(items))
		for _, e := range items {
			visible = append(visible, s.redactor.FilterRead(actor, kind, e.Fields()))
		}
		out[historyKeys[kind]] = visible
	}
	return out, nil
}

// invalidate drops the listings an event mutation could have changed. A
// hospitalisation write also shifts which patients nurses can see, so the
// patient listings fall with it.
func (s *Service) invalidate(kind access.Resource, actor access.Actor) {
	s.cache.InvalidateResource(kind)
	if kind == access.ResourceHospitalisation {
		s.cache.InvalidateResource(access.ResourcePatient)
	}
	s.cache.InvalidateActor(actor.ID)
}
