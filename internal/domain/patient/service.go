package patient

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinrec/clinrec/internal/access"
	"github.com/clinrec/clinrec/internal/listcache"
	"github.com/clinrec/clinrec/pkg/pagination"
)

// HistoryProvider returns the clinical history of a patient, already
// redacted for the viewing actor. Implemented by the clinical service;
// optional so the façade can run without the events domain in tests.
type HistoryProvider interface {
	PatientHistory(ctx context.Context, actor access.Actor, patientID uuid.UUID) (map[string][]access.Fields, error)
}

// ListResult is one page of visible patients.
type ListResult struct {
	Patients   []access.Fields `json:"patients"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// Detail is one visible patient plus the clinical history returned with it.
type Detail struct {
	Patient        access.Fields              `json:"patient"`
	History        map[string][]access.Fields `json:"history,omitempty"`
	CanViewMedical bool                       `json:"can_view_medical"`
}

// Service is the patient access façade: every operation resolves a scope or
// authorizes the single instance, redacts fields both ways, and keeps the
// listing cache coherent with writes.
type Service struct {
	repo     Repository
	authz    *access.Authorizer
	resolver access.Resolver
	redactor *access.Redactor
	cache    *listcache.Cache
	history  HistoryProvider
}

func NewService(repo Repository, authz *access.Authorizer, redactor *access.Redactor, cache *listcache.Cache) *Service {
	return &Service{repo: repo, authz: authz, redactor: redactor, cache: cache}
}

// SetHistoryProvider attaches the clinical history source (may be nil).
func (s *Service) SetHistoryProvider(h HistoryProvider) { s.history = h }

// List returns the page of patients the actor may enumerate. A denied scope
// is an empty page, never an error: "nothing visible" is a valid answer for
// listings.
func (s *Service) List(ctx context.Context, actor access.Actor, pg pagination.Params) (*ListResult, error) {
	pg = pg.Normalize()
	scope := s.resolver.Resolve(actor, access.ResourcePatient)
	if scope.Denies() {
		return s.emptyPage(pg), nil
	}

	key := listcache.Key{
		ActorID:  actor.ID,
		Role:     actor.Role,
		Resource: access.ResourcePatient,
		Page:     pg.Page,
		PageSize: pg.PageSize,
	}
	v, err := s.cache.GetOrCompute(ctx, key, func(ctx context.Context) (interface{}, error) {
		return s.fetchPage(ctx, actor, scope, "", pg)
	})
	if err != nil {
		return nil, err
	}
	return v.(*ListResult), nil
}

// Search returns the visible patients matching the query. Search results
// are computed fresh on every call; only plain listings are cached.
func (s *Service) Search(ctx context.Context, actor access.Actor, query string, pg pagination.Params) (*ListResult, error) {
	if query == "" {
		return s.List(ctx, actor, pg)
	}
	pg = pg.Normalize()
	scope := s.resolver.Resolve(actor, access.ResourcePatient)
	if scope.Denies() {
		return s.emptyPage(pg), nil
	}
	return s.fetchPage(ctx, actor, scope, query, pg)
}

func (s *Service) fetchPage(ctx context.Context, actor access.Actor, scope access.ScopePredicate, query string, pg pagination.Params) (*ListResult, error) {
	var (
		items []*Patient
		total int
		err   error
	)
	if query == "" {
		items, total, err = s.repo.List(ctx, scope, pg.Limit(), pg.Offset())
	} else {
		items, total, err = s.repo.Search(ctx, scope, query, pg.Limit(), pg.Offset())
	}
	if err != nil {
		return nil, err
	}

	visible := make([]access.Fields, 0, len(items))
	for _, p := range items {
		visible = append(visible, s.redactor.FilterRead(actor, access.ResourcePatient, p.Fields()))
	}
	return &ListResult{
		Patients:   visible,
		Total:      total,
		Page:       pg.Page,
		PageSize:   pg.PageSize,
		TotalPages: pg.TotalPages(total),
	}, nil
}

func (s *Service) emptyPage(pg pagination.Params) *ListResult {
	return &ListResult{Patients: []access.Fields{}, Page: pg.Page, PageSize: pg.PageSize}
}

// Get returns one patient's visible projection and clinical history. A
// patient outside the actor's scope is an access denial, never a not-found:
// the caller learns the record exists but not what it holds.
func (s *Service) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*Detail, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizePatient(ctx, actor, access.ActionRead, ref(p)); err != nil {
		return nil, err
	}

	d := &Detail{
		Patient:        s.redactor.FilterRead(actor, access.ResourcePatient, p.Fields()),
		CanViewMedical: s.redactor.CanViewMedical(actor),
	}
	if s.history != nil {
		hist, err := s.history.PatientHistory(ctx, actor, p.ID)
		if err != nil {
			return nil, err
		}
		d.History = hist
	}
	return d, nil
}

// Create registers a patient from the submitted fields. Medical fields
// submitted by an actor without the medical capability are dropped, not
// rejected; the permitted fields still persist.
func (s *Service) Create(ctx context.Context, actor access.Actor, submitted access.Fields) (access.Fields, error) {
	if !actor.Authenticated() || !actor.HasProfile() {
		return nil, access.Denied("unauthenticated")
	}
	if !actor.Role.Can(access.ManageAdminData) && actor.Role != access.RoleSecretary {
		return nil, access.Denied("role may not create patients")
	}

	accepted := s.redactor.FilterWrite(actor, access.ResourcePatient, submitted)
	p := &Patient{}
	if err := p.Apply(accepted); err != nil {
		return nil, err
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	s.invalidate(actor)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(actor)

	return s.redactor.FilterRead(actor, access.ResourcePatient, p.Fields()), nil
}

// Update modifies a patient from the submitted fields. Requires object
// read access plus either the administrative or the medical capability;
// the redactor then decides field by field what the write may touch.
func (s *Service) Update(ctx context.Context, actor access.Actor, id uuid.UUID, submitted access.Fields) (access.Fields, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizePatient(ctx, actor, access.ActionRead, ref(p)); err != nil {
		return nil, err
	}
	if !actor.Role.Can(access.ManageAdminData) && !actor.Role.Can(access.ManageMedicalData) {
		return nil, access.Denied("role may not modify patients")
	}

	accepted := s.redactor.FilterWrite(actor, access.ResourcePatient, submitted)
	if err := p.Apply(accepted); err != nil {
		return nil, err
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	s.invalidate(actor)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(actor)

	return s.redactor.FilterRead(actor, access.ResourcePatient, p.Fields()), nil
}

// Delete removes a patient. Admin only, on top of object read access.
func (s *Service) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.AuthorizePatient(ctx, actor, access.ActionRead, ref(p)); err != nil {
		return err
	}
	if actor.Role != access.RoleAdmin {
		return access.Denied("only administrators may delete patients")
	}

	s.invalidate(actor)
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return err
	}
	s.invalidate(actor)
	return nil
}

// invalidate drops the listings a patient mutation could have changed.
// Called before and after the commit so a reader racing the write cannot
// re-populate the cache with pre-write data that outlives the invalidation.
// Visibility can be shared by every secretary or nurse of a centre, so the
// whole resource type is dropped, not just the writer's own pages.
func (s *Service) invalidate(actor access.Actor) {
	s.cache.InvalidateResource(access.ResourcePatient)
	s.cache.InvalidateActor(actor.ID)
}

func ref(p *Patient) access.PatientRef {
	return access.PatientRef{ID: p.ID, HomeCentre: p.HomeCentreID}
}
