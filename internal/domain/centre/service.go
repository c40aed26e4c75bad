package centre

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinrec/clinrec/internal/access"
	"github.com/clinrec/clinrec/pkg/pagination"
)

// ListResult is one page of centres.
type ListResult struct {
	Centres    []*Centre `json:"centres"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

// Service manages the centre registry. Every operation, reads included, is
// gated on the centre-management capability: the registry is back-office
// data, not part of the care-delivery surface.
type Service struct {
	repo  Repository
	authz *access.Authorizer
}

func NewService(repo Repository, authz *access.Authorizer) *Service {
	return &Service{repo: repo, authz: authz}
}

func (s *Service) List(ctx context.Context, actor access.Actor, pg pagination.Params) (*ListResult, error) {
	if err := s.authz.AuthorizeCentre(actor, access.ActionRead); err != nil {
		return nil, err
	}
	pg = pg.Normalize()
	items, total, err := s.repo.List(ctx, pg.Limit(), pg.Offset())
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Centres:    items,
		Total:      total,
		Page:       pg.Page,
		PageSize:   pg.PageSize,
		TotalPages: pg.TotalPages(total),
	}, nil
}

func (s *Service) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*Centre, error) {
	if err := s.authz.AuthorizeCentre(actor, access.ActionRead); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, actor access.Actor, c *Centre) (*Centre, error) {
	if err := s.authz.AuthorizeCentre(actor, access.ActionManageAdminFields); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, actor access.Actor, id uuid.UUID, c *Centre) (*Centre, error) {
	if err := s.authz.AuthorizeCentre(actor, access.ActionManageAdminFields); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Name = c.Name
	existing.Address = c.Address
	existing.Phone = c.Phone
	existing.IsActive = c.IsActive
	if err := existing.validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	if err := s.authz.AuthorizeCentre(actor, access.ActionDelete); err != nil {
		return err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
