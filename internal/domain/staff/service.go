package staff

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinrec/clinrec/internal/access"
	"github.com/clinrec/clinrec/pkg/pagination"
)

// ListResult is one page of staff members.
type ListResult struct {
	Members    []*Member `json:"members"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

// Stats summarises the active workforce for the statistics dashboard.
type Stats struct {
	Total  int                 `json:"total"`
	ByRole map[access.Role]int `json:"by_role"`
}

// Service manages staff accounts. Accounts are disabled, never deleted:
// clinical records keep referencing their authors.
type Service struct {
	repo  Repository
	authz *access.Authorizer
}

func NewService(repo Repository, authz *access.Authorizer) *Service {
	return &Service{repo: repo, authz: authz}
}

func (s *Service) List(ctx context.Context, actor access.Actor, pg pagination.Params) (*ListResult, error) {
	if err := s.authz.AuthorizeStaff(actor, access.ActionRead); err != nil {
		return nil, err
	}
	pg = pg.Normalize()
	items, total, err := s.repo.List(ctx, pg.Limit(), pg.Offset())
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Members:    items,
		Total:      total,
		Page:       pg.Page,
		PageSize:   pg.PageSize,
		TotalPages: pg.TotalPages(total),
	}, nil
}

func (s *Service) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*Member, error) {
	if err := s.authz.AuthorizeStaff(actor, access.ActionRead); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, actor access.Actor, m *Member) (*Member, error) {
	if err := s.authz.AuthorizeStaff(actor, access.ActionManageAdminFields); err != nil {
		return nil, err
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) Update(ctx context.Context, actor access.Actor, id uuid.UUID, m *Member) (*Member, error) {
	if err := s.authz.AuthorizeStaff(actor, access.ActionManageAdminFields); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.FirstName = m.FirstName
	existing.LastName = m.LastName
	existing.Email = m.Email
	existing.Role = m.Role
	existing.Centres = m.Centres
	if err := existing.validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// SetDisabled flips the account flag. Disabling is the staff analogue of
// delete; the record itself stays.
func (s *Service) SetDisabled(ctx context.Context, actor access.Actor, id uuid.UUID, disabled bool) (*Member, error) {
	if err := s.authz.AuthorizeStaff(actor, access.ActionManageAdminFields); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Disabled = disabled
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Statistics returns workforce counts for actors holding the statistics
// capability.
func (s *Service) Statistics(ctx context.Context, actor access.Actor) (*Stats, error) {
	if !actor.Authenticated() || !actor.Role.Can(access.ViewStatistics) {
		return nil, access.Denied("role may not view statistics")
	}
	byRole, err := s.repo.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, n := range byRole {
		total += n
	}
	return &Stats{Total: total, ByRole: byRole}, nil
}
