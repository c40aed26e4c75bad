package staff

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/clinrec/clinrec/internal/access"
	"github.com/clinrec/clinrec/pkg/pagination"
)

type memRepo struct {
	members map[uuid.UUID]*Member
}

func newMemRepo() *memRepo {
	return &memRepo{members: make(map[uuid.UUID]*Member)}
}

func (m *memRepo) Create(_ context.Context, mem *Member) error {
	if mem.ID == uuid.Nil {
		mem.ID = uuid.New()
	}
	m.members[mem.ID] = mem
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id uuid.UUID) (*Member, error) {
	mem, ok := m.members[id]
	if !ok {
		return nil, access.ErrNotFound
	}
	return mem, nil
}

func (m *memRepo) Update(_ context.Context, mem *Member) error {
	m.members[mem.ID] = mem
	return nil
}

func (m *memRepo) List(_ context.Context, limit, offset int) ([]*Member, int, error) {
	var items []*Member
	for _, mem := range m.members {
		items = append(items, mem)
	}
	total := len(items)
	if offset >= len(items) {
		return nil, total, nil
	}
	items = items[offset:]
	if limit < len(items) {
		items = items[:limit]
	}
	return items, total, nil
}

func (m *memRepo) CountByRole(_ context.Context) (map[access.Role]int, error) {
	out := make(map[access.Role]int)
	for _, mem := range m.members {
		if !mem.Disabled {
			out[mem.Role]++
		}
	}
	return out, nil
}

type noHosp struct{}

func (noHosp) PatientHospitalisedIn(context.Context, uuid.UUID, []uuid.UUID) (bool, error) {
	return false, nil
}

func newTestService() (*Service, *memRepo) {
	repo := newMemRepo()
	return NewService(repo, access.NewAuthorizer(noHosp{})), repo
}

func actorWithRole(role access.Role) access.Actor {
	return access.Actor{ID: uuid.New(), Role: role}
}

func member(role access.Role) *Member {
	return &Member{
		FirstName: "Jo",
		LastName:  "Kasongo",
		Email:     uuid.New().String() + "@clinic.test",
		Role:      role,
	}
}

func TestStaff_ManageUsersGated(t *testing.T) {
	svc, _ := newTestService()

	// Doctors hold every capability except user and centre management.
	doctor := actorWithRole(access.RoleDoctor)
	if _, err := svc.List(context.Background(), doctor, pagination.Params{}); !errors.Is(err, access.ErrAccessDenied) {
		t.Fatalf("doctor staff list should be denied, got %v", err)
	}
	if _, err := svc.Create(context.Background(), doctor, member(access.RoleNurse)); !errors.Is(err, access.ErrAccessDenied) {
		t.Fatalf("doctor staff create should be denied, got %v", err)
	}

	admin := actorWithRole(access.RoleAdmin)
	created, err := svc.Create(context.Background(), admin, member(access.RoleNurse))
	if err != nil {
		t.Fatalf("admin create: %v", err)
	}
	if _, err := svc.Get(context.Background(), admin, created.ID); err != nil {
		t.Fatalf("admin get: %v", err)
	}
}

func TestStaffCreate_RejectsUnknownRole(t *testing.T) {
	svc, _ := newTestService()
	admin := actorWithRole(access.RoleAdmin)

	m := member(access.RoleNurse)
	m.Role = "janitor"
	if _, err := svc.Create(context.Background(), admin, m); err == nil {
		t.Fatal("unknown role must not validate")
	}
}

func TestStaffDisable_SoftNotDelete(t *testing.T) {
	svc, repo := newTestService()
	admin := actorWithRole(access.RoleAdmin)

	created, err := svc.Create(context.Background(), admin, member(access.RoleDoctor))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	disabled, err := svc.SetDisabled(context.Background(), admin, created.ID, true)
	if err != nil {
		t.Fatalf("disable: %v", err)
	}
	if !disabled.Disabled {
		t.Fatal("member should be disabled")
	}
	if _, ok := repo.members[created.ID]; !ok {
		t.Fatal("disabling must keep the record")
	}

	enabled, err := svc.SetDisabled(context.Background(), admin, created.ID, false)
	if err != nil {
		t.Fatalf("enable: %v", err)
	}
	if enabled.Disabled {
		t.Error("member should be enabled again")
	}
}

func TestStatistics_CapabilityGatedAndSkipsDisabled(t *testing.T) {
	svc, _ := newTestService()
	admin := actorWithRole(access.RoleAdmin)

	if _, err := svc.Create(context.Background(), admin, member(access.RoleDoctor)); err != nil {
		t.Fatalf("create: %v", err)
	}
	off, err := svc.Create(context.Background(), admin, member(access.RoleNurse))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SetDisabled(context.Background(), admin, off.ID, true); err != nil {
		t.Fatalf("disable: %v", err)
	}

	nurse := actorWithRole(access.RoleNurse)
	if _, err := svc.Statistics(context.Background(), nurse); !errors.Is(err, access.ErrAccessDenied) {
		t.Fatalf("nurse statistics should be denied, got %v", err)
	}

	stats, err := svc.Statistics(context.Background(), admin)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.Total != 1 {
		t.Errorf("disabled members must not count, got total %d", stats.Total)
	}
	if stats.ByRole[access.RoleDoctor] != 1 {
		t.Errorf("expected one active doctor, got %d", stats.ByRole[access.RoleDoctor])
	}
}
