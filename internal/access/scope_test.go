package access

import (
	"testing"

	"github.com/google/uuid"
)

func actorWith(role Role, centres ...uuid.UUID) Actor {
	return Actor{ID: uuid.New(), Role: role, Centres: centres}
}

func TestResolvePatientGlobalRoles(t *testing.T) {
	var r Resolver
	for _, role := range []Role{RoleAdmin, RoleMedicalAdmin, RoleDoctor} {
		p := r.Resolve(actorWith(role), ResourcePatient)
		if p.Kind != ScopeAll {
			t.Errorf("%s: expected ScopeAll, got %v", role, p.Kind)
		}
	}
}

func TestResolvePatientSecretary(t *testing.T) {
	var r Resolver
	c1, c2 := uuid.New(), uuid.New()
	p := r.Resolve(actorWith(RoleSecretary, c1, c2), ResourcePatient)
	if p.Kind != ScopeCentreIn {
		t.Fatalf("expected ScopeCentreIn, got %v", p.Kind)
	}
	if len(p.Centres) != 2 {
		t.Errorf("expected 2 centres, got %d", len(p.Centres))
	}
}

func TestResolvePatientNurseUsesHospitalisationJoin(t *testing.T) {
	var r Resolver
	c1 := uuid.New()
	p := r.Resolve(actorWith(RoleNurse, c1), ResourcePatient)
	if p.Kind != ScopeViaHospitalisationIn {
		t.Fatalf("expected ScopeViaHospitalisationIn, got %v", p.Kind)
	}
	if len(p.Centres) != 1 || p.Centres[0] != c1 {
		t.Errorf("predicate should carry the nurse's centres")
	}
}

func TestResolveNoProfileDeniesEverything(t *testing.T) {
	var r Resolver
	noProfile := Actor{ID: uuid.New()}
	for _, res := range []Resource{
		ResourcePatient, ResourceConsultation, ResourceHospitalisation,
		ResourceEmergency, ResourceAppointment, ResourceCentre, ResourceStaff,
	} {
		if p := r.Resolve(noProfile, res); !p.Denies() {
			t.Errorf("%s: actor without profile should resolve to deny-all", res)
		}
	}
}

func TestResolveUnauthenticatedDenies(t *testing.T) {
	var r Resolver
	if p := r.Resolve(Anonymous, ResourcePatient); !p.Denies() {
		t.Error("anonymous actor should resolve to deny-all")
	}
}

func TestResolveEventsCentreScopedRoles(t *testing.T) {
	var r Resolver
	c1 := uuid.New()
	for _, role := range []Role{RoleSecretary, RoleNurse} {
		for _, res := range []Resource{ResourceConsultation, ResourceHospitalisation, ResourceEmergency, ResourceAppointment} {
			p := r.Resolve(actorWith(role, c1), res)
			if p.Kind != ScopeCentreIn {
				t.Errorf("%s/%s: expected ScopeCentreIn, got %v", role, res, p.Kind)
			}
		}
	}
}

func TestResolveMyEventsDoctor(t *testing.T) {
	var r Resolver
	doc := actorWith(RoleDoctor)
	p := r.ResolveMyEvents(doc, ResourceConsultation)
	if p.Kind != ScopeDoctorEquals {
		t.Fatalf("expected ScopeDoctorEquals, got %v", p.Kind)
	}
	if p.DoctorID != doc.ID {
		t.Error("predicate should carry the doctor's own id")
	}

	// The full-history call site stays global for the same doctor.
	if p := r.Resolve(doc, ResourceConsultation); p.Kind != ScopeAll {
		t.Errorf("full-history scope should stay global, got %v", p.Kind)
	}
}

func TestResolveMyEventsNonDoctorFallsBack(t *testing.T) {
	var r Resolver
	c1 := uuid.New()
	p := r.ResolveMyEvents(actorWith(RoleNurse, c1), ResourceEmergency)
	if p.Kind != ScopeCentreIn {
		t.Errorf("nurse my-events should fall back to centre scope, got %v", p.Kind)
	}
}

func TestResolveAdministrativeResources(t *testing.T) {
	var r Resolver
	if p := r.Resolve(actorWith(RoleAdmin), ResourceCentre); p.Kind != ScopeAll {
		t.Error("admin should enumerate centres")
	}
	if p := r.Resolve(actorWith(RoleDoctor), ResourceCentre); !p.Denies() {
		t.Error("doctor should not enumerate centres")
	}
	if p := r.Resolve(actorWith(RoleSecretary), ResourceStaff); !p.Denies() {
		t.Error("secretary should not enumerate staff")
	}
}
