package access

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

// stubHospChecker answers the nurse join from a fixed patient→centres map.
type stubHospChecker struct {
	stays map[uuid.UUID][]uuid.UUID
}

func (s *stubHospChecker) PatientHospitalisedIn(_ context.Context, patientID uuid.UUID, centres []uuid.UUID) (bool, error) {
	for _, at := range s.stays[patientID] {
		for _, c := range centres {
			if at == c {
				return true, nil
			}
		}
	}
	return false, nil
}

func TestAuthorizeUnauthenticatedAlwaysDenied(t *testing.T) {
	a := NewAuthorizer(&stubHospChecker{})
	err := a.AuthorizePatient(context.Background(), Anonymous, ActionRead, PatientRef{ID: uuid.New()})
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestAuthorizePatientSecretaryHomeCentre(t *testing.T) {
	a := NewAuthorizer(&stubHospChecker{})
	general, other := uuid.New(), uuid.New()
	sec := actorWith(RoleSecretary, general)

	in := PatientRef{ID: uuid.New(), HomeCentre: &general}
	if err := a.AuthorizePatient(context.Background(), sec, ActionRead, in); err != nil {
		t.Errorf("patient in the secretary's centre should be readable: %v", err)
	}

	out := PatientRef{ID: uuid.New(), HomeCentre: &other}
	if err := a.AuthorizePatient(context.Background(), sec, ActionRead, out); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("patient outside the secretary's centres should be denied, got %v", err)
	}

	none := PatientRef{ID: uuid.New()}
	if err := a.AuthorizePatient(context.Background(), sec, ActionRead, none); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("patient without a home centre should be denied, got %v", err)
	}
}

func TestAuthorizePatientNurseViaHospitalisation(t *testing.T) {
	c1, c2 := uuid.New(), uuid.New()
	linked, unlinked := uuid.New(), uuid.New()
	a := NewAuthorizer(&stubHospChecker{stays: map[uuid.UUID][]uuid.UUID{
		linked:   {c1},
		unlinked: {c2},
	}})
	nurse := actorWith(RoleNurse, c1)

	// Home centre is irrelevant for nurses: the linked patient's home centre
	// is elsewhere, the unlinked patient's home centre is the nurse's own.
	if err := a.AuthorizePatient(context.Background(), nurse, ActionRead, PatientRef{ID: linked, HomeCentre: &c2}); err != nil {
		t.Errorf("hospitalised patient should be readable: %v", err)
	}
	if err := a.AuthorizePatient(context.Background(), nurse, ActionRead, PatientRef{ID: unlinked, HomeCentre: &c1}); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("patient without a hospitalisation at the nurse's centres should be denied, got %v", err)
	}
}

func TestAuthorizeDeleteAdminOnly(t *testing.T) {
	general := uuid.New()
	patient := uuid.New()
	a := NewAuthorizer(&stubHospChecker{stays: map[uuid.UUID][]uuid.UUID{patient: {general}}})
	ref := PatientRef{ID: patient, HomeCentre: &general}

	for _, role := range []Role{RoleMedicalAdmin, RoleDoctor, RoleNurse, RoleSecretary} {
		err := a.AuthorizePatient(context.Background(), actorWith(role, general), ActionDelete, ref)
		if !errors.Is(err, ErrAccessDenied) {
			t.Errorf("%s should not delete even with read access, got %v", role, err)
		}
	}
	if err := a.AuthorizePatient(context.Background(), actorWith(RoleAdmin), ActionDelete, ref); err != nil {
		t.Errorf("admin delete should be allowed: %v", err)
	}
}

func TestAuthorizeMedicalFieldsCapability(t *testing.T) {
	a := NewAuthorizer(&stubHospChecker{})
	ref := PatientRef{ID: uuid.New()}

	if err := a.AuthorizePatient(context.Background(), actorWith(RoleDoctor), ActionManageMedicalFields, ref); err != nil {
		t.Errorf("doctor should manage medical fields: %v", err)
	}
	err := a.AuthorizePatient(context.Background(), actorWith(RoleSecretary), ActionManageMedicalFields, ref)
	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("secretary should not manage medical fields, got %v", err)
	}
}

func TestAuthorizeEventCentreRelation(t *testing.T) {
	a := NewAuthorizer(&stubHospChecker{})
	c1, c2 := uuid.New(), uuid.New()
	ev := EventRef{ID: uuid.New(), PatientID: uuid.New(), CentreID: c1}

	if err := a.AuthorizeEvent(context.Background(), actorWith(RoleNurse, c1), ActionRead, ResourceHospitalisation, ev); err != nil {
		t.Errorf("nurse should read an event at her centre: %v", err)
	}
	err := a.AuthorizeEvent(context.Background(), actorWith(RoleNurse, c2), ActionRead, ResourceHospitalisation, ev)
	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("nurse outside the event centre should be denied, got %v", err)
	}
	if err := a.AuthorizeEvent(context.Background(), actorWith(RoleDoctor), ActionRead, ResourceHospitalisation, ev); err != nil {
		t.Errorf("doctor should read any event: %v", err)
	}
}

func TestAuthorizeAppointmentWriteExcludesSecretary(t *testing.T) {
	a := NewAuthorizer(&stubHospChecker{})
	c1 := uuid.New()
	ev := EventRef{ID: uuid.New(), PatientID: uuid.New(), CentreID: c1}

	err := a.AuthorizeEvent(context.Background(), actorWith(RoleSecretary, c1), ActionManageAdminFields, ResourceAppointment, ev)
	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("secretary appointment writes should be denied, got %v", err)
	}
	// Reads at her centre stay allowed.
	if err := a.AuthorizeEvent(context.Background(), actorWith(RoleSecretary, c1), ActionRead, ResourceAppointment, ev); err != nil {
		t.Errorf("secretary appointment read should be allowed: %v", err)
	}
	if err := a.AuthorizeEvent(context.Background(), actorWith(RoleDoctor), ActionManageAdminFields, ResourceAppointment, ev); err != nil {
		t.Errorf("doctor appointment write should be allowed: %v", err)
	}
}

func TestAuthorizeAdministrativeResources(t *testing.T) {
	a := NewAuthorizer(&stubHospChecker{})
	if err := a.AuthorizeCentre(actorWith(RoleMedicalAdmin), ActionManageAdminFields); err != nil {
		t.Errorf("medical admin should manage centres: %v", err)
	}
	if err := a.AuthorizeCentre(actorWith(RoleDoctor), ActionRead); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("doctor centre access should be denied, got %v", err)
	}
	if err := a.AuthorizeStaff(actorWith(RoleAdmin), ActionManageAdminFields); err != nil {
		t.Errorf("admin should manage staff: %v", err)
	}
	if err := a.AuthorizeStaff(actorWith(RoleNurse), ActionRead); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("nurse staff access should be denied, got %v", err)
	}
}
