package clinical

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinrec/clinrec/internal/access"
)

func TestHospitalisationActive(t *testing.T) {
	h := &Hospitalisation{
		PatientID:     uuid.New(),
		CentreID:      uuid.New(),
		AdmissionDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	if !h.Active() {
		t.Fatal("stay without discharge date must be active")
	}
	if h.Fields()["active"] != true {
		t.Error("projection should carry the active flag")
	}

	if err := h.Apply(access.Fields{"discharge_date": "2024-05-10"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if h.Active() {
		t.Error("stay with discharge date must not be active")
	}
}

func TestHospitalisationValidate_DischargeBeforeAdmission(t *testing.T) {
	h := &Hospitalisation{
		PatientID:     uuid.New(),
		CentreID:      uuid.New(),
		AdmissionDate: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
	}
	early := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	h.DischargeDate = &early
	if err := h.Validate(); err == nil {
		t.Fatal("discharge before admission must not validate")
	}
}

func TestAppointmentValidate_StatusDefaultsToScheduled(t *testing.T) {
	a := &Appointment{
		PatientID:   uuid.New(),
		DoctorID:    uuid.New(),
		CentreID:    uuid.New(),
		ScheduledAt: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if a.Status != AppointmentScheduled {
		t.Errorf("expected default status, got %q", a.Status)
	}

	a.Status = "maybe"
	if err := a.Validate(); err == nil {
		t.Fatal("unknown status must not validate")
	}
}

func TestApply_UnknownKeysIgnored(t *testing.T) {
	c := &Consultation{}
	if err := c.Apply(access.Fields{"nonsense": 42, "reason": "checkup"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if c.Reason != "checkup" {
		t.Error("known keys must still apply")
	}
}

func TestNewEvent_NonEventResource(t *testing.T) {
	if NewEvent(access.ResourceCentre) != nil {
		t.Fatal("centre is not an event kind")
	}
}
