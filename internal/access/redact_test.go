package access

import (
	"testing"

	"github.com/google/uuid"
)

func TestFilterWriteDropsMedicalFieldsSilently(t *testing.T) {
	r := NewRedactor()
	sec := actorWith(RoleSecretary, uuid.New())

	accepted := r.FilterWrite(sec, ResourcePatient, Fields{
		"first_name":      "Jane",
		"medical_history": "asthma",
		"allergies":       "penicillin",
	})
	if _, ok := accepted["medical_history"]; ok {
		t.Error("medical_history should be dropped for a secretary")
	}
	if _, ok := accepted["allergies"]; ok {
		t.Error("allergies should be dropped for a secretary")
	}
	if accepted["first_name"] != "Jane" {
		t.Error("administrative fields should pass through")
	}
}

func TestFilterWriteKeepsMedicalFieldsForDoctor(t *testing.T) {
	r := NewRedactor()
	accepted := r.FilterWrite(actorWith(RoleDoctor), ResourcePatient, Fields{
		"medical_history": "asthma",
	})
	if accepted["medical_history"] != "asthma" {
		t.Error("doctor medical fields should be accepted")
	}
}

func TestFilterWriteDropsForeignHomeCentre(t *testing.T) {
	r := NewRedactor()
	own, foreign := uuid.New(), uuid.New()
	sec := actorWith(RoleSecretary, own)

	accepted := r.FilterWrite(sec, ResourcePatient, Fields{"home_centre_id": foreign.String()})
	if _, ok := accepted["home_centre_id"]; ok {
		t.Error("home centre outside the secretary's centres should be dropped")
	}

	accepted = r.FilterWrite(sec, ResourcePatient, Fields{"home_centre_id": own.String()})
	if _, ok := accepted["home_centre_id"]; !ok {
		t.Error("home centre inside the secretary's centres should be kept")
	}

	// Global roles place patients at any centre.
	accepted = r.FilterWrite(actorWith(RoleAdmin), ResourcePatient, Fields{"home_centre_id": foreign.String()})
	if _, ok := accepted["home_centre_id"]; !ok {
		t.Error("admin home centre assignment should be kept")
	}
}

func TestFilterReadOmitsKeysNotValues(t *testing.T) {
	r := NewRedactor()
	sec := actorWith(RoleSecretary, uuid.New())

	visible := r.FilterRead(sec, ResourcePatient, Fields{
		"last_name":       "Doe",
		"medical_history": "asthma",
		"vaccinations":    "",
	})
	if _, ok := visible["medical_history"]; ok {
		t.Error("medical_history key should be absent, not emptied")
	}
	if _, ok := visible["vaccinations"]; ok {
		t.Error("empty medical values must be omitted too")
	}
	if visible["last_name"] != "Doe" {
		t.Error("administrative fields should remain visible")
	}
}

func TestFilterReadConsultationDiagnosis(t *testing.T) {
	r := NewRedactor()
	record := Fields{"reason": "checkup", "diagnosis": "flu"}

	sec := r.FilterRead(actorWith(RoleSecretary), ResourceConsultation, record)
	if _, ok := sec["diagnosis"]; ok {
		t.Error("secretary should not see a consultation diagnosis")
	}
	doc := r.FilterRead(actorWith(RoleDoctor), ResourceConsultation, record)
	if doc["diagnosis"] != "flu" {
		t.Error("doctor should see the diagnosis")
	}
}

func TestFilterReadAppointmentsUnredacted(t *testing.T) {
	r := NewRedactor()
	visible := r.FilterRead(actorWith(RoleSecretary), ResourceAppointment, Fields{
		"reason": "follow-up", "notes": "bring referral",
	})
	if len(visible) != 2 {
		t.Error("appointments carry no medical fields to redact")
	}
}

func TestFilterWriteDoesNotMutateInput(t *testing.T) {
	r := NewRedactor()
	submitted := Fields{"medical_history": "x", "first_name": "Jane"}
	r.FilterWrite(actorWith(RoleSecretary), ResourcePatient, submitted)
	if submitted["medical_history"] != "x" {
		t.Error("submitted payload must not be mutated")
	}
}
