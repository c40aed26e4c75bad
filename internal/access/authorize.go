package access

import (
	"context"

	"github.com/google/uuid"
)

// Action distinguishes what an actor wants to do with a single resource
// instance.
type Action string

const (
	ActionRead                Action = "read"
	ActionManageAdminFields   Action = "manage_admin_fields"
	ActionManageMedicalFields Action = "manage_medical_fields"
	ActionDelete              Action = "delete"
)

// HospitalisationChecker answers the nurse-scoping join for a single
// patient: does the patient have at least one hospitalisation at any of the
// given centres? Implemented by the clinical event repository.
type HospitalisationChecker interface {
	PatientHospitalisedIn(ctx context.Context, patientID uuid.UUID, centres []uuid.UUID) (bool, error)
}

// PatientRef carries the fields of a patient the authorizer needs.
type PatientRef struct {
	ID         uuid.UUID
	HomeCentre *uuid.UUID
}

// EventRef carries the fields of a clinical event the authorizer needs.
type EventRef struct {
	ID        uuid.UUID
	PatientID uuid.UUID
	DoctorID  *uuid.UUID
	CentreID  uuid.UUID
}

// Authorizer makes object-level permission decisions. It evaluates the same
// relations the Resolver uses, but against one concrete instance. Construct
// once and inject; it holds no mutable state.
type Authorizer struct {
	hosp HospitalisationChecker
}

func NewAuthorizer(hosp HospitalisationChecker) *Authorizer {
	return &Authorizer{hosp: hosp}
}

// preflight covers the checks shared by every object decision: identity,
// role profile, and the admin-only delete rule.
func (a *Authorizer) preflight(actor Actor, action Action) error {
	if !actor.Authenticated() {
		return Denied("unauthenticated")
	}
	if !actor.HasProfile() {
		return Denied("no role profile")
	}
	if action == ActionDelete && actor.Role != RoleAdmin {
		return Denied("only administrators may delete records")
	}
	switch action {
	case ActionManageAdminFields:
		if !actor.Role.Can(ManageAdminData) {
			return Denied("role may not manage administrative data")
		}
	case ActionManageMedicalFields:
		if !actor.Role.Can(ManageMedicalData) {
			return Denied("role may not manage medical data")
		}
	}
	return nil
}

// AuthorizePatient decides an action against one patient. The nurse
// relation is re-derived from the hospitalisation join, never from the
// patient's home centre.
func (a *Authorizer) AuthorizePatient(ctx context.Context, actor Actor, action Action, p PatientRef) error {
	if err := a.preflight(actor, action); err != nil {
		return err
	}

	switch actor.Role {
	case RoleAdmin, RoleMedicalAdmin, RoleDoctor:
		return nil
	case RoleSecretary:
		if p.HomeCentre != nil && actor.MemberOf(*p.HomeCentre) {
			return nil
		}
		return Denied("patient is outside the secretary's centres")
	case RoleNurse:
		linked, err := a.hosp.PatientHospitalisedIn(ctx, p.ID, actor.Centres)
		if err != nil {
			return err
		}
		if linked {
			return nil
		}
		return Denied("patient has no hospitalisation at the nurse's centres")
	}
	return Denied("role has no patient access")
}

// AuthorizeEvent decides an action against one clinical event. Secretary
// and nurse visibility follows the event's own centre, not the patient's
// home centre.
func (a *Authorizer) AuthorizeEvent(ctx context.Context, actor Actor, action Action, res Resource, e EventRef) error {
	if err := a.preflight(actor, action); err != nil {
		return err
	}
	if res == ResourceAppointment && action != ActionRead && action != ActionDelete {
		if !actor.Role.Can(ManageAppointments) {
			return Denied("role may not manage appointments")
		}
	}

	switch actor.Role {
	case RoleAdmin, RoleMedicalAdmin, RoleDoctor:
		return nil
	case RoleSecretary, RoleNurse:
		if actor.MemberOf(e.CentreID) {
			return nil
		}
		return Denied("event is outside the actor's centres")
	}
	return Denied("role has no event access")
}

// AuthorizeCentre decides an action against the centre registry.
func (a *Authorizer) AuthorizeCentre(actor Actor, action Action) error {
	if err := a.preflight(actor, action); err != nil {
		return err
	}
	if actor.Role.Can(ManageCentres) {
		return nil
	}
	return Denied("role may not manage centres")
}

// AuthorizeStaff decides an action against staff accounts.
func (a *Authorizer) AuthorizeStaff(actor Actor, action Action) error {
	if err := a.preflight(actor, action); err != nil {
		return err
	}
	if actor.Role.Can(ManageUsers) {
		return nil
	}
	return Denied("role may not manage users")
}
