package access

import "github.com/google/uuid"

// Resource identifies a scoped resource type.
type Resource string

const (
	ResourcePatient         Resource = "patient"
	ResourceConsultation    Resource = "consultation"
	ResourceHospitalisation Resource = "hospitalisation"
	ResourceEmergency       Resource = "emergency"
	ResourceAppointment     Resource = "appointment"
	ResourceCentre          Resource = "centre"
	ResourceStaff           Resource = "staff"
)

// ScopeKind tags the variant of a ScopePredicate.
type ScopeKind int

const (
	// ScopeDenyAll matches nothing. The zero value, so a predicate built
	// from a missing rule denies rather than widens.
	ScopeDenyAll ScopeKind = iota
	// ScopeAll matches every instance.
	ScopeAll
	// ScopeCentreIn matches instances whose centre field is one of Centres.
	// For patients the centre field is the home centre; for clinical events
	// it is the event's own site of care.
	ScopeCentreIn
	// ScopeDoctorEquals matches events whose attending doctor is DoctorID.
	ScopeDoctorEquals
	// ScopeViaHospitalisationIn matches patients having at least one
	// hospitalisation (active or historical) at one of Centres. Visibility
	// is decided by that join, never by the patient's home centre.
	ScopeViaHospitalisationIn
)

// ScopePredicate describes which instances of a resource type an actor may
// enumerate. Repositories translate it into query filters.
type ScopePredicate struct {
	Kind     ScopeKind
	Centres  []uuid.UUID
	DoctorID uuid.UUID
}

func AllowAll() ScopePredicate { return ScopePredicate{Kind: ScopeAll} }
func DenyAll() ScopePredicate  { return ScopePredicate{Kind: ScopeDenyAll} }

func CentreIn(centres []uuid.UUID) ScopePredicate {
	return ScopePredicate{Kind: ScopeCentreIn, Centres: centres}
}

func DoctorEquals(doctorID uuid.UUID) ScopePredicate {
	return ScopePredicate{Kind: ScopeDoctorEquals, DoctorID: doctorID}
}

func ViaHospitalisationIn(centres []uuid.UUID) ScopePredicate {
	return ScopePredicate{Kind: ScopeViaHospitalisationIn, Centres: centres}
}

// Denies reports whether the predicate matches nothing.
func (p ScopePredicate) Denies() bool { return p.Kind == ScopeDenyAll }

// Resolver produces listing scopes per actor and resource type. Stateless;
// the zero value is ready to use.
type Resolver struct{}

// Resolve returns the filter predicate for enumerating a resource type.
// Actors without a role profile get deny-all for everything.
func (Resolver) Resolve(actor Actor, res Resource) ScopePredicate {
	if !actor.Authenticated() || !actor.HasProfile() {
		return DenyAll()
	}

	switch res {
	case ResourcePatient:
		switch actor.Role {
		case RoleAdmin, RoleMedicalAdmin, RoleDoctor:
			return AllowAll()
		case RoleSecretary:
			return CentreIn(actor.Centres)
		case RoleNurse:
			return ViaHospitalisationIn(actor.Centres)
		}
		return DenyAll()

	case ResourceConsultation, ResourceHospitalisation, ResourceEmergency, ResourceAppointment:
		switch actor.Role {
		case RoleAdmin, RoleMedicalAdmin, RoleDoctor:
			// Doctors see all events when viewing a patient's full history;
			// the per-doctor dashboard is the separate ResolveMyEvents call.
			return AllowAll()
		case RoleSecretary, RoleNurse:
			return CentreIn(actor.Centres)
		}
		return DenyAll()

	case ResourceCentre:
		if actor.Role.Can(ManageCentres) {
			return AllowAll()
		}
		return DenyAll()

	case ResourceStaff:
		if actor.Role.Can(ManageUsers) {
			return AllowAll()
		}
		return DenyAll()
	}

	return DenyAll()
}

// ResolveMyEvents returns the scope for an actor's "my events" dashboard
// view of a clinical event type: events where the actor is the attending
// doctor. Roles without a doctor identity fall back to Resolve.
func (r Resolver) ResolveMyEvents(actor Actor, res Resource) ScopePredicate {
	if !actor.Authenticated() || !actor.HasProfile() {
		return DenyAll()
	}
	switch res {
	case ResourceConsultation, ResourceHospitalisation, ResourceEmergency, ResourceAppointment:
	default:
		return r.Resolve(actor, res)
	}
	switch actor.Role {
	case RoleDoctor, RoleMedicalAdmin:
		return DoctorEquals(actor.ID)
	}
	return r.Resolve(actor, res)
}
