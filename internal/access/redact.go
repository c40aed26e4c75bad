package access

import "github.com/google/uuid"

// Fields is a record payload keyed by field name, as submitted for a write
// or projected for a read. Redaction removes keys outright so a caller can
// never distinguish "hidden" from "absent".
type Fields map[string]interface{}

// MedicalFieldConfig names the medical fields of a resource type. Medical
// fields live in the same record as administrative ones; the redactor
// prunes them field-by-field rather than splitting the schema.
type MedicalFieldConfig struct {
	Resource Resource
	Fields   []string
}

// DefaultMedicalFields returns the medical field sets for the resources
// that carry them. Appointments hold only administrative data.
func DefaultMedicalFields() []MedicalFieldConfig {
	return []MedicalFieldConfig{
		{
			Resource: ResourcePatient,
			Fields:   []string{"medical_history", "allergies", "vaccinations", "lifestyle"},
		},
		{
			Resource: ResourceConsultation,
			Fields:   []string{"clinical_exam", "diagnosis", "prescription"},
		},
		{
			Resource: ResourceHospitalisation,
			Fields:   []string{"medical_notes", "nurse_notes", "interventions", "discharge_summary"},
		},
		{
			Resource: ResourceEmergency,
			Fields:   []string{"vital_signs", "first_aid", "initial_diagnosis"},
		},
	}
}

// Redactor strips fields an actor may not view or set. Stateless after
// construction; safe for concurrent use.
type Redactor struct {
	medical map[Resource]map[string]bool
}

func NewRedactor() *Redactor {
	m := make(map[Resource]map[string]bool)
	for _, cfg := range DefaultMedicalFields() {
		set := make(map[string]bool, len(cfg.Fields))
		for _, f := range cfg.Fields {
			set[f] = true
		}
		m[cfg.Resource] = set
	}
	return &Redactor{medical: m}
}

// CanViewMedical reports whether the actor may see medical fields.
func (r *Redactor) CanViewMedical(actor Actor) bool {
	return actor.Role.Can(ManageMedicalData)
}

// FilterWrite returns the subset of submitted fields the actor may set.
// Medical fields submitted by an actor without the medical capability are
// dropped silently; the rest of the write proceeds. A home centre outside a
// secretary's or nurse's own centres is likewise dropped.
func (r *Redactor) FilterWrite(actor Actor, res Resource, submitted Fields) Fields {
	accepted := make(Fields, len(submitted))
	medical := r.medical[res]
	canMedical := actor.Role.Can(ManageMedicalData)
	for k, v := range submitted {
		if medical[k] && !canMedical {
			continue
		}
		accepted[k] = v
	}

	if res == ResourcePatient {
		if actor.Role == RoleSecretary || actor.Role == RoleNurse {
			if raw, ok := accepted["home_centre_id"]; ok {
				if id, ok := centreID(raw); !ok || !actor.MemberOf(id) {
					delete(accepted, "home_centre_id")
				}
			}
		}
	}
	return accepted
}

// FilterRead returns the projection of a record visible to the actor.
// Medical keys are omitted entirely for actors without the medical
// capability.
func (r *Redactor) FilterRead(actor Actor, res Resource, record Fields) Fields {
	medical := r.medical[res]
	if len(medical) == 0 || r.CanViewMedical(actor) {
		visible := make(Fields, len(record))
		for k, v := range record {
			visible[k] = v
		}
		return visible
	}
	visible := make(Fields, len(record))
	for k, v := range record {
		if medical[k] {
			continue
		}
		visible[k] = v
	}
	return visible
}

// centreID coerces a submitted home-centre value to a UUID. Accepts the
// parsed uuid.UUID from typed callers or the string form from JSON input.
func centreID(v interface{}) (uuid.UUID, bool) {
	switch t := v.(type) {
	case uuid.UUID:
		return t, true
	case *uuid.UUID:
		if t == nil {
			return uuid.Nil, false
		}
		return *t, true
	case string:
		id, err := uuid.Parse(t)
		if err != nil {
			return uuid.Nil, false
		}
		return id, true
	}
	return uuid.Nil, false
}
