package patient

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinrec/clinrec/internal/access"
)

// Patient maps to the patient table. Administrative and medical fields live
// in the same record; the access.Redactor prunes medical fields per actor
// instead of splitting them into a separate entity.
type Patient struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	FirstName        string     `db:"first_name" json:"first_name"`
	Postname         *string    `db:"postname" json:"postname,omitempty"`
	LastName         string     `db:"last_name" json:"last_name"`
	DateOfBirth      time.Time  `db:"date_of_birth" json:"date_of_birth"`
	Gender           string     `db:"gender" json:"gender"`
	Phone            *string    `db:"phone" json:"phone,omitempty"`
	Address          *string    `db:"address" json:"address,omitempty"`
	EmergencyContact *string    `db:"emergency_contact" json:"emergency_contact,omitempty"`
	IsSubscriber     bool       `db:"is_subscriber" json:"is_subscriber"`
	HomeCentreID     *uuid.UUID `db:"home_centre_id" json:"home_centre_id,omitempty"`

	MedicalHistory *string `db:"medical_history" json:"medical_history,omitempty"`
	Allergies      *string `db:"allergies" json:"allergies,omitempty"`
	Vaccinations   *string `db:"vaccinations" json:"vaccinations,omitempty"`
	Lifestyle      *string `db:"lifestyle" json:"lifestyle,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// dateLayout is the wire format for date_of_birth.
const dateLayout = "2006-01-02"

// Fields projects the record into a field map for redaction. Unset optional
// fields are omitted so absence and redaction look identical to callers.
func (p *Patient) Fields() access.Fields {
	f := access.Fields{
		"id":            p.ID.String(),
		"first_name":    p.FirstName,
		"last_name":     p.LastName,
		"date_of_birth": p.DateOfBirth.Format(dateLayout),
		"gender":        p.Gender,
		"is_subscriber": p.IsSubscriber,
		"created_at":    p.CreatedAt,
	}
	putStr := func(key string, v *string) {
		if v != nil {
			f[key] = *v
		}
	}
	putStr("postname", p.Postname)
	putStr("phone", p.Phone)
	putStr("address", p.Address)
	putStr("emergency_contact", p.EmergencyContact)
	putStr("medical_history", p.MedicalHistory)
	putStr("allergies", p.Allergies)
	putStr("vaccinations", p.Vaccinations)
	putStr("lifestyle", p.Lifestyle)
	if p.HomeCentreID != nil {
		f["home_centre_id"] = p.HomeCentreID.String()
	}
	return f
}

// Apply sets the given accepted fields on the record. Unknown keys are
// ignored; malformed values fail the whole write.
func (p *Patient) Apply(fields access.Fields) error {
	for key, raw := range fields {
		switch key {
		case "first_name":
			s, err := stringValue(key, raw)
			if err != nil {
				return err
			}
			p.FirstName = s
		case "last_name":
			s, err := stringValue(key, raw)
			if err != nil {
				return err
			}
			p.LastName = s
		case "gender":
			s, err := stringValue(key, raw)
			if err != nil {
				return err
			}
			p.Gender = s
		case "date_of_birth":
			s, err := stringValue(key, raw)
			if err != nil {
				return err
			}
			dob, err := time.Parse(dateLayout, s)
			if err != nil {
				return fmt.Errorf("date_of_birth: %w", err)
			}
			p.DateOfBirth = dob
		case "is_subscriber":
			b, ok := raw.(bool)
			if !ok {
				return fmt.Errorf("is_subscriber: expected bool")
			}
			p.IsSubscriber = b
		case "home_centre_id":
			if raw == nil {
				p.HomeCentreID = nil
				continue
			}
			s, err := stringValue(key, raw)
			if err != nil {
				return err
			}
			id, err := uuid.Parse(s)
			if err != nil {
				return fmt.Errorf("home_centre_id: %w", err)
			}
			p.HomeCentreID = &id
		case "postname":
			if err := applyOptional(key, raw, &p.Postname); err != nil {
				return err
			}
		case "phone":
			if err := applyOptional(key, raw, &p.Phone); err != nil {
				return err
			}
		case "address":
			if err := applyOptional(key, raw, &p.Address); err != nil {
				return err
			}
		case "emergency_contact":
			if err := applyOptional(key, raw, &p.EmergencyContact); err != nil {
				return err
			}
		case "medical_history":
			if err := applyOptional(key, raw, &p.MedicalHistory); err != nil {
				return err
			}
		case "allergies":
			if err := applyOptional(key, raw, &p.Allergies); err != nil {
				return err
			}
		case "vaccinations":
			if err := applyOptional(key, raw, &p.Vaccinations); err != nil {
				return err
			}
		case "lifestyle":
			if err := applyOptional(key, raw, &p.Lifestyle); err != nil {
				return err
			}
		}
	}
	return nil
}

// validate checks the fields every patient record must carry.
func (p *Patient) validate() error {
	if p.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if p.LastName == "" {
		return fmt.Errorf("last_name is required")
	}
	if p.DateOfBirth.IsZero() {
		return fmt.Errorf("date_of_birth is required")
	}
	if p.Gender != "M" && p.Gender != "F" {
		return fmt.Errorf("gender must be M or F")
	}
	return nil
}

func stringValue(key string, raw interface{}) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected string", key)
	}
	return s, nil
}

func applyOptional(key string, raw interface{}, dst **string) error {
	if raw == nil {
		*dst = nil
		return nil
	}
	s, err := stringValue(key, raw)
	if err != nil {
		return err
	}
	*dst = &s
	return nil
}
