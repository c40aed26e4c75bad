package clinical

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinrec/clinrec/internal/access"
)

// Event is one clinical or scheduling record attached to a patient. The four
// concrete types share lifecycle and authorization handling; the access
// resource tag picks the redaction set and the storage table.
type Event interface {
	Kind() access.Resource
	Ref() access.EventRef
	Fields() access.Fields
	Apply(fields access.Fields) error
	Validate() error
}

// NewEvent returns an empty event of the given kind, or nil for resources
// that are not events.
func NewEvent(kind access.Resource) Event {
	switch kind {
	case access.ResourceConsultation:
		return &Consultation{}
	case access.ResourceHospitalisation:
		return &Hospitalisation{}
	case access.ResourceEmergency:
		return &Emergency{}
	case access.ResourceAppointment:
		return &Appointment{}
	}
	return nil
}

const dateLayout = "2006-01-02"

// Consultation is a doctor-patient encounter at a centre.
type Consultation struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	CentreID  uuid.UUID `db:"centre_id" json:"centre_id"`
	Date      time.Time `db:"date" json:"date"`
	Reason    string    `db:"reason" json:"reason"`

	ClinicalExam *string `db:"clinical_exam" json:"clinical_exam,omitempty"`
	Diagnosis    *string `db:"diagnosis" json:"diagnosis,omitempty"`
	Prescription *string `db:"prescription" json:"prescription,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (c *Consultation) Kind() access.Resource { return access.ResourceConsultation }

func (c *Consultation) Ref() access.EventRef {
	doctor := c.DoctorID
	return access.EventRef{ID: c.ID, PatientID: c.PatientID, DoctorID: &doctor, CentreID: c.CentreID}
}

func (c *Consultation) Fields() access.Fields {
	f := access.Fields{
		"id":         c.ID.String(),
		"patient_id": c.PatientID.String(),
		"doctor_id":  c.DoctorID.String(),
		"centre_id":  c.CentreID.String(),
		"date":       c.Date.Format(dateLayout),
		"reason":     c.Reason,
		"created_at": c.CreatedAt,
	}
	putStr(f, "clinical_exam", c.ClinicalExam)
	putStr(f, "diagnosis", c.Diagnosis)
	putStr(f, "prescription", c.Prescription)
	return f
}

func (c *Consultation) Apply(fields access.Fields) error {
	for key, raw := range fields {
		var err error
		switch key {
		case "patient_id":
			err = applyUUID(key, raw, &c.PatientID)
		case "doctor_id":
			err = applyUUID(key, raw, &c.DoctorID)
		case "centre_id":
			err = applyUUID(key, raw, &c.CentreID)
		case "date":
			err = applyDate(key, raw, &c.Date)
		case "reason":
			c.Reason, err = stringValue(key, raw)
		case "clinical_exam":
			err = applyOptional(key, raw, &c.ClinicalExam)
		case "diagnosis":
			err = applyOptional(key, raw, &c.Diagnosis)
		case "prescription":
			err = applyOptional(key, raw, &c.Prescription)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Consultation) Validate() error {
	if c.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if c.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if c.CentreID == uuid.Nil {
		return fmt.Errorf("centre_id is required")
	}
	if c.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	return nil
}

// Hospitalisation is an inpatient stay. An open stay has no discharge date;
// both open and closed stays link a nurse of the centre to the patient.
type Hospitalisation struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID      *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	CentreID      uuid.UUID  `db:"centre_id" json:"centre_id"`
	AdmissionDate time.Time  `db:"admission_date" json:"admission_date"`
	DischargeDate *time.Time `db:"discharge_date" json:"discharge_date,omitempty"`
	Ward          *string    `db:"ward" json:"ward,omitempty"`
	Reason        string     `db:"reason" json:"reason"`

	MedicalNotes     *string `db:"medical_notes" json:"medical_notes,omitempty"`
	NurseNotes       *string `db:"nurse_notes" json:"nurse_notes,omitempty"`
	Interventions    *string `db:"interventions" json:"interventions,omitempty"`
	DischargeSummary *string `db:"discharge_summary" json:"discharge_summary,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (h *Hospitalisation) Kind() access.Resource { return access.ResourceHospitalisation }

// Active reports whether the stay is still open.
func (h *Hospitalisation) Active() bool { return h.DischargeDate == nil }

func (h *Hospitalisation) Ref() access.EventRef {
	return access.EventRef{ID: h.ID, PatientID: h.PatientID, DoctorID: h.DoctorID, CentreID: h.CentreID}
}

func (h *Hospitalisation) Fields() access.Fields {
	f := access.Fields{
		"id":             h.ID.String(),
		"patient_id":     h.PatientID.String(),
		"centre_id":      h.CentreID.String(),
		"admission_date": h.AdmissionDate.Format(dateLayout),
		"reason":         h.Reason,
		"active":         h.Active(),
		"created_at":     h.CreatedAt,
	}
	if h.DoctorID != nil {
		f["doctor_id"] = h.DoctorID.String()
	}
	if h.DischargeDate != nil {
		f["discharge_date"] = h.DischargeDate.Format(dateLayout)
	}
	putStr(f, "ward", h.Ward)
	putStr(f, "medical_notes", h.MedicalNotes)
	putStr(f, "nurse_notes", h.NurseNotes)
	putStr(f, "interventions", h.Interventions)
	putStr(f, "discharge_summary", h.DischargeSummary)
	return f
}

func (h *Hospitalisation) Apply(fields access.Fields) error {
	for key, raw := range fields {
		var err error
		switch key {
		case "patient_id":
			err = applyUUID(key, raw, &h.PatientID)
		case "doctor_id":
			err = applyOptionalUUID(key, raw, &h.DoctorID)
		case "centre_id":
			err = applyUUID(key, raw, &h.CentreID)
		case "admission_date":
			err = applyDate(key, raw, &h.AdmissionDate)
		case "discharge_date":
			err = applyOptionalDate(key, raw, &h.DischargeDate)
		case "ward":
			err = applyOptional(key, raw, &h.Ward)
		case "reason":
			h.Reason, err = stringValue(key, raw)
		case "medical_notes":
			err = applyOptional(key, raw, &h.MedicalNotes)
		case "nurse_notes":
			err = applyOptional(key, raw, &h.NurseNotes)
		case "interventions":
			err = applyOptional(key, raw, &h.Interventions)
		case "discharge_summary":
			err = applyOptional(key, raw, &h.DischargeSummary)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (h *Hospitalisation) Validate() error {
	if h.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if h.CentreID == uuid.Nil {
		return fmt.Errorf("centre_id is required")
	}
	if h.AdmissionDate.IsZero() {
		return fmt.Errorf("admission_date is required")
	}
	if h.DischargeDate != nil && h.DischargeDate.Before(h.AdmissionDate) {
		return fmt.Errorf("discharge_date precedes admission_date")
	}
	return nil
}

// Emergency is an unplanned arrival at a centre's emergency unit.
type Emergency struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID    *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	CentreID    uuid.UUID  `db:"centre_id" json:"centre_id"`
	ArrivalTime time.Time  `db:"arrival_time" json:"arrival_time"`
	Reason      string     `db:"reason" json:"reason"`
	Outcome     *string    `db:"outcome" json:"outcome,omitempty"`

	VitalSigns       *string `db:"vital_signs" json:"vital_signs,omitempty"`
	FirstAid         *string `db:"first_aid" json:"first_aid,omitempty"`
	InitialDiagnosis *string `db:"initial_diagnosis" json:"initial_diagnosis,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (e *Emergency) Kind() access.Resource { return access.ResourceEmergency }

func (e *Emergency) Ref() access.EventRef {
	return access.EventRef{ID: e.ID, PatientID: e.PatientID, DoctorID: e.DoctorID, CentreID: e.CentreID}
}

func (e *Emergency) Fields() access.Fields {
	f := access.Fields{
		"id":           e.ID.String(),
		"patient_id":   e.PatientID.String(),
		"centre_id":    e.CentreID.String(),
		"arrival_time": e.ArrivalTime.Format(time.RFC3339),
		"reason":       e.Reason,
		"created_at":   e.CreatedAt,
	}
	if e.DoctorID != nil {
		f["doctor_id"] = e.DoctorID.String()
	}
	putStr(f, "outcome", e.Outcome)
	putStr(f, "vital_signs", e.VitalSigns)
	putStr(f, "first_aid", e.FirstAid)
	putStr(f, "initial_diagnosis", e.InitialDiagnosis)
	return f
}

func (e *Emergency) Apply(fields access.Fields) error {
	for key, raw := range fields {
		var err error
		switch key {
		case "patient_id":
			err = applyUUID(key, raw, &e.PatientID)
		case "doctor_id":
			err = applyOptionalUUID(key, raw, &e.DoctorID)
		case "centre_id":
			err = applyUUID(key, raw, &e.CentreID)
		case "arrival_time":
			err = applyTime(key, raw, &e.ArrivalTime)
		case "reason":
			e.Reason, err = stringValue(key, raw)
		case "outcome":
			err = applyOptional(key, raw, &e.Outcome)
		case "vital_signs":
			err = applyOptional(key, raw, &e.VitalSigns)
		case "first_aid":
			err = applyOptional(key, raw, &e.FirstAid)
		case "initial_diagnosis":
			err = applyOptional(key, raw, &e.InitialDiagnosis)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Emergency) Validate() error {
	if e.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if e.CentreID == uuid.Nil {
		return fmt.Errorf("centre_id is required")
	}
	if e.ArrivalTime.IsZero() {
		return fmt.Errorf("arrival_time is required")
	}
	return nil
}

// Appointment statuses.
const (
	AppointmentScheduled = "scheduled"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

// Appointment is a scheduled slot with a doctor. Purely administrative; it
// carries no medical fields and is never redacted.
type Appointment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctor_id"`
	CentreID    uuid.UUID `db:"centre_id" json:"centre_id"`
	ScheduledAt time.Time `db:"scheduled_at" json:"scheduled_at"`
	Reason      string    `db:"reason" json:"reason"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

func (a *Appointment) Kind() access.Resource { return access.ResourceAppointment }

func (a *Appointment) Ref() access.EventRef {
	doctor := a.DoctorID
	return access.EventRef{ID: a.ID, PatientID: a.PatientID, DoctorID: &doctor, CentreID: a.CentreID}
}

func (a *Appointment) Fields() access.Fields {
	return access.Fields{
		"id":           a.ID.String(),
		"patient_id":   a.PatientID.String(),
		"doctor_id":    a.DoctorID.String(),
		"centre_id":    a.CentreID.String(),
		"scheduled_at": a.ScheduledAt.Format(time.RFC3339),
		"reason":       a.Reason,
		"status":       a.Status,
		"created_at":   a.CreatedAt,
	}
}

func (a *Appointment) Apply(fields access.Fields) error {
	for key, raw := range fields {
		var err error
		switch key {
		case "patient_id":
			err = applyUUID(key, raw, &a.PatientID)
		case "doctor_id":
			err = applyUUID(key, raw, &a.DoctorID)
		case "centre_id":
			err = applyUUID(key, raw, &a.CentreID)
		case "scheduled_at":
			err = applyTime(key, raw, &a.ScheduledAt)
		case "reason":
			a.Reason, err = stringValue(key, raw)
		case "status":
			a.Status, err = stringValue(key, raw)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *Appointment) Validate() error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if a.CentreID == uuid.Nil {
		return fmt.Errorf("centre_id is required")
	}
	if a.ScheduledAt.IsZero() {
		return fmt.Errorf("scheduled_at is required")
	}
	switch a.Status {
	case "":
		a.Status = AppointmentScheduled
	case AppointmentScheduled, AppointmentCompleted, AppointmentCancelled:
	default:
		return fmt.Errorf("invalid status %q", a.Status)
	}
	return nil
}

// ensureID assigns a fresh identifier to an event about to be stored.
func ensureID(e Event) {
	switch t := e.(type) {
	case *Consultation:
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
	case *Hospitalisation:
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
	case *Emergency:
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
	case *Appointment:
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
	}
}

func putStr(f access.Fields, key string, v *string) {
	if v != nil {
		f[key] = *v
	}
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

func applyUUID(key string, raw interface{}, dst *uuid.UUID) error {
	s, err := stringValue(key, raw)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = id
	return nil
}

func applyOptionalUUID(key string, raw interface{}, dst **uuid.UUID) error {
	if raw == nil {
		*dst = nil
		return nil
	}
	var id uuid.UUID
	if err := applyUUID(key, raw, &id); err != nil {
		return err
	}
	*dst = &id
	return nil
}

func applyDate(key string, raw interface{}, dst *time.Time) error {
	s, err := stringValue(key, raw)
	if err != nil {
		return err
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func applyOptionalDate(key string, raw interface{}, dst **time.Time) error {
	if raw == nil {
		*dst = nil
		return nil
	}
	var d time.Time
	if err := applyDate(key, raw, &d); err != nil {
		return err
	}
	*dst = &d
	return nil
}

func applyTime(key string, raw interface{}, dst *time.Time) error {
	s, err := stringValue(key, raw)
	if err != nil {
		return err
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = ts
	return nil
}
