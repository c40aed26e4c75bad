package clinical

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinrec/clinrec/internal/access"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

// table holds the per-kind SQL plumbing: table name, column list, scan and
// argument order. Everything else in the repository is kind-agnostic.
type table struct {
	name string
	cols string
	scan func(row pgx.Row) (Event, error)
	args func(e Event) []interface{}
	sort string
}

var tables = map[access.Resource]table{
	access.ResourceConsultation: {
		name: "consultation",
		cols: `id, patient_id, doctor_id, centre_id, date, reason,
			clinical_exam, diagnosis, prescription, created_at`,
		scan: func(row pgx.Row) (Event, error) {
			var c Consultation
			err := row.Scan(&c.ID, &c.PatientID, &c.DoctorID, &c.CentreID, &c.Date, &c.Reason,
				&c.ClinicalExam, &c.Diagnosis, &c.Prescription, &c.CreatedAt)
			return &c, err
		},
		args: func(e Event) []interface{} {
			c := e.(*Consultation)
			return []interface{}{c.ID, c.PatientID, c.DoctorID, c.CentreID, c.Date, c.Reason,
				c.ClinicalExam, c.Diagnosis, c.Prescription}
		},
		sort: "date DESC",
	},
	access.ResourceHospitalisation: {
		name: "hospitalisation",
		cols: `id, patient_id, doctor_id, centre_id, admission_date, discharge_date, ward, reason,
			medical_notes, nurse_notes, interventions, discharge_summary, created_at`,
		scan: func(row pgx.Row) (Event, error) {
			var h Hospitalisation
			err := row.Scan(&h.ID, &h.PatientID, &h.DoctorID, &h.CentreID, &h.AdmissionDate,
				&h.DischargeDate, &h.Ward, &h.Reason,
				&h.MedicalNotes, &h.NurseNotes, &h.Interventions, &h.DischargeSummary, &h.CreatedAt)
			return &h, err
		},
		args: func(e Event) []interface{} {
			h := e.(*Hospitalisation)
			return []interface{}{h.ID, h.PatientID, h.DoctorID, h.CentreID, h.AdmissionDate,
				h.DischargeDate, h.Ward, h.Reason,
				h.MedicalNotes, h.NurseNotes, h.Interventions, h.DischargeSummary}
		},
		sort: "admission_date DESC",
	},
	access.ResourceEmergency: {
		name: "emergency",
		cols: `id, patient_id, doctor_id, centre_id, arrival_time, reason, outcome,
			vital_signs, first_aid, initial_diagnosis, created_at`,
		scan: func(row pgx.Row) (Event, error) {
			var em Emergency
			err := row.Scan(&em.ID, &em.PatientID, &em.DoctorID, &em.CentreID, &em.ArrivalTime,
				&em.Reason, &em.Outcome,
				&em.VitalSigns, &em.FirstAid, &em.InitialDiagnosis, &em.CreatedAt)
			return &em, err
		},
		args: func(e Event) []interface{} {
			em := e.(*Emergency)
			return []interface{}{em.ID, em.PatientID, em.DoctorID, em.CentreID, em.ArrivalTime,
				em.Reason, em.Outcome,
				em.VitalSigns, em.FirstAid, em.InitialDiagnosis}
		},
		sort: "arrival_time DESC",
	},
	access.ResourceAppointment: {
		name: "appointment",
		cols: `id, patient_id, doctor_id, centre_id, scheduled_at, reason, status, created_at`,
		scan: func(row pgx.Row) (Event, error) {
			var a Appointment
			err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.CentreID, &a.ScheduledAt,
				&a.Reason, &a.Status, &a.CreatedAt)
			return &a, err
		},
		args: func(e Event) []interface{} {
			a := e.(*Appointment)
			return []interface{}{a.ID, a.PatientID, a.DoctorID, a.CentreID, a.ScheduledAt,
				a.Reason, a.Status}
		},
		sort: "scheduled_at",
	},
}

func tableFor(kind access.Resource) (table, error) {
	t, ok := tables[kind]
	if !ok {
		return table{}, fmt.Errorf("no event table for resource %q", kind)
	}
	return t, nil
}

func placeholders(n int) string {
	out := ""
	for i := 1; i <= n; i++ {
		if i > 1 {
			out += ","
		}
		out += fmt.Sprintf("$%d", i)
	}
	return out
}

// insertCols strips created_at, which the database fills.
func insertCols(t table) string {
	cols := t.cols
	return cols[:len(cols)-len(", created_at")]
}

func (r *repoPG) Create(ctx context.Context, e Event) error {
	t, err := tableFor(e.Kind())
	if err != nil {
		return err
	}
	ensureID(e)
	args := t.args(e)
	_, err = r.pool.Exec(ctx,
		`INSERT INTO `+t.name+` (`+insertCols(t)+`) VALUES (`+placeholders(len(args))+`)`,
		args...)
	// The appointment table carries a unique (doctor_id, scheduled_at)
	// constraint; surface it as a conflict rather than a raw SQLSTATE.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: slot already booked", access.ErrConflict)
	}
	return err
}

func (r *repoPG) Get(ctx context.Context, kind access.Resource, id uuid.UUID) (Event, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	e, err := t.scan(r.pool.QueryRow(ctx, `SELECT `+t.cols+` FROM `+t.name+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, access.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *repoPG) Update(ctx context.Context, e Event) error {
	t, err := tableFor(e.Kind())
	if err != nil {
		return err
	}
	cols := splitCols(insertCols(t))
	set := ""
	for i, col := range cols[1:] { // skip id
		if i > 0 {
			set += ", "
		}
		set += fmt.Sprintf("%s=$%d", col, i+2)
	}
	args := t.args(e)
	_, err = r.pool.Exec(ctx, `UPDATE `+t.name+` SET `+set+` WHERE id = $1`, args...)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: slot already booked", access.ErrConflict)
	}
	return err
}

func (r *repoPG) Delete(ctx context.Context, kind access.Resource, id uuid.UUID) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `DELETE FROM `+t.name+` WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, kind access.Resource, scope access.ScopePredicate, limit, offset int) ([]Event, int, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, 0, err
	}
	where, args := eventScopeClause(scope)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+t.name+` WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, `SELECT `+t.cols+` FROM `+t.name+` WHERE `+where+
		fmt.Sprintf(` ORDER BY %s LIMIT $%d OFFSET $%d`, t.sort, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Event
	for rows.Next() {
		e, err := t.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) (map[access.Resource][]Event, error) {
	out := make(map[access.Resource][]Event, len(tables))
	for kind, t := range tables {
		rows, err := r.pool.Query(ctx,
			`SELECT `+t.cols+` FROM `+t.name+` WHERE patient_id = $1 ORDER BY `+t.sort, patientID)
		if err != nil {
			return nil, err
		}
		var items []Event
		for rows.Next() {
			e, err := t.scan(rows)
			if err != nil {
				rows.Close()
				return nil, err
			}
			items = append(items, e)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
		out[kind] = items
	}
	return out, nil
}

func (r *repoPG) PatientHospitalisedIn(ctx context.Context, patientID uuid.UUID, centres []uuid.UUID) (bool, error) {
	var linked bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM hospitalisation
			WHERE patient_id = $1 AND centre_id = ANY($2::uuid[]))`,
		patientID, uuidStrings(centres)).Scan(&linked)
	return linked, err
}

// eventScopeClause translates a scope predicate over a clinical event table.
// Unlike patients, an event's own centre is authoritative for centre scoping.
func eventScopeClause(scope access.ScopePredicate) (string, []interface{}) {
	switch scope.Kind {
	case access.ScopeAll:
		return `TRUE`, nil
	case access.ScopeCentreIn:
		return `centre_id = ANY($1::uuid[])`, []interface{}{uuidStrings(scope.Centres)}
	case access.ScopeDoctorEquals:
		return `doctor_id = $1`, []interface{}{scope.DoctorID}
	}
	return `FALSE`, nil
}

func splitCols(cols string) []string {
	var out []string
	field := ""
	for _, r := range cols {
		switch r {
		case ',':
			out = append(out, field)
			field = ""
		case ' ', '\n', '\t':
		default:
			field += string(r)
		}
	}
	if field != "" {
		out = append(out, field)
	}
	return out
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
