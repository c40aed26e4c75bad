package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinrec/clinrec/internal/access"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const patientCols = `id, first_name, postname, last_name, date_of_birth, gender,
	phone, address, emergency_contact, is_subscriber, home_centre_id,
	medical_history, allergies, vaccinations, lifestyle, created_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.Postname, &p.LastName, &p.DateOfBirth, &p.Gender,
		&p.Phone, &p.Address, &p.EmergencyContact, &p.IsSubscriber, &p.HomeCentreID,
		&p.MedicalHistory, &p.Allergies, &p.Vaccinations, &p.Lifestyle, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, access.ErrNotFound
	}
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patient (id, first_name, postname, last_name, date_of_birth, gender,
			phone, address, emergency_contact, is_subscriber, home_centre_id,
			medical_history, allergies, vaccinations, lifestyle)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		p.ID, p.FirstName, p.Postname, p.LastName, p.DateOfBirth, p.Gender,
		p.Phone, p.Address, p.EmergencyContact, p.IsSubscriber, p.HomeCentreID,
		p.MedicalHistory, p.Allergies, p.Vaccinations, p.Lifestyle)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE patient SET first_name=$2, postname=$3, last_name=$4, date_of_birth=$5,
			gender=$6, phone=$7, address=$8, emergency_contact=$9, is_subscriber=$10,
			home_centre_id=$11, medical_history=$12, allergies=$13, vaccinations=$14,
			lifestyle=$15
		WHERE id = $1`,
		p.ID, p.FirstName, p.Postname, p.LastName, p.DateOfBirth,
		p.Gender, p.Phone, p.Address, p.EmergencyContact, p.IsSubscriber,
		p.HomeCentreID, p.MedicalHistory, p.Allergies, p.Vaccinations,
		p.Lifestyle)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, scope access.ScopePredicate, limit, offset int) ([]*Patient, int, error) {
	return r.query(ctx, scope, "", limit, offset)
}

func (r *repoPG) Search(ctx context.Context, scope access.ScopePredicate, query string, limit, offset int) ([]*Patient, int, error) {
	return r.query(ctx, scope, query, limit, offset)
}

func (r *repoPG) query(ctx context.Context, scope access.ScopePredicate, search string, limit, offset int) ([]*Patient, int, error) {
	where, args := scopeClause(scope)
	if search != "" {
		pattern := "%" + search + "%"
		args = append(args, pattern)
		n := len(args)
		where += fmt.Sprintf(` AND (first_name ILIKE $%d OR last_name ILIKE $%d OR postname ILIKE $%d OR phone ILIKE $%d)`, n, n, n, n)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patient WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, `SELECT `+patientCols+` FROM patient WHERE `+where+
		fmt.Sprintf(` ORDER BY last_name, first_name LIMIT $%d OFFSET $%d`, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

// scopeClause translates a scope predicate into a WHERE fragment. The nurse
// variant joins through hospitalisation: any stay at one of the nurse's
// centres makes the patient visible, whatever the home centre says.
func scopeClause(scope access.ScopePredicate) (string, []interface{}) {
	switch scope.Kind {
	case access.ScopeAll:
		return `TRUE`, nil
	case access.ScopeCentreIn:
		return `home_centre_id = ANY($1::uuid[])`, []interface{}{uuidStrings(scope.Centres)}
	case access.ScopeViaHospitalisationIn:
		return `EXISTS (SELECT 1 FROM hospitalisation h
			WHERE h.patient_id = patient.id AND h.centre_id = ANY($1::uuid[]))`,
			[]interface{}{uuidStrings(scope.Centres)}
	}
	return `FALSE`, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
