package staff

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinrec/clinrec/internal/access"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const memberCols = `id, first_name, last_name, email, role, centres, disabled, created_at`

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	var role string
	var centres []string
	err := row.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Email, &role, &centres, &m.Disabled, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, access.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	m.Role = access.Role(role)
	m.Centres = make([]uuid.UUID, 0, len(centres))
	for _, raw := range centres {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		m.Centres = append(m.Centres, id)
	}
	return &m, nil
}

func (r *repoPG) Create(ctx context.Context, m *Member) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO staff (id, first_name, last_name, email, role, centres, disabled)
		VALUES ($1,$2,$3,$4,$5,$6::uuid[],$7)`,
		m.ID, m.FirstName, m.LastName, m.Email, string(m.Role), uuidStrings(m.Centres), m.Disabled)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return access.ErrConflict
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Member, error) {
	return scanMember(r.pool.QueryRow(ctx, `SELECT `+memberCols+` FROM staff WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, m *Member) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE staff SET first_name=$2, last_name=$3, email=$4, role=$5, centres=$6::uuid[], disabled=$7
		WHERE id = $1`,
		m.ID, m.FirstName, m.LastName, m.Email, string(m.Role), uuidStrings(m.Centres), m.Disabled)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return access.ErrConflict
	}
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Member, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM staff`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT `+memberCols+` FROM staff ORDER BY last_name, first_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func (r *repoPG) CountByRole(ctx context.Context) (map[access.Role]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT role, COUNT(*) FROM staff WHERE NOT disabled GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[access.Role]int)
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		out[access.Role(role)] = n
	}
	return out, rows.Err()
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
