package centre

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

const centreCols = `id, name, address, phone, is_active, created_at`

func scanCentre(row pgx.Row) (*Centre, error) {
	var c Centre
	err := row.Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.IsActive, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, access.ErrNotFound
	}
	return &c, err
}

func (r *repoPG) Create(ctx context.Context, c *Centre) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO centre (id, name, address, phone, is_active)
		VALUES ($1,$2,$3,$4,$5)`,
		c.ID, c.Name, c.Address, c.Phone, c.IsActive)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return access.ErrConflict
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Centre, error) {
	return scanCentre(r.pool.QueryRow(ctx, `SELECT `+centreCols+` FROM centre WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, c *Centre) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE centre SET name=$2, address=$3, phone=$4, is_active=$5 WHERE id = $1`,
		c.ID, c.Name, c.Address, c.Phone, c.IsActive)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM centre WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Centre, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM centre`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT `+centreCols+` FROM centre ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Centre
	for rows.Next() {
		c, err := scanCentre(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}
