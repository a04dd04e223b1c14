package postgres

import (
	"context"
	"database/sql"
	"strings"

	"farm-livestock-history/internal/domain/farms"
)

type FarmsRepo struct {
	db *sql.DB
}

func NewFarmsRepo(db *sql.DB) *FarmsRepo {
	return &FarmsRepo{db: db}
}

const farmCols = `
	id, name, tax_id,
	address, phone, email,
	active,
	created_at, updated_at`

func scanFarm(row interface{ Scan(...any) error }) (farms.Farm, error) {
	var f farms.Farm
	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.TaxID,
		&f.Address,
		&f.Phone,
		&f.Email,
		&f.Active,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	return f, err
}

func (r *FarmsRepo) Create(ctx context.Context, f farms.Farm) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO farms (
			id, name, tax_id,
			address, phone, email,
			active,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		f.ID,
		f.Name,
		f.TaxID,
		f.Address,
		f.Phone,
		f.Email,
		f.Active,
		f.CreatedAt,
		f.UpdatedAt,
	)
	return err
}

func (r *FarmsRepo) GetByID(ctx context.Context, id string) (farms.Farm, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return farms.Farm{}, farms.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+farmCols+`
		FROM farms
		WHERE id = $1
	`, id)

	f, err := scanFarm(row)
	if err == sql.ErrNoRows {
		return farms.Farm{}, farms.ErrNotFound
	}
	return f, err
}

func (r *FarmsRepo) GetByTaxID(ctx context.Context, taxID string) (farms.Farm, error) {
	taxID = strings.TrimSpace(taxID)
	if taxID == "" {
		return farms.Farm{}, farms.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+farmCols+`
		FROM farms
		WHERE tax_id = $1
	`, taxID)

	f, err := scanFarm(row)
	if err == sql.ErrNoRows {
		return farms.Farm{}, farms.ErrNotFound
	}
	return f, err
}

func (r *FarmsRepo) List(ctx context.Context) ([]farms.Farm, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+farmCols+`
		FROM farms
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]farms.Farm, 0)
	for rows.Next() {
		f, err := scanFarm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *FarmsRepo) Update(ctx context.Context, f farms.Farm) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE farms
		SET
			name = $2,
			tax_id = $3,
			address = $4,
			phone = $5,
			email = $6,
			active = $7,
			updated_at = $8
		WHERE id = $1
	`,
		f.ID,
		f.Name,
		f.TaxID,
		f.Address,
		f.Phone,
		f.Email,
		f.Active,
		f.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return farms.ErrNotFound
	}
	return nil
}
