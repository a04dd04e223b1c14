package postgres

import (
	"context"
	"database/sql"

	"farm-livestock-history/internal/domain/catalog"
)

type CatalogRepo struct {
	db *sql.DB
}

func NewCatalogRepo(db *sql.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func existsByID(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, query string, id int64) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, query, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *CatalogRepo) BreedExists(ctx context.Context, id int64) (bool, error) {
	return existsByID(ctx, r.db, `SELECT 1 FROM breeds WHERE id = $1`, id)
}

func (r *CatalogRepo) VaccineTypeExists(ctx context.Context, id int64) (bool, error) {
	return existsByID(ctx, r.db, `SELECT 1 FROM vaccine_types WHERE id = $1`, id)
}

func (r *CatalogRepo) VaccineNameExists(ctx context.Context, id int64) (bool, error) {
	return existsByID(ctx, r.db, `SELECT 1 FROM vaccine_names WHERE id = $1`, id)
}

func (r *CatalogRepo) ListBreeds(ctx context.Context) ([]catalog.Breed, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM breeds ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]catalog.Breed, 0)
	for rows.Next() {
		var b catalog.Breed
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) ListVaccineTypes(ctx context.Context) ([]catalog.VaccineType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM vaccine_types ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]catalog.VaccineType, 0)
	for rows.Next() {
		var t catalog.VaccineType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) ListVaccineNames(ctx context.Context) ([]catalog.VaccineName, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM vaccine_names ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]catalog.VaccineName, 0)
	for rows.Next() {
		var n catalog.VaccineName
		if err := rows.Scan(&n.ID, &n.Name); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
