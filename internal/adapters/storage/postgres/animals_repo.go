package postgres

import (
	"context"
	"database/sql"
	"strings"

	"farm-livestock-history/internal/domain/animals"
)

type AnimalsRepo struct {
	db *sql.DB
}

func NewAnimalsRepo(db *sql.DB) *AnimalsRepo {
	return &AnimalsRepo{db: db}
}

const animalCols = `
	a.id, a.owner_user_id,
	a.tag_code, a.photo,
	a.birth_weight_kg, a.breed_id, a.birth_date,
	a.mother_id, a.father_id,
	a.diseases, a.notes,
	a.origin, a.brand, a.category, a.location,
	a.calving_number, a.precocity, a.mating_type,
	a.active,
	a.created_at, a.updated_at,
	b.name`

func scanAnimal(row interface{ Scan(...any) error }) (animals.Animal, error) {
	var a animals.Animal
	var breedName sql.NullString
	err := row.Scan(
		&a.ID,
		&a.OwnerUserID,
		&a.TagCode,
		&a.Photo,
		&a.BirthWeightKg,
		&a.BreedID,
		&a.BirthDate,
		&a.MotherID,
		&a.FatherID,
		&a.Diseases,
		&a.Notes,
		&a.Origin,
		&a.Brand,
		&a.Category,
		&a.Location,
		&a.CalvingNumber,
		&a.Precocity,
		&a.MatingType,
		&a.Active,
		&a.CreatedAt,
		&a.UpdatedAt,
		&breedName,
	)
	if err != nil {
		return animals.Animal{}, err
	}
	a.BreedName = breedName.String
	return a, nil
}

func (r *AnimalsRepo) Create(ctx context.Context, a animals.Animal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO animals (
			id, owner_user_id,
			tag_code, photo,
			birth_weight_kg, breed_id, birth_date,
			mother_id, father_id,
			diseases, notes,
			origin, brand, category, location,
			calving_number, precocity, mating_type,
			active,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
	`,
		a.ID,
		a.OwnerUserID,
		a.TagCode,
		a.Photo,
		a.BirthWeightKg,
		a.BreedID,
		a.BirthDate,
		a.MotherID,
		a.FatherID,
		a.Diseases,
		a.Notes,
		a.Origin,
		a.Brand,
		a.Category,
		a.Location,
		a.CalvingNumber,
		a.Precocity,
		a.MatingType,
		a.Active,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *AnimalsRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return animals.Animal{}, animals.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+animalCols+`
		FROM animals a
		LEFT JOIN breeds b ON b.id = a.breed_id
		WHERE a.id = $1
	`, id)

	a, err := scanAnimal(row)
	if err == sql.ErrNoRows {
		return animals.Animal{}, animals.ErrNotFound
	}
	return a, err
}

func (r *AnimalsRepo) GetActiveByTag(ctx context.Context, tagCode string) (animals.Animal, error) {
	tagCode = strings.TrimSpace(tagCode)
	if tagCode == "" {
		return animals.Animal{}, animals.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+animalCols+`
		FROM animals a
		LEFT JOIN breeds b ON b.id = a.breed_id
		WHERE a.tag_code = $1 AND a.active = TRUE
	`, tagCode)

	a, err := scanAnimal(row)
	if err == sql.ErrNoRows {
		return animals.Animal{}, animals.ErrNotFound
	}
	return a, err
}

func (r *AnimalsRepo) List(ctx context.Context, ownerUserID string) ([]animals.Animal, error) {
	q := `
		SELECT ` + animalCols + `
		FROM animals a
		LEFT JOIN breeds b ON b.id = a.breed_id
		WHERE a.active = TRUE
	`
	args := []any{}
	if strings.TrimSpace(ownerUserID) != "" {
		q += " AND a.owner_user_id = $1"
		args = append(args, ownerUserID)
	}
	q += " ORDER BY a.created_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]animals.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AnimalsRepo) Update(ctx context.Context, a animals.Animal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE animals
		SET
			tag_code = $2,
			photo = $3,
			birth_weight_kg = $4,
			breed_id = $5,
			birth_date = $6,
			mother_id = $7,
			father_id = $8,
			diseases = $9,
			notes = $10,
			origin = $11,
			brand = $12,
			category = $13,
			location = $14,
			calving_number = $15,
			precocity = $16,
			mating_type = $17,
			active = $18,
			updated_at = $19
		WHERE id = $1
	`,
		a.ID,
		a.TagCode,
		a.Photo,
		a.BirthWeightKg,
		a.BreedID,
		a.BirthDate,
		a.MotherID,
		a.FatherID,
		a.Diseases,
		a.Notes,
		a.Origin,
		a.Brand,
		a.Category,
		a.Location,
		a.CalvingNumber,
		a.Precocity,
		a.MatingType,
		a.Active,
		a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return animals.ErrNotFound
	}
	return nil
}

func (r *AnimalsRepo) DeleteByTag(ctx context.Context, tagCode string) error {
	tagCode = strings.TrimSpace(tagCode)
	if tagCode == "" {
		return animals.ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM animals
		WHERE tag_code = $1 AND active = TRUE
	`, tagCode)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return animals.ErrNotFound
	}
	return nil
}
