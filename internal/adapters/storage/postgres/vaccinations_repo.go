package postgres

import (
	"context"
	"database/sql"
	"strings"

	"farm-livestock-history/internal/domain/vaccinations"
)

type VaccinationsRepo struct {
	db *sql.DB
}

func NewVaccinationsRepo(db *sql.DB) *VaccinationsRepo {
	return &VaccinationsRepo{db: db}
}

const vaccinationCols = `
	v.id, v.animal_id,
	v.date, v.vaccine_type_id, v.vaccine_name_id,
	v.dose, v.notes,
	v.created_at, v.updated_at,
	vt.name, vn.name`

func scanVaccination(row interface{ Scan(...any) error }) (vaccinations.Vaccination, error) {
	var v vaccinations.Vaccination
	var typeName, vacName sql.NullString
	err := row.Scan(
		&v.ID,
		&v.AnimalID,
		&v.Date,
		&v.VaccineTypeID,
		&v.VaccineNameID,
		&v.Dose,
		&v.Notes,
		&v.CreatedAt,
		&v.UpdatedAt,
		&typeName,
		&vacName,
	)
	if err != nil {
		return vaccinations.Vaccination{}, err
	}
	v.VaccineTypeName = typeName.String
	v.VaccineName = vacName.String
	return v, nil
}

func (r *VaccinationsRepo) Create(ctx context.Context, v vaccinations.Vaccination) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vaccinations (
			id, animal_id,
			date, vaccine_type_id, vaccine_name_id,
			dose, notes,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		v.ID,
		v.AnimalID,
		v.Date,
		v.VaccineTypeID,
		v.VaccineNameID,
		v.Dose,
		v.Notes,
		v.CreatedAt,
		v.UpdatedAt,
	)
	return err
}

func (r *VaccinationsRepo) GetByID(ctx context.Context, id string) (vaccinations.Vaccination, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return vaccinations.Vaccination{}, vaccinations.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+vaccinationCols+`
		FROM vaccinations v
		LEFT JOIN vaccine_types vt ON vt.id = v.vaccine_type_id
		LEFT JOIN vaccine_names vn ON vn.id = v.vaccine_name_id
		WHERE v.id = $1
	`, id)

	v, err := scanVaccination(row)
	if err == sql.ErrNoRows {
		return vaccinations.Vaccination{}, vaccinations.ErrNotFound
	}
	return v, err
}

func (r *VaccinationsRepo) List(ctx context.Context, ownerUserID string) ([]vaccinations.Vaccination, error) {
	q := `
		SELECT ` + vaccinationCols + `
		FROM vaccinations v
		LEFT JOIN vaccine_types vt ON vt.id = v.vaccine_type_id
		LEFT JOIN vaccine_names vn ON vn.id = v.vaccine_name_id
	`
	args := []any{}
	if strings.TrimSpace(ownerUserID) != "" {
		q += `
		JOIN animals a ON a.id = v.animal_id
		WHERE a.owner_user_id = $1`
		args = append(args, ownerUserID)
	}
	q += " ORDER BY v.date DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectVaccinations(rows)
}

func (r *VaccinationsRepo) ListByAnimal(ctx context.Context, animalID string) ([]vaccinations.Vaccination, error) {
	animalID = strings.TrimSpace(animalID)
	if animalID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+vaccinationCols+`
		FROM vaccinations v
		LEFT JOIN vaccine_types vt ON vt.id = v.vaccine_type_id
		LEFT JOIN vaccine_names vn ON vn.id = v.vaccine_name_id
		WHERE v.animal_id = $1
		ORDER BY v.date DESC
	`, animalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectVaccinations(rows)
}

func collectVaccinations(rows *sql.Rows) ([]vaccinations.Vaccination, error) {
	out := make([]vaccinations.Vaccination, 0)
	for rows.Next() {
		v, err := scanVaccination(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *VaccinationsRepo) Update(ctx context.Context, v vaccinations.Vaccination) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE vaccinations
		SET
			date = $2,
			vaccine_type_id = $3,
			vaccine_name_id = $4,
			dose = $5,
			notes = $6,
			updated_at = $7
		WHERE id = $1
	`,
		v.ID,
		v.Date,
		v.VaccineTypeID,
		v.VaccineNameID,
		v.Dose,
		v.Notes,
		v.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return vaccinations.ErrNotFound
	}
	return nil
}

func (r *VaccinationsRepo) DeleteByAnimal(ctx context.Context, animalID string) (int64, error) {
	animalID = strings.TrimSpace(animalID)
	if animalID == "" {
		return 0, nil
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM vaccinations
		WHERE animal_id = $1
	`, animalID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
