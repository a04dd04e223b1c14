package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"farm-livestock-history/internal/domain/animals"
	"farm-livestock-history/internal/domain/sync"
	"farm-livestock-history/internal/domain/vaccinations"
	"farm-livestock-history/internal/domain/weights"
)

type SyncStore struct {
	db *sql.DB
}

// NewSyncStore arma el acceso a datos del motor de sincronización.
// El push corre dentro de una transacción; el pull consulta directo
// sobre el pool.
func NewSyncStore(db *sql.DB) *SyncStore {
	return &SyncStore{db: db}
}

func sqlArg(format string, n int) string {
	return fmt.Sprintf(format, n)
}

func (s *SyncStore) BeginBatch(ctx context.Context) (sync.BatchTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &syncTx{tx: tx}, nil
}

func (s *SyncStore) AnimalsSince(ctx context.Context, ownerUserID string, since *time.Time) ([]animals.Animal, error) {
	q := `
		SELECT ` + animalCols + `
		FROM animals a
		LEFT JOIN breeds b ON b.id = a.breed_id
		WHERE a.active = TRUE
	`
	args := []any{}
	argN := 1
	if strings.TrimSpace(ownerUserID) != "" {
		q += sqlArg(" AND a.owner_user_id = $%d", argN)
		args = append(args, ownerUserID)
		argN++
	}
	if since != nil {
		q += sqlArg(" AND a.updated_at > $%d", argN)
		args = append(args, *since)
	}
	q += " ORDER BY a.updated_at ASC"

	rows, err := s.db.QueryContext(ctx, q, args...)
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

func (s *SyncStore) WeightsSince(ctx context.Context, ownerUserID string, since *time.Time) ([]weights.Weight, error) {
	q := `
		SELECT ` + weightCols + `
		FROM weights w
	`
	args := []any{}
	argN := 1
	where := make([]string, 0, 2)
	if strings.TrimSpace(ownerUserID) != "" {
		q += "JOIN animals a ON a.id = w.animal_id\n"
		where = append(where, sqlArg("a.owner_user_id = $%d", argN))
		args = append(args, ownerUserID)
		argN++
	}
	if since != nil {
		where = append(where, sqlArg("w.updated_at > $%d", argN))
		args = append(args, *since)
	}
	if len(where) > 0 {
		q += "WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY w.updated_at ASC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectWeights(rows)
}

func (s *SyncStore) VaccinationsSince(ctx context.Context, ownerUserID string, since *time.Time) ([]vaccinations.Vaccination, error) {
	q := `
		SELECT ` + vaccinationCols + `
		FROM vaccinations v
		LEFT JOIN vaccine_types vt ON vt.id = v.vaccine_type_id
		LEFT JOIN vaccine_names vn ON vn.id = v.vaccine_name_id
	`
	args := []any{}
	argN := 1
	where := make([]string, 0, 2)
	if strings.TrimSpace(ownerUserID) != "" {
		q += "JOIN animals a ON a.id = v.animal_id\n"
		where = append(where, sqlArg("a.owner_user_id = $%d", argN))
		args = append(args, ownerUserID)
		argN++
	}
	if since != nil {
		where = append(where, sqlArg("v.updated_at > $%d", argN))
		args = append(args, *since)
	}
	if len(where) > 0 {
		q += "WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY v.updated_at ASC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectVaccinations(rows)
}

// syncTx implementa el BatchTx del sync sobre una transacción SQL.
// Las lecturas van por la misma tx, así cada operación del batch ve
// las escrituras de las anteriores.
type syncTx struct {
	tx *sql.Tx
}

func (t *syncTx) ActiveAnimalByTag(ctx context.Context, ownerUserID, tagCode string) (animals.Animal, error) {
	q := `
		SELECT ` + animalCols + `
		FROM animals a
		LEFT JOIN breeds b ON b.id = a.breed_id
		WHERE a.tag_code = $1 AND a.active = TRUE
	`
	args := []any{tagCode}
	if ownerUserID != "" {
		q += " AND a.owner_user_id = $2"
		args = append(args, ownerUserID)
	}

	a, err := scanAnimal(t.tx.QueryRowContext(ctx, q, args...))
	if err == sql.ErrNoRows {
		return animals.Animal{}, sync.ErrNotFound
	}
	return a, err
}

func (t *syncTx) AnimalByID(ctx context.Context, id string) (animals.Animal, error) {
	a, err := scanAnimal(t.tx.QueryRowContext(ctx, `
		SELECT `+animalCols+`
		FROM animals a
		LEFT JOIN breeds b ON b.id = a.breed_id
		WHERE a.id = $1
	`, id))
	if err == sql.ErrNoRows {
		return animals.Animal{}, sync.ErrNotFound
	}
	return a, err
}

func (t *syncTx) InsertAnimal(ctx context.Context, a animals.Animal) error {
	_, err := t.tx.ExecContext(ctx, `
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

func (t *syncTx) ReplaceAnimal(ctx context.Context, a animals.Animal) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `
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
			updated_at = $18
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
		a.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (t *syncTx) DeactivateAnimal(ctx context.Context, id string, at time.Time) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE animals
		SET active = FALSE, updated_at = $2
		WHERE id = $1 AND active = TRUE
	`, id, at)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (t *syncTx) InsertWeight(ctx context.Context, w weights.Weight) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO weights (
			id, animal_id, tag_code,
			date, weight_kg, kind,
			purchase_cost, sale_cost,
			purchase_price_per_kg, sale_price_per_kg,
			gain_kg, partial_gain_kg, gain_value, tracking_months,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		w.ID,
		w.AnimalID,
		w.TagCode,
		w.Date,
		w.WeightKg,
		string(w.Kind),
		w.PurchaseCost,
		w.SaleCost,
		w.PurchasePricePerKg,
		w.SalePricePerKg,
		w.GainKg,
		w.PartialGainKg,
		w.GainValue,
		w.TrackingMonths,
		w.CreatedAt,
		w.UpdatedAt,
	)
	return err
}

func (t *syncTx) WeightByID(ctx context.Context, id string) (weights.Weight, error) {
	w, err := scanWeight(t.tx.QueryRowContext(ctx, `
		SELECT `+weightCols+`
		FROM weights w
		WHERE w.id = $1
	`, id))
	if err == sql.ErrNoRows {
		return weights.Weight{}, sync.ErrNotFound
	}
	return w, err
}

func (t *syncTx) UpdateWeight(ctx context.Context, w weights.Weight) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE weights
		SET date = $2, weight_kg = $3,
		    purchase_cost = $4, sale_cost = $5,
		    purchase_price_per_kg = $6, sale_price_per_kg = $7,
		    updated_at = $8
		WHERE id = $1
	`,
		w.ID,
		w.Date,
		w.WeightKg,
		w.PurchaseCost,
		w.SaleCost,
		w.PurchasePricePerKg,
		w.SalePricePerKg,
		w.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (t *syncTx) InsertVaccination(ctx context.Context, v vaccinations.Vaccination) error {
	_, err := t.tx.ExecContext(ctx, `
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

func (t *syncTx) VaccinationByID(ctx context.Context, id string) (vaccinations.Vaccination, error) {
	v, err := scanVaccination(t.tx.QueryRowContext(ctx, `
		SELECT `+vaccinationCols+`
		FROM vaccinations v
		LEFT JOIN vaccine_types vt ON vt.id = v.vaccine_type_id
		LEFT JOIN vaccine_names vn ON vn.id = v.vaccine_name_id
		WHERE v.id = $1
	`, id))
	if err == sql.ErrNoRows {
		return vaccinations.Vaccination{}, sync.ErrNotFound
	}
	return v, err
}

func (t *syncTx) UpdateVaccination(ctx context.Context, v vaccinations.Vaccination) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE vaccinations
		SET date = $2, vaccine_type_id = $3, vaccine_name_id = $4, dose = $5, notes = $6, updated_at = $7
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
		return 0, err
	}
	return res.RowsAffected()
}

func (t *syncTx) BreedExists(ctx context.Context, id int64) (bool, error) {
	return existsByID(ctx, t.tx, `SELECT 1 FROM breeds WHERE id = $1`, id)
}

func (t *syncTx) VaccineTypeExists(ctx context.Context, id int64) (bool, error) {
	return existsByID(ctx, t.tx, `SELECT 1 FROM vaccine_types WHERE id = $1`, id)
}

func (t *syncTx) VaccineNameExists(ctx context.Context, id int64) (bool, error) {
	return existsByID(ctx, t.tx, `SELECT 1 FROM vaccine_names WHERE id = $1`, id)
}

func (t *syncTx) Commit() error   { return t.tx.Commit() }
func (t *syncTx) Rollback() error { return t.tx.Rollback() }
