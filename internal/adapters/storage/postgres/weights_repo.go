package postgres

import (
	"context"
	"database/sql"
	"strings"

	"farm-livestock-history/internal/domain/weights"
)

type WeightsRepo struct {
	db *sql.DB
}

func NewWeightsRepo(db *sql.DB) *WeightsRepo {
	return &WeightsRepo{db: db}
}

const weightCols = `
	w.id, w.animal_id, w.tag_code,
	w.date, w.weight_kg, w.kind,
	w.purchase_cost, w.sale_cost,
	w.purchase_price_per_kg, w.sale_price_per_kg,
	w.gain_kg, w.partial_gain_kg, w.gain_value, w.tracking_months,
	w.created_at, w.updated_at`

func scanWeight(row interface{ Scan(...any) error }) (weights.Weight, error) {
	var w weights.Weight
	var kind string
	err := row.Scan(
		&w.ID,
		&w.AnimalID,
		&w.TagCode,
		&w.Date,
		&w.WeightKg,
		&kind,
		&w.PurchaseCost,
		&w.SaleCost,
		&w.PurchasePricePerKg,
		&w.SalePricePerKg,
		&w.GainKg,
		&w.PartialGainKg,
		&w.GainValue,
		&w.TrackingMonths,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return weights.Weight{}, err
	}
	w.Kind = weights.ParseKind(kind)
	return w, nil
}

func (r *WeightsRepo) Create(ctx context.Context, w weights.Weight) error {
	_, err := r.db.ExecContext(ctx, `
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

func (r *WeightsRepo) GetByID(ctx context.Context, id string) (weights.Weight, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return weights.Weight{}, weights.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+weightCols+`
		FROM weights w
		WHERE w.id = $1
	`, id)

	w, err := scanWeight(row)
	if err == sql.ErrNoRows {
		return weights.Weight{}, weights.ErrNotFound
	}
	return w, err
}

func (r *WeightsRepo) List(ctx context.Context, ownerUserID string) ([]weights.Weight, error) {
	q := `
		SELECT ` + weightCols + `
		FROM weights w
	`
	args := []any{}
	if strings.TrimSpace(ownerUserID) != "" {
		q += `
		JOIN animals a ON a.id = w.animal_id
		WHERE a.owner_user_id = $1`
		args = append(args, ownerUserID)
	}
	q += " ORDER BY w.date DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectWeights(rows)
}

func (r *WeightsRepo) ListByTag(ctx context.Context, tagCode string) ([]weights.Weight, error) {
	tagCode = strings.TrimSpace(tagCode)
	if tagCode == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+weightCols+`
		FROM weights w
		WHERE w.tag_code = $1
		ORDER BY w.date DESC
	`, tagCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectWeights(rows)
}

func collectWeights(rows *sql.Rows) ([]weights.Weight, error) {
	out := make([]weights.Weight, 0)
	for rows.Next() {
		w, err := scanWeight(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *WeightsRepo) Update(ctx context.Context, w weights.Weight) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE weights
		SET
			date = $2,
			weight_kg = $3,
			kind = $4,
			purchase_cost = $5,
			sale_cost = $6,
			purchase_price_per_kg = $7,
			sale_price_per_kg = $8,
			gain_kg = $9,
			partial_gain_kg = $10,
			gain_value = $11,
			tracking_months = $12,
			updated_at = $13
		WHERE id = $1
	`,
		w.ID,
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
		w.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return weights.ErrNotFound
	}
	return nil
}

func (r *WeightsRepo) DeleteByTag(ctx context.Context, tagCode string) (int64, error) {
	tagCode = strings.TrimSpace(tagCode)
	if tagCode == "" {
		return 0, nil
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM weights
		WHERE tag_code = $1
	`, tagCode)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
