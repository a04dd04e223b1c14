package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"farm-livestock-history/internal/domain/farms"
)

type farmsRepo struct {
	db *DB
}

func NewFarmsRepo(db *DB) farms.Repository {
	return &farmsRepo{db: db}
}

func (r *farmsRepo) Create(ctx context.Context, f farms.Farm) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if strings.TrimSpace(f.ID) == "" {
		return errors.New("farm id required")
	}
	if _, exists := r.db.farms[f.ID]; exists {
		return errors.New("farm already exists")
	}
	r.db.farms[f.ID] = f
	return nil
}

func (r *farmsRepo) GetByID(ctx context.Context, id string) (farms.Farm, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	f, ok := r.db.farms[id]
	if !ok {
		return farms.Farm{}, farms.ErrNotFound
	}
	return f, nil
}

func (r *farmsRepo) GetByTaxID(ctx context.Context, taxID string) (farms.Farm, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, f := range r.db.farms {
		if f.TaxID == taxID {
			return f, nil
		}
	}
	return farms.Farm{}, farms.ErrNotFound
}

func (r *farmsRepo) List(ctx context.Context) ([]farms.Farm, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]farms.Farm, 0, len(r.db.farms))
	for _, f := range r.db.farms {
		out = append(out, f)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *farmsRepo) Update(ctx context.Context, f farms.Farm) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.farms[f.ID]; !exists {
		return farms.ErrNotFound
	}
	r.db.farms[f.ID] = f
	return nil
}
