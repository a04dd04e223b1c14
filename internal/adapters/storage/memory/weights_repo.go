package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"farm-livestock-history/internal/domain/weights"
)

type weightsRepo struct {
	db *DB
}

func NewWeightsRepo(db *DB) weights.Repository {
	return &weightsRepo{db: db}
}

func (r *weightsRepo) Create(ctx context.Context, w weights.Weight) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if strings.TrimSpace(w.ID) == "" {
		return errors.New("weight id required")
	}
	if _, exists := r.db.weights[w.ID]; exists {
		return errors.New("weight already exists")
	}
	r.db.weights[w.ID] = w
	return nil
}

func (r *weightsRepo) GetByID(ctx context.Context, id string) (weights.Weight, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	w, ok := r.db.weights[id]
	if !ok {
		return weights.Weight{}, weights.ErrNotFound
	}
	return w, nil
}

func (r *weightsRepo) List(ctx context.Context, ownerUserID string) ([]weights.Weight, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]weights.Weight, 0)
	for _, w := range r.db.weights {
		if ownerUserID != "" {
			a, ok := r.db.animals[w.AnimalID]
			if !ok || a.OwnerUserID != ownerUserID {
				continue
			}
		}
		out = append(out, w)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (r *weightsRepo) ListByTag(ctx context.Context, tagCode string) ([]weights.Weight, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]weights.Weight, 0)
	for _, w := range r.db.weights {
		if w.TagCode == tagCode {
			out = append(out, w)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (r *weightsRepo) Update(ctx context.Context, w weights.Weight) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.weights[w.ID]; !exists {
		return weights.ErrNotFound
	}
	r.db.weights[w.ID] = w
	return nil
}

func (r *weightsRepo) DeleteByTag(ctx context.Context, tagCode string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var n int64
	for id, w := range r.db.weights {
		if w.TagCode == tagCode {
			delete(r.db.weights, id)
			n++
		}
	}
	return n, nil
}
