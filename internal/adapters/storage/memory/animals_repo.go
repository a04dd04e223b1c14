package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"farm-livestock-history/internal/domain/animals"
)

type animalsRepo struct {
	db *DB
}

func NewAnimalsRepo(db *DB) animals.Repository {
	return &animalsRepo{db: db}
}

func (r *animalsRepo) Create(ctx context.Context, a animals.Animal) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("animal id required")
	}
	if _, exists := r.db.animals[a.ID]; exists {
		return errors.New("animal already exists")
	}
	r.db.animals[a.ID] = a
	return nil
}

func (r *animalsRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	a, ok := r.db.animals[id]
	if !ok {
		return animals.Animal{}, animals.ErrNotFound
	}
	a.BreedName = r.db.breeds[a.BreedID]
	return a, nil
}

func (r *animalsRepo) GetActiveByTag(ctx context.Context, tagCode string) (animals.Animal, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, a := range r.db.animals {
		if a.Active && a.TagCode == tagCode {
			a.BreedName = r.db.breeds[a.BreedID]
			return a, nil
		}
	}
	return animals.Animal{}, animals.ErrNotFound
}

func (r *animalsRepo) List(ctx context.Context, ownerUserID string) ([]animals.Animal, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]animals.Animal, 0)
	for _, a := range r.db.animals {
		if !a.Active {
			continue
		}
		if ownerUserID != "" && a.OwnerUserID != ownerUserID {
			continue
		}
		a.BreedName = r.db.breeds[a.BreedID]
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *animalsRepo) Update(ctx context.Context, a animals.Animal) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.animals[a.ID]; !exists {
		return animals.ErrNotFound
	}
	a.BreedName = ""
	r.db.animals[a.ID] = a
	return nil
}

func (r *animalsRepo) DeleteByTag(ctx context.Context, tagCode string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for id, a := range r.db.animals {
		if a.TagCode == tagCode {
			delete(r.db.animals, id)
			return nil
		}
	}
	return animals.ErrNotFound
}
