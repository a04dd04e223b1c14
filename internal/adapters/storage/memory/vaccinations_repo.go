package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"farm-livestock-history/internal/domain/vaccinations"
)

type vaccinationsRepo struct {
	db *DB
}

func NewVaccinationsRepo(db *DB) vaccinations.Repository {
	return &vaccinationsRepo{db: db}
}

func (r *vaccinationsRepo) Create(ctx context.Context, v vaccinations.Vaccination) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if strings.TrimSpace(v.ID) == "" {
		return errors.New("vaccination id required")
	}
	if _, exists := r.db.vaccinations[v.ID]; exists {
		return errors.New("vaccination already exists")
	}
	v.VaccineTypeName = ""
	v.VaccineName = ""
	r.db.vaccinations[v.ID] = v
	return nil
}

func (r *vaccinationsRepo) GetByID(ctx context.Context, id string) (vaccinations.Vaccination, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	v, ok := r.db.vaccinations[id]
	if !ok {
		return vaccinations.Vaccination{}, vaccinations.ErrNotFound
	}
	return r.denormalize(v), nil
}

func (r *vaccinationsRepo) List(ctx context.Context, ownerUserID string) ([]vaccinations.Vaccination, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]vaccinations.Vaccination, 0)
	for _, v := range r.db.vaccinations {
		if ownerUserID != "" {
			a, ok := r.db.animals[v.AnimalID]
			if !ok || a.OwnerUserID != ownerUserID {
				continue
			}
		}
		out = append(out, r.denormalize(v))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (r *vaccinationsRepo) ListByAnimal(ctx context.Context, animalID string) ([]vaccinations.Vaccination, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]vaccinations.Vaccination, 0)
	for _, v := range r.db.vaccinations {
		if v.AnimalID == animalID {
			out = append(out, r.denormalize(v))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (r *vaccinationsRepo) Update(ctx context.Context, v vaccinations.Vaccination) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.vaccinations[v.ID]; !exists {
		return vaccinations.ErrNotFound
	}
	v.VaccineTypeName = ""
	v.VaccineName = ""
	r.db.vaccinations[v.ID] = v
	return nil
}

func (r *vaccinationsRepo) DeleteByAnimal(ctx context.Context, animalID string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var n int64
	for id, v := range r.db.vaccinations {
		if v.AnimalID == animalID {
			delete(r.db.vaccinations, id)
			n++
		}
	}
	return n, nil
}

func (r *vaccinationsRepo) denormalize(v vaccinations.Vaccination) vaccinations.Vaccination {
	v.VaccineTypeName = r.db.vaccineTypes[v.VaccineTypeID]
	v.VaccineName = r.db.vaccineNames[v.VaccineNameID]
	return v
}
