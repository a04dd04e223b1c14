package memory

import (
	"context"
	"sort"

	"farm-livestock-history/internal/domain/catalog"
)

type catalogRepo struct {
	db *DB
}

func NewCatalogRepo(db *DB) catalog.Repository {
	return &catalogRepo{db: db}
}

func (r *catalogRepo) BreedExists(ctx context.Context, id int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	_, ok := r.db.breeds[id]
	return ok, nil
}

func (r *catalogRepo) VaccineTypeExists(ctx context.Context, id int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	_, ok := r.db.vaccineTypes[id]
	return ok, nil
}

func (r *catalogRepo) VaccineNameExists(ctx context.Context, id int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	_, ok := r.db.vaccineNames[id]
	return ok, nil
}

func (r *catalogRepo) ListBreeds(ctx context.Context) ([]catalog.Breed, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]catalog.Breed, 0, len(r.db.breeds))
	for id, name := range r.db.breeds {
		out = append(out, catalog.Breed{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *catalogRepo) ListVaccineTypes(ctx context.Context) ([]catalog.VaccineType, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]catalog.VaccineType, 0, len(r.db.vaccineTypes))
	for id, name := range r.db.vaccineTypes {
		out = append(out, catalog.VaccineType{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *catalogRepo) ListVaccineNames(ctx context.Context) ([]catalog.VaccineName, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]catalog.VaccineName, 0, len(r.db.vaccineNames))
	for id, name := range r.db.vaccineNames {
		out = append(out, catalog.VaccineName{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
