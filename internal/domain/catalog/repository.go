package catalog

import "context"

type Repository interface {
	BreedExists(ctx context.Context, id int64) (bool, error)
	VaccineTypeExists(ctx context.Context, id int64) (bool, error)
	VaccineNameExists(ctx context.Context, id int64) (bool, error)

	ListBreeds(ctx context.Context) ([]Breed, error)
	ListVaccineTypes(ctx context.Context) ([]VaccineType, error)
	ListVaccineNames(ctx context.Context) ([]VaccineName, error)
}
