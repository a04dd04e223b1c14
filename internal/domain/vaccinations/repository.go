package vaccinations

import "context"

type Repository interface {
	Create(ctx context.Context, v Vaccination) error
	GetByID(ctx context.Context, id string) (Vaccination, error)

	// List devuelve vacunas cuyo animal pertenece a ownerUserID;
	// vacío = sin filtro (admin).
	List(ctx context.Context, ownerUserID string) ([]Vaccination, error)

	ListByAnimal(ctx context.Context, animalID string) ([]Vaccination, error)

	Update(ctx context.Context, v Vaccination) error

	// DeleteByAnimal borra todas las vacunas del animal (borrado masivo
	// por clave natural, resuelta a id por el caller).
	DeleteByAnimal(ctx context.Context, animalID string) (int64, error)
}
