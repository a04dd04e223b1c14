package animals

import "context"

type Repository interface {
	Create(ctx context.Context, a Animal) error
	GetByID(ctx context.Context, id string) (Animal, error)

	// GetActiveByTag busca por clave natural entre animales activos.
	GetActiveByTag(ctx context.Context, tagCode string) (Animal, error)

	// List devuelve animales activos. ownerUserID vacío = sin filtro (admin).
	List(ctx context.Context, ownerUserID string) ([]Animal, error)

	Update(ctx context.Context, a Animal) error

	// DeleteByTag borra la fila (solo ruta CRUD; sync usa baja lógica).
	DeleteByTag(ctx context.Context, tagCode string) error
}
