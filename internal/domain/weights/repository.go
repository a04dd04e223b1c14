package weights

import "context"

type Repository interface {
	Create(ctx context.Context, w Weight) error
	GetByID(ctx context.Context, id string) (Weight, error)

	// List devuelve pesajes cuyo animal pertenece a ownerUserID;
	// vacío = sin filtro (admin).
	List(ctx context.Context, ownerUserID string) ([]Weight, error)

	ListByTag(ctx context.Context, tagCode string) ([]Weight, error)

	Update(ctx context.Context, w Weight) error

	// DeleteByTag es el borrado masivo por clave natural.
	DeleteByTag(ctx context.Context, tagCode string) (int64, error)
}
