package farms

import "context"

type Repository interface {
	Create(ctx context.Context, f Farm) error
	GetByID(ctx context.Context, id string) (Farm, error)
	GetByTaxID(ctx context.Context, taxID string) (Farm, error)
	List(ctx context.Context) ([]Farm, error)
	Update(ctx context.Context, f Farm) error
}
