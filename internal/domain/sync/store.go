package sync

import (
	"context"
	"errors"
	"time"

	"farm-livestock-history/internal/domain/animals"
	"farm-livestock-history/internal/domain/vaccinations"
	"farm-livestock-history/internal/domain/weights"
)

// ErrNotFound lo devuelven las búsquedas del BatchTx. Las implementaciones
// deben usar exactamente este error para que los reconciliadores lo
// conviertan en resultado fallido y no en aborto de batch.
var ErrNotFound = errors.New("not found")

// Store es el acceso a datos del motor de sincronización. El push abre
// un BatchTx (una transacción por batch completo); el pull consulta
// directo sobre el pool.
type Store interface {
	BeginBatch(ctx context.Context) (BatchTx, error)

	// Feed incremental, ascendente por updated_at. since nil = estado
	// completo. ownerUserID vacío = sin filtro (admin).
	AnimalsSince(ctx context.Context, ownerUserID string, since *time.Time) ([]animals.Animal, error)
	WeightsSince(ctx context.Context, ownerUserID string, since *time.Time) ([]weights.Weight, error)
	VaccinationsSince(ctx context.Context, ownerUserID string, since *time.Time) ([]vaccinations.Vaccination, error)
}

// BatchTx es la transacción de un batch. Todas las lecturas ven las
// escrituras previas del mismo batch: una operación puede referenciar
// el animal insertado por una operación anterior del mismo request.
type BatchTx interface {
	// Índice de clave natural: siempre se consulta antes de escribir.
	ActiveAnimalByTag(ctx context.Context, ownerUserID, tagCode string) (animals.Animal, error)
	AnimalByID(ctx context.Context, id string) (animals.Animal, error)
	InsertAnimal(ctx context.Context, a animals.Animal) error
	// ReplaceAnimal reemplaza los atributos mutables por id.
	ReplaceAnimal(ctx context.Context, a animals.Animal) (int64, error)
	// DeactivateAnimal es la baja lógica: estado inactivo + updated_at.
	DeactivateAnimal(ctx context.Context, id string, at time.Time) (int64, error)

	InsertWeight(ctx context.Context, w weights.Weight) error
	WeightByID(ctx context.Context, id string) (weights.Weight, error)
	UpdateWeight(ctx context.Context, w weights.Weight) (int64, error)

	InsertVaccination(ctx context.Context, v vaccinations.Vaccination) error
	VaccinationByID(ctx context.Context, id string) (vaccinations.Vaccination, error)
	UpdateVaccination(ctx context.Context, v vaccinations.Vaccination) (int64, error)

	// Catálogos, vistos desde la misma transacción.
	BreedExists(ctx context.Context, id int64) (bool, error)
	VaccineTypeExists(ctx context.Context, id int64) (bool, error)
	VaccineNameExists(ctx context.Context, id int64) (bool, error)

	Commit() error
	Rollback() error
}
