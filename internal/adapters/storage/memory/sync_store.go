package memory

import (
	"context"
	"sort"
	"time"

	"farm-livestock-history/internal/domain/animals"
	"farm-livestock-history/internal/domain/sync"
	"farm-livestock-history/internal/domain/vaccinations"
	"farm-livestock-history/internal/domain/weights"
)

type syncStore struct {
	db *DB
}

// NewSyncStore arma el acceso a datos del motor de sincronización sobre
// la misma base in-memory que usan los repos CRUD.
func NewSyncStore(db *DB) sync.Store {
	return &syncStore{db: db}
}

// BeginBatch toma el lock de la base por la duración del batch completo.
// Los snapshots permiten el rollback; las operaciones trabajan sobre los
// mapas vivos para que cada lectura vea las escrituras previas del mismo
// batch.
func (s *syncStore) BeginBatch(ctx context.Context) (sync.BatchTx, error) {
	s.db.mu.Lock()
	return &batchTx{
		db:           s.db,
		prevAnimals:  cloneMap(s.db.animals),
		prevWeights:  cloneMap(s.db.weights),
		prevVaccines: cloneMap(s.db.vaccinations),
	}, nil
}

func (s *syncStore) AnimalsSince(ctx context.Context, ownerUserID string, since *time.Time) ([]animals.Animal, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := make([]animals.Animal, 0)
	for _, a := range s.db.animals {
		if !a.Active {
			continue
		}
		if ownerUserID != "" && a.OwnerUserID != ownerUserID {
			continue
		}
		if since != nil && !a.UpdatedAt.After(*since) {
			continue
		}
		a.BreedName = s.db.breeds[a.BreedID]
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *syncStore) WeightsSince(ctx context.Context, ownerUserID string, since *time.Time) ([]weights.Weight, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := make([]weights.Weight, 0)
	for _, w := range s.db.weights {
		if ownerUserID != "" {
			a, ok := s.db.animals[w.AnimalID]
			if !ok || a.OwnerUserID != ownerUserID {
				continue
			}
		}
		if since != nil && !w.UpdatedAt.After(*since) {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *syncStore) VaccinationsSince(ctx context.Context, ownerUserID string, since *time.Time) ([]vaccinations.Vaccination, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := make([]vaccinations.Vaccination, 0)
	for _, v := range s.db.vaccinations {
		if ownerUserID != "" {
			a, ok := s.db.animals[v.AnimalID]
			if !ok || a.OwnerUserID != ownerUserID {
				continue
			}
		}
		if since != nil && !v.UpdatedAt.After(*since) {
			continue
		}
		v.VaccineTypeName = s.db.vaccineTypes[v.VaccineTypeID]
		v.VaccineName = s.db.vaccineNames[v.VaccineNameID]
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	return out, nil
}

// batchTx sostiene el mutex de la base hasta Commit o Rollback. El flag
// done cubre el Rollback que el servicio hace después de un Commit
// fallido: la segunda llamada no debe tocar el lock.
type batchTx struct {
	db   *DB
	done bool

	prevAnimals  map[string]animals.Animal
	prevWeights  map[string]weights.Weight
	prevVaccines map[string]vaccinations.Vaccination
}

func (tx *batchTx) ActiveAnimalByTag(ctx context.Context, ownerUserID, tagCode string) (animals.Animal, error) {
	for _, a := range tx.db.animals {
		if !a.Active || a.TagCode != tagCode {
			continue
		}
		if ownerUserID != "" && a.OwnerUserID != ownerUserID {
			continue
		}
		return a, nil
	}
	return animals.Animal{}, sync.ErrNotFound
}

func (tx *batchTx) AnimalByID(ctx context.Context, id string) (animals.Animal, error) {
	a, ok := tx.db.animals[id]
	if !ok {
		return animals.Animal{}, sync.ErrNotFound
	}
	return a, nil
}

func (tx *batchTx) InsertAnimal(ctx context.Context, a animals.Animal) error {
	a.BreedName = ""
	tx.db.animals[a.ID] = a
	return nil
}

func (tx *batchTx) ReplaceAnimal(ctx context.Context, a animals.Animal) (int64, error) {
	if _, ok := tx.db.animals[a.ID]; !ok {
		return 0, nil
	}
	a.BreedName = ""
	tx.db.animals[a.ID] = a
	return 1, nil
}

func (tx *batchTx) DeactivateAnimal(ctx context.Context, id string, at time.Time) (int64, error) {
	a, ok := tx.db.animals[id]
	if !ok {
		return 0, nil
	}
	a.Active = false
	a.UpdatedAt = at
	tx.db.animals[id] = a
	return 1, nil
}

func (tx *batchTx) InsertWeight(ctx context.Context, w weights.Weight) error {
	tx.db.weights[w.ID] = w
	return nil
}

func (tx *batchTx) WeightByID(ctx context.Context, id string) (weights.Weight, error) {
	w, ok := tx.db.weights[id]
	if !ok {
		return weights.Weight{}, sync.ErrNotFound
	}
	return w, nil
}

func (tx *batchTx) UpdateWeight(ctx context.Context, w weights.Weight) (int64, error) {
	if _, ok := tx.db.weights[w.ID]; !ok {
		return 0, nil
	}
	tx.db.weights[w.ID] = w
	return 1, nil
}

func (tx *batchTx) InsertVaccination(ctx context.Context, v vaccinations.Vaccination) error {
	v.VaccineTypeName = ""
	v.VaccineName = ""
	tx.db.vaccinations[v.ID] = v
	return nil
}

func (tx *batchTx) VaccinationByID(ctx context.Context, id string) (vaccinations.Vaccination, error) {
	v, ok := tx.db.vaccinations[id]
	if !ok {
		return vaccinations.Vaccination{}, sync.ErrNotFound
	}
	return v, nil
}

func (tx *batchTx) UpdateVaccination(ctx context.Context, v vaccinations.Vaccination) (int64, error) {
	if _, ok := tx.db.vaccinations[v.ID]; !ok {
		return 0, nil
	}
	v.VaccineTypeName = ""
	v.VaccineName = ""
	tx.db.vaccinations[v.ID] = v
	return 1, nil
}

func (tx *batchTx) BreedExists(ctx context.Context, id int64) (bool, error) {
	_, ok := tx.db.breeds[id]
	return ok, nil
}

func (tx *batchTx) VaccineTypeExists(ctx context.Context, id int64) (bool, error) {
	_, ok := tx.db.vaccineTypes[id]
	return ok, nil
}

func (tx *batchTx) VaccineNameExists(ctx context.Context, id int64) (bool, error) {
	_, ok := tx.db.vaccineNames[id]
	return ok, nil
}

func (tx *batchTx) Commit() error {
	if tx.done {
		return nil
	}
	tx.done = true
	tx.db.mu.Unlock()
	return nil
}

func (tx *batchTx) Rollback() error {
	if tx.done {
		return nil
	}
	tx.done = true
	tx.db.animals = tx.prevAnimals
	tx.db.weights = tx.prevWeights
	tx.db.vaccinations = tx.prevVaccines
	tx.db.mu.Unlock()
	return nil
}
