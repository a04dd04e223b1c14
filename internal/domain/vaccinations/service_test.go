package vaccinations

import (
	"context"
	"errors"
	"testing"
	"time"

	"farm-livestock-history/internal/domain/catalog"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID map[string]Vaccination
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Vaccination{}}
}

func (r *testRepo) Create(ctx context.Context, v Vaccination) error {
	if v.ID == "" {
		return errors.New("repo: id required")
	}
	r.byID[v.ID] = v
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Vaccination, error) {
	v, ok := r.byID[id]
	if !ok {
		return Vaccination{}, ErrNotFound
	}
	return v, nil
}

func (r *testRepo) List(ctx context.Context, ownerUserID string) ([]Vaccination, error) {
	out := make([]Vaccination, 0, len(r.byID))
	for _, v := range r.byID {
		out = append(out, v)
	}
	return out, nil
}

func (r *testRepo) ListByAnimal(ctx context.Context, animalID string) ([]Vaccination, error) {
	out := make([]Vaccination, 0)
	for _, v := range r.byID {
		if v.AnimalID == animalID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *testRepo) Update(ctx context.Context, v Vaccination) error {
	if _, ok := r.byID[v.ID]; !ok {
		return ErrNotFound
	}
	r.byID[v.ID] = v
	return nil
}

func (r *testRepo) DeleteByAnimal(ctx context.Context, animalID string) (int64, error) {
	var n int64
	for id, v := range r.byID {
		if v.AnimalID == animalID {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

func knownIDs(ids ...int64) catalog.Lookup {
	set := map[int64]bool{}
	for _, id := range ids {
		set[id] = true
	}
	return catalog.LookupFunc(func(_ context.Context, id int64) (bool, error) {
		return set[id], nil
	})
}

func newTestService(repo *testRepo) *Service {
	return NewService(repo,
		knownIDs(1, 2, catalog.VaccineTypeOtherID),
		knownIDs(1, 2, 3, catalog.VaccineNameOtherID),
	)
}

func TestCreate_DoseMustIncludeUnit(t *testing.T) {
	svc := newTestService(newTestRepo())
	ctx := context.Background()

	base := CreateInput{
		AnimalID:      "a-1",
		Date:          time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		VaccineTypeID: 1,
		VaccineNameID: 1,
	}

	in := base
	in.Dose = "3ml" // sin separación cantidad/unidad
	if _, err := svc.Create(ctx, in); !errors.Is(err, ErrInvalidDose) {
		t.Fatalf("expected ErrInvalidDose, got %v", err)
	}

	in.Dose = ""
	if _, err := svc.Create(ctx, in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty dose, got %v", err)
	}

	in.Dose = "  3 ml  "
	v, err := svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Dose != "3 ml" {
		t.Fatalf("expected trimmed dose, got %q", v.Dose)
	}
}

func TestCreate_UnknownCatalogIDsFallBack(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	v, err := svc.Create(context.Background(), CreateInput{
		AnimalID:      "a-1",
		Date:          time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		VaccineTypeID: 777,
		VaccineNameID: 888,
		Dose:          "5 ml",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.VaccineTypeID != catalog.VaccineTypeOtherID {
		t.Fatalf("expected type sentinel %d, got %d", catalog.VaccineTypeOtherID, v.VaccineTypeID)
	}
	if v.VaccineNameID != catalog.VaccineNameOtherID {
		t.Fatalf("expected name sentinel %d, got %d", catalog.VaccineNameOtherID, v.VaccineNameID)
	}

	stored, err := repo.GetByID(context.Background(), v.ID)
	if err != nil {
		t.Fatalf("vaccination not persisted: %v", err)
	}
	if stored.VaccineTypeID != catalog.VaccineTypeOtherID {
		t.Fatalf("persisted type id mismatch: %d", stored.VaccineTypeID)
	}
}

func TestDeleteByAnimal_RemovesAll(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, CreateInput{
			AnimalID:      "a-1",
			Date:          time.Date(2024, 5, 1+i, 0, 0, 0, 0, time.UTC),
			VaccineTypeID: 1,
			VaccineNameID: 1,
			Dose:          "2 ml",
		}); err != nil {
			t.Fatalf("seed create: %v", err)
		}
	}

	n, err := svc.DeleteByAnimal(ctx, "a-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 deleted, got %d", n)
	}

	left, _ := svc.ListByAnimal(ctx, "a-1")
	if len(left) != 0 {
		t.Fatalf("expected none left, got %d", len(left))
	}
}
