package vaccinations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"farm-livestock-history/internal/domain/catalog"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidDose  = errors.New("dose must include quantity and unit")
	ErrNotFound     = errors.New("vaccination not found")
)

type Service struct {
	repo         Repository
	vaccineTypes catalog.Lookup
	vaccineNames catalog.Lookup
	now          func() time.Time
}

func NewService(repo Repository, vaccineTypes, vaccineNames catalog.Lookup) *Service {
	return &Service{
		repo:         repo,
		vaccineTypes: vaccineTypes,
		vaccineNames: vaccineNames,
		now:          time.Now,
	}
}

type CreateInput struct {
	AnimalID      string
	Date          time.Time
	VaccineTypeID int64
	VaccineNameID int64
	Dose          string
	Notes         *string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Vaccination, error) {
	if strings.TrimSpace(in.AnimalID) == "" || in.Date.IsZero() {
		return Vaccination{}, ErrInvalidInput
	}
	dose := strings.TrimSpace(in.Dose)
	if dose == "" {
		return Vaccination{}, ErrInvalidInput
	}
	// La dosis debe llevar cantidad y unidad, ej. "3 ml".
	if !strings.Contains(dose, " ") {
		return Vaccination{}, ErrInvalidDose
	}

	typeID, err := catalog.ResolveOrDefault(ctx, s.vaccineTypes, in.VaccineTypeID, catalog.VaccineTypeOtherID)
	if err != nil {
		return Vaccination{}, err
	}
	nameID, err := catalog.ResolveOrDefault(ctx, s.vaccineNames, in.VaccineNameID, catalog.VaccineNameOtherID)
	if err != nil {
		return Vaccination{}, err
	}

	now := s.now()
	v := Vaccination{
		ID:            uuid.NewString(),
		AnimalID:      in.AnimalID,
		Date:          in.Date,
		VaccineTypeID: typeID,
		VaccineNameID: nameID,
		Dose:          dose,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, v); err != nil {
		return Vaccination{}, err
	}
	return v, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Vaccination, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Vaccination{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, ownerUserID string) ([]Vaccination, error) {
	return s.repo.List(ctx, ownerUserID)
}

func (s *Service) ListByAnimal(ctx context.Context, animalID string) ([]Vaccination, error) {
	animalID = strings.TrimSpace(animalID)
	if animalID == "" {
		return nil, nil
	}
	return s.repo.ListByAnimal(ctx, animalID)
}

type UpdateInput struct {
	Date          time.Time
	VaccineTypeID int64
	VaccineNameID int64
	Dose          string
	Notes         *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Vaccination, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Vaccination{}, err
	}
	if in.Date.IsZero() || strings.TrimSpace(in.Dose) == "" {
		return Vaccination{}, ErrInvalidInput
	}

	typeID, err := catalog.ResolveOrDefault(ctx, s.vaccineTypes, in.VaccineTypeID, catalog.VaccineTypeOtherID)
	if err != nil {
		return Vaccination{}, err
	}
	nameID, err := catalog.ResolveOrDefault(ctx, s.vaccineNames, in.VaccineNameID, catalog.VaccineNameOtherID)
	if err != nil {
		return Vaccination{}, err
	}

	updated := current
	updated.Date = in.Date
	updated.VaccineTypeID = typeID
	updated.VaccineNameID = nameID
	updated.Dose = strings.TrimSpace(in.Dose)
	updated.Notes = in.Notes
	updated.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, updated); err != nil {
		return Vaccination{}, err
	}
	return updated, nil
}

func (s *Service) DeleteByAnimal(ctx context.Context, animalID string) (int64, error) {
	animalID = strings.TrimSpace(animalID)
	if animalID == "" {
		return 0, ErrNotFound
	}
	return s.repo.DeleteByAnimal(ctx, animalID)
}
