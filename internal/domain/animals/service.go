package animals

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
	ErrNotFound     = errors.New("animal not found")
)

// DuplicateTagError indica que la clave natural ya está registrada.
// Incluye el id existente para que el cliente pueda adoptarlo.
type DuplicateTagError struct {
	ExistingID string
}

func (e *DuplicateTagError) Error() string { return "tag code already registered" }

// BirthWeightRecorder registra el pesaje de nacimiento implícito.
// Contrato explícito: Create de un animal produce exactamente un
// pesaje con kind=birth. Lo implementa el módulo weights.
type BirthWeightRecorder interface {
	RecordBirth(ctx context.Context, animalID, tagCode string, date time.Time, weightKg float64) error
}

type Service struct {
	repo   Repository
	breeds catalog.Lookup
	births BirthWeightRecorder
	now    func() time.Time
}

func NewService(repo Repository, breeds catalog.Lookup, births BirthWeightRecorder) *Service {
	return &Service{
		repo:   repo,
		breeds: breeds,
		births: births,
		now:    time.Now,
	}
}

type CreateInput struct {
	TagCode       string
	Photo         string
	BirthWeightKg float64
	BreedID       int64
	BirthDate     time.Time

	MotherID *string
	FatherID *string
	Diseases *string
	Notes    *string

	Origin        *string
	Brand         *string
	Category      *string
	Location      *string
	CalvingNumber *int
	Precocity     *string
	MatingType    *string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Animal, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Animal{}, ErrInvalidInput
	}
	in.TagCode = strings.TrimSpace(in.TagCode)
	if in.TagCode == "" || in.BirthWeightKg <= 0 || in.BirthDate.IsZero() {
		return Animal{}, ErrInvalidInput
	}

	if existing, err := s.repo.GetActiveByTag(ctx, in.TagCode); err == nil {
		return Animal{}, &DuplicateTagError{ExistingID: existing.ID}
	} else if !errors.Is(err, ErrNotFound) {
		return Animal{}, err
	}

	breedID, err := catalog.ResolveOrDefault(ctx, s.breeds, in.BreedID, catalog.BreedOtherID)
	if err != nil {
		return Animal{}, err
	}

	photo := strings.TrimSpace(in.Photo)
	if photo == "" {
		photo = DefaultPhoto
	}

	now := s.now()
	a := Animal{
		ID:            uuid.NewString(),
		OwnerUserID:   ownerUserID,
		TagCode:       in.TagCode,
		Photo:         photo,
		BirthWeightKg: in.BirthWeightKg,
		BreedID:       breedID,
		BirthDate:     in.BirthDate,
		MotherID:      in.MotherID,
		FatherID:      in.FatherID,
		Diseases:      in.Diseases,
		Notes:         in.Notes,
		Origin:        in.Origin,
		Brand:         in.Brand,
		Category:      in.Category,
		Location:      in.Location,
		CalvingNumber: in.CalvingNumber,
		Precocity:     in.Precocity,
		MatingType:    in.MatingType,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Animal{}, err
	}

	if s.births != nil {
		if err := s.births.RecordBirth(ctx, a.ID, a.TagCode, a.BirthDate, a.BirthWeightKg); err != nil {
			return Animal{}, err
		}
	}

	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Animal, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetActiveByTag(ctx context.Context, tagCode string) (Animal, error) {
	tagCode = strings.TrimSpace(tagCode)
	if tagCode == "" {
		return Animal{}, ErrNotFound
	}
	return s.repo.GetActiveByTag(ctx, tagCode)
}

func (s *Service) List(ctx context.Context, ownerUserID string) ([]Animal, error) {
	return s.repo.List(ctx, ownerUserID)
}

type UpdateInput struct {
	BirthWeightKg float64
	BreedID       int64
	BirthDate     time.Time

	MotherID *string
	FatherID *string
	Diseases *string
	Notes    *string

	Origin        *string
	Brand         *string
	Category      *string
	Location      *string
	CalvingNumber *int
	Precocity     *string
	MatingType    *string
}

// Update reemplaza los atributos mutables del animal identificado por su
// clave natural. Los opcionales no enviados quedan en null: el caller debe
// mandar el payload completo (misma semántica que el sync).
func (s *Service) Update(ctx context.Context, tagCode string, in UpdateInput) (Animal, error) {
	current, err := s.GetActiveByTag(ctx, tagCode)
	if err != nil {
		return Animal{}, err
	}
	if in.BirthWeightKg <= 0 || in.BirthDate.IsZero() {
		return Animal{}, ErrInvalidInput
	}

	breedID, err := catalog.ResolveOrDefault(ctx, s.breeds, in.BreedID, catalog.BreedOtherID)
	if err != nil {
		return Animal{}, err
	}

	updated := current
	updated.BirthWeightKg = in.BirthWeightKg
	updated.BreedID = breedID
	updated.BirthDate = in.BirthDate
	updated.MotherID = in.MotherID
	updated.FatherID = in.FatherID
	updated.Diseases = in.Diseases
	updated.Notes = in.Notes
	updated.Origin = in.Origin
	updated.Brand = in.Brand
	updated.Category = in.Category
	updated.Location = in.Location
	updated.CalvingNumber = in.CalvingNumber
	updated.Precocity = in.Precocity
	updated.MatingType = in.MatingType
	updated.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, updated); err != nil {
		return Animal{}, err
	}
	return updated, nil
}

func (s *Service) DeleteByTag(ctx context.Context, tagCode string) error {
	tagCode = strings.TrimSpace(tagCode)
	if tagCode == "" {
		return ErrNotFound
	}
	return s.repo.DeleteByTag(ctx, tagCode)
}
