package weights

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("weight record not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	AnimalID string
	TagCode  string
	Date     time.Time
	WeightKg float64
	Kind     string

	PurchaseCost       *float64
	SaleCost           *float64
	PurchasePricePerKg *float64
	SalePricePerKg     *float64
	GainKg             *float64
	PartialGainKg      *float64
	GainValue          *float64
	TrackingMonths     *int
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Weight, error) {
	if strings.TrimSpace(in.AnimalID) == "" || in.Date.IsZero() || in.WeightKg <= 0 {
		return Weight{}, ErrInvalidInput
	}

	now := s.now()
	w := Weight{
		ID:                 uuid.NewString(),
		AnimalID:           in.AnimalID,
		TagCode:            strings.TrimSpace(in.TagCode),
		Date:               in.Date,
		WeightKg:           in.WeightKg,
		Kind:               ParseKind(in.Kind),
		PurchaseCost:       in.PurchaseCost,
		SaleCost:           in.SaleCost,
		PurchasePricePerKg: in.PurchasePricePerKg,
		SalePricePerKg:     in.SalePricePerKg,
		GainKg:             in.GainKg,
		PartialGainKg:      in.PartialGainKg,
		GainValue:          in.GainValue,
		TrackingMonths:     in.TrackingMonths,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, w); err != nil {
		return Weight{}, err
	}
	return w, nil
}

// RecordBirth implementa animals.BirthWeightRecorder: el alta de un
// animal produce exactamente un pesaje de nacimiento.
func (s *Service) RecordBirth(ctx context.Context, animalID, tagCode string, date time.Time, weightKg float64) error {
	_, err := s.Create(ctx, CreateInput{
		AnimalID: animalID,
		TagCode:  tagCode,
		Date:     date,
		WeightKg: weightKg,
		Kind:     string(KindBirth),
	})
	return err
}

func (s *Service) GetByID(ctx context.Context, id string) (Weight, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Weight{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, ownerUserID string) ([]Weight, error) {
	return s.repo.List(ctx, ownerUserID)
}

func (s *Service) ListByTag(ctx context.Context, tagCode string) ([]Weight, error) {
	tagCode = strings.TrimSpace(tagCode)
	if tagCode == "" {
		return nil, nil
	}
	return s.repo.ListByTag(ctx, tagCode)
}

type UpdateInput struct {
	Date     time.Time
	WeightKg float64
	Kind     string

	PurchaseCost       *float64
	SaleCost           *float64
	PurchasePricePerKg *float64
	SalePricePerKg     *float64
	GainKg             *float64
	PartialGainKg      *float64
	GainValue          *float64
	TrackingMonths     *int
}

// Update reemplaza los campos mutables; los opcionales no enviados
// quedan en null (payload completo, igual que el sync).
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Weight, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Weight{}, err
	}
	if in.Date.IsZero() || in.WeightKg <= 0 {
		return Weight{}, ErrInvalidInput
	}

	updated := current
	updated.Date = in.Date
	updated.WeightKg = in.WeightKg
	updated.Kind = ParseKind(in.Kind)
	updated.PurchaseCost = in.PurchaseCost
	updated.SaleCost = in.SaleCost
	updated.PurchasePricePerKg = in.PurchasePricePerKg
	updated.SalePricePerKg = in.SalePricePerKg
	updated.GainKg = in.GainKg
	updated.PartialGainKg = in.PartialGainKg
	updated.GainValue = in.GainValue
	updated.TrackingMonths = in.TrackingMonths
	updated.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, updated); err != nil {
		return Weight{}, err
	}
	return updated, nil
}

func (s *Service) DeleteByTag(ctx context.Context, tagCode string) (int64, error) {
	tagCode = strings.TrimSpace(tagCode)
	if tagCode == "" {
		return 0, ErrNotFound
	}
	return s.repo.DeleteByTag(ctx, tagCode)
}
