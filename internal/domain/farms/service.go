package farms

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("farm not found")
	ErrDuplicateTaxID = errors.New("tax id already registered")
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
	Name    string
	TaxID   string
	Address string
	Phone   string
	Email   string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Farm, error) {
	name := strings.TrimSpace(in.Name)
	taxID := strings.TrimSpace(in.TaxID)
	if name == "" || taxID == "" {
		return Farm{}, ErrInvalidInput
	}

	if _, err := s.repo.GetByTaxID(ctx, taxID); err == nil {
		return Farm{}, ErrDuplicateTaxID
	} else if !errors.Is(err, ErrNotFound) {
		return Farm{}, err
	}

	now := s.now()
	f := Farm{
		ID:        uuid.NewString(),
		Name:      name,
		TaxID:     taxID,
		Address:   strings.TrimSpace(in.Address),
		Phone:     strings.TrimSpace(in.Phone),
		Email:     strings.TrimSpace(in.Email),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, f); err != nil {
		return Farm{}, err
	}
	return f, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Farm, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Farm{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Farm, error) {
	return s.repo.List(ctx)
}

type UpdateInput struct {
	Name    *string
	Address *string
	Phone   *string
	Email   *string
	Active  *bool
}

// Update es un PATCH real: nil = no tocar.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Farm, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Farm{}, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return Farm{}, ErrInvalidInput
		}
		current.Name = strings.TrimSpace(*in.Name)
	}
	if in.Address != nil {
		current.Address = strings.TrimSpace(*in.Address)
	}
	if in.Phone != nil {
		current.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Email != nil {
		current.Email = strings.TrimSpace(*in.Email)
	}
	if in.Active != nil {
		current.Active = *in.Active
	}
	current.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, current); err != nil {
		return Farm{}, err
	}
	return current, nil
}
