package sync

import (
	"context"
	"strings"
	"time"

	"farm-livestock-history/internal/domain/animals"
	"farm-livestock-history/internal/domain/vaccinations"
	"farm-livestock-history/internal/domain/weights"
	"farm-livestock-history/internal/ports/auth"
)

// El pull incremental: devuelve todo lo que cambió después de since,
// ascendente por updated_at. El servidor no guarda cursores por cliente;
// el cliente persiste el mayor updated_at que vio como su marca de agua.
//
// Para animales solo se devuelven filas activas: un cliente que ya
// sincronizó no se entera de bajas lógicas salvo resync completo.
// Limitación conocida, ver DESIGN.md.

// scopeFor decide el filtro de tenant del pull. Admin consulta sin
// filtro; el resto siempre queda confinado a su propio usuario, y sin
// usuario el pull se rechaza antes de tocar la base.
func scopeFor(principal auth.Claims) (string, error) {
	if principal.IsAdmin() {
		return "", nil
	}
	if strings.TrimSpace(principal.UserID) == "" {
		return "", ErrNoScope
	}
	return principal.UserID, nil
}

func (s *Service) PullAnimals(ctx context.Context, principal auth.Claims, since *time.Time) ([]animals.Animal, error) {
	owner, err := scopeFor(principal)
	if err != nil {
		return nil, err
	}
	return s.store.AnimalsSince(ctx, owner, since)
}

func (s *Service) PullWeights(ctx context.Context, principal auth.Claims, since *time.Time) ([]weights.Weight, error) {
	owner, err := scopeFor(principal)
	if err != nil {
		return nil, err
	}
	return s.store.WeightsSince(ctx, owner, since)
}

func (s *Service) PullVaccinations(ctx context.Context, principal auth.Claims, since *time.Time) ([]vaccinations.Vaccination, error) {
	owner, err := scopeFor(principal)
	if err != nil {
		return nil, err
	}
	return s.store.VaccinationsSince(ctx, owner, since)
}
