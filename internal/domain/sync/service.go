package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"farm-livestock-history/internal/domain/animals"
	"farm-livestock-history/internal/domain/catalog"
	"farm-livestock-history/internal/domain/vaccinations"
	"farm-livestock-history/internal/domain/weights"
	"farm-livestock-history/internal/platform/logger"
	"farm-livestock-history/internal/ports/auth"
)

var (
	ErrNoOperations = errors.New("operations list is required")
	ErrNoScope      = errors.New("missing user scope")

	// ErrBatchFailed envuelve fallas de infraestructura (no se pudo abrir
	// o confirmar la transacción). El batch entero se rechaza y el cliente
	// reenvía todo: las operaciones son idempotentes por chip.
	ErrBatchFailed = errors.New("batch could not be processed")
)

type Service struct {
	store    Store
	log      logger.Logger
	now      func() time.Time
	validate *validator.Validate
}

func NewService(store Store, log logger.Logger) *Service {
	return &Service{
		store:    store,
		log:      log,
		now:      time.Now,
		validate: validator.New(),
	}
}

// BatchOutcome es la respuesta del push.
type BatchOutcome struct {
	Results      []Result
	SuccessCount int
	FailCount    int
	Timestamp    time.Time
}

// ProcessBatch aplica la lista de operaciones del cliente, en orden, en
// una sola transacción. Política "best effort": la falla de negocio de
// una operación se registra como resultado fallido y no descarta las
// demás; el commit se intenta siempre. Solo un error de infraestructura
// (begin/commit) aborta el batch completo.
func (s *Service) ProcessBatch(ctx context.Context, principal auth.Claims, ops []Operation) (BatchOutcome, error) {
	if strings.TrimSpace(principal.UserID) == "" {
		return BatchOutcome{}, ErrNoScope
	}
	if len(ops) == 0 {
		return BatchOutcome{}, ErrNoOperations
	}

	tx, err := s.store.BeginBatch(ctx)
	if err != nil {
		return BatchOutcome{}, fmt.Errorf("%w: %v", ErrBatchFailed, err)
	}

	results := make([]Result, 0, len(ops))
	for _, op := range ops {
		res, err := s.dispatch(ctx, tx, principal, op)
		if err != nil {
			// Frontera por-operación: cualquier error acá se convierte
			// en dato y el batch sigue.
			s.log.Warn("sync operation failed", map[string]any{
				"table":  op.Table,
				"action": op.Action,
				"error":  err.Error(),
			})
			res = failure(op.Table, op.Action, err.Error())
		}
		results = append(results, res)
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return BatchOutcome{}, fmt.Errorf("%w: %v", ErrBatchFailed, err)
	}

	out := BatchOutcome{Results: results, Timestamp: s.now()}
	for _, r := range results {
		if r.Success {
			out.SuccessCount++
		} else {
			out.FailCount++
		}
	}

	s.log.Info("sync batch committed", map[string]any{
		"user":    principal.UserID,
		"ops":     len(ops),
		"success": out.SuccessCount,
		"fail":    out.FailCount,
	})

	return out, nil
}

// dispatch enruta la operación al reconciliador de su tabla.
func (s *Service) dispatch(ctx context.Context, tx BatchTx, principal auth.Claims, op Operation) (Result, error) {
	switch op.Table {
	case TableAnimals:
		return s.reconcileAnimal(ctx, tx, principal, op)
	case TableWeights:
		return s.reconcileWeight(ctx, tx, principal, op)
	case TableVaccinations:
		return s.reconcileVaccination(ctx, tx, principal, op)
	default:
		return Result{}, fmt.Errorf("unsupported table: %s", op.Table)
	}
}

// ---------------------------------------------------------------
// Reconciliador: animals
// ---------------------------------------------------------------

func (s *Service) reconcileAnimal(ctx context.Context, tx BatchTx, principal auth.Claims, op Operation) (Result, error) {
	switch op.Action {
	case ActionInsert:
		var p animalPayload
		if err := json.Unmarshal(op.Data, &p); err != nil {
			return Result{}, fmt.Errorf("invalid animal payload: %w", err)
		}
		if err := s.validate.Struct(p); err != nil {
			return Result{}, fmt.Errorf("invalid animal payload: %w", err)
		}
		bd, err := parseDate(p.BirthDate)
		if err != nil {
			return Result{}, err
		}

		// Idempotencia por clave natural dentro del tenant: si el chip ya
		// existe, se devuelve falla con el id existente. El cliente debe
		// adoptar ese id, no reintentar.
		if existing, err := tx.ActiveAnimalByTag(ctx, principal.UserID, p.TagCode); err == nil {
			return Result{
				Success:    false,
				Table:      TableAnimals,
				Action:     ActionInsert,
				Error:      "tag code already registered",
				ExistingID: existing.ID,
			}, nil
		} else if !errors.Is(err, ErrNotFound) {
			return Result{}, err
		}

		breedID, err := catalog.ResolveOrDefault(ctx, s.breedLookup(tx), p.BreedID, catalog.BreedOtherID)
		if err != nil {
			return Result{}, err
		}

		photo := strings.TrimSpace(p.Photo)
		if photo == "" {
			photo = animals.DefaultPhoto
		}

		now := s.now()
		a := animals.Animal{
			ID:            uuid.NewString(),
			OwnerUserID:   principal.UserID,
			TagCode:       strings.TrimSpace(p.TagCode),
			Photo:         photo,
			BirthWeightKg: p.BirthWeightKg,
			BreedID:       breedID,
			BirthDate:     bd,
			MotherID:      p.MotherID,
			FatherID:      p.FatherID,
			Diseases:      p.Diseases,
			Notes:         p.Notes,
			Origin:        p.Origin,
			Brand:         p.Brand,
			Category:      p.Category,
			Location:      p.Location,
			CalvingNumber: p.CalvingNumber,
			Precocity:     p.Precocity,
			MatingType:    p.MatingType,
			Active:        true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := tx.InsertAnimal(ctx, a); err != nil {
			return Result{}, err
		}

		// Efecto cruzado explícito: el alta de un animal produce
		// exactamente un pesaje de nacimiento en la misma transacción.
		birth := weights.Weight{
			ID:        uuid.NewString(),
			AnimalID:  a.ID,
			TagCode:   a.TagCode,
			Date:      a.BirthDate,
			WeightKg:  a.BirthWeightKg,
			Kind:      weights.KindBirth,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.InsertWeight(ctx, birth); err != nil {
			return Result{}, err
		}

		return Result{
			Success:  true,
			Table:    TableAnimals,
			Action:   ActionInsert,
			ServerID: a.ID,
			LocalID:  op.RecordID,
		}, nil

	case ActionUpdate:
		var p animalPayload
		if err := json.Unmarshal(op.Data, &p); err != nil {
			return Result{}, fmt.Errorf("invalid animal payload: %w", err)
		}
		if err := s.validate.Struct(p); err != nil {
			return Result{}, fmt.Errorf("invalid animal payload: %w", err)
		}
		bd, err := parseDate(p.BirthDate)
		if err != nil {
			return Result{}, err
		}

		// El chip solo es único por usuario: la búsqueda se acota al
		// dueño, si no dos tenants con el mismo chip se pisan. Admin
		// opera sobre cualquier tenant.
		owner := principal.UserID
		if principal.IsAdmin() {
			owner = ""
		}
		current, err := tx.ActiveAnimalByTag(ctx, owner, p.TagCode)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return failure(TableAnimals, ActionUpdate, "animal not found or not owned"), nil
			}
			return Result{}, err
		}

		breedID, err := catalog.ResolveOrDefault(ctx, s.breedLookup(tx), p.BreedID, catalog.BreedOtherID)
		if err != nil {
			return Result{}, err
		}

		// Reemplazo completo de atributos mutables; los opcionales no
		// enviados quedan en null. El cliente manda siempre el payload
		// entero.
		updated := current
		updated.BirthWeightKg = p.BirthWeightKg
		updated.BreedID = breedID
		updated.BirthDate = bd
		updated.MotherID = p.MotherID
		updated.FatherID = p.FatherID
		updated.Diseases = p.Diseases
		updated.Notes = p.Notes
		updated.Origin = p.Origin
		updated.Brand = p.Brand
		updated.Category = p.Category
		updated.Location = p.Location
		updated.CalvingNumber = p.CalvingNumber
		updated.Precocity = p.Precocity
		updated.MatingType = p.MatingType
		updated.UpdatedAt = s.now()

		n, err := tx.ReplaceAnimal(ctx, updated)
		if err != nil {
			return Result{}, err
		}
		return Result{
			Success:      true,
			Table:        TableAnimals,
			Action:       ActionUpdate,
			AffectedRows: n,
		}, nil

	case ActionDelete:
		if strings.TrimSpace(op.RecordID) == "" {
			return Result{}, errors.New("recordId is required for DELETE")
		}
		current, err := tx.AnimalByID(ctx, op.RecordID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return failure(TableAnimals, ActionDelete, "animal not found or not owned"), nil
			}
			return Result{}, err
		}
		if !principal.CanAccess(current.OwnerUserID) {
			return failure(TableAnimals, ActionDelete, "animal not found or not owned"), nil
		}

		// Baja lógica: la fila nunca se borra por sync.
		n, err := tx.DeactivateAnimal(ctx, current.ID, s.now())
		if err != nil {
			return Result{}, err
		}
		return Result{
			Success:      true,
			Table:        TableAnimals,
			Action:       ActionDelete,
			AffectedRows: n,
		}, nil

	default:
		return Result{}, fmt.Errorf("unsupported action for animals: %s", op.Action)
	}
}

// ---------------------------------------------------------------
// Reconciliador: weights
// ---------------------------------------------------------------

func (s *Service) reconcileWeight(ctx context.Context, tx BatchTx, principal auth.Claims, op Operation) (Result, error) {
	switch op.Action {
	case ActionInsert:
		var p weightPayload
		if err := json.Unmarshal(op.Data, &p); err != nil {
			return Result{}, fmt.Errorf("invalid weight payload: %w", err)
		}
		if err := s.validate.Struct(p); err != nil {
			return Result{}, fmt.Errorf("invalid weight payload: %w", err)
		}
		d, err := parseDate(p.Date)
		if err != nil {
			return Result{}, err
		}

		// El animal referenciado debe existir y pertenecer al usuario.
		a, err := tx.AnimalByID(ctx, p.AnimalID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return failure(TableWeights, ActionInsert, "animal not found or not owned"), nil
			}
			return Result{}, err
		}
		if !principal.CanAccess(a.OwnerUserID) {
			return failure(TableWeights, ActionInsert, "animal not found or not owned"), nil
		}

		now := s.now()
		w := weights.Weight{
			ID:                 uuid.NewString(),
			AnimalID:           a.ID,
			TagCode:            a.TagCode,
			Date:               d,
			WeightKg:           p.WeightKg,
			Kind:               weights.ParseKind(p.Kind),
			PurchaseCost:       p.PurchaseCost,
			SaleCost:           p.SaleCost,
			PurchasePricePerKg: p.PurchasePricePerKg,
			SalePricePerKg:     p.SalePricePerKg,
			GainKg:             p.GainKg,
			PartialGainKg:      p.PartialGainKg,
			GainValue:          p.GainValue,
			TrackingMonths:     p.TrackingMonths,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := tx.InsertWeight(ctx, w); err != nil {
			return Result{}, err
		}
		return Result{
			Success:  true,
			Table:    TableWeights,
			Action:   ActionInsert,
			ServerID: w.ID,
			LocalID:  op.RecordID,
		}, nil

	case ActionUpdate:
		var p weightPayload
		if err := json.Unmarshal(op.Data, &p); err != nil {
			return Result{}, fmt.Errorf("invalid weight payload: %w", err)
		}
		// En UPDATE el animal no se re-referencia; solo fecha y peso son
		// obligatorios.
		if err := s.validate.StructPartial(p, "Date", "WeightKg"); err != nil {
			return Result{}, fmt.Errorf("invalid weight payload: %w", err)
		}
		d, err := parseDate(p.Date)
		if err != nil {
			return Result{}, err
		}
		if strings.TrimSpace(op.RecordID) == "" {
			return Result{}, errors.New("recordId is required for UPDATE")
		}

		current, err := tx.WeightByID(ctx, op.RecordID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return failure(TableWeights, ActionUpdate, "weight record not found"), nil
			}
			return Result{}, err
		}
		// Propiedad vía el animal dueño del pesaje.
		a, err := tx.AnimalByID(ctx, current.AnimalID)
		if err != nil || !principal.CanAccess(a.OwnerUserID) {
			return failure(TableWeights, ActionUpdate, "weight record not found"), nil
		}

		updated := current
		updated.Date = d
		updated.WeightKg = p.WeightKg
		updated.PurchaseCost = p.PurchaseCost
		updated.SaleCost = p.SaleCost
		updated.PurchasePricePerKg = p.PurchasePricePerKg
		updated.SalePricePerKg = p.SalePricePerKg
		updated.UpdatedAt = s.now()

		n, err := tx.UpdateWeight(ctx, updated)
		if err != nil {
			return Result{}, err
		}
		return Result{
			Success:      true,
			Table:        TableWeights,
			Action:       ActionUpdate,
			AffectedRows: n,
		}, nil

	default:
		return Result{}, fmt.Errorf("unsupported action for weights: %s", op.Action)
	}
}

// ---------------------------------------------------------------
// Reconciliador: vaccinations
// ---------------------------------------------------------------

func (s *Service) reconcileVaccination(ctx context.Context, tx BatchTx, principal auth.Claims, op Operation) (Result, error) {
	switch op.Action {
	case ActionInsert:
		var p vaccinationPayload
		if err := json.Unmarshal(op.Data, &p); err != nil {
			return Result{}, fmt.Errorf("invalid vaccination payload: %w", err)
		}
		if err := s.validate.Struct(p); err != nil {
			return Result{}, fmt.Errorf("invalid vaccination payload: %w", err)
		}
		d, err := parseDate(p.Date)
		if err != nil {
			return Result{}, err
		}

		a, err := tx.AnimalByID(ctx, p.AnimalID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return failure(TableVaccinations, ActionInsert, "animal not found or not owned"), nil
			}
			return Result{}, err
		}
		if !principal.CanAccess(a.OwnerUserID) {
			return failure(TableVaccinations, ActionInsert, "animal not found or not owned"), nil
		}

		typeID, err := catalog.ResolveOrDefault(ctx, s.vaccineTypeLookup(tx), p.VaccineTypeID, catalog.VaccineTypeOtherID)
		if err != nil {
			return Result{}, err
		}
		nameID, err := catalog.ResolveOrDefault(ctx, s.vaccineNameLookup(tx), p.VaccineNameID, catalog.VaccineNameOtherID)
		if err != nil {
			return Result{}, err
		}

		now := s.now()
		v := vaccinations.Vaccination{
			ID:            uuid.NewString(),
			AnimalID:      a.ID,
			Date:          d,
			VaccineTypeID: typeID,
			VaccineNameID: nameID,
			Dose:          strings.TrimSpace(p.Dose),
			Notes:         p.Notes,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := tx.InsertVaccination(ctx, v); err != nil {
			return Result{}, err
		}
		return Result{
			Success:  true,
			Table:    TableVaccinations,
			Action:   ActionInsert,
			ServerID: v.ID,
			LocalID:  op.RecordID,
		}, nil

	case ActionUpdate:
		var p vaccinationPayload
		if err := json.Unmarshal(op.Data, &p); err != nil {
			return Result{}, fmt.Errorf("invalid vaccination payload: %w", err)
		}
		if err := s.validate.StructPartial(p, "Date"); err != nil {
			return Result{}, fmt.Errorf("invalid vaccination payload: %w", err)
		}
		d, err := parseDate(p.Date)
		if err != nil {
			return Result{}, err
		}
		if strings.TrimSpace(op.RecordID) == "" {
			return Result{}, errors.New("recordId is required for UPDATE")
		}

		current, err := tx.VaccinationByID(ctx, op.RecordID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return failure(TableVaccinations, ActionUpdate, "vaccination not found"), nil
			}
			return Result{}, err
		}
		a, err := tx.AnimalByID(ctx, current.AnimalID)
		if err != nil || !principal.CanAccess(a.OwnerUserID) {
			return failure(TableVaccinations, ActionUpdate, "vaccination not found"), nil
		}

		typeID, err := catalog.ResolveOrDefault(ctx, s.vaccineTypeLookup(tx), p.VaccineTypeID, catalog.VaccineTypeOtherID)
		if err != nil {
			return Result{}, err
		}
		nameID, err := catalog.ResolveOrDefault(ctx, s.vaccineNameLookup(tx), p.VaccineNameID, catalog.VaccineNameOtherID)
		if err != nil {
			return Result{}, err
		}

		updated := current
		updated.Date = d
		updated.VaccineTypeID = typeID
		updated.VaccineNameID = nameID
		updated.Dose = strings.TrimSpace(p.Dose)
		updated.Notes = p.Notes
		updated.UpdatedAt = s.now()

		n, err := tx.UpdateVaccination(ctx, updated)
		if err != nil {
			return Result{}, err
		}
		return Result{
			Success:      true,
			Table:        TableVaccinations,
			Action:       ActionUpdate,
			AffectedRows: n,
		}, nil

	default:
		return Result{}, fmt.Errorf("unsupported action for vaccinations: %s", op.Action)
	}
}

// ---------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------

func (s *Service) breedLookup(tx BatchTx) catalog.Lookup {
	return catalog.LookupFunc(func(ctx context.Context, id int64) (bool, error) {
		return tx.BreedExists(ctx, id)
	})
}

func (s *Service) vaccineTypeLookup(tx BatchTx) catalog.Lookup {
	return catalog.LookupFunc(func(ctx context.Context, id int64) (bool, error) {
		return tx.VaccineTypeExists(ctx, id)
	})
}

func (s *Service) vaccineNameLookup(tx BatchTx) catalog.Lookup {
	return catalog.LookupFunc(func(ctx context.Context, id int64) (bool, error) {
		return tx.VaccineNameExists(ctx, id)
	})
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	// El cliente móvil a veces manda timestamps completos.
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date: %q", s)
}
