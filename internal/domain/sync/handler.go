package sync

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"farm-livestock-history/internal/domain/animals"
	"farm-livestock-history/internal/domain/vaccinations"
	"farm-livestock-history/internal/domain/weights"
	"farm-livestock-history/internal/middleware"
	"farm-livestock-history/internal/ports/auth"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/sync", func(sr chi.Router) {
		sr.Get("/animals", pullAnimalsHandler(svc))
		sr.Get("/weights", pullWeightsHandler(svc))
		sr.Get("/vaccinations", pullVaccinationsHandler(svc))
		sr.Post("/batch", batchHandler(svc))
	})
}

type batchRequest struct {
	Operations []Operation `json:"operations"`
}

type batchResponse struct {
	Success      bool      `json:"success"`
	Results      []Result  `json:"results"`
	SuccessCount int       `json:"successCount"`
	FailCount    int       `json:"failCount"`
	Timestamp    time.Time `json:"timestamp"`
}

type pullResponse struct {
	Success   bool      `json:"success"`
	Records   any       `json:"records"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// batchHandler godoc
// @Summary Push de sincronización por lotes
// @Description Aplica las operaciones acumuladas offline en una sola transacción. Las fallas de negocio por operación no abortan el batch: el cliente debe revisar results[] aunque la respuesta sea 200.
// @Tags sync
// @Accept json
// @Produce json
// @Param payload body batchRequest true "Lista ordenada de operaciones"
// @Success 200 {object} batchResponse
// @Failure 400 {string} string "operations faltante o vacío"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 500 {string} string "el batch no pudo procesarse; reenviar completo"
// @Router /sync/batch [post]
func batchHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if !claims.CanWrite() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req batchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Operations == nil {
			http.Error(w, "operations list is required", http.StatusBadRequest)
			return
		}

		out, err := svc.ProcessBatch(r.Context(), claims, req.Operations)
		if err != nil {
			if errors.Is(err, ErrNoOperations) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "batch could not be processed", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, batchResponse{
			Success:      true,
			Results:      out.Results,
			SuccessCount: out.SuccessCount,
			FailCount:    out.FailCount,
			Timestamp:    out.Timestamp,
		})
	}
}

// pullAnimalsHandler godoc
// @Summary Pull incremental de animales
// @Description Devuelve los animales activos del usuario modificados después de since (RFC3339), ascendente por updated_at. Sin since devuelve el estado completo. Incluye breed_name denormalizado.
// @Tags sync
// @Produce json
// @Param since query string false "Marca de agua de la última sincronización"
// @Success 200 {object} pullResponse
// @Failure 400 {string} string "since inválido"
// @Failure 401 {string} string "unauthorized"
// @Router /sync/animals [get]
func pullAnimalsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		since, err := parseSince(r)
		if err != nil {
			http.Error(w, "since must be RFC3339", http.StatusBadRequest)
			return
		}

		items, err := svc.PullAnimals(r.Context(), claims, since)
		if err != nil {
			pullError(w, err)
			return
		}

		records := make([]syncAnimalRecord, 0, len(items))
		for _, a := range items {
			records = append(records, toSyncAnimalRecord(a))
		}
		writePull(w, svc, records, len(records))
	}
}

func pullWeightsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		since, err := parseSince(r)
		if err != nil {
			http.Error(w, "since must be RFC3339", http.StatusBadRequest)
			return
		}

		items, err := svc.PullWeights(r.Context(), claims, since)
		if err != nil {
			pullError(w, err)
			return
		}

		records := make([]syncWeightRecord, 0, len(items))
		for _, it := range items {
			records = append(records, toSyncWeightRecord(it))
		}
		writePull(w, svc, records, len(records))
	}
}

func pullVaccinationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		since, err := parseSince(r)
		if err != nil {
			http.Error(w, "since must be RFC3339", http.StatusBadRequest)
			return
		}

		items, err := svc.PullVaccinations(r.Context(), claims, since)
		if err != nil {
			pullError(w, err)
			return
		}

		records := make([]syncVaccinationRecord, 0, len(items))
		for _, it := range items {
			records = append(records, toSyncVaccinationRecord(it))
		}
		writePull(w, svc, records, len(records))
	}
}

// ---------------------------------------------------------------
// DTOs del feed. Duplicados a propósito respecto de los handlers CRUD:
// el contrato de sync es independiente y no debe moverse si cambia una
// vista CRUD.
// ---------------------------------------------------------------

type syncAnimalRecord struct {
	ID            string    `json:"id"`
	OwnerUserID   string    `json:"owner_user_id"`
	TagCode       string    `json:"tag_code"`
	Photo         string    `json:"photo"`
	BirthWeightKg float64   `json:"birth_weight_kg"`
	BreedID       int64     `json:"breed_id"`
	BreedName     string    `json:"breed_name,omitempty"`
	BirthDate     time.Time `json:"birth_date"`

	MotherID *string `json:"mother_id"`
	FatherID *string `json:"father_id"`
	Diseases *string `json:"diseases"`
	Notes    *string `json:"notes"`

	Origin        *string `json:"origin"`
	Brand         *string `json:"brand"`
	Category      *string `json:"category"`
	Location      *string `json:"location"`
	CalvingNumber *int    `json:"calving_number"`
	Precocity     *string `json:"precocity"`
	MatingType    *string `json:"mating_type"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type syncWeightRecord struct {
	ID       string    `json:"id"`
	AnimalID string    `json:"animal_id"`
	TagCode  string    `json:"tag_code"`
	Date     time.Time `json:"date"`
	WeightKg float64   `json:"weight_kg"`
	Kind     string    `json:"kind"`

	PurchaseCost       *float64 `json:"purchase_cost"`
	SaleCost           *float64 `json:"sale_cost"`
	PurchasePricePerKg *float64 `json:"purchase_price_per_kg"`
	SalePricePerKg     *float64 `json:"sale_price_per_kg"`
	GainKg             *float64 `json:"gain_kg"`
	PartialGainKg      *float64 `json:"partial_gain_kg"`
	GainValue          *float64 `json:"gain_value"`
	TrackingMonths     *int     `json:"tracking_months"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type syncVaccinationRecord struct {
	ID            string    `json:"id"`
	AnimalID      string    `json:"animal_id"`
	Date          time.Time `json:"date"`
	VaccineTypeID int64     `json:"vaccine_type_id"`
	VaccineNameID int64     `json:"vaccine_name_id"`
	Dose          string    `json:"dose"`
	Notes         *string   `json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toSyncAnimalRecord(a animals.Animal) syncAnimalRecord {
	return syncAnimalRecord{
		ID:            a.ID,
		OwnerUserID:   a.OwnerUserID,
		TagCode:       a.TagCode,
		Photo:         a.Photo,
		BirthWeightKg: a.BirthWeightKg,
		BreedID:       a.BreedID,
		BreedName:     a.BreedName,
		BirthDate:     a.BirthDate,
		MotherID:      a.MotherID,
		FatherID:      a.FatherID,
		Diseases:      a.Diseases,
		Notes:         a.Notes,
		Origin:        a.Origin,
		Brand:         a.Brand,
		Category:      a.Category,
		Location:      a.Location,
		CalvingNumber: a.CalvingNumber,
		Precocity:     a.Precocity,
		MatingType:    a.MatingType,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func toSyncWeightRecord(it weights.Weight) syncWeightRecord {
	return syncWeightRecord{
		ID:                 it.ID,
		AnimalID:           it.AnimalID,
		TagCode:            it.TagCode,
		Date:               it.Date,
		WeightKg:           it.WeightKg,
		Kind:               string(it.Kind),
		PurchaseCost:       it.PurchaseCost,
		SaleCost:           it.SaleCost,
		PurchasePricePerKg: it.PurchasePricePerKg,
		SalePricePerKg:     it.SalePricePerKg,
		GainKg:             it.GainKg,
		PartialGainKg:      it.PartialGainKg,
		GainValue:          it.GainValue,
		TrackingMonths:     it.TrackingMonths,
		CreatedAt:          it.CreatedAt,
		UpdatedAt:          it.UpdatedAt,
	}
}

func toSyncVaccinationRecord(it vaccinations.Vaccination) syncVaccinationRecord {
	return syncVaccinationRecord{
		ID:            it.ID,
		AnimalID:      it.AnimalID,
		Date:          it.Date,
		VaccineTypeID: it.VaccineTypeID,
		VaccineNameID: it.VaccineNameID,
		Dose:          it.Dose,
		Notes:         it.Notes,
		CreatedAt:     it.CreatedAt,
		UpdatedAt:     it.UpdatedAt,
	}
}

// ---------------------------------------------------------------
// Helpers HTTP
// ---------------------------------------------------------------

func requirePrincipal(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return auth.Claims{}, false
	}
	return claims, true
}

func parseSince(r *http.Request) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("since"))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func pullError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNoScope) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writePull(w http.ResponseWriter, svc *Service, records any, count int) {
	writeJSON(w, http.StatusOK, pullResponse{
		Success:   true,
		Records:   records,
		Count:     count,
		Timestamp: svc.now().UTC(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
