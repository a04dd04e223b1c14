package weights

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"farm-livestock-history/internal/domain/animals"
	"farm-livestock-history/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service, animalsSvc *animals.Service) {
	r.Route("/weights", func(wr chi.Router) {
		wr.Post("/", createWeightHandler(svc, animalsSvc))
		wr.Get("/", listWeightsHandler(svc))
		wr.Get("/{tagCode}", listWeightsByTagHandler(svc, animalsSvc))
		wr.Put("/{weightID}", updateWeightHandler(svc, animalsSvc))

		// Borrado masivo por chip: única forma de borrar pesajes.
		wr.Delete("/{tagCode}", deleteWeightsByTagHandler(svc, animalsSvc))
	})
}

type weightRequest struct {
	TagCode  string  `json:"tag_code"`
	Date     string  `json:"date"` // YYYY-MM-DD
	WeightKg float64 `json:"weight_kg"`
	Kind     string  `json:"kind"`

	PurchaseCost       *float64 `json:"purchase_cost"`
	SaleCost           *float64 `json:"sale_cost"`
	PurchasePricePerKg *float64 `json:"purchase_price_per_kg"`
	SalePricePerKg     *float64 `json:"sale_price_per_kg"`
	GainKg             *float64 `json:"gain_kg"`
	PartialGainKg      *float64 `json:"partial_gain_kg"`
	GainValue          *float64 `json:"gain_value"`
	TrackingMonths     *int     `json:"tracking_months"`
}

type weightResponse struct {
	ID       string    `json:"id"`
	AnimalID string    `json:"animal_id"`
	TagCode  string    `json:"tag_code"`
	Date     time.Time `json:"date"`
	WeightKg float64   `json:"weight_kg"`
	Kind     Kind      `json:"kind"`

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

// createWeightHandler godoc
// @Summary Registrar pesaje
// @Description Registra un pesaje para el animal identificado por su chip. El animal debe existir y pertenecer al usuario (admin exento). Un kind desconocido se coacciona a routine.
// @Tags weights
// @Accept json
// @Produce json
// @Param payload body weightRequest true "Datos del pesaje; date en formato YYYY-MM-DD"
// @Success 201 {object} weightResponse
// @Failure 400 {string} string "invalid json / campos obligatorios"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "animal not found"
// @Router /weights [post]
func createWeightHandler(svc *Service, animalsSvc *animals.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !claims.CanWrite() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req weightRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := animalsSvc.GetActiveByTag(r.Context(), req.TagCode)
		if err != nil {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}
		if !claims.CanAccess(a.OwnerUserID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		d, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		created, err := svc.Create(r.Context(), CreateInput{
			AnimalID:           a.ID,
			TagCode:            a.TagCode,
			Date:               d,
			WeightKg:           req.WeightKg,
			Kind:               req.Kind,
			PurchaseCost:       req.PurchaseCost,
			SaleCost:           req.SaleCost,
			PurchasePricePerKg: req.PurchasePricePerKg,
			SalePricePerKg:     req.SalePricePerKg,
			GainKg:             req.GainKg,
			PartialGainKg:      req.PartialGainKg,
			GainValue:          req.GainValue,
			TrackingMonths:     req.TrackingMonths,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toWeightResponse(created))
	}
}

func listWeightsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		owner := claims.UserID
		if claims.IsAdmin() {
			owner = ""
		}

		items, err := svc.List(r.Context(), owner)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]weightResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toWeightResponse(it))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listWeightsByTagHandler(svc *Service, animalsSvc *animals.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		tagCode := chi.URLParam(r, "tagCode")
		a, err := animalsSvc.GetActiveByTag(r.Context(), tagCode)
		if err != nil {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}
		if !claims.CanAccess(a.OwnerUserID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListByTag(r.Context(), tagCode)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]weightResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toWeightResponse(it))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func updateWeightHandler(svc *Service, animalsSvc *animals.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !claims.CanWrite() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		id := chi.URLParam(r, "weightID")
		current, err := svc.GetByID(r.Context(), id)
		if err != nil {
			http.Error(w, "weight record not found", http.StatusNotFound)
			return
		}

		// Propiedad vía el animal dueño del pesaje.
		a, err := animalsSvc.GetByID(r.Context(), current.AnimalID)
		if err != nil || !claims.CanAccess(a.OwnerUserID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req weightRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		d, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		updated, err := svc.Update(r.Context(), id, UpdateInput{
			Date:               d,
			WeightKg:           req.WeightKg,
			Kind:               req.Kind,
			PurchaseCost:       req.PurchaseCost,
			SaleCost:           req.SaleCost,
			PurchasePricePerKg: req.PurchasePricePerKg,
			SalePricePerKg:     req.SalePricePerKg,
			GainKg:             req.GainKg,
			PartialGainKg:      req.PartialGainKg,
			GainValue:          req.GainValue,
			TrackingMonths:     req.TrackingMonths,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "weight record not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toWeightResponse(updated))
	}
}

func deleteWeightsByTagHandler(svc *Service, animalsSvc *animals.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !claims.CanWrite() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		tagCode := chi.URLParam(r, "tagCode")
		a, err := animalsSvc.GetActiveByTag(r.Context(), tagCode)
		if err != nil {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}
		if !claims.CanAccess(a.OwnerUserID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		n, err := svc.DeleteByTag(r.Context(), tagCode)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if n == 0 {
			http.Error(w, "weight record not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"message": "weights deleted", "deleted": n})
	}
}

func toWeightResponse(it Weight) weightResponse {
	return weightResponse{
		ID:                 it.ID,
		AnimalID:           it.AnimalID,
		TagCode:            it.TagCode,
		Date:               it.Date,
		WeightKg:           it.WeightKg,
		Kind:               it.Kind,
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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
