package farms

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"farm-livestock-history/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// Todas las rutas de fincas son solo-admin.
	r.Route("/farms", func(fr chi.Router) {
		fr.Post("/", createFarmHandler(svc))
		fr.Get("/", listFarmsHandler(svc))
		fr.Get("/{farmID}", getFarmHandler(svc))
		fr.Patch("/{farmID}", updateFarmHandler(svc))
	})
}

type farmRequest struct {
	Name    string `json:"name"`
	TaxID   string `json:"tax_id"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

type farmPatchRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Active  *bool   `json:"active"`
}

type farmResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	if !claims.IsAdmin() {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func createFarmHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		var req farmRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		f, err := svc.Create(r.Context(), CreateInput{
			Name:    req.Name,
			TaxID:   req.TaxID,
			Address: req.Address,
			Phone:   req.Phone,
			Email:   req.Email,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrDuplicateTaxID) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toFarmResponse(f))
	}
}

func listFarmsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]farmResponse, 0, len(items))
		for _, f := range items {
			out = append(out, toFarmResponse(f))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getFarmHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		f, err := svc.GetByID(r.Context(), chi.URLParam(r, "farmID"))
		if err != nil {
			http.Error(w, "farm not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toFarmResponse(f))
	}
}

func updateFarmHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		var req farmPatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		f, err := svc.Update(r.Context(), chi.URLParam(r, "farmID"), UpdateInput{
			Name:    req.Name,
			Address: req.Address,
			Phone:   req.Phone,
			Email:   req.Email,
			Active:  req.Active,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "farm not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toFarmResponse(f))
	}
}

func toFarmResponse(f Farm) farmResponse {
	return farmResponse{
		ID:        f.ID,
		Name:      f.Name,
		TaxID:     f.TaxID,
		Address:   f.Address,
		Phone:     f.Phone,
		Email:     f.Email,
		Active:    f.Active,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
