package vaccinations

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
	r.Route("/vaccinations", func(vr chi.Router) {
		vr.Post("/", createVaccinationHandler(svc, animalsSvc))
		vr.Get("/", listVaccinationsHandler(svc))
		vr.Get("/{tagCode}", listVaccinationsByTagHandler(svc, animalsSvc))

		// Borrado masivo por chip, igual que los pesajes.
		vr.Delete("/{tagCode}", deleteVaccinationsByTagHandler(svc, animalsSvc))
	})
}

type vaccinationRequest struct {
	TagCode       string  `json:"tag_code"`
	Date          string  `json:"date"` // YYYY-MM-DD
	VaccineTypeID int64   `json:"vaccine_type_id"`
	VaccineNameID int64   `json:"vaccine_name_id"`
	Dose          string  `json:"dose"`
	Notes         *string `json:"notes"`
}

type vaccinationResponse struct {
	ID              string    `json:"id"`
	AnimalID        string    `json:"animal_id"`
	Date            time.Time `json:"date"`
	VaccineTypeID   int64     `json:"vaccine_type_id"`
	VaccineTypeName string    `json:"vaccine_type_name,omitempty"`
	VaccineNameID   int64     `json:"vaccine_name_id"`
	VaccineName     string    `json:"vaccine_name,omitempty"`
	Dose            string    `json:"dose"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// createVaccinationHandler godoc
// @Summary Registrar vacuna
// @Description Registra una vacuna aplicada al animal identificado por su chip. Tipo y nombre de vacuna inexistentes caen al centinela "otro". La dosis debe incluir cantidad y unidad (ej. "3 ml").
// @Tags vaccinations
// @Accept json
// @Produce json
// @Param payload body vaccinationRequest true "Datos de la vacuna; date en formato YYYY-MM-DD"
// @Success 201 {object} vaccinationResponse
// @Failure 400 {string} string "invalid json / dosis inválida"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "animal not found"
// @Router /vaccinations [post]
func createVaccinationHandler(svc *Service, animalsSvc *animals.Service) http.HandlerFunc {
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

		var req vaccinationRequest
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
			AnimalID:      a.ID,
			Date:          d,
			VaccineTypeID: req.VaccineTypeID,
			VaccineNameID: req.VaccineNameID,
			Dose:          req.Dose,
			Notes:         req.Notes,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidDose) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toVaccinationResponse(created))
	}
}

func listVaccinationsHandler(svc *Service) http.HandlerFunc {
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

		out := make([]vaccinationResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toVaccinationResponse(it))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listVaccinationsByTagHandler(svc *Service, animalsSvc *animals.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		a, err := animalsSvc.GetActiveByTag(r.Context(), chi.URLParam(r, "tagCode"))
		if err != nil {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}
		if !claims.CanAccess(a.OwnerUserID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListByAnimal(r.Context(), a.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]vaccinationResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toVaccinationResponse(it))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func deleteVaccinationsByTagHandler(svc *Service, animalsSvc *animals.Service) http.HandlerFunc {
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

		a, err := animalsSvc.GetActiveByTag(r.Context(), chi.URLParam(r, "tagCode"))
		if err != nil {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}
		if !claims.CanAccess(a.OwnerUserID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		n, err := svc.DeleteByAnimal(r.Context(), a.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if n == 0 {
			http.Error(w, "vaccination not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"message": "vaccinations deleted", "deleted": n})
	}
}

func toVaccinationResponse(it Vaccination) vaccinationResponse {
	return vaccinationResponse{
		ID:              it.ID,
		AnimalID:        it.AnimalID,
		Date:            it.Date,
		VaccineTypeID:   it.VaccineTypeID,
		VaccineTypeName: it.VaccineTypeName,
		VaccineNameID:   it.VaccineNameID,
		VaccineName:     it.VaccineName,
		Dose:            it.Dose,
		Notes:           it.Notes,
		CreatedAt:       it.CreatedAt,
		UpdatedAt:       it.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
