package animals

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
	r.Route("/animals", func(ar chi.Router) {
		ar.Post("/", createAnimalHandler(svc))
		ar.Get("/", listAnimalsHandler(svc))
		ar.Get("/{tagCode}", getAnimalHandler(svc))
		ar.Put("/{tagCode}", updateAnimalHandler(svc))
		ar.Delete("/{tagCode}", deleteAnimalHandler(svc))
	})
}

type animalRequest struct {
	TagCode       string  `json:"tag_code"`
	Photo         string  `json:"photo"`
	BirthWeightKg float64 `json:"birth_weight_kg"`
	BreedID       int64   `json:"breed_id"`
	BirthDate     string  `json:"birth_date"` // YYYY-MM-DD

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
}

type animalResponse struct {
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

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// createAnimalHandler godoc
// @Summary Registrar animal
// @Description Registra un animal nuevo. El chip (tag_code) debe ser único entre animales activos del usuario. Una raza inexistente se guarda como "Otra Raza". Crea además el pesaje de nacimiento implícito.
// @Tags animals
// @Accept json
// @Produce json
// @Param payload body animalRequest true "Datos del animal; birth_date en formato YYYY-MM-DD"
// @Success 201 {object} animalResponse
// @Failure 400 {string} string "invalid json / campos obligatorios / chip duplicado"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /animals [post]
func createAnimalHandler(svc *Service) http.HandlerFunc {
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

		var req animalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		bd, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			http.Error(w, "birth_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		a, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			TagCode:       req.TagCode,
			Photo:         req.Photo,
			BirthWeightKg: req.BirthWeightKg,
			BreedID:       req.BreedID,
			BirthDate:     bd,
			MotherID:      req.MotherID,
			FatherID:      req.FatherID,
			Diseases:      req.Diseases,
			Notes:         req.Notes,
			Origin:        req.Origin,
			Brand:         req.Brand,
			Category:      req.Category,
			Location:      req.Location,
			CalvingNumber: req.CalvingNumber,
			Precocity:     req.Precocity,
			MatingType:    req.MatingType,
		})
		if err != nil {
			var dup *DuplicateTagError
			switch {
			case errors.As(err, &dup):
				http.Error(w, "tag code already registered", http.StatusBadRequest)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toAnimalResponse(a))
	}
}

func listAnimalsHandler(svc *Service) http.HandlerFunc {
	// Admin ve todo; el resto solo sus propios animales.
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

		out := make([]animalResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAnimalResponse(a))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func getAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		a, err := svc.GetActiveByTag(r.Context(), chi.URLParam(r, "tagCode"))
		if err != nil {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}
		if !claims.CanAccess(a.OwnerUserID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

func updateAnimalHandler(svc *Service) http.HandlerFunc {
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
		current, err := svc.GetActiveByTag(r.Context(), tagCode)
		if err != nil {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}
		if !claims.CanAccess(current.OwnerUserID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req animalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		bd, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			http.Error(w, "birth_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		updated, err := svc.Update(r.Context(), tagCode, UpdateInput{
			BirthWeightKg: req.BirthWeightKg,
			BreedID:       req.BreedID,
			BirthDate:     bd,
			MotherID:      req.MotherID,
			FatherID:      req.FatherID,
			Diseases:      req.Diseases,
			Notes:         req.Notes,
			Origin:        req.Origin,
			Brand:         req.Brand,
			Category:      req.Category,
			Location:      req.Location,
			CalvingNumber: req.CalvingNumber,
			Precocity:     req.Precocity,
			MatingType:    req.MatingType,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "animal not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toAnimalResponse(updated))
	}
}

func deleteAnimalHandler(svc *Service) http.HandlerFunc {
	// Borrado físico, solo ruta CRUD. El sync hace baja lógica.
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
		a, err := svc.GetActiveByTag(r.Context(), tagCode)
		if err != nil {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}
		if !claims.CanAccess(a.OwnerUserID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		if err := svc.DeleteByTag(r.Context(), tagCode); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "animal deleted"})
	}
}

func toAnimalResponse(a Animal) animalResponse {
	return animalResponse{
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
		Active:        a.Active,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo
// para no crear helpers compartidos antes de tiempo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
