package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/cargoline/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type BrandService interface {
	GetAllBrands(ctx context.Context) ([]types.Brand, error)
	GetBrand(ctx context.Context, id uuid.UUID) (*types.Brand, error)
	CreateBrand(ctx context.Context, name string) (types.Brand, error)
	UpdateBrand(ctx context.Context, id uuid.UUID, name string) (*types.Brand, error)
}

// BrandHandler provides HTTP handlers for brands.
type BrandHandler struct {
	brands   BrandService
	validate *validator.Validate
}

func NewBrandHandler(brands BrandService) *BrandHandler {
	return &BrandHandler{
		brands:   brands,
		validate: newValidator(),
	}
}

// BrandRouter registers brand routes on the given router. Every route
// requires an admin session.
func BrandRouter(r chi.Router, brands BrandService) {
	handler := NewBrandHandler(brands)

	r.Use(RequireRole(types.RoleAdmin))
	r.Get("/", handler.ListBrands)
	r.Post("/", handler.CreateBrand)
	r.Route("/{brandID}", func(r chi.Router) {
		r.Get("/", handler.GetBrand)
		r.Put("/", handler.UpdateBrand)
	})
}

func (h *BrandHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.brands.GetAllBrands(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to list brands")
		writeError(w, http.StatusInternalServerError, "failed to list brands")
		return
	}
	writeJSON(w, http.StatusOK, brands)
}

func (h *BrandHandler) GetBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := parseBrandID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "brand not found")
		return
	}

	brand, err := h.brands.GetBrand(r.Context(), id)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("brand_id", id.String()).Msg("failed to fetch brand")
		writeError(w, http.StatusInternalServerError, "failed to fetch brand")
		return
	}
	if brand == nil {
		writeError(w, http.StatusNotFound, "brand not found")
		return
	}

	writeJSON(w, http.StatusOK, brand)
}

func (h *BrandHandler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var req BrandRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	brand, err := h.brands.CreateBrand(r.Context(), strings.TrimSpace(req.Name))
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to create brand")
		writeError(w, http.StatusInternalServerError, "failed to create brand")
		return
	}

	writeJSON(w, http.StatusCreated, brand)
}

func (h *BrandHandler) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := parseBrandID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "brand not found")
		return
	}

	var req BrandRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	brand, err := h.brands.UpdateBrand(r.Context(), id, strings.TrimSpace(req.Name))
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("brand_id", id.String()).Msg("failed to update brand")
		writeError(w, http.StatusInternalServerError, "failed to update brand")
		return
	}
	if brand == nil {
		writeError(w, http.StatusNotFound, "brand not found")
		return
	}

	writeJSON(w, http.StatusOK, brand)
}

type BrandRequest struct {
	Name string `json:"name" validate:"required,notblank,max=255"`
}

// parseBrandID only accepts the canonical 36 character form.
func parseBrandID(r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "brandID")
	if len(raw) != 36 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
