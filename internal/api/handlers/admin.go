package handlers

import (
	"net/http"
	"strconv"

	"github.com/hellogreencow/burch/internal/contracts"
	"github.com/hellogreencow/burch/internal/providers"
	"github.com/hellogreencow/burch/internal/universe"
	"github.com/hellogreencow/burch/pkg/logger"
)

// AdminHandler owns the batch mutation endpoints and provider budget view.
type AdminHandler struct {
	manager *universe.Manager
	router  *providers.Router
	logger  *logger.Logger

	defaultTargetBrands int
	defaultEnrichTopN   int
}

func NewAdminHandler(manager *universe.Manager, router *providers.Router, log *logger.Logger, defaultTargetBrands, defaultEnrichTopN int) *AdminHandler {
	return &AdminHandler{
		manager:             manager,
		router:              router,
		logger:              log,
		defaultTargetBrands: defaultTargetBrands,
		defaultEnrichTopN:   defaultEnrichTopN,
	}
}

// SeedResponse is the reseed/refresh reply shape.
type SeedResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Brands    int    `json:"brands"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Snapshots int    `json:"snapshots"`
	Failed    int    `json:"failed,omitempty"`
}

func (h *AdminHandler) seedParams(r *http.Request) (int, int, error) {
	target := h.defaultTargetBrands
	enrich := h.defaultEnrichTopN
	query := r.URL.Query()

	if raw := query.Get("target_brands"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return 0, 0, &contracts.InvalidParameterError{Param: "target_brands", Reason: "must be a positive integer"}
		}
		target = v
	}
	if raw := query.Get("enrich_top_n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return 0, 0, &contracts.InvalidParameterError{Param: "enrich_top_n", Reason: "must be a non-negative integer"}
		}
		enrich = v
	}
	return target, enrich, nil
}

// Reseed rebuilds the universe from scratch
// POST /v1/admin/reseed?target_brands=&enrich_top_n=
func (h *AdminHandler) Reseed(w http.ResponseWriter, r *http.Request) {
	target, enrich, err := h.seedParams(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	result, err := h.manager.Reseed(r.Context(), target, enrich)
	if err != nil {
		h.logger.WithError(err).Error("Reseed failed")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, SeedResponse{
		Status:    "success",
		Message:   "Universe reseeded",
		Brands:    result.Brands,
		Created:   result.Created,
		Updated:   result.Updated,
		Snapshots: result.Snapshots,
		Failed:    result.Failed,
	})
}

// Refresh incrementally updates the universe
// POST /v1/admin/refresh?target_brands=&enrich_top_n=
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	target, enrich, err := h.seedParams(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	result, err := h.manager.Refresh(r.Context(), target, enrich)
	if err != nil {
		h.logger.WithError(err).Error("Refresh failed")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, SeedResponse{
		Status:    "success",
		Message:   "Universe refreshed",
		Brands:    result.Brands,
		Created:   result.Created,
		Updated:   result.Updated,
		Snapshots: result.Snapshots,
		Failed:    result.Failed,
	})
}

// GetBudget returns the provider spend state
// GET /v1/admin/budget
func (h *AdminHandler) GetBudget(w http.ResponseWriter, r *http.Request) {
	if h.router == nil {
		respondError(w, http.StatusServiceUnavailable, "No search providers configured")
		return
	}
	respondJSON(w, http.StatusOK, h.router.Budget())
}
