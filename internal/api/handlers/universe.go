package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/hellogreencow/burch/internal/contracts"
	"github.com/hellogreencow/burch/internal/universe"
	"github.com/hellogreencow/burch/pkg/logger"
)

// UniverseHandler serves the ranked feed and per-brand views.
type UniverseHandler struct {
	manager *universe.Manager
	logger  *logger.Logger
}

func NewUniverseHandler(manager *universe.Manager, log *logger.Logger) *UniverseHandler {
	return &UniverseHandler{
		manager: manager,
		logger:  log,
	}
}

// GetFeed returns the current ranking
// GET /v1/feed?sort=&search=&limit=
func (h *UniverseHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	sortKey, err := contracts.ParseSortKey(query.Get("sort"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			respondDomainError(w, &contracts.InvalidParameterError{Param: "limit", Reason: "must be a positive integer"})
			return
		}
	}

	feed := h.manager.Feed(sortKey, query.Get("search"), limit)
	respondJSON(w, http.StatusOK, feed)
}

// GetBrand returns the full brand profile
// GET /v1/brand/{id}
func (h *UniverseHandler) GetBrand(w http.ResponseWriter, r *http.Request) {
	brandID := mux.Vars(r)["id"]

	profile, err := h.manager.Profile(brandID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// GetTimeseries returns a brand's observation history, optionally narrowed
// to one metric over a trailing window
// GET /v1/brand/{id}/timeseries?metric=&weeks=
func (h *UniverseHandler) GetTimeseries(w http.ResponseWriter, r *http.Request) {
	brandID := mux.Vars(r)["id"]
	query := r.URL.Query()

	weeks := 0
	if raw := query.Get("weeks"); raw != "" {
		var err error
		weeks, err = strconv.Atoi(raw)
		if err != nil || weeks < 1 {
			respondDomainError(w, &contracts.InvalidParameterError{Param: "weeks", Reason: "must be a positive integer"})
			return
		}
	}

	series, err := h.manager.Timeseries(brandID, query.Get("metric"), weeks)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, series)
}
