package handlers

import (
	"net/http"
	"strconv"

	"github.com/hellogreencow/burch/internal/contracts"
	"github.com/hellogreencow/burch/internal/discovery"
	"github.com/hellogreencow/burch/pkg/logger"
)

// DiscoveryHandler serves off-universe company discovery.
type DiscoveryHandler struct {
	reporter *discovery.Reporter
	logger   *logger.Logger
}

func NewDiscoveryHandler(reporter *discovery.Reporter, log *logger.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{
		reporter: reporter,
		logger:   log,
	}
}

// Discover searches external providers for companies in an industry
// GET /v1/discover?industry=&region=&limit=
func (h *DiscoveryHandler) Discover(w http.ResponseWriter, r *http.Request) {
	if h.reporter == nil {
		respondError(w, http.StatusServiceUnavailable, "No search providers configured")
		return
	}

	query := r.URL.Query()

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			respondDomainError(w, &contracts.InvalidParameterError{Param: "limit", Reason: "must be a positive integer"})
			return
		}
		limit = v
	}

	response, err := h.reporter.Discover(r.Context(), query.Get("industry"), query.Get("region"), limit)
	if err != nil {
		h.logger.WithError(err).Warn("Discovery failed")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, response)
}
