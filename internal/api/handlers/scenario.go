package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hellogreencow/burch/internal/contracts"
	"github.com/hellogreencow/burch/internal/scenario"
	"github.com/hellogreencow/burch/internal/universe"
	"github.com/hellogreencow/burch/pkg/logger"
)

// ScenarioHandler runs stress simulations against current scorecards.
type ScenarioHandler struct {
	manager   *universe.Manager
	simulator *scenario.Simulator
	logger    *logger.Logger
}

func NewScenarioHandler(manager *universe.Manager, simulator *scenario.Simulator, log *logger.Logger) *ScenarioHandler {
	return &ScenarioHandler{
		manager:   manager,
		simulator: simulator,
		logger:    log,
	}
}

// Simulate runs one seeded Monte Carlo pass
// POST /v1/simulate {brand_id, preset, seed, iterations}
func (h *ScenarioHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req contracts.SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	card, err := h.manager.Scorecard(req.BrandID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	result, err := h.simulator.Run(card, req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
