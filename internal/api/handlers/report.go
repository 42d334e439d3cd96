package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hellogreencow/burch/internal/contracts"
	"github.com/hellogreencow/burch/internal/report"
	"github.com/hellogreencow/burch/pkg/logger"
)

// ReportHandler renders investment briefs.
type ReportHandler struct {
	composer *report.Composer
	logger   *logger.Logger
}

func NewReportHandler(composer *report.Composer, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		composer: composer,
		logger:   log,
	}
}

// ReportRequest asks for one brand's brief.
type ReportRequest struct {
	BrandID string `json:"brand_id"`
}

// TopReportRequest asks for briefs across the top of the feed.
type TopReportRequest struct {
	Limit int `json:"limit"`
}

// Generate renders one brand's brief
// POST /v1/report {brand_id}
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.BrandID == "" {
		respondDomainError(w, &contracts.InvalidParameterError{Param: "brand_id", Reason: "must not be empty"})
		return
	}

	artifact, err := h.composer.Generate(req.BrandID)
	if err != nil {
		h.logger.WithError(err).WithField("brand_id", req.BrandID).Error("Report generation failed")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, artifact)
}

// GenerateTop renders briefs for the current top of the heat feed
// POST /v1/report/top {limit}
func (h *ReportHandler) GenerateTop(w http.ResponseWriter, r *http.Request) {
	var req TopReportRequest
	if r.Body != nil {
		// Empty body means the default batch size.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	batch, err := h.composer.GenerateTopRanked(req.Limit)
	if err != nil {
		h.logger.WithError(err).Error("Report batch failed")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, batch)
}
