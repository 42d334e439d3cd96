package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hellogreencow/burch/internal/contracts"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondDomainError maps the error taxonomy to HTTP statuses in one place.
func respondDomainError(w http.ResponseWriter, err error) {
	var (
		notFound     *contracts.NotFoundError
		badParam     *contracts.InvalidParameterError
		badPreset    *contracts.InvalidPresetError
		seedErr      *contracts.SeedError
		discoveryErr *contracts.DiscoveryUnavailableError
		artifactErr  *contracts.ArtifactGenerationError
	)

	switch {
	case errors.As(err, &notFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &badParam), errors.As(err, &badPreset):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &seedErr):
		respondError(w, http.StatusConflict, err.Error())
	case errors.As(err, &discoveryErr):
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"error":             err.Error(),
			"provider_attempts": discoveryErr.Attempts,
		})
	case errors.As(err, &artifactErr):
		respondError(w, http.StatusInternalServerError, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
