package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skillpath/interview-engine/internal/models"
)

// Catalog handlers

func (s *Server) handleListCatalog(w http.ResponseWriter, r *http.Request) {
	profiles := s.catalogLoader.List()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"profiles": profiles,
		"total":    len(profiles),
	})
}

func (s *Server) handleGetCatalogProfile(w http.ResponseWriter, r *http.Request) {
	t := chi.URLParam(r, "type")
	if t == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "interview type is required")
		return
	}

	profile := s.catalogLoader.Get(models.InterviewType(t))
	if profile == nil {
		respondError(w, http.StatusNotFound, "not_found", "interview type not found")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}
