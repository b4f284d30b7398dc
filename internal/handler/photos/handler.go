package photos

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/photorabbit/backend/internal/model/photo"
	"github.com/photorabbit/backend/internal/service/caption"
	"github.com/photorabbit/backend/internal/service/photosummary"
	"github.com/photorabbit/backend/internal/store"
	"github.com/photorabbit/backend/pkg/utils"
)

// Handler serves photo analysis and the interview's opening summary.
type Handler struct {
	store      store.Store
	captionSvc *caption.Service
}

// New creates the photos handler. captionSvc may be nil when captioning is
// not configured.
func New(st store.Store, captionSvc *caption.Service) *Handler {
	return &Handler{store: st, captionSvc: captionSvc}
}

// RegisterRoutes mounts photo routes under a project.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/projects/{projectID}/photo-summary", h.handleSummary)
	r.Get("/projects/{projectID}/photos", h.handleList)
	r.Post("/projects/{projectID}/photos/analyze", h.handleAnalyze)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	analyses, err := h.store.ListAnalyses(r.Context(), projectID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	refs := make([]*photo.Analysis, len(analyses))
	for i := range analyses {
		refs[i] = &analyses[i]
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"summary": photosummary.Compose(refs),
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	analyses, err := h.store.ListAnalyses(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if analyses == nil {
		analyses = []photo.Analysis{}
	}
	utils.RespondJSON(w, http.StatusOK, analyses)
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if h.captionSvc == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "photo captioning is not configured")
		return
	}

	projectID := chi.URLParam(r, "projectID")
	if _, err := h.store.Get(r.Context(), projectID); err != nil {
		respondStoreError(w, err)
		return
	}

	var payload struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.ImageURL) == "" {
		utils.RespondError(w, http.StatusBadRequest, "imageUrl is required")
		return
	}

	analysis, err := h.captionSvc.Analyze(r.Context(), projectID, payload.ImageURL)
	if err != nil {
		log.Printf("[photos] analyze failed: %v", err)
		utils.RespondError(w, http.StatusBadGateway, "photo analysis failed")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, analysis)
}

func respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrProjectNotFound) {
		utils.RespondError(w, http.StatusNotFound, "project not found")
		return
	}
	log.Printf("[photos] store error: %v", err)
	utils.RespondError(w, http.StatusServiceUnavailable, "storage unavailable")
}
