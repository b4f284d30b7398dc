package projects

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/photorabbit/backend/internal/model/interview"
	"github.com/photorabbit/backend/internal/store"
	"github.com/photorabbit/backend/pkg/utils"
)

// Handler serves project lifecycle routes.
type Handler struct {
	projects store.ProjectStore
}

// New creates the projects handler.
func New(projects store.ProjectStore) *Handler {
	return &Handler{projects: projects}
}

// RegisterRoutes mounts project routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/projects", h.handleCreate)
	r.Get("/projects/{projectID}", h.handleGet)
	r.Delete("/projects/{projectID}", h.handleDelete)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		OwnerID string `json:"ownerId"`
		PetName string `json:"petName"`
		PetType string `json:"petType"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payload.PetName = strings.TrimSpace(payload.PetName)
	payload.PetType = strings.TrimSpace(payload.PetType)
	if payload.PetName == "" || payload.PetType == "" {
		utils.RespondError(w, http.StatusBadRequest, "petName and petType are required")
		return
	}

	project, err := h.projects.Create(r.Context(), interview.Project{
		OwnerID: payload.OwnerID,
		PetName: payload.PetName,
		PetType: payload.PetType,
	})
	if err != nil {
		log.Printf("[projects] create failed: %v", err)
		utils.RespondError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, project)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.Get(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			utils.RespondError(w, http.StatusNotFound, "project not found")
			return
		}
		log.Printf("[projects] get failed: %v", err)
		utils.RespondError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	utils.RespondJSON(w, http.StatusOK, project)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.projects.Delete(r.Context(), chi.URLParam(r, "projectID")); err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			utils.RespondError(w, http.StatusNotFound, "project not found")
			return
		}
		log.Printf("[projects] delete failed: %v", err)
		utils.RespondError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
