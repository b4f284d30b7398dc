package messages

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/photorabbit/backend/internal/chainlog"
	"github.com/photorabbit/backend/internal/handler/live"
	interviewModel "github.com/photorabbit/backend/internal/model/interview"
	interviewService "github.com/photorabbit/backend/internal/service/interview"
	"github.com/photorabbit/backend/internal/service/quickreply"
	"github.com/photorabbit/backend/internal/service/seed"
	"github.com/photorabbit/backend/internal/store"
	"github.com/photorabbit/backend/pkg/utils"
)

// Handler serves the interview transcript and drives conversational turns.
type Handler struct {
	store       store.Store
	upstreamURL string
	httpClient  *http.Client
	logger      chainlog.Logger
	hub         *live.Hub

	mu      sync.Mutex
	clients map[string]*interviewService.Client
}

// New creates the messages handler. hub may be nil when the live relay is
// not mounted.
func New(st store.Store, upstreamURL string, httpClient *http.Client, logger chainlog.Logger, hub *live.Hub) *Handler {
	return &Handler{
		store:       st,
		upstreamURL: upstreamURL,
		httpClient:  httpClient,
		logger:      chainlog.OrNop(logger),
		hub:         hub,
		clients:     make(map[string]*interviewService.Client),
	}
}

// RegisterRoutes mounts transcript routes under a project.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/projects/{projectID}/messages", h.handleList)
	r.Delete("/projects/{projectID}/messages", h.handleClear)
	r.Post("/projects/{projectID}/messages", h.handleTurn)
	r.Post("/projects/{projectID}/messages/autofill", h.handleAutofill)
	r.Post("/projects/{projectID}/quick-replies", h.handleQuickReplies)
}

// clientFor returns the per-project streaming client, creating it on first
// use. One client per project enforces the single-turn-in-flight guard.
func (h *Handler) clientFor(projectID string) *interviewService.Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[projectID]
	if !ok {
		client = interviewService.NewClient(projectID, h.store, h.upstreamURL, h.httpClient, h.logger)
		h.clients[projectID] = client
	}
	return client
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	msgs, err := h.store.ListByProject(r.Context(), projectID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if msgs == nil {
		msgs = []interviewModel.Message{}
	}
	utils.RespondJSON(w, http.StatusOK, msgs)
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	if err := h.store.DeleteByProject(r.Context(), projectID); err != nil {
		respondStoreError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *Handler) handleAutofill(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	if _, err := h.store.Get(r.Context(), projectID); err != nil {
		respondStoreError(w, err)
		return
	}
	if err := seed.Autofill(r.Context(), h.store, projectID); err != nil {
		log.Printf("[messages] autofill failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "autofill failed")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "seeded"})
}

func (h *Handler) handleQuickReplies(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	project, err := h.store.Get(r.Context(), projectID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	var payload struct {
		Text string `json:"text"`
		Mood string `json:"mood"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	replies := quickreply.Suggest(payload.Text, project.PetName, payload.Mood)
	if replies == nil {
		replies = []string{}
	}
	utils.RespondJSON(w, http.StatusOK, map[string][]string{"replies": replies})
}

// turnFrame is one SSE frame relayed to the web client during a turn.
type turnFrame struct {
	Event   string                  `json:"event"`
	Content string                  `json:"content,omitempty"`
	Message *interviewModel.Message `json:"message,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

func (h *Handler) handleTurn(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	var payload struct {
		Text              string `json:"text"`
		PhotoContextBrief string `json:"photoContextBrief"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Text) == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	project, err := h.store.Get(r.Context(), projectID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	prior, err := h.store.ListByProject(r.Context(), projectID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	captions := h.photoCaptions(r)

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// SSE headers are deferred until the first delta so that failures before
	// any content map to a plain HTTP status.
	started := false
	prevLen := 0
	onDelta := func(content string) {
		if !started {
			utils.SetupSSEHeaders(w)
			started = true
		}
		delta := content[prevLen:]
		prevLen = len(content)
		utils.SendSSEChunk(w, flusher, turnFrame{Event: "delta", Content: delta})
		h.hub.Publish(projectID, live.Frame{Type: "delta", Content: content})
	}

	turn, err := h.clientFor(projectID).SendMessage(r.Context(), payload.Text, prior, interviewService.TurnOptions{
		PetName:           project.PetName,
		PetType:           project.PetType,
		PhotoCaptions:     captions,
		PhotoContextBrief: payload.PhotoContextBrief,
		OnDelta:           onDelta,
	})
	if err != nil {
		h.respondTurnError(w, flusher, started, err)
		return
	}

	if !started {
		utils.SetupSSEHeaders(w)
	}
	utils.SendSSEChunk(w, flusher, turnFrame{Event: "done", Message: turn.AssistantMessage})
	h.hub.Publish(projectID, live.Frame{Type: "done", Content: turn.Content})
}

// photoCaptions folds stored analyses into upstream caption strings.
func (h *Handler) photoCaptions(r *http.Request) []string {
	projectID := chi.URLParam(r, "projectID")
	analyses, err := h.store.ListAnalyses(r.Context(), projectID)
	if err != nil {
		return nil
	}

	var captions []string
	for _, a := range analyses {
		if s := strings.TrimSpace(a.SceneSummary); s != "" {
			captions = append(captions, s)
		}
	}
	return captions
}

func (h *Handler) respondTurnError(w http.ResponseWriter, flusher http.Flusher, started bool, err error) {
	status := http.StatusBadGateway
	notice := "something went wrong, please try again"

	switch {
	case errors.Is(err, interviewService.ErrRateLimited):
		status = http.StatusTooManyRequests
		notice = "too many requests, please wait a moment"
	case errors.Is(err, interviewService.ErrQuotaExhausted):
		status = http.StatusPaymentRequired
		notice = "you are out of credits"
	case errors.Is(err, interviewService.ErrTurnInFlight):
		status = http.StatusConflict
		notice = "a reply is already being written"
	case errors.Is(err, interviewService.ErrStreamFailed):
		// generic notice
	default:
		status = http.StatusServiceUnavailable
		notice = "could not save your message, please try again"
	}

	log.Printf("[messages] turn failed: %v", err)
	if started {
		utils.SendSSEChunk(w, flusher, turnFrame{Event: "error", Error: notice})
		return
	}
	utils.RespondError(w, status, notice)
}

func respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrProjectNotFound) {
		utils.RespondError(w, http.StatusNotFound, "project not found")
		return
	}
	log.Printf("[messages] store error: %v", err)
	utils.RespondError(w, http.StatusServiceUnavailable, "storage unavailable")
}
