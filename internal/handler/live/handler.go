package live

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/photorabbit/backend/internal/store"
	"github.com/photorabbit/backend/pkg/utils"
)

const writeTimeout = 10 * time.Second

// Handler upgrades subscribers onto the relay hub.
type Handler struct {
	hub      *Hub
	projects store.ProjectStore
	upgrader websocket.Upgrader
}

// NewHandler creates the live relay handler.
func NewHandler(hub *Hub, projects store.ProjectStore) *Handler {
	return &Handler{
		hub:      hub,
		projects: projects,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/projects/{projectID}/live", h.handleLive)
}

func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	if _, err := h.projects.Get(r.Context(), projectID); err != nil {
		utils.RespondError(w, http.StatusNotFound, "project not found")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[live] upgrade failed for project=%s: %v", projectID, err)
		return
	}
	defer conn.Close()

	frames, unsubscribe := h.hub.Subscribe(projectID)
	defer unsubscribe()

	// Reader goroutine: subscribers never send frames, but reading is what
	// detects the close handshake.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(frame); err != nil {
				log.Printf("[live] write failed for project=%s: %v", projectID, err)
				return
			}
		}
	}
}
