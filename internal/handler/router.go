package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/photorabbit/backend/internal/chainlog"
	"github.com/photorabbit/backend/internal/handler/live"
	"github.com/photorabbit/backend/internal/handler/messages"
	"github.com/photorabbit/backend/internal/handler/photos"
	"github.com/photorabbit/backend/internal/handler/projects"
	"github.com/photorabbit/backend/internal/handler/stream"
	middlewarePkg "github.com/photorabbit/backend/internal/middleware"
	"github.com/photorabbit/backend/internal/service/caption"
	"github.com/photorabbit/backend/internal/service/gateway"
	"github.com/photorabbit/backend/internal/store"
	"github.com/photorabbit/backend/pkg/utils"
)

// Deps collects everything the router mounts. GatewaySvc and CaptionSvc are
// optional; their routes degrade to 503 when absent.
type Deps struct {
	Store       store.Store
	UpstreamURL string
	HTTPClient  *http.Client
	GatewaySvc  *gateway.Service
	CaptionSvc  *caption.Service
	Logger      chainlog.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	hub := live.NewHub()

	projectsHandler := projects.New(deps.Store)
	messagesHandler := messages.New(deps.Store, deps.UpstreamURL, deps.HTTPClient, deps.Logger, hub)
	photosHandler := photos.New(deps.Store, deps.CaptionSvc)
	liveHandler := live.NewHandler(hub, deps.Store)

	r.Route("/api", func(api chi.Router) {
		projectsHandler.RegisterRoutes(api)
		messagesHandler.RegisterRoutes(api)
		photosHandler.RegisterRoutes(api)
		liveHandler.RegisterRoutes(api)

		if deps.GatewaySvc != nil {
			stream.New(deps.GatewaySvc).RegisterRoutes(api)
		} else {
			api.Post("/interview/chat", func(w http.ResponseWriter, r *http.Request) {
				utils.RespondError(w, http.StatusServiceUnavailable, "interview completion unavailable")
			})
		}
	})

	return r
}
