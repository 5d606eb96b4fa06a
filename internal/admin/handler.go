// Package admin exposes the operator surface: the global pause switch.
package admin

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"trustledger/internal/platform/middleware"
	id "trustledger/pkg/domain"
	"trustledger/pkg/platform/httputil"
	"trustledger/pkg/requestcontext"
)

// Service is the slice of the ledger the admin surface drives.
type Service interface {
	Pause(ctx context.Context) error
	Unpause(ctx context.Context) error
	Paused() bool
}

type Handler struct {
	logger *slog.Logger
	ledger Service
	owner  id.Address
	token  string
}

// New creates the admin Handler. The owner address is stamped onto every
// admin request's context; the shared token gates the routes.
func New(ledger Service, owner id.Address, token string, logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
		ledger: ledger,
		owner:  owner,
		token:  token,
	}
}

// Register mounts the admin routes.
func (h *Handler) Register(r chi.Router) {
	adminRouter := chi.NewRouter()
	adminRouter.Use(middleware.ContentTypeJSON)
	adminRouter.Use(middleware.RequireAdminToken(h.token, h.logger))
	adminRouter.Post("/pause", h.handlePause)
	adminRouter.Post("/unpause", h.handleUnpause)
	adminRouter.Get("/status", h.handleStatus)

	r.Mount("/v1/admin", adminRouter)
}

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	ctx := requestcontext.WithCaller(r.Context(), h.owner)
	if err := h.ledger.Pause(ctx); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"paused": true})
}

func (h *Handler) handleUnpause(w http.ResponseWriter, r *http.Request) {
	ctx := requestcontext.WithCaller(r.Context(), h.owner)
	if err := h.ledger.Unpause(ctx); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"paused": false})
}

func (h *Handler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"paused": h.ledger.Paused()})
}
