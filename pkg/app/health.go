package app

import (
	"context"
	"net/http"
	"time"

	"fleetbook/pkg/config"
	httputil "fleetbook/pkg/http"

	"github.com/julienschmidt/httprouter"
)

type healthHandler struct {
	cfg *config.Config
}

func (h *healthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	httputil.WriteSuccess(w, "ok", nil)
}

func (h *healthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.cfg.Client.Mongo != nil {
		if err := h.cfg.Client.Mongo.Ping(ctx, nil); err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, httputil.Response{
				Success: false,
				Message: "datastore unreachable",
			})
			return
		}
	}

	httputil.WriteSuccess(w, "ready", nil)
}

func (h *healthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
