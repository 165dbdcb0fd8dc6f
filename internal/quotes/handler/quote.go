package handler

import (
	"net/http"

	"fleetbook/internal/quotes/service"
	httputil "fleetbook/pkg/http"
	"fleetbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type QuoteHandler struct {
	service service.QuoteService
	log     *logger.Logger
}

func NewQuoteHandler(service service.QuoteService, log *logger.Logger) *QuoteHandler {
	return &QuoteHandler{
		service: service,
		log:     log,
	}
}

func (h *QuoteHandler) GetQuotes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	quotes, err := h.service.GetQuotes(r.Context(), query.Get("origin"), query.Get("destination"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Quotes retrieved", quotes)
}

func (h *QuoteHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/quotes", h.GetQuotes)
}
