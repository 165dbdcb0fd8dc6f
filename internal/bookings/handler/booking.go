package handler

import (
	"encoding/json"
	"net/http"

	"fleetbook/internal/bookings/service"
	apperrors "fleetbook/pkg/errors"
	httputil "fleetbook/pkg/http"
	"fleetbook/pkg/logger"
	"fleetbook/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) InitiateOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req service.InitiateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	ctx := r.Context()
	req.UserID = middleware.UserID(ctx)
	req.UserName = middleware.UserName(ctx)
	req.UserEmail = middleware.UserEmail(ctx)

	resp, err := h.service.InitiateOrder(ctx, &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, "Payment order created", resp)
}

func (h *BookingHandler) VerifyPayment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req service.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	ctx := r.Context()
	req.UserID = middleware.UserID(ctx)

	reservation, err := h.service.VerifyPayment(ctx, &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, "Booking confirmed", reservation)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()

	reservation, err := h.service.CancelByCode(ctx,
		ps.ByName("code"),
		middleware.UserID(ctx),
		middleware.UserEmail(ctx),
	)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Booking cancelled", reservation)
}

func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	reservations, total, err := h.service.ListByUser(r.Context(), middleware.UserID(r.Context()), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, "Bookings retrieved", reservations, total, limit, offset)
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings/orders", h.InitiateOrder)
	router.POST("/api/v1/bookings/payments/verify", h.VerifyPayment)
	router.POST("/api/v1/bookings/code/:code/cancel", h.Cancel)
	router.GET("/api/v1/bookings", h.ListMine)
}
