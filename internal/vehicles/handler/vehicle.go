package handler

import (
	"encoding/json"
	"net/http"

	"fleetbook/internal/vehicles/service"
	apperrors "fleetbook/pkg/errors"
	httputil "fleetbook/pkg/http"
	"fleetbook/pkg/logger"
	"fleetbook/pkg/middleware"
	"fleetbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const adminRole = "admin"

// VehicleHandler exposes fleet management. All mutating routes require
// the admin role; listing is open to any authenticated caller.
type VehicleHandler struct {
	service service.VehicleService
	log     *logger.Logger
}

func NewVehicleHandler(service service.VehicleService, log *logger.Logger) *VehicleHandler {
	return &VehicleHandler{
		service: service,
		log:     log,
	}
}

func (h *VehicleHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if middleware.Role(r.Context()) != adminRole {
		h.log.Warn("Fleet mutation denied",
			"request_id", middleware.RequestID(r.Context()),
			"user_id", middleware.UserID(r.Context()),
			"path", r.URL.Path,
		)
		httputil.WriteError(w, apperrors.Forbidden("Fleet management requires the admin role"))
		return false
	}
	return true
}

func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !h.requireAdmin(w, r) {
		return
	}

	var vehicle model.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&vehicle); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Create(r.Context(), &vehicle); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, "Vehicle created", vehicle)
}

func (h *VehicleHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	vehicle, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Vehicle retrieved", vehicle)
}

func (h *VehicleHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	onlyAvailable := r.URL.Query().Get("available") == "true"

	vehicles, total, err := h.service.GetAll(r.Context(), onlyAvailable, limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, "Vehicles retrieved", vehicles, total, limit, offset)
}

func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !h.requireAdmin(w, r) {
		return
	}

	var updates model.VehicleUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	vehicle, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Vehicle updated", vehicle)
}

func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !h.requireAdmin(w, r) {
		return
	}

	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Vehicle deleted", nil)
}

func (h *VehicleHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/vehicles", h.Create)
	router.GET("/api/v1/vehicles", h.GetAll)
	router.GET("/api/v1/vehicles/id/:id", h.GetByID)
	router.PATCH("/api/v1/vehicles/id/:id", h.Update)
	router.DELETE("/api/v1/vehicles/id/:id", h.Delete)
}
