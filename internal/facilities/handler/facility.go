package handler

import (
	"net/http"

	"condobook/internal/facilities/service"
	apperrors "condobook/pkg/errors"
	httputil "condobook/pkg/http"
	"condobook/pkg/logger"
	"condobook/pkg/middleware"
	"condobook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type FacilityHandler struct {
	service service.FacilityService
	log     *logger.Logger
}

func NewFacilityHandler(service service.FacilityService, log *logger.Logger) *FacilityHandler {
	return &FacilityHandler{
		service: service,
		log:     log,
	}
}

func (h *FacilityHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := h.actor(w, r, "Create")
	if !ok {
		return
	}

	var req model.FacilityRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	facility, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, facility); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *FacilityHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if _, ok := h.actor(w, r, "GetByID"); !ok {
		return
	}

	facility, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, facility); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *FacilityHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := h.actor(w, r, "List")
	if !ok {
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	query := r.URL.Query()
	filter := model.FacilityFilter{
		Type:       query.Get("type"),
		ActiveOnly: query.Get("active_only") == "true",
	}

	facilities, total, err := h.service.List(r.Context(), actor, filter, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, facilities, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *FacilityHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := h.actor(w, r, "Update")
	if !ok {
		return
	}

	var update model.FacilityUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	facility, err := h.service.Update(r.Context(), actor, ps.ByName("id"), &update)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, facility); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *FacilityHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := h.actor(w, r, "Delete")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *FacilityHandler) actor(w http.ResponseWriter, r *http.Request, handler string) (model.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if ok {
		return identity, true
	}
	if writeErr := httputil.WriteError(w, apperrors.Unauthorized("authentication required")); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
	return model.Identity{}, false
}

func (h *FacilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/facilities", h.List)
	router.POST("/api/v1/facilities", h.Create)
	router.GET("/api/v1/facilities/id/:id", h.GetByID)
	router.PATCH("/api/v1/facilities/id/:id", h.Update)
	router.DELETE("/api/v1/facilities/id/:id", h.Delete)
}
