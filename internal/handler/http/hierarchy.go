package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/ess-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/ess-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type HierarchyHandler interface {
	MakeHeadManager(w http.ResponseWriter, r *http.Request)
	MakeManager(w http.ResponseWriter, r *http.Request)
	AssignManager(w http.ResponseWriter, r *http.Request)
	ListManagers(w http.ResponseWriter, r *http.Request)
	GetHierarchy(w http.ResponseWriter, r *http.Request)
}

type HierarchyHandlerImpl struct {
	hierarchyService user.HierarchyService
}

func NewHierarchyHandler(hierarchyService user.HierarchyService) HierarchyHandler {
	return &HierarchyHandlerImpl{hierarchyService: hierarchyService}
}

// MakeHeadManager implements HierarchyHandler.
func (h *HierarchyHandlerImpl) MakeHeadManager(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	id, ok := userID(w, r, "id")
	if !ok {
		return
	}

	resp, err := h.hierarchyService.MakeHeadManager(r.Context(), claims.UserID, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "User promoted to head manager", resp)
}

// MakeManager implements HierarchyHandler.
func (h *HierarchyHandlerImpl) MakeManager(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	id, ok := userID(w, r, "id")
	if !ok {
		return
	}

	resp, err := h.hierarchyService.MakeManager(r.Context(), claims.UserID, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "User promoted to manager", resp)
}

// AssignManager implements HierarchyHandler.
func (h *HierarchyHandlerImpl) AssignManager(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req user.AssignManagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("AssignManager decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ActorID = claims.UserID
	req.EmployeeID = chi.URLParam(r, "employeeId")

	resp, err := h.hierarchyService.AssignManager(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Employee assigned to manager", resp)
}

// ListManagers implements HierarchyHandler.
func (h *HierarchyHandlerImpl) ListManagers(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	managers, err := h.hierarchyService.ListManagers(r.Context(), claims.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, managers)
}

// GetHierarchy implements HierarchyHandler.
func (h *HierarchyHandlerImpl) GetHierarchy(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	id, ok := userID(w, r, "id")
	if !ok {
		return
	}

	resp, err := h.hierarchyService.GetHierarchy(r.Context(), claims.UserID, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

func userID(w http.ResponseWriter, r *http.Request, param string) (string, bool) {
	id := chi.URLParam(r, param)
	if !validator.IsValidUUID(id) {
		response.HandleError(w, validator.ValidationErrors{{
			Field:   param,
			Message: param + " must be a valid UUID",
		}})
		return "", false
	}
	return id, true
}
