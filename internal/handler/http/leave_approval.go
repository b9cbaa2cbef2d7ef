package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/ess-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/ess-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type LeaveApprovalHandler interface {
	Pending(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	TeamCalendar(w http.ResponseWriter, r *http.Request)
}

type LeaveApprovalHandlerImpl struct {
	approvalService leave.ApprovalService
}

func NewLeaveApprovalHandler(approvalService leave.ApprovalService) LeaveApprovalHandler {
	return &LeaveApprovalHandlerImpl{approvalService: approvalService}
}

// Pending implements LeaveApprovalHandler.
func (h *LeaveApprovalHandlerImpl) Pending(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	filterReq := leave.ApplicationFilterRequest{
		Year:        queryParam(r, "year"),
		LeaveTypeID: queryParam(r, "leave_type_id", "leaveTypeId"),
	}
	filter, err := filterReq.ToFilter()
	if err != nil {
		response.HandleError(w, err)
		return
	}

	apps, err := h.approvalService.ListPending(r.Context(), claims.UserID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, apps)
}

// Approve implements LeaveApprovalHandler.
func (h *LeaveApprovalHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	id, ok := applicationID(w, r)
	if !ok {
		return
	}

	app, err := h.approvalService.Approve(r.Context(), claims.UserID, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave application approved successfully", app)
}

// Reject implements LeaveApprovalHandler.
func (h *LeaveApprovalHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req leave.RejectLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("Reject leave decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ApplicationID = chi.URLParam(r, "id")
	req.ActorID = claims.UserID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	app, err := h.approvalService.Reject(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave application rejected successfully", app)
}

// TeamCalendar implements LeaveApprovalHandler.
func (h *LeaveApprovalHandlerImpl) TeamCalendar(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	req := leave.TeamCalendarRequest{
		StartDate: queryParam(r, "start_date", "startDate"),
		EndDate:   queryParam(r, "end_date", "endDate"),
	}

	apps, err := h.approvalService.TeamCalendar(r.Context(), claims.UserID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, apps)
}
