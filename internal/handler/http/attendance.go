package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// maxImportBody caps the session log import payload.
const maxImportBody = 5 << 20

type AttendanceHandler interface {
	GenerateSummaries(w http.ResponseWriter, r *http.Request)
	ApproveSummaries(w http.ResponseWriter, r *http.Request)
	ApproveSummary(w http.ResponseWriter, r *http.Request)
	ListSummaries(w http.ResponseWriter, r *http.Request)
	ImportSessionLogs(w http.ResponseWriter, r *http.Request)
	FinalizeMonth(w http.ResponseWriter, r *http.Request)
	ReopenMonth(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// GenerateSummaries implements AttendanceHandler.
func (h *attendanceHandlerImpl) GenerateSummaries(w http.ResponseWriter, r *http.Request) {
	var req attendance.GenerateSummariesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.GenerateSummaries(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance summaries generated successfully", result)
}

// ApproveSummaries implements AttendanceHandler.
func (h *attendanceHandlerImpl) ApproveSummaries(w http.ResponseWriter, r *http.Request) {
	var req attendance.ApproveSummariesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.ApproveSummaries(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance summaries approved successfully", result)
}

// ApproveSummary implements AttendanceHandler.
func (h *attendanceHandlerImpl) ApproveSummary(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.ApproveSummary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance summary approved successfully", result)
}

// ListSummaries implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListSummaries(w http.ResponseWriter, r *http.Request) {
	filter := attendance.SummaryFilter{
		Date:           queryString(r, "date"),
		Month:          queryString(r, "month"),
		DepartmentID:   queryString(r, "department_id"),
		EmployeeID:     queryString(r, "employee_id"),
		Status:         queryString(r, "status"),
		ApprovalStatus: queryString(r, "approval_status"),
		Page:           queryInt(r, "page"),
		Limit:          queryInt(r, "limit"),
	}

	result, err := h.attendanceService.ListSummaries(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Summaries, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
		Showing:    result.Showing,
	})
}

// ImportSessionLogs implements AttendanceHandler.
func (h *attendanceHandlerImpl) ImportSessionLogs(w http.ResponseWriter, r *http.Request) {
	var req attendance.ImportSessionLogsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportBody)).Decode(&req); err != nil {
		slog.Warn("Failed to decode session log import", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.ImportSessionLogs(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Session logs imported", result)
}

// FinalizeMonth implements AttendanceHandler.
func (h *attendanceHandlerImpl) FinalizeMonth(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.FinalizeMonth(r.Context(), chi.URLParam(r, "month"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance month finalized", result)
}

// ReopenMonth implements AttendanceHandler.
func (h *attendanceHandlerImpl) ReopenMonth(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.ReopenMonth(r.Context(), chi.URLParam(r, "month"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance month reopened", result)
}
