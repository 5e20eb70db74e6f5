package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	GenerateSalaries(w http.ResponseWriter, r *http.Request)
	ListSalaries(w http.ResponseWriter, r *http.Request)
	GetSalary(w http.ResponseWriter, r *http.Request)
	EditSalary(w http.ResponseWriter, r *http.Request)
	MarkPaid(w http.ResponseWriter, r *http.Request)
	SalarySlip(w http.ResponseWriter, r *http.Request)
	ListPolicies(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{
		payrollService: payrollService,
	}
}

// GenerateSalaries implements PayrollHandler. An empty body means the current month.
func (h *payrollHandlerImpl) GenerateSalaries(w http.ResponseWriter, r *http.Request) {
	var req payroll.GenerateSalariesRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	result, err := h.payrollService.GenerateSalaries(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}

// ListSalaries implements PayrollHandler.
func (h *payrollHandlerImpl) ListSalaries(w http.ResponseWriter, r *http.Request) {
	filter := payroll.SalaryFilter{
		Month:      queryString(r, "month"),
		Status:     queryString(r, "status"),
		EmployeeID: queryString(r, "employee_id"),
		Page:       queryInt(r, "page"),
		Limit:      queryInt(r, "limit"),
	}

	result, err := h.payrollService.ListSalaries(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Salaries, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
		Showing:    result.Showing,
	})
}

// GetSalary implements PayrollHandler.
func (h *payrollHandlerImpl) GetSalary(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.GetSalary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// EditSalary implements PayrollHandler.
func (h *payrollHandlerImpl) EditSalary(w http.ResponseWriter, r *http.Request) {
	var req payroll.EditSalaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.payrollService.EditSalary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary record updated successfully", result)
}

// MarkPaid implements PayrollHandler.
func (h *payrollHandlerImpl) MarkPaid(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.MarkPaid(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary record marked as paid", result)
}

// SalarySlip implements PayrollHandler.
func (h *payrollHandlerImpl) SalarySlip(w http.ResponseWriter, r *http.Request) {
	pdf, fileName, err := h.payrollService.RenderSalarySlip(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, "application/pdf", fileName, pdf)
}

// ListPolicies implements PayrollHandler.
func (h *payrollHandlerImpl) ListPolicies(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.ListPolicies(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
