package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/payroll"
	"github.com/hrx-hr/hrx-backend-go/internal/handler/http/response"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/pagination"
)

type PayrollHandler interface {
	CreatePayrun(w http.ResponseWriter, r *http.Request)
	ListPayruns(w http.ResponseWriter, r *http.Request)
	GetPayrun(w http.ResponseWriter, r *http.Request)
	ListPayrunPayslips(w http.ResponseWriter, r *http.Request)
	ValidatePayrun(w http.ResponseWriter, r *http.Request)
	SendPayslips(w http.ResponseWriter, r *http.Request)

	GetPayslip(w http.ResponseWriter, r *http.Request)
	ValidatePayslip(w http.ResponseWriter, r *http.Request)
	CancelPayslip(w http.ResponseWriter, r *http.Request)
	RecomputePayslip(w http.ResponseWriter, r *http.Request)
	ExportPayslip(w http.ResponseWriter, r *http.Request)
	MyPayslips(w http.ResponseWriter, r *http.Request)

	SalaryReport(w http.ResponseWriter, r *http.Request)
	MySalaryReport(w http.ResponseWriter, r *http.Request)
	EmployerCost(w http.ResponseWriter, r *http.Request)
	EmployeeCount(w http.ResponseWriter, r *http.Request)
}

type PayrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &PayrollHandlerImpl{payrollService: payrollService}
}

// CreatePayrun implements PayrollHandler.
func (h *PayrollHandlerImpl) CreatePayrun(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreatePayrunRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	resp, err := h.payrollService.CreatePayrun(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Payrun created", resp)
}

// ListPayruns implements PayrollHandler.
func (h *PayrollHandlerImpl) ListPayruns(w http.ResponseWriter, r *http.Request) {
	filter := payroll.ListPayrunFilter{Params: pagination.FromQuery(r.URL.Query())}
	resp, err := h.payrollService.ListPayruns(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Paged(w, resp, resp.Page)
}

// GetPayrun implements PayrollHandler.
func (h *PayrollHandlerImpl) GetPayrun(w http.ResponseWriter, r *http.Request) {
	resp, err := h.payrollService.GetPayrun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// ListPayrunPayslips implements PayrollHandler.
func (h *PayrollHandlerImpl) ListPayrunPayslips(w http.ResponseWriter, r *http.Request) {
	filter := payroll.ListPayrunFilter{Params: pagination.FromQuery(r.URL.Query())}
	resp, err := h.payrollService.ListPayrunPayslips(r.Context(), chi.URLParam(r, "id"), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Paged(w, resp, resp.Page)
}

// ValidatePayrun implements PayrollHandler.
func (h *PayrollHandlerImpl) ValidatePayrun(w http.ResponseWriter, r *http.Request) {
	h.status(w, r, h.payrollService.ValidatePayrun)
}

// SendPayslips implements PayrollHandler.
func (h *PayrollHandlerImpl) SendPayslips(w http.ResponseWriter, r *http.Request) {
	resp, err := h.payrollService.SendPayslips(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Payslips sent", resp)
}

// GetPayslip implements PayrollHandler.
func (h *PayrollHandlerImpl) GetPayslip(w http.ResponseWriter, r *http.Request) {
	resp, err := h.payrollService.GetPayslip(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// ValidatePayslip implements PayrollHandler.
func (h *PayrollHandlerImpl) ValidatePayslip(w http.ResponseWriter, r *http.Request) {
	h.status(w, r, h.payrollService.ValidatePayslip)
}

// CancelPayslip implements PayrollHandler.
func (h *PayrollHandlerImpl) CancelPayslip(w http.ResponseWriter, r *http.Request) {
	h.status(w, r, h.payrollService.CancelPayslip)
}

// RecomputePayslip implements PayrollHandler.
func (h *PayrollHandlerImpl) RecomputePayslip(w http.ResponseWriter, r *http.Request) {
	h.status(w, r, h.payrollService.RecomputePayslip)
}

func (h *PayrollHandlerImpl) status(w http.ResponseWriter, r *http.Request, change func(ctx context.Context, id string) (payroll.StatusResponse, error)) {
	resp, err := change(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// ExportPayslip implements PayrollHandler.
func (h *PayrollHandlerImpl) ExportPayslip(w http.ResponseWriter, r *http.Request) {
	file, err := h.payrollService.ExportPayslip(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.File(w, file.Name, file.ContentType, file.Content)
}

// MyPayslips implements PayrollHandler.
func (h *PayrollHandlerImpl) MyPayslips(w http.ResponseWriter, r *http.Request) {
	resp, err := h.payrollService.MyPayslips(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// SalaryReport implements PayrollHandler.
func (h *PayrollHandlerImpl) SalaryReport(w http.ResponseWriter, r *http.Request) {
	h.salaryReport(w, r, chi.URLParam(r, "employee_id"))
}

// MySalaryReport implements PayrollHandler.
func (h *PayrollHandlerImpl) MySalaryReport(w http.ResponseWriter, r *http.Request) {
	h.salaryReport(w, r, "")
}

func (h *PayrollHandlerImpl) salaryReport(w http.ResponseWriter, r *http.Request, employeeID string) {
	file, err := h.payrollService.SalaryReport(r.Context(), employeeID, queryYear(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.File(w, file.Name, file.ContentType, file.Content)
}

// EmployerCost implements PayrollHandler.
func (h *PayrollHandlerImpl) EmployerCost(w http.ResponseWriter, r *http.Request) {
	resp, err := h.payrollService.EmployerCostMetrics(r.Context(), queryYear(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// EmployeeCount implements PayrollHandler.
func (h *PayrollHandlerImpl) EmployeeCount(w http.ResponseWriter, r *http.Request) {
	resp, err := h.payrollService.EmployeeCountMetrics(r.Context(), queryYear(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}
