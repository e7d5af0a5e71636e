package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/salary"
	"github.com/hrx-hr/hrx-backend-go/internal/handler/http/response"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/pagination"
)

type SalaryHandler interface {
	Mine(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	UpsertStructure(w http.ResponseWriter, r *http.Request)
	AddComponent(w http.ResponseWriter, r *http.Request)
	UpdateComponent(w http.ResponseWriter, r *http.Request)
	DeleteComponent(w http.ResponseWriter, r *http.Request)
}

type SalaryHandlerImpl struct {
	salaryService salary.SalaryService
}

func NewSalaryHandler(salaryService salary.SalaryService) SalaryHandler {
	return &SalaryHandlerImpl{salaryService: salaryService}
}

// Mine implements SalaryHandler.
func (h *SalaryHandlerImpl) Mine(w http.ResponseWriter, r *http.Request) {
	resp, err := h.salaryService.Mine(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// List implements SalaryHandler.
func (h *SalaryHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	resp, err := h.salaryService.List(r.Context(), salary.ListFilter{Params: pagination.FromQuery(r.URL.Query())})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Paged(w, resp, resp.Page)
}

// UpsertStructure implements SalaryHandler.
func (h *SalaryHandlerImpl) UpsertStructure(w http.ResponseWriter, r *http.Request) {
	var req salary.UpsertStructureRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	resp, err := h.salaryService.UpsertStructure(r.Context(), chi.URLParam(r, "employee_id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Salary structure saved", resp)
}

// AddComponent implements SalaryHandler.
func (h *SalaryHandlerImpl) AddComponent(w http.ResponseWriter, r *http.Request) {
	var req salary.CreateComponentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	resp, err := h.salaryService.AddComponent(r.Context(), chi.URLParam(r, "employee_id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Salary component added", resp)
}

// UpdateComponent implements SalaryHandler.
func (h *SalaryHandlerImpl) UpdateComponent(w http.ResponseWriter, r *http.Request) {
	var req salary.UpdateComponentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	resp, err := h.salaryService.UpdateComponent(r.Context(), chi.URLParam(r, "employee_id"), chi.URLParam(r, "component_id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Salary component updated", resp)
}

// DeleteComponent implements SalaryHandler.
func (h *SalaryHandlerImpl) DeleteComponent(w http.ResponseWriter, r *http.Request) {
	err := h.salaryService.DeleteComponent(r.Context(), chi.URLParam(r, "employee_id"), chi.URLParam(r, "component_id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Salary component deleted", nil)
}
