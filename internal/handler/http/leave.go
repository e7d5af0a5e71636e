package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/leave"
	"github.com/hrx-hr/hrx-backend-go/internal/handler/http/response"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/pagination"
)

type LeaveHandler interface {
	ListTypes(w http.ResponseWriter, r *http.Request)
	CreateType(w http.ResponseWriter, r *http.Request)
	CreateAllocation(w http.ResponseWriter, r *http.Request)
	ListAllocations(w http.ResponseWriter, r *http.Request)
	MyAllocations(w http.ResponseWriter, r *http.Request)
	CreateRequest(w http.ResponseWriter, r *http.Request)
	ListRequests(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &LeaveHandlerImpl{leaveService: leaveService}
}

// ListTypes implements LeaveHandler.
func (h *LeaveHandlerImpl) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.leaveService.ListTypes(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, types)
}

// CreateType implements LeaveHandler.
func (h *LeaveHandlerImpl) CreateType(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateTypeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	created, err := h.leaveService.CreateType(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Leave type created", created)
}

// CreateAllocation implements LeaveHandler.
func (h *LeaveHandlerImpl) CreateAllocation(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateAllocationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	created, err := h.leaveService.CreateAllocation(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Leave allocation created", created)
}

// ListAllocations implements LeaveHandler.
func (h *LeaveHandlerImpl) ListAllocations(w http.ResponseWriter, r *http.Request) {
	filter := leave.AllocationFilter{
		EmployeeID: r.URL.Query().Get("employee_id"),
		Params:     pagination.FromQuery(r.URL.Query()),
	}
	resp, err := h.leaveService.ListAllocations(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Paged(w, resp, resp.Page)
}

// MyAllocations implements LeaveHandler.
func (h *LeaveHandlerImpl) MyAllocations(w http.ResponseWriter, r *http.Request) {
	resp, err := h.leaveService.MyAllocations(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// CreateRequest implements LeaveHandler.
func (h *LeaveHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateRequestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	created, err := h.leaveService.CreateRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Leave request submitted", created)
}

// ListRequests implements LeaveHandler.
func (h *LeaveHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := leave.RequestFilter{
		EmployeeID: q.Get("employee_id"),
		Status:     q.Get("status"),
		Params:     pagination.FromQuery(q),
	}
	resp, err := h.leaveService.ListRequests(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Paged(w, resp, resp.Page)
}

// Approve implements LeaveHandler.
func (h *LeaveHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	resp, err := h.leaveService.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// Reject implements LeaveHandler.
func (h *LeaveHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	resp, err := h.leaveService.Reject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}
