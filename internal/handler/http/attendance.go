package http

import (
	"net/http"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/attendance"
	"github.com/hrx-hr/hrx-backend-go/internal/handler/http/response"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/pagination"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	MyAttendance(w http.ResponseWriter, r *http.Request)
	Roster(w http.ResponseWriter, r *http.Request)
	Board(w http.ResponseWriter, r *http.Request)
	MarkAbsents(w http.ResponseWriter, r *http.Request)
}

type AttendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &AttendanceHandlerImpl{attendanceService: attendanceService}
}

// CheckIn implements AttendanceHandler. A repeated check-in answers 200 with the existing row.
func (h *AttendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	resp, err := h.attendanceService.CheckIn(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if resp.Created {
		response.Created(w, "Checked in", resp)
		return
	}
	response.SuccessWithMessage(w, "Already checked in", resp)
}

// CheckOut implements AttendanceHandler.
func (h *AttendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	resp, err := h.attendanceService.CheckOut(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Checked out", resp)
}

// MyAttendance implements AttendanceHandler.
func (h *AttendanceHandlerImpl) MyAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.attendanceService.MyAttendance(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// Roster implements AttendanceHandler.
func (h *AttendanceHandlerImpl) Roster(w http.ResponseWriter, r *http.Request) {
	filter := attendance.RosterFilter{
		Date:   r.URL.Query().Get("date"),
		Params: pagination.FromQuery(r.URL.Query()),
	}
	resp, err := h.attendanceService.ListByDate(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Paged(w, resp, resp.Page)
}

// Board implements AttendanceHandler.
func (h *AttendanceHandlerImpl) Board(w http.ResponseWriter, r *http.Request) {
	resp, err := h.attendanceService.Board(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// MarkAbsents implements AttendanceHandler.
func (h *AttendanceHandlerImpl) MarkAbsents(w http.ResponseWriter, r *http.Request) {
	resp, err := h.attendanceService.MarkAbsents(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Absences recorded", resp)
}
