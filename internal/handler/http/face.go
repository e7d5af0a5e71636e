package http

import (
	"net/http"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/face"
	"github.com/hrx-hr/hrx-backend-go/internal/handler/http/response"
)

type FaceHandler interface {
	Enroll(w http.ResponseWriter, r *http.Request)
	MyEnrollment(w http.ResponseWriter, r *http.Request)
	DeleteEnrollment(w http.ResponseWriter, r *http.Request)
	CheckIn(w http.ResponseWriter, r *http.Request)
	MyStats(w http.ResponseWriter, r *http.Request)
}

type FaceHandlerImpl struct {
	faceService face.FaceService
}

func NewFaceHandler(faceService face.FaceService) FaceHandler {
	return &FaceHandlerImpl{faceService: faceService}
}

// Enroll implements FaceHandler.
func (h *FaceHandlerImpl) Enroll(w http.ResponseWriter, r *http.Request) {
	var req face.EnrollRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	resp, err := h.faceService.Enroll(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Face enrolled", resp)
}

// MyEnrollment implements FaceHandler.
func (h *FaceHandlerImpl) MyEnrollment(w http.ResponseWriter, r *http.Request) {
	resp, err := h.faceService.MyEnrollment(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// DeleteEnrollment implements FaceHandler.
func (h *FaceHandlerImpl) DeleteEnrollment(w http.ResponseWriter, r *http.Request) {
	if err := h.faceService.DeleteEnrollment(r.Context()); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Face enrollment removed", nil)
}

// CheckIn implements FaceHandler.
func (h *FaceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req face.CheckinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	resp, err := h.faceService.CheckIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Face verified, checked in", resp)
}

// MyStats implements FaceHandler.
func (h *FaceHandlerImpl) MyStats(w http.ResponseWriter, r *http.Request) {
	resp, err := h.faceService.MyStats(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}
