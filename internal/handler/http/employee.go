package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/employee"
	"github.com/hrx-hr/hrx-backend-go/internal/handler/http/response"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/pagination"
)

// avatarField is the multipart field carrying the image.
const avatarField = "avatar"

type EmployeeHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	UpdateMyPrivateInfo(w http.ResponseWriter, r *http.Request)
	UploadAvatar(w http.ResponseWriter, r *http.Request)
	DeleteAvatar(w http.ResponseWriter, r *http.Request)
	ListMySkills(w http.ResponseWriter, r *http.Request)
	AddMySkill(w http.ResponseWriter, r *http.Request)
	DeleteMySkill(w http.ResponseWriter, r *http.Request)
	ListMyCertifications(w http.ResponseWriter, r *http.Request)
	AddMyCertification(w http.ResponseWriter, r *http.Request)
	UpdateMyCertification(w http.ResponseWriter, r *http.Request)
	DeleteMyCertification(w http.ResponseWriter, r *http.Request)
	GetMyPrivateInfo(w http.ResponseWriter, r *http.Request)
	UpdateMyPrivateInfoSensitive(w http.ResponseWriter, r *http.Request)
}

type EmployeeHandlerImpl struct {
	employeeService employee.EmployeeService
}

func NewEmployeeHandler(employeeService employee.EmployeeService) EmployeeHandler {
	return &EmployeeHandlerImpl{employeeService: employeeService}
}

// List implements EmployeeHandler.
func (h *EmployeeHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := employee.ListFilter{Params: pagination.FromQuery(r.URL.Query())}
	resp, err := h.employeeService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Paged(w, resp, resp.Page)
}

// Get implements EmployeeHandler.
func (h *EmployeeHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.employeeService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// Me implements EmployeeHandler.
func (h *EmployeeHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	resp, err := h.employeeService.Me(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// UpdateMyPrivateInfo implements EmployeeHandler.
func (h *EmployeeHandlerImpl) UpdateMyPrivateInfo(w http.ResponseWriter, r *http.Request) {
	var req employee.UpdatePrivateInfoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}
	resp, err := h.employeeService.UpdateMyPrivateInfo(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Private info updated", resp)
}

// UploadAvatar implements EmployeeHandler. The body is capped slightly above the
// avatar limit so the service can report the size violation itself.
func (h *EmployeeHandlerImpl) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, employee.AvatarMaxBytes+(1<<20))
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.HandleError(w, employee.ErrAvatarTooLarge)
			return
		}
		response.HandleError(w, employee.ErrNoAvatarFile)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(avatarField)
	if err != nil {
		response.HandleError(w, employee.ErrNoAvatarFile)
		return
	}
	defer file.Close()

	resp, err := h.employeeService.UploadAvatar(r.Context(), employee.UploadAvatarRequest{
		File:        file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Avatar uploaded", resp)
}

// DeleteAvatar implements EmployeeHandler.
func (h *EmployeeHandlerImpl) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	resp, err := h.employeeService.DeleteAvatar(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Avatar removed", resp)
}

// ListMySkills implements EmployeeHandler.
func (h *EmployeeHandlerImpl) ListMySkills(w http.ResponseWriter, r *http.Request) {
	resp, err := h.employeeService.ListMySkills(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// AddMySkill implements EmployeeHandler.
func (h *EmployeeHandlerImpl) AddMySkill(w http.ResponseWriter, r *http.Request) {
	var req employee.AddSkillRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	resp, err := h.employeeService.AddMySkill(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Skill added", resp)
}

// DeleteMySkill implements EmployeeHandler.
func (h *EmployeeHandlerImpl) DeleteMySkill(w http.ResponseWriter, r *http.Request) {
	if err := h.employeeService.DeleteMySkill(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Deleted", nil)
}

// ListMyCertifications implements EmployeeHandler.
func (h *EmployeeHandlerImpl) ListMyCertifications(w http.ResponseWriter, r *http.Request) {
	resp, err := h.employeeService.ListMyCertifications(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// AddMyCertification implements EmployeeHandler.
func (h *EmployeeHandlerImpl) AddMyCertification(w http.ResponseWriter, r *http.Request) {
	var req employee.AddCertificationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	resp, err := h.employeeService.AddMyCertification(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Certification added", resp)
}

// UpdateMyCertification implements EmployeeHandler.
func (h *EmployeeHandlerImpl) UpdateMyCertification(w http.ResponseWriter, r *http.Request) {
	var req employee.UpdateCertificationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	resp, err := h.employeeService.UpdateMyCertification(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// DeleteMyCertification implements EmployeeHandler.
func (h *EmployeeHandlerImpl) DeleteMyCertification(w http.ResponseWriter, r *http.Request) {
	if err := h.employeeService.DeleteMyCertification(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Deleted", nil)
}

// GetMyPrivateInfo implements EmployeeHandler.
func (h *EmployeeHandlerImpl) GetMyPrivateInfo(w http.ResponseWriter, r *http.Request) {
	resp, err := h.employeeService.GetMyPrivateInfo(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// UpdateMyPrivateInfoSensitive implements EmployeeHandler.
func (h *EmployeeHandlerImpl) UpdateMyPrivateInfoSensitive(w http.ResponseWriter, r *http.Request) {
	var req employee.UpdateSensitiveInfoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	resp, err := h.employeeService.UpdateMyPrivateInfoSensitive(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Updated", resp)
}
