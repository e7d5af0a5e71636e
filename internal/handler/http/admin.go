package http

import (
	"net/http"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/user"
	"github.com/hrx-hr/hrx-backend-go/internal/handler/http/response"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/jwt"
)

type AdminHandler interface {
	ListUsers(w http.ResponseWriter, r *http.Request)
	AccessRights(w http.ResponseWriter, r *http.Request)
	UpsertAccessRight(w http.ResponseWriter, r *http.Request)
}

type AdminHandlerImpl struct {
	accessService user.AccessService
}

func NewAdminHandler(accessService user.AccessService) AdminHandler {
	return &AdminHandlerImpl{accessService: accessService}
}

// ListUsers implements AdminHandler.
func (h *AdminHandlerImpl) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.accessService.ListUsers(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, users)
}

// AccessRights implements AdminHandler.
func (h *AdminHandlerImpl) AccessRights(w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.RequireClaims(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	matrix, err := h.accessService.Matrix(r.Context(), claims.CompanyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, matrix)
}

// UpsertAccessRight implements AdminHandler.
func (h *AdminHandlerImpl) UpsertAccessRight(w http.ResponseWriter, r *http.Request) {
	var req user.UpsertAccessRightRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	right, err := h.accessService.Upsert(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Access rights updated", right)
}
