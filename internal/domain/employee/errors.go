package employee

import "errors"

var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrEmailExists       = errors.New("email already registered in this company")
	ErrNoAllowedFields   = errors.New("no allowed fields provided")
	ErrNoAvatarFile      = errors.New("no file uploaded")
	ErrInvalidAvatarType = errors.New("only image files (JPEG, PNG, GIF, WebP) are allowed")
	ErrAvatarTooLarge    = errors.New("avatar exceeds 5MB")
	ErrProfileNotLinked  = errors.New("employee profile not found")
	ErrForbiddenEmployee = errors.New("employee belongs to another company")
	ErrManagerNotFound   = errors.New("manager not found in this company")
)
