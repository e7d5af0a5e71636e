package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrLoginIDExists           = errors.New("login id already registered")
	ErrInvalidRole             = errors.New("invalid role")
	ErrInvalidModule           = errors.New("invalid access module")
	ErrInvalidAction           = errors.New("invalid access action")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrCompanyIDRequired       = errors.New("company ID is required")
)
