package leave

import "errors"

var (
	ErrInvalidDate          = errors.New("date must use YYYY-MM-DD")
	ErrInvalidDateRange     = errors.New("end date must not be before start date")
	ErrLeaveTypeNotFound    = errors.New("leave type not found")
	ErrLeaveTypeExists      = errors.New("leave type already exists")
	ErrRequestNotFound      = errors.New("leave request not found")
	ErrRequestProcessed     = errors.New("request already processed")
	ErrForbiddenRequest     = errors.New("leave request belongs to another company")
	ErrAllocationNotFound   = errors.New("leave allocation not found")
	ErrOnBehalfNotPermitted = errors.New("only admin or hr may request leave on behalf of another employee")
)
