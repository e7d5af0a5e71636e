package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/attendance"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/auth"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/company"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/employee"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/face"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/leave"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/payroll"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/salary"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/user"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/cache"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/jwt"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/storage"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/validator"
)

// Messages the web client matches on.
const (
	MsgInvalidCredentials = "Invalid Login ID or Password"
	MsgCurrentPassword    = "Current password is incorrect"
	MsgFirstLogin         = "Password reset required on first login"
)

type mapping struct {
	err    error
	status int
	code   string
}

var errorTable = []mapping{
	// auth
	{auth.ErrInvalidTempPassword, http.StatusUnauthorized, "UNAUTHORIZED"},
	{auth.ErrInvalidRefreshToken, http.StatusUnauthorized, "UNAUTHORIZED"},
	{auth.ErrRefreshTokenRevoked, http.StatusUnauthorized, "UNAUTHORIZED"},
	{auth.ErrAlreadyReset, http.StatusConflict, "CONFLICT"},
	{auth.ErrInvalidResetToken, http.StatusBadRequest, "BAD_REQUEST"},
	{auth.ErrResetTokenUsed, http.StatusBadRequest, "BAD_REQUEST"},
	{auth.ErrResetTokenExpired, http.StatusBadRequest, "BAD_REQUEST"},
	{auth.ErrSamePassword, http.StatusBadRequest, "BAD_REQUEST"},
	{auth.ErrInvalidOAuthState, http.StatusBadRequest, "BAD_REQUEST"},
	{auth.ErrGoogleAccountNotLinked, http.StatusForbidden, "FORBIDDEN"},
	{auth.ErrGoogleLoginDisabled, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	{jwt.ErrInvalidToken, http.StatusUnauthorized, "UNAUTHORIZED"},
	{jwt.ErrNoClaims, http.StatusUnauthorized, "UNAUTHORIZED"},

	// company
	{company.ErrCompanyNotFound, http.StatusNotFound, "NOT_FOUND"},

	// user / access
	{user.ErrUserNotFound, http.StatusNotFound, "NOT_FOUND"},
	{user.ErrLoginIDExists, http.StatusConflict, "CONFLICT"},
	{user.ErrInsufficientPermissions, http.StatusForbidden, "FORBIDDEN"},
	{user.ErrInvalidRole, http.StatusBadRequest, "BAD_REQUEST"},
	{user.ErrInvalidModule, http.StatusBadRequest, "BAD_REQUEST"},
	{user.ErrInvalidAction, http.StatusBadRequest, "BAD_REQUEST"},
	{user.ErrCompanyIDRequired, http.StatusBadRequest, "BAD_REQUEST"},

	// employee
	{employee.ErrEmployeeNotFound, http.StatusNotFound, "NOT_FOUND"},
	{employee.ErrProfileNotLinked, http.StatusNotFound, "NOT_FOUND"},
	{employee.ErrEmailExists, http.StatusConflict, "CONFLICT"},
	{employee.ErrForbiddenEmployee, http.StatusForbidden, "FORBIDDEN"},
	{employee.ErrManagerNotFound, http.StatusBadRequest, "BAD_REQUEST"},
	{employee.ErrNoAvatarFile, http.StatusBadRequest, "BAD_REQUEST"},
	{employee.ErrInvalidAvatarType, http.StatusBadRequest, "BAD_REQUEST"},
	{employee.ErrAvatarTooLarge, http.StatusBadRequest, "BAD_REQUEST"},
	{employee.ErrSkillRequired, http.StatusBadRequest, "BAD_REQUEST"},
	{employee.ErrSkillExists, http.StatusConflict, "CONFLICT"},
	{employee.ErrSkillNotFound, http.StatusNotFound, "NOT_FOUND"},
	{employee.ErrCertificationNotFound, http.StatusNotFound, "NOT_FOUND"},

	// attendance
	{attendance.ErrAttendanceNotFound, http.StatusNotFound, "NOT_FOUND"},
	{attendance.ErrWeekend, http.StatusBadRequest, "BAD_REQUEST"},
	{attendance.ErrOnLeave, http.StatusBadRequest, "BAD_REQUEST"},
	{attendance.ErrNoCheckIn, http.StatusBadRequest, "BAD_REQUEST"},
	{attendance.ErrCheckOutBeforeCheckIn, http.StatusBadRequest, "BAD_REQUEST"},
	{attendance.ErrInvalidTimeOfDay, http.StatusBadRequest, "BAD_REQUEST"},
	{attendance.ErrInvalidDate, http.StatusBadRequest, "BAD_REQUEST"},
	{attendance.ErrInvalidDateRange, http.StatusBadRequest, "BAD_REQUEST"},

	// leave
	{leave.ErrLeaveTypeNotFound, http.StatusNotFound, "NOT_FOUND"},
	{leave.ErrRequestNotFound, http.StatusNotFound, "NOT_FOUND"},
	{leave.ErrAllocationNotFound, http.StatusNotFound, "NOT_FOUND"},
	{leave.ErrLeaveTypeExists, http.StatusConflict, "CONFLICT"},
	{leave.ErrRequestProcessed, http.StatusConflict, "CONFLICT"},
	{leave.ErrForbiddenRequest, http.StatusForbidden, "FORBIDDEN"},
	{leave.ErrOnBehalfNotPermitted, http.StatusForbidden, "FORBIDDEN"},
	{leave.ErrInvalidDate, http.StatusBadRequest, "BAD_REQUEST"},
	{leave.ErrInvalidDateRange, http.StatusBadRequest, "BAD_REQUEST"},

	// salary
	{salary.ErrStructureNotFound, http.StatusNotFound, "NOT_FOUND"},
	{salary.ErrComponentNotFound, http.StatusNotFound, "NOT_FOUND"},
	{salary.ErrStructureRequired, http.StatusBadRequest, "BAD_REQUEST"},
	{salary.ErrNoComponentFields, http.StatusBadRequest, "BAD_REQUEST"},

	// payroll
	{payroll.ErrPayrunNotFound, http.StatusNotFound, "NOT_FOUND"},
	{payroll.ErrPayslipNotFound, http.StatusNotFound, "NOT_FOUND"},
	{payroll.ErrForbiddenPayslip, http.StatusForbidden, "FORBIDDEN"},
	{payroll.ErrPayslipsAlreadySent, http.StatusConflict, "CONFLICT"},
	{payroll.ErrPayslipValidated, http.StatusConflict, "CONFLICT"},
	{payroll.ErrPayslipCancelled, http.StatusConflict, "CONFLICT"},
	{payroll.ErrStructureMissing, http.StatusBadRequest, "BAD_REQUEST"},
	{payroll.ErrInvalidPeriod, http.StatusBadRequest, "BAD_REQUEST"},
	{payroll.ErrYearRequired, http.StatusBadRequest, "BAD_REQUEST"},
	{payroll.ErrMailerDisabled, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},

	// face
	{face.ErrNotEnrolled, http.StatusNotFound, "NOT_ENROLLED"},
	{face.ErrEnrollmentNotFound, http.StatusNotFound, "NOT_FOUND"},
	{face.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
	{face.ErrServiceUnavailable, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	{face.ErrPhotoRequired, http.StatusBadRequest, "BAD_REQUEST"},
	{face.ErrInvalidPhoto, http.StatusBadRequest, "BAD_REQUEST"},
	{face.ErrPhotoTooSmall, http.StatusBadRequest, "BAD_REQUEST"},
	{face.ErrPhotoTooLarge, http.StatusBadRequest, "BAD_REQUEST"},

	// infrastructure
	{cache.ErrUnknownCache, http.StatusBadRequest, "BAD_REQUEST"},
	{storage.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{storage.ErrInvalidPath, http.StatusBadRequest, "BAD_REQUEST"},
}

// HandleError maps domain errors to HTTP responses. Unknown errors are logged and answered with 500.
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var mismatch *face.MismatchError
	if errors.As(err, &mismatch) {
		Fail(w, http.StatusUnauthorized, "FACE_MISMATCH", "Face verification failed", map[string]interface{}{
			"confidence": mismatch.Confidence,
			"threshold":  mismatch.Threshold,
			"reason":     mismatch.Message,
		})
		return
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, MsgInvalidCredentials)
		return
	case errors.Is(err, auth.ErrCurrentPasswordIncorrect):
		Unauthorized(w, MsgCurrentPassword)
		return
	case errors.Is(err, auth.ErrFirstLoginRequired):
		writeJSON(w, http.StatusPreconditionRequired, Response{
			Success: false,
			Message: MsgFirstLogin,
			Data:    map[string]bool{"first_login": true},
			Error:   &ErrorDetail{Code: "FIRST_LOGIN", Message: MsgFirstLogin},
		})
		return
	case errors.Is(err, employee.ErrNoAllowedFields):
		BadRequest(w, "No allowed fields provided", map[string]interface{}{"allowed": employee.PrivateFields})
		return
	case errors.Is(err, employee.ErrNoSensitiveFields):
		BadRequest(w, "No allowed fields provided", map[string]interface{}{
			"personal_allowed": employee.PersonalFields,
			"bank_allowed":     employee.BankFields,
		})
		return
	case errors.Is(err, employee.ErrNoCertificationFields):
		BadRequest(w, "No fields to update", map[string]interface{}{"allowed": employee.CertificationFields})
		return
	}

	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			Fail(w, m.status, m.code, m.err.Error(), nil)
			return
		}
	}

	slog.Error("unhandled error", "error", err)
	InternalServerError(w, "An unexpected error occurred")
}
