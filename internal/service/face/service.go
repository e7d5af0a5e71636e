package face

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/attendance"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/employee"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/face"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/leave"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/database"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/facerec"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/jwt"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/metrics"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/validator"
	"github.com/hrx-hr/hrx-backend-go/internal/service/file"
	"github.com/jackc/pgx/v5"
)

// Check-in outcomes as counted by metrics.
const (
	outcomeMatched  = "matched"
	outcomeMismatch = "mismatch"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// Options tune face check-in.
type Options struct {
	MatchThreshold float64
	// CheckinRate is the sustained attempts per employee per minute.
	CheckinRate  float64
	CheckinBurst int
	Location     *time.Location
}

type FaceServiceImpl struct {
	tx database.Transactor
	face.FaceRepository
	leave.RequestRepository
	attendance attendance.AttendanceService
	files      file.FileService
	comparer   facerec.Comparer
	metrics    *metrics.Metrics
	limiter    *checkinLimiter
	threshold  float64
	loc        *time.Location
	now        func() time.Time
}

// NewFaceService wires face enrollment and check-in. m may be nil.
func NewFaceService(
	tx database.Transactor,
	faceRepository face.FaceRepository,
	requestRepository leave.RequestRepository,
	attendanceService attendance.AttendanceService,
	files file.FileService,
	comparer facerec.Comparer,
	m *metrics.Metrics,
	opts Options,
) face.FaceService {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	return &FaceServiceImpl{
		tx:                tx,
		FaceRepository:    faceRepository,
		RequestRepository: requestRepository,
		attendance:        attendanceService,
		files:             files,
		comparer:          comparer,
		metrics:           m,
		limiter:           newCheckinLimiter(opts.CheckinRate, opts.CheckinBurst),
		threshold:         opts.MatchThreshold,
		loc:               loc,
		now:               time.Now,
	}
}

func callerEmployee(ctx context.Context) (string, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return "", err
	}
	if claims.EmployeeID == "" {
		return "", employee.ErrProfileNotLinked
	}
	return claims.EmployeeID, nil
}

// Enroll implements face.FaceService. The new enrollment replaces any active one.
func (s *FaceServiceImpl) Enroll(ctx context.Context, req face.EnrollRequest) (face.EnrollResponse, error) {
	employeeID, err := callerEmployee(ctx)
	if err != nil {
		return face.EnrollResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return face.EnrollResponse{}, err
	}
	photo, err := face.DecodePhoto(req.PhotoDataURL)
	if err != nil {
		return face.EnrollResponse{}, err
	}

	key, err := s.files.StoreFacePhoto(ctx, employeeID, photo.Data, photo.ContentType)
	if err != nil {
		return face.EnrollResponse{}, err
	}

	var enrollment face.Enrollment
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.FaceRepository.DeactivateEnrollments(ctx, employeeID); err != nil {
			return fmt.Errorf("failed to deactivate enrollments: %w", err)
		}
		created, err := s.FaceRepository.CreateEnrollment(ctx, face.Enrollment{
			EmployeeID:   employeeID,
			ImageKey:     key,
			QualityScore: req.Quality(),
			IsActive:     true,
		})
		if err != nil {
			return fmt.Errorf("failed to create enrollment: %w", err)
		}
		enrollment = created
		return nil
	})
	if err != nil {
		if delErr := s.files.Delete(ctx, key); delErr != nil {
			slog.Warn("orphaned face photo", "error", delErr, "key", key)
		}
		return face.EnrollResponse{}, err
	}

	slog.Info("face enrolled", "employee_id", employeeID, "enrollment_id", enrollment.ID)
	return face.EnrollResponse{Enrollment: face.NewEnrollmentResponse(enrollment, s.photoURL(ctx, key))}, nil
}

func (s *FaceServiceImpl) photoURL(ctx context.Context, key string) string {
	url, err := s.files.URL(ctx, key)
	if err != nil {
		slog.Warn("face photo url unavailable", "error", err, "key", key)
		return ""
	}
	return url
}

// MyEnrollment implements face.FaceService.
func (s *FaceServiceImpl) MyEnrollment(ctx context.Context) (face.MyEnrollmentResponse, error) {
	employeeID, err := callerEmployee(ctx)
	if err != nil {
		return face.MyEnrollmentResponse{}, err
	}
	e, err := s.FaceRepository.GetActiveEnrollment(ctx, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return face.MyEnrollmentResponse{Enrolled: false}, nil
		}
		return face.MyEnrollmentResponse{}, fmt.Errorf("failed to get enrollment: %w", err)
	}
	resp := face.NewEnrollmentResponse(e, s.photoURL(ctx, e.ImageKey))
	return face.MyEnrollmentResponse{Enrolled: true, Enrollment: &resp}, nil
}

// DeleteEnrollment implements face.FaceService.
func (s *FaceServiceImpl) DeleteEnrollment(ctx context.Context) error {
	employeeID, err := callerEmployee(ctx)
	if err != nil {
		return err
	}
	n, err := s.FaceRepository.DeactivateEnrollments(ctx, employeeID)
	if err != nil {
		return fmt.Errorf("failed to deactivate enrollments: %w", err)
	}
	if n == 0 {
		return face.ErrEnrollmentNotFound
	}
	slog.Info("face enrollment removed", "employee_id", employeeID)
	return nil
}

// CheckIn implements face.FaceService. Attempts that reach the comparison are
// logged whatever their outcome.
func (s *FaceServiceImpl) CheckIn(ctx context.Context, req face.CheckinRequest) (face.CheckinResponse, error) {
	employeeID, err := callerEmployee(ctx)
	if err != nil {
		return face.CheckinResponse{}, err
	}
	if !s.limiter.allow(employeeID, s.now()) {
		s.metrics.FaceCheckin(outcomeRejected)
		return face.CheckinResponse{}, face.ErrRateLimited
	}
	if err := req.Validate(); err != nil {
		return face.CheckinResponse{}, err
	}

	day := attendance.DateOnly(s.now().In(s.loc))
	if req.Date != "" {
		d, _ := validator.IsValidDate(req.Date)
		day = attendance.DateOnly(d)
	}
	if attendance.IsWeekend(day) {
		s.metrics.FaceCheckin(outcomeRejected)
		return face.CheckinResponse{}, attendance.ErrWeekend
	}
	onLeave, err := s.RequestRepository.HasApprovedLeave(ctx, employeeID, day)
	if err != nil {
		return face.CheckinResponse{}, fmt.Errorf("failed to check approved leave: %w", err)
	}
	if onLeave {
		s.metrics.FaceCheckin(outcomeRejected)
		return face.CheckinResponse{}, attendance.ErrOnLeave
	}

	enrollment, err := s.FaceRepository.GetActiveEnrollment(ctx, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.metrics.FaceCheckin(outcomeRejected)
			return face.CheckinResponse{}, face.ErrNotEnrolled
		}
		return face.CheckinResponse{}, fmt.Errorf("failed to get enrollment: %w", err)
	}

	photo, err := face.DecodePhoto(req.PhotoDataURL)
	if err != nil {
		s.metrics.FaceCheckin(outcomeRejected)
		return face.CheckinResponse{}, err
	}
	result, err := s.compare(ctx, employeeID, enrollment, photo)
	if err != nil {
		s.metrics.FaceCheckin(outcomeError)
		s.logAttempt(ctx, face.CheckinLog{EmployeeID: employeeID, Message: err.Error()})
		return face.CheckinResponse{}, err
	}

	confidence := result.Confidence
	matched := result.IsMatch && confidence >= s.threshold
	s.logAttempt(ctx, face.CheckinLog{
		EmployeeID:      employeeID,
		Success:         matched,
		ConfidenceScore: &confidence,
		Message:         result.Message,
	})
	if !matched {
		s.metrics.FaceCheckin(outcomeMismatch)
		return face.CheckinResponse{}, &face.MismatchError{Confidence: confidence, Threshold: s.threshold, Message: result.Message}
	}

	record, _, err := s.attendance.RecordCheckIn(ctx, employeeID, day)
	if err != nil {
		s.metrics.FaceCheckin(outcomeError)
		return face.CheckinResponse{}, err
	}
	s.metrics.FaceCheckin(outcomeMatched)
	slog.Info("face check-in recorded", "employee_id", employeeID, "confidence", confidence)

	return face.CheckinResponse{
		Attendance:      attendance.NewAttendanceResponse(record),
		ConfidenceScore: confidence,
		MatchPercentage: face.MatchPercentage(confidence),
	}, nil
}

// compare stores the check-in photo and asks the face service to match it
// against the enrolled one.
func (s *FaceServiceImpl) compare(ctx context.Context, employeeID string, enrollment face.Enrollment, photo face.Photo) (facerec.Result, error) {
	key, err := s.files.StoreFacePhoto(ctx, employeeID, photo.Data, photo.ContentType)
	if err != nil {
		return facerec.Result{}, err
	}
	enrolledURL, err := s.files.URL(ctx, enrollment.ImageKey)
	if err != nil {
		return facerec.Result{}, fmt.Errorf("failed to resolve enrolled photo: %w", err)
	}
	checkInURL, err := s.files.URL(ctx, key)
	if err != nil {
		return facerec.Result{}, fmt.Errorf("failed to resolve check-in photo: %w", err)
	}

	result, err := s.comparer.Compare(ctx, enrolledURL, checkInURL)
	if err != nil {
		if errors.Is(err, facerec.ErrServiceUnavailable) {
			slog.Error("face service call failed", "error", err, "employee_id", employeeID)
			return facerec.Result{}, face.ErrServiceUnavailable
		}
		return facerec.Result{}, fmt.Errorf("failed to compare faces: %w", err)
	}
	return result, nil
}

func (s *FaceServiceImpl) logAttempt(ctx context.Context, entry face.CheckinLog) {
	if err := s.FaceRepository.CreateCheckinLog(ctx, entry); err != nil {
		slog.Error("failed to log face check-in", "error", err, "employee_id", entry.EmployeeID)
	}
}

// MyStats implements face.FaceService.
func (s *FaceServiceImpl) MyStats(ctx context.Context) (face.StatsResponse, error) {
	employeeID, err := callerEmployee(ctx)
	if err != nil {
		return face.StatsResponse{}, err
	}
	stats, err := s.FaceRepository.Stats(ctx, employeeID, s.now().Add(-face.StatsWindow))
	if err != nil {
		return face.StatsResponse{}, fmt.Errorf("failed to get face check-in stats: %w", err)
	}
	return face.NewStatsResponse(stats), nil
}
