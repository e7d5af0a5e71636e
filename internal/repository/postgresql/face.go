package postgresql

import (
	"context"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/face"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/database"
)

type faceRepositoryImpl struct {
	db *database.DB
}

func NewFaceRepository(db *database.DB) face.FaceRepository {
	return &faceRepositoryImpl{db: db}
}

// GetActiveEnrollment implements face.FaceRepository.
func (r *faceRepositoryImpl) GetActiveEnrollment(ctx context.Context, employeeID string) (face.Enrollment, error) {
	q := GetQuerier(ctx, r.db)
	var e face.Enrollment
	err := q.QueryRow(ctx, `
		SELECT id, employee_id, image_key, quality_score, is_active, enrolled_at
		FROM face_enrollments
		WHERE employee_id = $1 AND is_active
	`, employeeID).Scan(&e.ID, &e.EmployeeID, &e.ImageKey, &e.QualityScore, &e.IsActive, &e.EnrolledAt)
	return e, err
}

// DeactivateEnrollments implements face.FaceRepository.
func (r *faceRepositoryImpl) DeactivateEnrollments(ctx context.Context, employeeID string) (int64, error) {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx,
		`UPDATE face_enrollments SET is_active = FALSE WHERE employee_id = $1 AND is_active`,
		employeeID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CreateEnrollment implements face.FaceRepository.
func (r *faceRepositoryImpl) CreateEnrollment(ctx context.Context, e face.Enrollment) (face.Enrollment, error) {
	q := GetQuerier(ctx, r.db)
	err := q.QueryRow(ctx, `
		INSERT INTO face_enrollments (employee_id, image_key, quality_score, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, enrolled_at
	`, e.EmployeeID, e.ImageKey, e.QualityScore, e.IsActive).Scan(&e.ID, &e.EnrolledAt)
	if err != nil {
		return face.Enrollment{}, err
	}
	return e, nil
}

// CreateCheckinLog implements face.FaceRepository.
func (r *faceRepositoryImpl) CreateCheckinLog(ctx context.Context, log face.CheckinLog) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO face_checkin_logs (employee_id, success, confidence_score, message)
		VALUES ($1, $2, $3, NULLIF($4, ''))
	`, log.EmployeeID, log.Success, log.ConfidenceScore, log.Message)
	return err
}

// Stats implements face.FaceRepository.
func (r *faceRepositoryImpl) Stats(ctx context.Context, employeeID string, since time.Time) (face.Stats, error) {
	q := GetQuerier(ctx, r.db)
	var s face.Stats
	err := q.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE success),
			COUNT(*) FILTER (WHERE NOT success),
			AVG(confidence_score)::float8,
			MAX(created_at) FILTER (WHERE success)
		FROM face_checkin_logs
		WHERE employee_id = $1 AND created_at >= $2
	`, employeeID, since).Scan(&s.Total, &s.Successful, &s.Failed, &s.AvgConfidence, &s.LastSuccess)
	return s, err
}
