package face

import (
	"context"
	"time"
)

type FaceRepository interface {
	GetActiveEnrollment(ctx context.Context, employeeID string) (Enrollment, error)
	DeactivateEnrollments(ctx context.Context, employeeID string) (int64, error)
	CreateEnrollment(ctx context.Context, e Enrollment) (Enrollment, error)
	CreateCheckinLog(ctx context.Context, log CheckinLog) error
	Stats(ctx context.Context, employeeID string, since time.Time) (Stats, error)
}
