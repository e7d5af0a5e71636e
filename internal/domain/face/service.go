package face

import "context"

type FaceService interface {
	Enroll(ctx context.Context, req EnrollRequest) (EnrollResponse, error)
	MyEnrollment(ctx context.Context) (MyEnrollmentResponse, error)
	DeleteEnrollment(ctx context.Context) error
	CheckIn(ctx context.Context, req CheckinRequest) (CheckinResponse, error)
	MyStats(ctx context.Context) (StatsResponse, error)
}
