package face

import (
	"errors"
	"fmt"
)

var (
	ErrPhotoRequired      = errors.New("photo is required")
	ErrInvalidPhoto       = errors.New("photo must be a base64 image data URL")
	ErrPhotoTooSmall      = errors.New("photo is too small, minimum 10KB")
	ErrPhotoTooLarge      = errors.New("photo is too large, maximum 5MB")
	ErrNotEnrolled        = errors.New("no active face enrollment")
	ErrEnrollmentNotFound = errors.New("face enrollment not found")
	ErrRateLimited        = errors.New("too many face check-in attempts, try again shortly")
	ErrServiceUnavailable = errors.New("face recognition service unavailable")
)

// MismatchError is a completed comparison that did not reach the threshold.
type MismatchError struct {
	Confidence float64
	Threshold  float64
	Message    string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("face verification failed: confidence %.4f below %.2f", e.Confidence, e.Threshold)
}
