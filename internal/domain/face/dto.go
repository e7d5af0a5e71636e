package face

import (
	"math"
	"strconv"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/attendance"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/validator"
)

type EnrollRequest struct {
	PhotoDataURL string   `json:"photoDataUrl"`
	QualityScore *float64 `json:"qualityScore"`
}

func (r *EnrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.PhotoDataURL) {
		errs.Add("photoDataUrl", "photoDataUrl is required")
	}
	if r.QualityScore != nil && (*r.QualityScore < 0 || *r.QualityScore > 1) {
		errs.Add("qualityScore", "qualityScore must be between 0 and 1")
	}

	return errs.Err()
}

// Quality defaults to a perfect score when the client sends none.
func (r *EnrollRequest) Quality() float64 {
	if r.QualityScore == nil {
		return 1
	}
	return *r.QualityScore
}

type EnrollmentResponse struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employeeId"`
	PhotoURL     string    `json:"photoUrl"`
	QualityScore float64   `json:"qualityScore"`
	IsActive     bool      `json:"isActive"`
	EnrolledAt   time.Time `json:"enrolledAt"`
}

func NewEnrollmentResponse(e Enrollment, photoURL string) EnrollmentResponse {
	return EnrollmentResponse{
		ID:           e.ID,
		EmployeeID:   e.EmployeeID,
		PhotoURL:     photoURL,
		QualityScore: e.QualityScore,
		IsActive:     e.IsActive,
		EnrolledAt:   e.EnrolledAt,
	}
}

type EnrollResponse struct {
	Enrollment EnrollmentResponse `json:"enrollment"`
}

type MyEnrollmentResponse struct {
	Enrolled   bool                `json:"enrolled"`
	Enrollment *EnrollmentResponse `json:"enrollment"`
}

type CheckinRequest struct {
	PhotoDataURL string `json:"photoDataUrl"`
	Date         string `json:"date"`
}

func (r *CheckinRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.PhotoDataURL) {
		errs.Add("photoDataUrl", "photoDataUrl is required")
	}
	if r.Date != "" {
		if _, ok := validator.IsValidDate(r.Date); !ok {
			errs.Add("date", "date must be YYYY-MM-DD")
		}
	}

	return errs.Err()
}

type CheckinResponse struct {
	Attendance      attendance.AttendanceResponse `json:"attendance"`
	ConfidenceScore float64                       `json:"confidenceScore"`
	MatchPercentage string                        `json:"matchPercentage"`
}

// MatchPercentage renders a [0, 1] confidence as "87.50".
func MatchPercentage(confidence float64) string {
	return strconv.FormatFloat(confidence*100, 'f', 2, 64)
}

type StatsResponse struct {
	Total         int        `json:"total"`
	Successful    int        `json:"successful"`
	Failed        int        `json:"failed"`
	AvgConfidence *float64   `json:"avgConfidence"`
	LastSuccess   *time.Time `json:"lastSuccess"`
}

func NewStatsResponse(s Stats) StatsResponse {
	resp := StatsResponse{
		Total:       s.Total,
		Successful:  s.Successful,
		Failed:      s.Failed,
		LastSuccess: s.LastSuccess,
	}
	if s.AvgConfidence != nil {
		avg := math.Round(*s.AvgConfidence*10000) / 10000
		resp.AvgConfidence = &avg
	}
	return resp
}
