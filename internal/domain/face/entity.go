package face

import "time"

// Enrollment is a stored reference photo. An employee has at most one active enrollment.
type Enrollment struct {
	ID           string
	EmployeeID   string
	ImageKey     string
	QualityScore float64
	IsActive     bool
	EnrolledAt   time.Time
}

type CheckinLog struct {
	ID              string
	EmployeeID      string
	Success         bool
	ConfidenceScore *float64
	Message         string
	CreatedAt       time.Time
}

type Stats struct {
	Total         int
	Successful    int
	Failed        int
	AvgConfidence *float64
	LastSuccess   *time.Time
}

// StatsWindow is how far back the check-in statistics look.
const StatsWindow = 30 * 24 * time.Hour
