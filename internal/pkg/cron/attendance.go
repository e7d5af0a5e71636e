package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/attendance"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/company"
)

// AttendanceJobs closes out the previous working day.
type AttendanceJobs struct {
	companies  company.CompanyRepository
	attendance attendance.AttendanceService
	loc        *time.Location
	now        func() time.Time
}

func NewAttendanceJobs(companies company.CompanyRepository, attendanceService attendance.AttendanceService, loc *time.Location) *AttendanceJobs {
	if loc == nil {
		loc = time.Local
	}
	return &AttendanceJobs{
		companies:  companies,
		attendance: attendanceService,
		loc:        loc,
		now:        time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("mark_absent_employees", time.Hour, j.MarkAbsentEmployees)
}

// MarkAbsentEmployees records yesterday's absences for every company. It acts only
// during the first hour of the day; re-runs insert nothing new.
func (j *AttendanceJobs) MarkAbsentEmployees(ctx context.Context) error {
	now := j.now().In(j.loc)
	if now.Hour() != 0 {
		return nil
	}
	yesterday := now.AddDate(0, 0, -1)
	if attendance.IsWeekend(yesterday) {
		return nil
	}

	companies, err := j.companies.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	var total int64
	for _, c := range companies {
		marked, err := j.attendance.MarkAbsentsForCompany(ctx, c.ID, yesterday)
		if err != nil {
			slog.Error("Cron: failed to mark absents", "company_id", c.ID, "error", err)
			continue
		}
		total += marked
	}
	slog.Info("Cron: marked absent employees", "date", yesterday.Format("2006-01-02"), "count", total)
	return nil
}
