package cron

import (
	"context"
	"log/slog"
	"time"
)

// PayslipMailer is the part of the payroll service the month-end job drives.
type PayslipMailer interface {
	SendMonthEndPayslips(ctx context.Context) error
}

type PayrollJobs struct {
	mailer PayslipMailer
	loc    *time.Location
	now    func() time.Time
}

func NewPayrollJobs(mailer PayslipMailer, loc *time.Location) *PayrollJobs {
	if loc == nil {
		loc = time.Local
	}
	return &PayrollJobs{mailer: mailer, loc: loc, now: time.Now}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("send_month_end_payslips", 24*time.Hour, j.SendMonthEndPayslips)
}

// IsLastDayOfMonth reports whether t falls on the final calendar day of its month.
func IsLastDayOfMonth(t time.Time) bool {
	return t.AddDate(0, 0, 1).Day() == 1
}

// SendMonthEndPayslips mails the latest payruns on the last day of the month.
// Payruns already mailed are skipped by the service, so a second tick is harmless.
func (j *PayrollJobs) SendMonthEndPayslips(ctx context.Context) error {
	today := j.now().In(j.loc)
	if !IsLastDayOfMonth(today) {
		return nil
	}
	slog.Info("Cron: sending month-end payslips", "date", today.Format("2006-01-02"))
	return j.mailer.SendMonthEndPayslips(ctx)
}
