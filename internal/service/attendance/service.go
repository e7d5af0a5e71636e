package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/attendance"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/employee"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/leave"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/salary"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/jwt"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/pagination"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	employee.EmployeeRepository
	leave.RequestRepository
	salary.SalaryRepository
	expectedHours float64
	loc           *time.Location
	now           func() time.Time
}

// NewAttendanceService builds the service. Calendar days and wall-clock times are
// interpreted in loc.
func NewAttendanceService(
	attendanceRepository attendance.AttendanceRepository,
	employeeRepository employee.EmployeeRepository,
	requestRepository leave.RequestRepository,
	salaryRepository salary.SalaryRepository,
	expectedDailyHours float64,
	loc *time.Location,
) attendance.AttendanceService {
	if loc == nil {
		loc = time.Local
	}
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepository,
		EmployeeRepository:   employeeRepository,
		RequestRepository:    requestRepository,
		SalaryRepository:     salaryRepository,
		expectedHours:        expectedDailyHours,
		loc:                  loc,
		now:                  time.Now,
	}
}

func (s *AttendanceServiceImpl) today() time.Time {
	return attendance.DateOnly(s.now().In(s.loc))
}

// day parses YYYY-MM-DD, defaulting to today.
func (s *AttendanceServiceImpl) day(date string) (time.Time, error) {
	if date == "" {
		return s.today(), nil
	}
	d, ok := validator.IsValidDate(date)
	if !ok {
		return time.Time{}, attendance.ErrInvalidDate
	}
	return attendance.DateOnly(d), nil
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

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, date string) (attendance.CheckInResponse, error) {
	employeeID, err := callerEmployee(ctx)
	if err != nil {
		return attendance.CheckInResponse{}, err
	}
	day, err := s.day(date)
	if err != nil {
		return attendance.CheckInResponse{}, err
	}

	record, created, err := s.RecordCheckIn(ctx, employeeID, day)
	if err != nil {
		return attendance.CheckInResponse{}, err
	}
	return attendance.CheckInResponse{Attendance: attendance.NewAttendanceResponse(record), Created: created}, nil
}

// RecordCheckIn implements attendance.AttendanceService. A day that is already
// checked in is returned unchanged.
func (s *AttendanceServiceImpl) RecordCheckIn(ctx context.Context, employeeID string, day time.Time) (attendance.Attendance, bool, error) {
	if attendance.IsWeekend(day) {
		return attendance.Attendance{}, false, attendance.ErrWeekend
	}

	existing, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, day)
	switch {
	case err == nil:
		if existing.Status == attendance.RecordLeave {
			return attendance.Attendance{}, false, attendance.ErrOnLeave
		}
		if existing.CheckIn != nil {
			return existing, false, nil
		}
		updated, err := s.AttendanceRepository.MarkCheckIn(ctx, existing.ID, s.now())
		if err != nil {
			return attendance.Attendance{}, false, fmt.Errorf("failed to record check-in: %w", err)
		}
		return updated, false, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return attendance.Attendance{}, false, fmt.Errorf("failed to get attendance: %w", err)
	}

	onLeave, err := s.RequestRepository.HasApprovedLeave(ctx, employeeID, day)
	if err != nil {
		return attendance.Attendance{}, false, fmt.Errorf("failed to check approved leave: %w", err)
	}
	if onLeave {
		return attendance.Attendance{}, false, attendance.ErrOnLeave
	}

	now := s.now()
	created, err := s.AttendanceRepository.Create(ctx, attendance.Attendance{
		EmployeeID: employeeID,
		Date:       day,
		CheckIn:    &now,
		Status:     attendance.RecordPresent,
	})
	if err != nil {
		return attendance.Attendance{}, false, fmt.Errorf("failed to create attendance: %w", err)
	}
	return created, true, nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, date string) (attendance.AttendanceResponse, error) {
	employeeID, err := callerEmployee(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	day, err := s.day(date)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if attendance.IsWeekend(day) {
		return attendance.AttendanceResponse{}, attendance.ErrWeekend
	}

	record, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, day)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.AttendanceResponse{}, attendance.ErrNoCheckIn
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	if record.Status == attendance.RecordLeave {
		return attendance.AttendanceResponse{}, attendance.ErrOnLeave
	}
	if record.CheckIn == nil {
		return attendance.AttendanceResponse{}, attendance.ErrNoCheckIn
	}
	if record.CheckOut != nil {
		return attendance.NewAttendanceResponse(record), nil
	}

	breakHours := 0.0
	structure, err := s.SalaryRepository.GetStructure(ctx, employeeID)
	switch {
	case err == nil:
		breakHours = structure.BreakHours.InexactFloat64()
	case !errors.Is(err, pgx.ErrNoRows):
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get salary structure: %w", err)
	}

	now := s.now()
	work := attendance.WorkHours(*record.CheckIn, now, breakHours)
	extra := attendance.ExtraHours(work, s.expectedHours)

	updated, err := s.AttendanceRepository.MarkCheckOut(ctx, record.ID, now, breakHours, work, extra)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to record check-out: %w", err)
	}
	return attendance.NewAttendanceResponse(updated), nil
}

// MyAttendance implements attendance.AttendanceService. Multi-day ranges list weekdays
// only, with an absent placeholder where no row exists; a single-day query lists that
// day whatever the weekday. The summary counts weekdays only.
func (s *AttendanceServiceImpl) MyAttendance(ctx context.Context, from, to string) (attendance.MyAttendanceResponse, error) {
	employeeID, err := callerEmployee(ctx)
	if err != nil {
		return attendance.MyAttendanceResponse{}, err
	}
	start, err := s.day(from)
	if err != nil {
		return attendance.MyAttendanceResponse{}, err
	}
	end := start
	if to != "" {
		if end, err = s.day(to); err != nil {
			return attendance.MyAttendanceResponse{}, err
		}
	}
	if end.Before(start) {
		return attendance.MyAttendanceResponse{}, attendance.ErrInvalidDateRange
	}

	records, err := s.AttendanceRepository.ListByEmployeeRange(ctx, employeeID, start, end)
	if err != nil {
		return attendance.MyAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}
	byDate := make(map[time.Time]attendance.Attendance, len(records))
	for _, r := range records {
		byDate[attendance.DateOnly(r.Date)] = r
	}

	singleDay := start.Equal(end)
	resp := attendance.MyAttendanceResponse{
		From: start.Format(validator.DateLayout),
		To:   end.Format(validator.DateLayout),
		Days: []attendance.AttendanceResponse{},
	}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		weekend := attendance.IsWeekend(d)
		if weekend && !singleDay {
			continue
		}
		record, ok := byDate[d]
		if !ok {
			record = attendance.Attendance{EmployeeID: employeeID, Date: d, Status: attendance.RecordAbsent}
		}
		resp.Days = append(resp.Days, attendance.NewAttendanceResponse(record))

		if weekend {
			continue
		}
		resp.Summary.TotalWorkingDays++
		switch record.Status {
		case attendance.RecordPresent:
			resp.Summary.PresentDays++
		case attendance.RecordLeave:
			resp.Summary.LeaveDays++
		case attendance.RecordAbsent:
			resp.Summary.AbsentDays++
		}
	}
	return resp, nil
}

// ListByDate implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListByDate(ctx context.Context, filter attendance.RosterFilter) (attendance.RosterResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return attendance.RosterResponse{}, err
	}
	day, err := s.day(filter.Date)
	if err != nil {
		return attendance.RosterResponse{}, err
	}

	entries, total, err := s.AttendanceRepository.ListRoster(ctx, claims.CompanyID, day, filter.Limit(), filter.Offset())
	if err != nil {
		return attendance.RosterResponse{}, fmt.Errorf("failed to list roster: %w", err)
	}

	items := make([]attendance.RosterItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, attendance.RosterItem{
			EmployeeID:   e.EmployeeID,
			FirstName:    e.FirstName,
			LastName:     e.LastName,
			AttendanceID: e.AttendanceID,
			CheckIn:      e.CheckIn,
			CheckOut:     e.CheckOut,
			WorkHours:    e.WorkHours,
			ExtraHours:   e.ExtraHours,
			Status:       e.Status,
		})
	}
	return attendance.RosterResponse{
		Date:  day.Format(validator.DateLayout),
		Items: items,
		Page:  pagination.NewPage(filter.Params, total),
	}, nil
}

// Board implements attendance.AttendanceService. Employees, attendance rows and approved
// leaves are fetched concurrently and reduced with DeriveStatus.
func (s *AttendanceServiceImpl) Board(ctx context.Context, date string) (attendance.BoardResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return attendance.BoardResponse{}, err
	}
	day, err := s.day(date)
	if err != nil {
		return attendance.BoardResponse{}, err
	}

	var (
		employees []employee.Employee
		records   []attendance.Attendance
		requests  []leave.Request
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		employees, err = s.EmployeeRepository.ListByCompany(gctx, claims.CompanyID)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = s.AttendanceRepository.ListByCompanyDate(gctx, claims.CompanyID, day)
		return err
	})
	g.Go(func() error {
		var err error
		requests, err = s.RequestRepository.ListApprovedCovering(gctx, claims.CompanyID, day)
		return err
	})
	if err := g.Wait(); err != nil {
		return attendance.BoardResponse{}, fmt.Errorf("failed to load attendance board: %w", err)
	}

	spans := make([]attendance.LeaveSpan, 0, len(requests))
	for _, r := range requests {
		spans = append(spans, attendance.LeaveSpan{
			EmployeeID: r.EmployeeID,
			Start:      r.StartDate,
			End:        r.EndDate,
			Approved:   r.Status == leave.StatusApproved,
		})
	}
	dayRecords := make([]attendance.DayRecord, 0, len(records))
	byEmployee := make(map[string]attendance.DayRecord, len(records))
	for _, r := range records {
		dr := attendance.DayRecord{
			EmployeeID: r.EmployeeID,
			Date:       r.Date,
			CheckIn:    attendance.ClockTime(r.CheckIn, s.loc),
			CheckOut:   attendance.ClockTime(r.CheckOut, s.loc),
		}
		dayRecords = append(dayRecords, dr)
		byEmployee[r.EmployeeID] = dr
	}

	resp := attendance.BoardResponse{
		Date:    day.Format(validator.DateLayout),
		Entries: make([]attendance.BoardEntry, 0, len(employees)),
		Counts:  make(map[attendance.BoardStatus]int, 4),
	}
	for _, e := range employees {
		entry := attendance.BoardEntry{
			EmployeeID:   e.ID,
			EmployeeName: e.FullName(),
			Status:       attendance.DeriveStatus(day, spans, dayRecords, e.ID),
		}
		if dr, ok := byEmployee[e.ID]; ok && dr.CheckIn != nil {
			entry.CheckIn, entry.CheckOut = dr.CheckIn, dr.CheckOut
			hours, err := attendance.ComputeHoursWorked(*dr.CheckIn, dr.CheckOut)
			if err != nil {
				slog.Warn("attendance hours not computable", "error", err, "employee_id", e.ID)
			}
			entry.Hours = hours
		}
		resp.Entries = append(resp.Entries, entry)
		resp.Counts[entry.Status]++
	}
	return resp, nil
}

// MarkAbsents implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MarkAbsents(ctx context.Context, date string) (attendance.MarkAbsentsResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return attendance.MarkAbsentsResponse{}, err
	}
	day, err := s.day(date)
	if err != nil {
		return attendance.MarkAbsentsResponse{}, err
	}
	if attendance.IsWeekend(day) {
		return attendance.MarkAbsentsResponse{}, attendance.ErrWeekend
	}

	marked, err := s.MarkAbsentsForCompany(ctx, claims.CompanyID, day)
	if err != nil {
		return attendance.MarkAbsentsResponse{}, err
	}
	return attendance.MarkAbsentsResponse{Date: day.Format(validator.DateLayout), MarkedAbsent: marked}, nil
}

// MarkAbsentsForCompany implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MarkAbsentsForCompany(ctx context.Context, companyID string, day time.Time) (int64, error) {
	marked, err := s.AttendanceRepository.InsertAbsents(ctx, companyID, attendance.DateOnly(day))
	if err != nil {
		return 0, fmt.Errorf("failed to mark absents: %w", err)
	}
	slog.Info("absent rows inserted", "company_id", companyID, "date", day.Format(validator.DateLayout), "count", marked)
	return marked, nil
}
