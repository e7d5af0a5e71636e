package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/attendance"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/database"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

const attendanceColumns = `
	a.id, a.employee_id, a.date, a.check_in, a.check_out,
	a.break_hours, a.work_hours, a.extra_hours, a.status, a.created_at
`

func scanAttendance(row interface{ Scan(dest ...any) error }, extra ...any) (attendance.Attendance, error) {
	var a attendance.Attendance
	dest := []any{
		&a.ID, &a.EmployeeID, &a.Date, &a.CheckIn, &a.CheckOut,
		&a.BreakHours, &a.WorkHours, &a.ExtraHours, &a.Status, &a.CreatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return a, err
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + attendanceColumns + ` FROM attendance a WHERE a.employee_id = $1 AND a.date = $2::date`
	return scanAttendance(q.QueryRow(ctx, query, employeeID, date))
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Create(ctx context.Context, record attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO attendance AS a (employee_id, date, check_in, check_out, break_hours, work_hours, extra_hours, status)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8)
		RETURNING ` + attendanceColumns
	created, err := scanAttendance(q.QueryRow(ctx, query,
		record.EmployeeID, record.Date, record.CheckIn, record.CheckOut,
		record.BreakHours, record.WorkHours, record.ExtraHours, record.Status,
	))
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}
	return created, nil
}

// MarkCheckIn implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) MarkCheckIn(ctx context.Context, id string, at time.Time) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE attendance AS a
		SET check_in = $1, status = 'present'
		WHERE a.id = $2
		RETURNING ` + attendanceColumns
	return scanAttendance(q.QueryRow(ctx, query, at, id))
}

// MarkCheckOut implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) MarkCheckOut(ctx context.Context, id string, at time.Time, breakHours, workHours, extraHours float64) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE attendance AS a
		SET check_out = $1, break_hours = $2, work_hours = $3, extra_hours = $4
		WHERE a.id = $5
		RETURNING ` + attendanceColumns
	return scanAttendance(q.QueryRow(ctx, query, at, breakHours, workHours, extraHours, id))
}

// ListByEmployeeRange implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance a
		WHERE a.employee_id = $1 AND a.date BETWEEN $2::date AND $3::date
		ORDER BY a.date
	`
	return r.list(ctx, query, employeeID, from, to)
}

// ListByCompanyDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListByCompanyDate(ctx context.Context, companyID string, date time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT ` + attendanceColumns + `, e.first_name || ' ' || e.last_name
		FROM attendance a
		JOIN employees e ON e.id = a.employee_id
		WHERE e.company_id = $1 AND a.date = $2::date
		ORDER BY e.first_name, e.last_name
	`
	rows, err := q.Query(ctx, query, companyID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		var name string
		a, err := scanAttendance(rows, &name)
		if err != nil {
			return nil, err
		}
		a.EmployeeName = &name
		records = append(records, a)
	}
	return records, rows.Err()
}

func (r *attendanceRepositoryImpl) list(ctx context.Context, query string, args ...any) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, a)
	}
	return records, rows.Err()
}

// ListRoster implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListRoster(ctx context.Context, companyID string, date time.Time, limit, offset int) ([]attendance.RosterEntry, int64, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM employees WHERE company_id = $1`, companyID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	query := `
		SELECT e.id, e.first_name, e.last_name,
			   a.id, a.check_in, a.check_out, a.work_hours, a.extra_hours, a.status
		FROM employees e
		LEFT JOIN attendance a ON a.employee_id = e.id AND a.date = $2::date
		WHERE e.company_id = $1
		ORDER BY e.first_name, e.last_name
		LIMIT $3 OFFSET $4
	`
	rows, err := q.Query(ctx, query, companyID, date, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []attendance.RosterEntry
	for rows.Next() {
		var e attendance.RosterEntry
		if err := rows.Scan(
			&e.EmployeeID, &e.FirstName, &e.LastName,
			&e.AttendanceID, &e.CheckIn, &e.CheckOut, &e.WorkHours, &e.ExtraHours, &e.Status,
		); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

// MarkLeaveRange implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) MarkLeaveRange(ctx context.Context, employeeID string, from, to time.Time) error {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO attendance (employee_id, date, status, break_hours, work_hours, extra_hours)
		SELECT $1, d::date, 'leave', 0, 0, 0
		FROM generate_series($2::date, $3::date, INTERVAL '1 day') AS d
		ON CONFLICT (employee_id, date) DO UPDATE SET
			status = 'leave',
			check_in = NULL,
			check_out = NULL,
			break_hours = 0,
			work_hours = 0,
			extra_hours = 0
		WHERE attendance.check_in IS NULL
	`
	_, err := q.Exec(ctx, query, employeeID, from, to)
	return err
}

// InsertAbsents implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) InsertAbsents(ctx context.Context, companyID string, date time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO attendance (employee_id, date, status, break_hours, work_hours, extra_hours)
		SELECT e.id, $2::date, 'absent', 0, 0, 0
		FROM employees e
		WHERE e.company_id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM attendance a WHERE a.employee_id = e.id AND a.date = $2::date
		  )
		  AND NOT EXISTS (
			SELECT 1 FROM leave_requests lr
			WHERE lr.employee_id = e.id AND lr.status = 'approved'
			  AND $2::date BETWEEN lr.start_date AND lr.end_date
		  )
		ON CONFLICT (employee_id, date) DO NOTHING
	`
	tag, err := q.Exec(ctx, query, companyID, date)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountStatuses implements attendance.AttendanceRepository. Weekend rows are not counted.
func (r *attendanceRepositoryImpl) CountStatuses(ctx context.Context, employeeID string, from, to time.Time) (int, int, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'present'),
			COUNT(*) FILTER (WHERE status = 'leave')
		FROM attendance
		WHERE employee_id = $1
		  AND date BETWEEN $2::date AND $3::date
		  AND EXTRACT(ISODOW FROM date) < 6
	`
	var present, leave int
	if err := q.QueryRow(ctx, query, employeeID, from, to).Scan(&present, &leave); err != nil {
		return 0, 0, err
	}
	return present, leave, nil
}
