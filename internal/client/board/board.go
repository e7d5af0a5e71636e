// Package board turns API payloads into the rows the attendance and leave
// views show.
package board

import (
	"fmt"
	"sort"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/attendance"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/leave"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/payroll"
)

const placeholder = "-"

var statusOrder = map[attendance.BoardStatus]int{
	attendance.StatusCheckedIn:    0,
	attendance.StatusCheckedOut:   1,
	attendance.StatusOnLeave:      2,
	attendance.StatusNotCheckedIn: 3,
}

var statusLabels = map[attendance.BoardStatus]string{
	attendance.StatusCheckedIn:    "Checked In",
	attendance.StatusCheckedOut:   "Checked Out",
	attendance.StatusOnLeave:      "On Leave",
	attendance.StatusNotCheckedIn: "Not Checked In",
}

func StatusLabel(s attendance.BoardStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return placeholder
	}
	return *s
}

type Table struct {
	Headers []string
	Rows    [][]string
}

// Attendance orders entries by status (working first) and then by name.
func Attendance(b attendance.BoardResponse) Table {
	entries := append([]attendance.BoardEntry(nil), b.Entries...)
	sort.SliceStable(entries, func(i, j int) bool {
		oi, oj := statusOrder[entries[i].Status], statusOrder[entries[j].Status]
		if oi != oj {
			return oi < oj
		}
		return entries[i].EmployeeName < entries[j].EmployeeName
	})

	t := Table{Headers: []string{"Employee", "Status", "Check In", "Check Out", "Hours"}}
	for _, e := range entries {
		t.Rows = append(t.Rows, []string{
			e.EmployeeName,
			StatusLabel(e.Status),
			orDash(e.CheckIn),
			orDash(e.CheckOut),
			orDash(e.Hours),
		})
	}
	return t
}

// Counts renders the per-status totals in display order.
func Counts(b attendance.BoardResponse) string {
	statuses := []attendance.BoardStatus{
		attendance.StatusCheckedIn,
		attendance.StatusCheckedOut,
		attendance.StatusOnLeave,
		attendance.StatusNotCheckedIn,
	}
	out := ""
	for i, s := range statuses {
		if i > 0 {
			out += "  "
		}
		out += fmt.Sprintf("%s: %d", StatusLabel(s), b.Counts[s])
	}
	return out
}

// Leave lists pending requests first, then newest start date first.
func Leave(items []leave.RequestResponse) Table {
	reqs := append([]leave.RequestResponse(nil), items...)
	sort.SliceStable(reqs, func(i, j int) bool {
		pi := reqs[i].StatusCode == leave.StatusPending
		pj := reqs[j].StatusCode == leave.StatusPending
		if pi != pj {
			return pi
		}
		return reqs[i].StartDate > reqs[j].StartDate
	})

	t := Table{Headers: []string{"Employee", "Type", "From", "To", "Days", "Status"}}
	for _, r := range reqs {
		t.Rows = append(t.Rows, []string{
			orDash(r.EmployeeName),
			orDash(r.Type),
			r.StartDate,
			r.EndDate,
			fmt.Sprint(r.Days),
			r.Status,
		})
	}
	return t
}

func Payslips(slips []payroll.PayslipView) Table {
	t := Table{Headers: []string{"Month", "Basic", "Allowances", "Deductions", "Net Pay", "Status"}}
	for _, p := range slips {
		t.Rows = append(t.Rows, []string{
			p.Month,
			p.BasicSalary.StringFixed(2),
			p.Allowances.StringFixed(2),
			p.Deductions.StringFixed(2),
			p.NetPay.StringFixed(2),
			p.Status,
		})
	}
	return t
}
