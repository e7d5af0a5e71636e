// Package report renders payroll workbooks.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Line struct {
	Name   string
	Amount decimal.Decimal
}

// Payslip is the data of a single payslip workbook.
type Payslip struct {
	ID              string
	EmployeeName    string
	Email           string
	CompanyName     string
	Month           int
	Year            int
	Status          string
	GeneratedAt     time.Time
	PayableDays     int
	WorkedDays      int
	LeaveDays       int
	AbsentDays      int
	Earnings        []Line
	Deductions      []Line
	Gross           decimal.Decimal
	TotalDeductions decimal.Decimal
	Net             decimal.Decimal
}

type MonthRow struct {
	Month       int
	Gross       decimal.Decimal
	Net         decimal.Decimal
	PayableDays int
	WorkedDays  int
	LeaveDays   int
}

// YearlySalary is a per-employee summary of one calendar year.
type YearlySalary struct {
	EmployeeName string
	Email        string
	CompanyName  string
	Year         int
	Months       []MonthRow
}

func (y YearlySalary) Totals() (gross, net decimal.Decimal) {
	for _, m := range y.Months {
		gross = gross.Add(m.Gross)
		net = net.Add(m.Net)
	}
	return gross, net
}

// PayslipFileName is the attachment name of a payslip workbook.
func PayslipFileName(p Payslip) string {
	return fmt.Sprintf("payslip_%04d-%02d_%s.xlsx", p.Year, p.Month, p.ID)
}

func YearlyFileName(employeeID string, year int) string {
	return fmt.Sprintf("salary_%s_%d.xlsx", employeeID, year)
}

type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
	bold  int
	money int
	err   error
}

func newSheet(name string) (*sheetWriter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", name); err != nil {
		f.Close()
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	format := "#,##0.00"
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetColWidth(name, "A", "A", 28); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetColWidth(name, "B", "F", 16); err != nil {
		f.Close()
		return nil, err
	}
	return &sheetWriter{f: f, sheet: name, row: 1, bold: bold, money: money}, nil
}

// put writes values across columns of the current row and advances.
func (w *sheetWriter) put(style int, values ...any) {
	if w.err != nil {
		return
	}
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, w.row)
		if err != nil {
			w.err = err
			return
		}
		if d, ok := v.(decimal.Decimal); ok {
			v = d.Round(2).InexactFloat64()
			if err := w.f.SetCellStyle(w.sheet, cell, cell, w.money); err != nil {
				w.err = err
				return
			}
		}
		if err := w.f.SetCellValue(w.sheet, cell, v); err != nil {
			w.err = err
			return
		}
		if style != 0 {
			if err := w.f.SetCellStyle(w.sheet, cell, cell, style); err != nil {
				w.err = err
				return
			}
		}
	}
	w.row++
}

func (w *sheetWriter) blank() { w.row++ }

func (w *sheetWriter) bytes() ([]byte, error) {
	defer w.f.Close()
	if w.err != nil {
		return nil, w.err
	}
	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

// PayslipWorkbook renders one payslip.
func PayslipWorkbook(p Payslip) ([]byte, error) {
	w, err := newSheet("Payslip")
	if err != nil {
		return nil, fmt.Errorf("create workbook: %w", err)
	}

	w.put(w.bold, "Payslip")
	w.put(0, "Employee", p.EmployeeName)
	w.put(0, "Email", p.Email)
	w.put(0, "Company", p.CompanyName)
	w.put(0, "Period", fmt.Sprintf("%02d/%d", p.Month, p.Year))
	w.put(0, "Status", p.Status)
	w.put(0, "Generated", p.GeneratedAt.UTC().Format("2006-01-02"))
	w.blank()
	w.put(0, "Payable Days", p.PayableDays)
	w.put(0, "Worked Days", p.WorkedDays)
	w.put(0, "Leave Days", p.LeaveDays)
	w.put(0, "Absent Days", p.AbsentDays)
	w.blank()
	w.put(w.bold, "Earnings", "Amount")
	for _, l := range p.Earnings {
		w.put(0, l.Name, l.Amount)
	}
	w.put(w.bold, "Gross Wage", p.Gross)
	w.blank()
	w.put(w.bold, "Deductions", "Amount")
	for _, l := range p.Deductions {
		w.put(0, l.Name, l.Amount)
	}
	w.put(w.bold, "Total Deductions", p.TotalDeductions)
	w.blank()
	w.put(w.bold, "Net Wage", p.Net)

	out, err := w.bytes()
	if err != nil {
		return nil, fmt.Errorf("render payslip workbook: %w", err)
	}
	return out, nil
}

// YearlySalaryWorkbook renders the monthly gross/net breakdown of one year.
func YearlySalaryWorkbook(y YearlySalary) ([]byte, error) {
	w, err := newSheet(fmt.Sprintf("Salary %d", y.Year))
	if err != nil {
		return nil, fmt.Errorf("create workbook: %w", err)
	}

	gross, net := y.Totals()
	w.put(w.bold, fmt.Sprintf("Yearly Salary Report - %d", y.Year))
	w.put(0, "Employee", y.EmployeeName)
	w.put(0, "Email", y.Email)
	w.put(0, "Company", y.CompanyName)
	w.put(0, "Total Gross", gross)
	w.put(0, "Total Net", net)
	w.blank()
	w.put(w.bold, "Month", "Gross", "Net", "Payable Days", "Worked Days", "Leave Days")
	for _, m := range y.Months {
		w.put(0, time.Month(m.Month).String(), m.Gross, m.Net, m.PayableDays, m.WorkedDays, m.LeaveDays)
	}

	out, err := w.bytes()
	if err != nil {
		return nil, fmt.Errorf("render salary workbook: %w", err)
	}
	return out, nil
}
