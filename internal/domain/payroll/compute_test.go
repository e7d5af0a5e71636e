package payroll

import (
	"testing"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/salary"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestExpectedWorkingDays(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month int
		wdpw  int
		want  int
	}{
		{"march 2025 five day week", 2025, 3, 5, 21},
		{"march 2025 six day week", 2025, 3, 6, 26},
		{"march 2025 seven day week", 2025, 3, 7, 31},
		{"february 2025", 2025, 2, 5, 20},
		{"unset falls back to five", 2025, 3, 0, 21},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpectedWorkingDays(tt.year, tt.month, tt.wdpw))
		})
	}
}

func TestAbsentDays(t *testing.T) {
	assert.Equal(t, 3, AbsentDays(21, 16, 2))
	assert.Equal(t, 0, AbsentDays(21, 20, 5))
}

func fullStructure() (salary.Structure, []salary.Component) {
	s := salary.Structure{
		MonthlyWage:             decimal.NewFromInt(42000),
		WorkingDaysPerWeek:      5,
		PFEmployeeRate:          dec("12"),
		PFEmployerRate:          dec("13"),
		ProfessionalTaxOverride: dec("200"),
	}
	components := []salary.Component{
		{Name: "HRA", ComputationType: salary.ComputationPercentage, Value: decimal.NewFromInt(40)},
		{Name: "Loan", ComputationType: salary.ComputationFixed, Value: decimal.NewFromInt(500), IsDeduction: true},
	}
	return s, components
}

func TestComputePayslip_FullMonth(t *testing.T) {
	s, components := fullStructure()

	c := ComputePayslip(s, components, 18, 3, 2025, 3)

	assert.Equal(t, 21, c.ExpectedDays)
	assert.Equal(t, 21, c.PayableDays)
	assert.Equal(t, "42000.00", c.Basic.StringFixed(2))
	assert.Equal(t, "58800.00", c.Gross.StringFixed(2))
	assert.Equal(t, "5740.00", c.TotalDeductions.StringFixed(2))
	assert.Equal(t, "53060.00", c.Net.StringFixed(2))
	assert.Equal(t, "64260.00", c.EmployerCost.StringFixed(2))

	require.Len(t, c.Earnings, 2)
	assert.Equal(t, ComponentMonthlyWage, c.Earnings[0].Name)
	assert.Equal(t, "16800.00", c.Earnings[1].Amount.StringFixed(2))

	var names []string
	for _, d := range c.Deductions {
		assert.True(t, d.IsDeduction)
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"Loan", ComponentPFEmployee, ComponentProfessionalTax}, names)
	assert.Len(t, c.Components(), 5)
}

func TestComputePayslip_Prorated(t *testing.T) {
	s, components := fullStructure()

	c := ComputePayslip(s, components, 10, 0, 2025, 3)

	assert.Equal(t, 10, c.PayableDays)
	assert.Equal(t, "20000.00", c.Basic.StringFixed(2))
	assert.Equal(t, "8000.00", c.Earnings[1].Amount.StringFixed(2))
	assert.True(t, c.Net.Equal(c.Gross.Sub(c.TotalDeductions)))
}

func TestComputePayslip_PayableCappedAtExpected(t *testing.T) {
	s := salary.Structure{MonthlyWage: decimal.NewFromInt(30000)}

	c := ComputePayslip(s, nil, 25, 4, 2025, 3)

	assert.Equal(t, 21, c.PayableDays)
	assert.Equal(t, "30000.00", c.Basic.StringFixed(2))
	assert.Empty(t, c.Deductions)
	assert.True(t, c.EmployerCost.Equal(c.Gross))
}

func TestComputePayslip_NoAttendance(t *testing.T) {
	s, _ := fullStructure()

	c := ComputePayslip(s, nil, 0, 0, 2025, 3)

	assert.True(t, c.Basic.IsZero())
	// Professional tax is a flat override and still applies.
	assert.Equal(t, "-200.00", c.Net.StringFixed(2))
}

func TestNewPayslipView(t *testing.T) {
	p := Payslip{
		ID:              "ps-1",
		EmployeeID:      "emp-1",
		FirstName:       "Ada",
		LastName:        "Lovelace",
		PeriodMonth:     3,
		PeriodYear:      2025,
		BasicWage:       decimal.NewFromInt(42000),
		GrossWage:       decimal.NewFromInt(58800),
		TotalDeductions: decimal.NewFromInt(5740),
		NetWage:         decimal.NewFromInt(53060),
		Status:          PayslipValidated,
	}

	v := NewPayslipView(p)

	assert.Equal(t, "Ada Lovelace", v.EmployeeName)
	assert.Equal(t, "March 2025", v.Month)
	assert.Equal(t, "16800", v.Allowances.String())
	assert.True(t, v.NetPay.Equal(v.BasicSalary.Add(v.Allowances).Sub(v.Deductions)))
	assert.Equal(t, "Paid", v.Status)

	p.Status = PayslipGenerated
	assert.Equal(t, "Pending", NewPayslipView(p).Status)
}

func TestNewPayslipResponse_AbsentDays(t *testing.T) {
	six := 6
	p := Payslip{PeriodYear: 2025, PeriodMonth: 3, TotalWorkedDays: 20, TotalLeaves: 2, WorkingDaysPerWeek: &six}

	r := NewPayslipResponse(p)

	assert.Equal(t, 26, r.ExpectedWorkingDays)
	assert.Equal(t, 4, r.AbsentDays)
}

func TestNewPayslipDetailResponse(t *testing.T) {
	d := NewPayslipDetailResponse(Payslip{PeriodYear: 2025, PeriodMonth: 1}, []Component{
		{Name: ComponentMonthlyWage, Amount: decimal.NewFromInt(1000)},
		{Name: ComponentPFEmployee, Amount: decimal.NewFromInt(120), IsDeduction: true},
	})

	assert.Len(t, d.Components, 2)
	assert.Len(t, d.Summary.Earnings, 1)
	assert.Len(t, d.Summary.Deductions, 1)
}

func TestCreatePayrunRequestValidate(t *testing.T) {
	req := CreatePayrunRequest{PeriodMonth: 13, PeriodYear: 25}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "period_month")

	req = CreatePayrunRequest{PeriodMonth: 3, PeriodYear: 2025}
	assert.NoError(t, req.Validate())
}
