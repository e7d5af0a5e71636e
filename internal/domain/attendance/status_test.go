package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func strp(s string) *string { return &s }

func TestDeriveStatus(t *testing.T) {
	today := time.Date(2025, time.March, 12, 15, 4, 0, 0, time.UTC)

	leaves := []LeaveSpan{
		{EmployeeID: "e-leave", Start: day("2025-03-10"), End: day("2025-03-14"), Approved: true},
		{EmployeeID: "e-pending", Start: day("2025-03-10"), End: day("2025-03-14"), Approved: false},
		{EmployeeID: "e-past", Start: day("2025-03-01"), End: day("2025-03-11"), Approved: true},
	}
	records := []DayRecord{
		{EmployeeID: "e-leave", Date: day("2025-03-12"), CheckIn: strp("09:00"), CheckOut: strp("17:00")},
		{EmployeeID: "e-out", Date: day("2025-03-12"), CheckIn: strp("09:00"), CheckOut: strp("17:30")},
		{EmployeeID: "e-in", Date: day("2025-03-12"), CheckIn: strp("08:45")},
		{EmployeeID: "e-yesterday", Date: day("2025-03-11"), CheckIn: strp("09:00"), CheckOut: strp("17:00")},
		{EmployeeID: "e-pending", Date: day("2025-03-12"), CheckIn: strp("09:10")},
	}

	tests := []struct {
		employee string
		want     BoardStatus
	}{
		{"e-leave", StatusOnLeave},
		{"e-out", StatusCheckedOut},
		{"e-in", StatusCheckedIn},
		{"e-yesterday", StatusNotCheckedIn},
		{"e-pending", StatusCheckedIn},
		{"e-past", StatusNotCheckedIn},
		{"e-unknown", StatusNotCheckedIn},
	}

	for _, tt := range tests {
		t.Run(tt.employee, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(today, leaves, records, tt.employee))
		})
	}
}

func TestDeriveStatus_LeaveBoundsInclusive(t *testing.T) {
	leaves := []LeaveSpan{{EmployeeID: "e1", Start: day("2025-01-01"), End: day("2025-01-05"), Approved: true}}

	assert.Equal(t, StatusOnLeave, DeriveStatus(day("2025-01-01"), leaves, nil, "e1"))
	assert.Equal(t, StatusOnLeave, DeriveStatus(day("2025-01-05").Add(23*time.Hour), leaves, nil, "e1"))
	assert.Equal(t, StatusNotCheckedIn, DeriveStatus(day("2025-01-06"), leaves, nil, "e1"))
}

func TestComputeHoursWorked(t *testing.T) {
	got, err := ComputeHoursWorked("09:00", strp("17:30"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "8h 30m", *got)

	got, err = ComputeHoursWorked("09:00", nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ComputeHoursWorked("09:15", strp("09:15"))
	require.NoError(t, err)
	assert.Equal(t, "0h 0m", *got)

	_, err = ComputeHoursWorked("22:00", strp("06:00"))
	assert.ErrorIs(t, err, ErrCheckOutBeforeCheckIn)

	_, err = ComputeHoursWorked("9am", strp("17:00"))
	assert.ErrorIs(t, err, ErrInvalidTimeOfDay)
}

func TestWorkAndExtraHours(t *testing.T) {
	in := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, 8.5, WorkHours(in, in.Add(9*time.Hour+30*time.Minute), 1))
	assert.Equal(t, 0.0, WorkHours(in, in.Add(30*time.Minute), 1))
	assert.Equal(t, 0.33, WorkHours(in, in.Add(20*time.Minute), 0))

	assert.Equal(t, 0.5, ExtraHours(8.5, 8))
	assert.Equal(t, 0.0, ExtraHours(7, 8))
}

func TestIsWeekend(t *testing.T) {
	assert.True(t, IsWeekend(day("2025-03-15")))
	assert.True(t, IsWeekend(day("2025-03-16")))
	assert.False(t, IsWeekend(day("2025-03-17")))
}
