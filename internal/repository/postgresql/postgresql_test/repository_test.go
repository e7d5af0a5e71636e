package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/attendance"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/auth"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/employee"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/leave"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/payroll"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/user"
	"github.com/hrx-hr/hrx-backend-go/internal/repository/postgresql"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestUserRepository_LookupByLoginIDOrEmail(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db, "OIJODO20250001", "John.Doe@example.com")
	repo := postgresql.NewUserRepository(db)
	ctx := context.Background()

	byLogin, err := repo.GetByLoginIDOrEmail(ctx, "OIJODO20250001")
	require.NoError(t, err)
	assert.Equal(t, f.UserID, byLogin.ID)
	require.NotNil(t, byLogin.EmployeeID)
	assert.Equal(t, f.EmployeeID, *byLogin.EmployeeID)

	byEmail, err := repo.GetByLoginIDOrEmail(ctx, "john.doe@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, f.UserID, byEmail.ID)

	_, err = repo.GetByLoginIDOrEmail(ctx, "nobody")
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	_, err = repo.Create(ctx, user.User{CompanyID: f.CompanyID, LoginID: "OIJODO20250001", PasswordHash: "x", Role: user.RoleHR})
	assert.ErrorIs(t, err, user.ErrLoginIDExists)
}

func TestTokenRepository_RefreshAndReset(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db, "OIJODO20250001", "john@example.com")
	repo := postgresql.NewTokenRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateRefreshToken(ctx, f.UserID, "refresh-1", time.Now().Add(time.Hour).Unix(), auth.SessionTrackingRequest{UserAgent: "test"}))
	revoked, err := repo.IsRefreshTokenRevoked(ctx, "refresh-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, repo.RevokeRefreshToken(ctx, "refresh-1"))
	revoked, err = repo.IsRefreshTokenRevoked(ctx, "refresh-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, repo.CreatePasswordReset(ctx, f.UserID, "reset-1", time.Now().Add(30*time.Minute)))
	pr, err := repo.GetPasswordReset(ctx, "reset-1")
	require.NoError(t, err)
	assert.Equal(t, f.UserID, pr.UserID)
	assert.Nil(t, pr.UsedAt)

	require.NoError(t, repo.MarkPasswordResetUsed(ctx, pr.ID))
	pr, err = repo.GetPasswordReset(ctx, "reset-1")
	require.NoError(t, err)
	assert.NotNil(t, pr.UsedAt)

	var stored string
	require.NoError(t, db.QueryRow(ctx, `SELECT token_hash FROM password_resets WHERE id = $1`, pr.ID).Scan(&stored))
	assert.NotEqual(t, "reset-1", stored)
}

func TestAttendanceRepository_LeaveRangeKeepsCheckedInDays(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db, "OIJODO20250001", "john@example.com")
	repo := postgresql.NewAttendanceRepository(db)
	ctx := context.Background()

	checkIn := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)
	_, err := repo.Create(ctx, attendance.Attendance{EmployeeID: f.EmployeeID, Date: day("2025-03-04"), CheckIn: &checkIn, Status: attendance.RecordPresent})
	require.NoError(t, err)
	_, err = repo.Create(ctx, attendance.Attendance{EmployeeID: f.EmployeeID, Date: day("2025-03-05"), Status: attendance.RecordAbsent})
	require.NoError(t, err)

	require.NoError(t, repo.MarkLeaveRange(ctx, f.EmployeeID, day("2025-03-03"), day("2025-03-05")))

	rows, err := repo.ListByEmployeeRange(ctx, f.EmployeeID, day("2025-03-01"), day("2025-03-31"))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, attendance.RecordLeave, rows[0].Status)
	assert.Equal(t, attendance.RecordPresent, rows[1].Status)
	assert.Equal(t, attendance.RecordLeave, rows[2].Status)

	present, leaves, err := repo.CountStatuses(ctx, f.EmployeeID, day("2025-03-01"), day("2025-03-31"))
	require.NoError(t, err)
	assert.Equal(t, 1, present)
	assert.Equal(t, 2, leaves)
}

func TestAttendanceRepository_InsertAbsents(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db, "OIJODO20250001", "john@example.com")
	repo := postgresql.NewAttendanceRepository(db)
	ctx := context.Background()

	n, err := repo.InsertAbsents(ctx, f.CompanyID, day("2025-03-05"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.InsertAbsents(ctx, f.CompanyID, day("2025-03-05"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLeaveRepositories_ApproveFlow(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db, "OIJODO20250001", "john@example.com")
	types := postgresql.NewLeaveTypeRepository(db)
	allocations := postgresql.NewAllocationRepository(db)
	requests := postgresql.NewRequestRepository(db)
	ctx := context.Background()

	paid, err := types.Create(ctx, leave.Type{Name: "Paid Time Off", IsPaid: true})
	require.NoError(t, err)
	_, err = types.Create(ctx, leave.Type{Name: "Paid Time Off"})
	assert.ErrorIs(t, err, leave.ErrLeaveTypeExists)

	_, err = allocations.Create(ctx, leave.Allocation{EmployeeID: f.EmployeeID, LeaveTypeID: paid.ID, AllocatedDays: decimal.NewFromInt(24), UsedDays: decimal.Zero})
	require.NoError(t, err)

	req, err := requests.Create(ctx, leave.Request{EmployeeID: f.EmployeeID, LeaveTypeID: paid.ID, StartDate: day("2025-01-01"), EndDate: day("2025-01-05"), Days: 5})
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, req.Status)

	locked, err := requests.GetByIDForUpdate(ctx, req.ID)
	require.NoError(t, err)
	require.NotNil(t, locked.CompanyID)
	assert.Equal(t, f.CompanyID, *locked.CompanyID)

	require.NoError(t, requests.UpdateStatus(ctx, req.ID, leave.StatusApproved, f.UserID))
	found, err := allocations.AddUsedDays(ctx, f.EmployeeID, paid.ID, 5)
	require.NoError(t, err)
	assert.True(t, found)

	mine, err := allocations.ListByEmployee(ctx, f.EmployeeID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.True(t, decimal.NewFromInt(5).Equal(mine[0].UsedDays))

	onLeave, err := requests.HasApprovedLeave(ctx, f.EmployeeID, day("2025-01-03"))
	require.NoError(t, err)
	assert.True(t, onLeave)

	list, total, err := requests.List(ctx, f.CompanyID, leave.RequestFilter{Status: "approved"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)
}

func TestPayrollRepository_StatusAndMailingClaim(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db, "OIJODO20250001", "john@example.com")
	repo := postgresql.NewPayrollRepository(db)
	tx := postgresql.NewTxManager(db)
	ctx := context.Background()

	var run payroll.Payrun
	var kept, cancelled payroll.Payslip
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		run, err = repo.CreatePayrun(ctx, payroll.Payrun{CompanyID: f.CompanyID, PeriodMonth: 3, PeriodYear: 2025, Status: payroll.PayrunCompleted})
		if err != nil {
			return err
		}
		slip := payroll.Payslip{
			PayrunID: run.ID, EmployeeID: f.EmployeeID, PayableDays: 21,
			BasicWage: decimal.NewFromInt(25000), GrossWage: decimal.NewFromInt(50000),
			TotalDeductions: decimal.NewFromInt(3200), NetWage: decimal.NewFromInt(46800),
			Status: payroll.PayslipGenerated,
		}
		if kept, err = repo.CreatePayslip(ctx, slip, []payroll.Component{{Name: "Basic", Amount: decimal.NewFromInt(25000)}}); err != nil {
			return err
		}
		if cancelled, err = repo.CreatePayslip(ctx, slip, nil); err != nil {
			return err
		}
		return repo.SetPayslipStatus(ctx, cancelled.ID, payroll.PayslipCancelled)
	})
	require.NoError(t, err)

	require.NoError(t, repo.SetPayrunPayslipsStatus(ctx, run.ID, payroll.PayslipValidated))
	got, err := repo.GetPayslip(ctx, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.PayslipValidated, got.Status)
	assert.Equal(t, 3, got.PeriodMonth)
	got, err = repo.GetPayslip(ctx, cancelled.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.PayslipCancelled, got.Status)

	components, err := repo.ListComponents(ctx, kept.ID)
	require.NoError(t, err)
	require.Len(t, components, 1)
	assert.Equal(t, "Basic", components[0].Name)

	first, err := repo.ClaimPayslipMailing(ctx, run.ID)
	require.NoError(t, err)
	assert.True(t, first)
	second, err := repo.ClaimPayslipMailing(ctx, run.ID)
	require.NoError(t, err)
	assert.False(t, second)
}

func TestTxManager_RollsBack(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db, "OIJODO20250001", "john@example.com")
	repo := postgresql.NewPayrollRepository(db)
	tx := postgresql.NewTxManager(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := repo.CreatePayrun(ctx, payroll.Payrun{CompanyID: f.CompanyID, PeriodMonth: 1, PeriodYear: 2025, Status: payroll.PayrunCompleted}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, total, err := repo.ListPayruns(ctx, f.CompanyID, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestProfileRepository_SkillsAndCertifications(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db, "OIJODO20250001", "john@example.com")
	other := seed(t, db, "OIANLE20250002", "ana@example.com")
	repo := postgresql.NewProfileRepository(db)
	ctx := context.Background()

	goSkill, err := repo.CreateSkill(ctx, f.EmployeeID, "Go")
	require.NoError(t, err)
	_, err = repo.CreateSkill(ctx, f.EmployeeID, "GO")
	assert.ErrorIs(t, err, employee.ErrSkillExists)

	exists, err := repo.SkillExists(ctx, f.EmployeeID, "go")
	require.NoError(t, err)
	assert.True(t, exists)

	assert.ErrorIs(t, repo.DeleteSkill(ctx, other.EmployeeID, goSkill.ID), employee.ErrSkillNotFound)
	require.NoError(t, repo.DeleteSkill(ctx, f.EmployeeID, goSkill.ID))
	skills, err := repo.ListSkills(ctx, f.EmployeeID)
	require.NoError(t, err)
	assert.Empty(t, skills)

	issued := day("2024-05-01")
	cert, err := repo.CreateCertification(ctx, employee.Certification{EmployeeID: f.EmployeeID, Title: "SAA", IssuedOn: &issued})
	require.NoError(t, err)
	assert.Nil(t, cert.Issuer)

	issuer := "AWS"
	updated, err := repo.UpdateCertification(ctx, f.EmployeeID, cert.ID, map[string]any{employee.CertIssuer: &issuer})
	require.NoError(t, err)
	assert.Equal(t, "SAA", updated.Title)
	assert.Equal(t, &issuer, updated.Issuer)

	_, err = repo.UpdateCertification(ctx, other.EmployeeID, cert.ID, map[string]any{employee.CertTitle: "x"})
	assert.ErrorIs(t, err, employee.ErrCertificationNotFound)
	_, err = repo.UpdateCertification(ctx, f.EmployeeID, cert.ID, map[string]any{"employee_id": other.EmployeeID})
	assert.Error(t, err)

	require.NoError(t, repo.DeleteCertification(ctx, f.EmployeeID, cert.ID))
	assert.ErrorIs(t, repo.DeleteCertification(ctx, f.EmployeeID, cert.ID), employee.ErrCertificationNotFound)
}

func TestProfileRepository_PersonalInfoAndBankUpsert(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db, "OIJODO20250001", "john@example.com")
	repo := postgresql.NewProfileRepository(db)
	ctx := context.Background()

	dob := day("1994-07-12")
	nationality := "Indian"
	require.NoError(t, repo.UpdatePersonalInfo(ctx, f.EmployeeID, map[string]any{
		employee.FieldDateOfBirth: &dob,
		employee.FieldNationality: &nationality,
	}))
	p, err := repo.GetPersonalInfo(ctx, f.EmployeeID)
	require.NoError(t, err)
	require.NotNil(t, p.DateOfBirth)
	assert.True(t, dob.Equal(*p.DateOfBirth))
	assert.Equal(t, &nationality, p.Nationality)

	b, err := repo.GetBankDetails(ctx, f.EmployeeID)
	require.NoError(t, err)
	assert.Nil(t, b)

	account, bankName, pan := "0012345678", "HDFC", "ABCDE1234F"
	require.NoError(t, repo.UpsertBankDetails(ctx, f.EmployeeID, map[string]*string{"account_number": &account, "bank_name": &bankName}))
	require.NoError(t, repo.UpsertBankDetails(ctx, f.EmployeeID, map[string]*string{"pan": &pan, "bank_name": nil}))

	b, err = repo.GetBankDetails(ctx, f.EmployeeID)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, &account, b.AccountNumber)
	assert.Equal(t, &pan, b.PAN)
	assert.Nil(t, b.BankName)
}
