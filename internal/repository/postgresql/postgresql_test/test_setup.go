package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/pkg/database"
)

// tables lists every table in truncation order.
var tables = []string{
	"face_checkin_logs",
	"face_enrollments",
	"payslip_components",
	"payslips",
	"payruns",
	"salary_components",
	"salary_structure",
	"leave_requests",
	"leave_allocations",
	"leave_types",
	"attendance",
	"access_rights",
	"bank_details",
	"employee_certifications",
	"employee_skills",
	"password_resets",
	"refresh_tokens",
	"joining_counters",
	"employees",
	"users",
	"companies",
}

// newTestDB connects to TEST_DATABASE_URL, applies the schema and empties every
// table. The test is skipped when no database is configured.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewPostgreSQLDB(ctx, dsn)
	if err != nil {
		t.Fatalf("connect test database: %v", err)
	}
	t.Cleanup(db.Close)

	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	if _, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", "))); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	return db
}

type fixture struct {
	CompanyID  string
	UserID     string
	EmployeeID string
}

// seed inserts one company with one user and its employee.
func seed(t *testing.T, db *database.DB, loginID, email string) fixture {
	t.Helper()
	ctx := context.Background()

	var f fixture
	if err := db.QueryRow(ctx, `INSERT INTO companies (name) VALUES ('Odoo India') RETURNING id`).Scan(&f.CompanyID); err != nil {
		t.Fatalf("insert company: %v", err)
	}
	if err := db.QueryRow(ctx, `
		INSERT INTO users (company_id, login_id, password_hash, role, is_first_login)
		VALUES ($1, $2, 'hash', 'employee', FALSE)
		RETURNING id
	`, f.CompanyID, loginID).Scan(&f.UserID); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if err := db.QueryRow(ctx, `
		INSERT INTO employees (user_id, company_id, first_name, last_name, email, date_of_joining)
		VALUES ($1, $2, 'John', 'Doe', $3, '2025-01-06')
		RETURNING id
	`, f.UserID, f.CompanyID, email).Scan(&f.EmployeeID); err != nil {
		t.Fatalf("insert employee: %v", err)
	}
	return f
}
