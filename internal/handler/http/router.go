package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/user"
	"github.com/hrx-hr/hrx-backend-go/internal/handler/http/middleware"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/jwt"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/metrics"
)

type RouterConfig struct {
	Logger      *slog.Logger
	CORSOrigins []string
	// UploadsDir is served under /uploads when files are kept on local disk.
	UploadsDir string

	JWT     jwt.Service
	Access  user.AccessService
	Metrics *metrics.Metrics

	Health     *HealthHandler
	Auth       AuthHandler
	Admin      AdminHandler
	Employee   EmployeeHandler
	Attendance AttendanceHandler
	Leave      LeaveHandler
	Salary     SalaryHandler
	Payroll    PayrollHandler
	Face       FaceHandler
	Cache      CacheHandler
}

func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))
	r.Use(chiMiddleware.RealIP)
	if cfg.Logger != nil {
		r.Use(httplog.RequestLogger(cfg.Logger, &httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.SchemaECS,
		}))
	}
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	if cfg.Health != nil {
		r.Get("/health", cfg.Health.Health)
	}
	if cfg.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	}

	access := func(module user.Module, action user.Action) func(http.Handler) http.Handler {
		return middleware.RequireAccess(cfg.Access, module, action)
	}
	roles := middleware.RequireRoles
	const (
		admin   = user.RoleAdmin
		hr      = user.RoleHR
		payroll = user.RolePayroll
	)

	authenticated := []func(http.Handler) http.Handler{
		middleware.Verifier(cfg.JWT),
		middleware.AuthRequired(cfg.JWT),
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", cfg.Auth.Login)
			r.Post("/public-signup", cfg.Auth.PublicSignup)
			r.Post("/first-reset", cfg.Auth.FirstReset)
			r.Post("/forgot", cfg.Auth.ForgotPassword)
			r.Post("/reset", cfg.Auth.ResetPassword)
			r.Post("/refresh", cfg.Auth.RefreshToken)
			r.Get("/login/google", cfg.Auth.LoginWithGoogle)
			r.Get("/oauth/callback/google", cfg.Auth.OAuthCallbackGoogle)

			r.Group(func(r chi.Router) {
				r.Use(authenticated...)
				r.Post("/logout", cfg.Auth.Logout)
				r.Get("/me", cfg.Auth.Me)
				r.Post("/change-password", cfg.Auth.ChangePassword)
				r.With(roles(admin, hr)).Post("/register", cfg.Auth.Register)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticated...)

			r.Route("/admin", func(r chi.Router) {
				r.Use(roles(admin))
				r.Get("/users", cfg.Admin.ListUsers)
				r.Get("/access-rights", cfg.Admin.AccessRights)
				r.Post("/access-rights", cfg.Admin.UpsertAccessRight)
			})

			r.Route("/employees", func(r chi.Router) {
				r.Get("/me", cfg.Employee.Me)
				r.Patch("/me/private", cfg.Employee.UpdateMyPrivateInfo)
				r.Get("/me/private-info", cfg.Employee.GetMyPrivateInfo)
				r.Patch("/me/private-info", cfg.Employee.UpdateMyPrivateInfoSensitive)
				r.Get("/me/skills", cfg.Employee.ListMySkills)
				r.Post("/me/skills", cfg.Employee.AddMySkill)
				r.Delete("/me/skills/{id}", cfg.Employee.DeleteMySkill)
				r.Get("/me/certifications", cfg.Employee.ListMyCertifications)
				r.Post("/me/certifications", cfg.Employee.AddMyCertification)
				r.Patch("/me/certifications/{id}", cfg.Employee.UpdateMyCertification)
				r.Delete("/me/certifications/{id}", cfg.Employee.DeleteMyCertification)
				r.With(access(user.ModuleEmployees, user.ActionView)).Get("/", cfg.Employee.List)
				r.With(access(user.ModuleEmployees, user.ActionView)).Get("/{id}", cfg.Employee.Get)
			})

			r.Route("/upload", func(r chi.Router) {
				r.Post("/avatar", cfg.Employee.UploadAvatar)
				r.Delete("/avatar", cfg.Employee.DeleteAvatar)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/me/check-in", cfg.Attendance.CheckIn)
				r.Post("/me/check-out", cfg.Attendance.CheckOut)
				r.Get("/me", cfg.Attendance.MyAttendance)
				r.With(roles(admin, hr), access(user.ModuleAttendance, user.ActionView)).Get("/", cfg.Attendance.Roster)
				r.With(access(user.ModuleAttendance, user.ActionView)).Get("/board", cfg.Attendance.Board)
				r.With(access(user.ModuleAttendance, user.ActionUpdate)).Post("/mark-absents", cfg.Attendance.MarkAbsents)
			})

			r.Route("/leave", func(r chi.Router) {
				r.Get("/types", cfg.Leave.ListTypes)
				r.With(access(user.ModuleLeaves, user.ActionCreate)).Post("/types", cfg.Leave.CreateType)
				r.With(access(user.ModuleLeaves, user.ActionCreate)).Post("/allocations", cfg.Leave.CreateAllocation)
				r.With(roles(admin, hr), access(user.ModuleLeaves, user.ActionView)).Get("/allocations", cfg.Leave.ListAllocations)
				r.Get("/my-allocations", cfg.Leave.MyAllocations)
				r.Post("/requests", cfg.Leave.CreateRequest)
				r.Get("/requests", cfg.Leave.ListRequests)
				r.With(access(user.ModuleLeaves, user.ActionUpdate)).Patch("/requests/{id}/approve", cfg.Leave.Approve)
				r.With(access(user.ModuleLeaves, user.ActionUpdate)).Patch("/requests/{id}/reject", cfg.Leave.Reject)
			})

			r.Route("/salary", func(r chi.Router) {
				r.Get("/me", cfg.Salary.Mine)
				r.With(access(user.ModuleSalary, user.ActionView)).Get("/", cfg.Salary.List)
				r.With(access(user.ModuleSalary, user.ActionUpdate)).Put("/{employee_id}/structure", cfg.Salary.UpsertStructure)
				r.With(access(user.ModuleSalary, user.ActionCreate)).Post("/{employee_id}/components", cfg.Salary.AddComponent)
				r.With(access(user.ModuleSalary, user.ActionUpdate)).Patch("/{employee_id}/components/{component_id}", cfg.Salary.UpdateComponent)
				r.With(access(user.ModuleSalary, user.ActionDelete)).Delete("/{employee_id}/components/{component_id}", cfg.Salary.DeleteComponent)
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Get("/me/payslips", cfg.Payroll.MyPayslips)
				r.Get("/me/salary-report", cfg.Payroll.MySalaryReport)
				// Ownership of a single payslip is checked by the service.
				r.Get("/payslips/{id}", cfg.Payroll.GetPayslip)
				r.Get("/payslips/{id}/export", cfg.Payroll.ExportPayslip)

				r.Group(func(r chi.Router) {
					r.Use(roles(admin, payroll))
					r.Post("/payruns", cfg.Payroll.CreatePayrun)
					r.Get("/payruns", cfg.Payroll.ListPayruns)
					r.Get("/payruns/{id}", cfg.Payroll.GetPayrun)
					r.Get("/payruns/{id}/payslips", cfg.Payroll.ListPayrunPayslips)
					r.Post("/payruns/{id}/validate", cfg.Payroll.ValidatePayrun)
					r.Post("/payruns/{id}/send-payslips", cfg.Payroll.SendPayslips)
					r.Post("/payslips/{id}/validate", cfg.Payroll.ValidatePayslip)
					r.Post("/payslips/{id}/cancel", cfg.Payroll.CancelPayslip)
					r.Post("/payslips/{id}/recompute", cfg.Payroll.RecomputePayslip)
					r.Get("/employees/{employee_id}/salary-report", cfg.Payroll.SalaryReport)
					r.Get("/metrics/employer-cost", cfg.Payroll.EmployerCost)
					r.Get("/metrics/employee-count", cfg.Payroll.EmployeeCount)
				})
			})

			r.Route("/face", func(r chi.Router) {
				r.Post("/enroll", cfg.Face.Enroll)
				r.Get("/enrollment/me", cfg.Face.MyEnrollment)
				r.Delete("/enrollment/me", cfg.Face.DeleteEnrollment)
				r.Post("/checkin", cfg.Face.CheckIn)
				r.Get("/stats/me", cfg.Face.MyStats)
			})

			r.Route("/cache", func(r chi.Router) {
				r.With(roles(admin, hr)).Get("/stats", cfg.Cache.Stats)
				r.With(roles(admin, hr)).Post("/clear/employee/{employeeId}", cfg.Cache.ClearEmployee)
				r.Group(func(r chi.Router) {
					r.Use(roles(admin))
					r.Post("/clear", cfg.Cache.ClearAll)
					r.Post("/clear/company/{companyId}", cfg.Cache.ClearCompany)
					r.Post("/clear/{cacheName}", cfg.Cache.ClearOne)
					r.Get("/keys/{cacheName}", cfg.Cache.Keys)
				})
			})
		})
	})
	return r
}
