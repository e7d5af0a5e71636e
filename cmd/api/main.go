package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"
	"github.com/hrx-hr/hrx-backend-go/internal/config"
	appHTTP "github.com/hrx-hr/hrx-backend-go/internal/handler/http"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/cache"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/cron"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/database"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/email"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/facerec"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/jwt"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/metrics"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/oauth"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/storage"
	"github.com/hrx-hr/hrx-backend-go/internal/repository/postgresql"
	accessService "github.com/hrx-hr/hrx-backend-go/internal/service/access"
	attendanceService "github.com/hrx-hr/hrx-backend-go/internal/service/attendance"
	serviceAuth "github.com/hrx-hr/hrx-backend-go/internal/service/auth"
	employeeService "github.com/hrx-hr/hrx-backend-go/internal/service/employee"
	faceService "github.com/hrx-hr/hrx-backend-go/internal/service/face"
	"github.com/hrx-hr/hrx-backend-go/internal/service/file"
	leaveService "github.com/hrx-hr/hrx-backend-go/internal/service/leave"
	payrollService "github.com/hrx-hr/hrx-backend-go/internal/service/payroll"
	salaryService "github.com/hrx-hr/hrx-backend-go/internal/service/salary"
)

const faceServiceTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.App.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	logFormat := httplog.SchemaECS.Concise(!cfg.IsProduction())
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hrx"),
		slog.String("env", cfg.App.Env),
	)
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	m := metrics.New()
	caches := cache.NewRegistry(cache.NewMetrics(m.Registerer()))
	loc := cfg.Location()

	accessTTL, _ := time.ParseDuration(cfg.JWT.AccessExpiration)
	refreshTTL, _ := time.ParseDuration(cfg.JWT.RefreshExpiration)
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, accessTTL, refreshTTL, cfg.IsProduction())

	// Repositories
	tx := postgresql.NewTxManager(db)
	userRepo := postgresql.NewUserRepository(db)
	accessRepo := postgresql.NewAccessRightRepository(db)
	tokenRepo := postgresql.NewTokenRepository(db)
	companyRepo := postgresql.NewCompanyRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	profileRepo := postgresql.NewProfileRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveTypeRepo := postgresql.NewLeaveTypeRepository(db)
	allocationRepo := postgresql.NewAllocationRepository(db)
	requestRepo := postgresql.NewRequestRepository(db)
	salaryRepo := postgresql.NewSalaryRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	faceRepo := postgresql.NewFaceRepository(db)

	// Infrastructure
	fileStorage, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	fileService := file.NewFileService(fileStorage)

	emailService, err := email.NewEmailService(cfg.SMTP, m.MailSent)
	if err != nil {
		return fmt.Errorf("initialize email service: %w", err)
	}
	if !cfg.SMTP.Enabled() {
		slog.Warn("SMTP not configured, outgoing mail is disabled")
	}

	var googleService oauth.GoogleService
	if cfg.OAuth2Google.Enabled() {
		googleService = oauth.NewGoogleService(
			cfg.OAuth2Google.ClientID,
			cfg.OAuth2Google.ClientSecret,
			cfg.OAuth2Google.RedirectURL,
			cfg.OAuth2Google.Scopes,
		)
	}
	faceClient := facerec.NewClient(cfg.Face.ServiceURL, faceServiceTimeout)

	// Services
	authSvc := serviceAuth.NewAuthService(
		tx,
		userRepo,
		employeeRepo,
		companyRepo,
		tokenRepo,
		JWTService,
		emailService,
		googleService,
		caches,
		cfg.App.LoginURL,
	)
	accessSvc := accessService.NewAccessService(userRepo, accessRepo, caches)
	employeeSvc := employeeService.NewEmployeeService(tx, employeeRepo, profileRepo, fileService, caches)
	attendanceSvc := attendanceService.NewAttendanceService(
		attendanceRepo,
		employeeRepo,
		requestRepo,
		salaryRepo,
		cfg.Attendance.ExpectedDailyHours,
		loc,
	)
	leaveSvc := leaveService.NewLeaveService(tx, leaveTypeRepo, allocationRepo, requestRepo, attendanceRepo, employeeRepo, caches)
	salarySvc := salaryService.NewSalaryService(salaryRepo, employeeRepo, caches)
	payrollSvc := payrollService.NewPayrollService(
		tx,
		payrollRepo,
		salaryRepo,
		employeeRepo,
		attendanceRepo,
		companyRepo,
		emailService,
		caches,
	)
	faceSvc := faceService.NewFaceService(
		tx,
		faceRepo,
		requestRepo,
		attendanceSvc,
		fileService,
		faceClient,
		m,
		faceService.Options{
			MatchThreshold: cfg.Face.MatchThreshold,
			CheckinRate:    cfg.Face.CheckinRate,
			CheckinBurst:   cfg.Face.CheckinBurst,
			Location:       loc,
		},
	)

	routerCfg := appHTTP.RouterConfig{
		Logger:      logger,
		CORSOrigins: cfg.App.CORSOrigins,
		JWT:         JWTService,
		Access:      accessSvc,
		Metrics:     m,
		Health:      appHTTP.NewHealthHandler(db),
		Auth:        appHTTP.NewAuthHandler(JWTService, authSvc, cfg.App.LoginURL),
		Admin:       appHTTP.NewAdminHandler(accessSvc),
		Employee:    appHTTP.NewEmployeeHandler(employeeSvc),
		Attendance:  appHTTP.NewAttendanceHandler(attendanceSvc),
		Leave:       appHTTP.NewLeaveHandler(leaveSvc),
		Salary:      appHTTP.NewSalaryHandler(salarySvc),
		Payroll:     appHTTP.NewPayrollHandler(payrollSvc),
		Face:        appHTTP.NewFaceHandler(faceSvc),
		Cache:       appHTTP.NewCacheHandler(caches),
	}
	if cfg.Storage.Driver == "local" {
		routerCfg.UploadsDir = cfg.Storage.LocalPath
	}
	router := appHTTP.NewRouter(routerCfg)

	// Background jobs
	scheduler := cron.NewScheduler()
	cron.RegisterCacheJanitor(scheduler, caches, cfg.Cache.JanitorInterval)
	cron.NewAttendanceJobs(companyRepo, attendanceSvc, loc).RegisterJobs(scheduler)
	cron.NewPayrollJobs(payrollSvc, loc).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
