package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"
	"github.com/nmw-hr/payroll-backend-go/internal/config"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/advance"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/department"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/employee"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/payment"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/payroll"
	appHTTP "github.com/nmw-hr/payroll-backend-go/internal/handler/http"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/cron"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/database"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/jwt"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/realtime"
	"github.com/nmw-hr/payroll-backend-go/internal/repository/memory"
	"github.com/nmw-hr/payroll-backend-go/internal/repository/postgresql"
	advanceService "github.com/nmw-hr/payroll-backend-go/internal/service/advance"
	attendanceService "github.com/nmw-hr/payroll-backend-go/internal/service/attendance"
	employeeService "github.com/nmw-hr/payroll-backend-go/internal/service/employee"
	ledgerService "github.com/nmw-hr/payroll-backend-go/internal/service/ledger"
	payrollService "github.com/nmw-hr/payroll-backend-go/internal/service/payroll"
	"github.com/nmw-hr/payroll-backend-go/internal/service/rules"
)

type repositories struct {
	tx          database.Transactor
	employees   employee.EmployeeRepository
	rules       department.RuleRepository
	records     attendance.AttendanceRepository
	credentials attendance.CredentialRepository
	advances    advance.AdvanceRepository
	payments    payment.PaymentRepository
	payrolls    payroll.PayrollRepository
	close       func()
}

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "nmw-payroll"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	// Realtime invalidation is optional; a single instance runs without Redis.
	var publisher rules.Publisher
	var rtClient *realtime.Client
	if cfg.Redis.Addr != "" {
		rtClient, err = realtime.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Channel)
		if err != nil {
			return err
		}
		defer rtClient.Close()
		publisher = rtClient
	}

	provider, err := rules.NewRuleProvider(repos.rules, publisher)
	if err != nil {
		return err
	}
	if rtClient != nil {
		go rtClient.Subscribe(ctx, provider.HandleMessage)
	}

	loc := cfg.Location()
	payrollSvc := payrollService.NewPayrollService(
		repos.payrolls,
		repos.payments,
		repos.employees,
		repos.records,
		repos.advances,
		provider,
		cfg.Payroll.GenerateParallel,
		loc,
	)
	recomputer := payrollService.NewRecomputer(payrollSvc, cfg.Payroll.RecomputeWorkers, cfg.Payroll.RecomputeQueueSize)
	provider.SetNotifier(recomputer)

	identifier := attendanceService.NewBiometricIdentifier(repos.credentials, repos.employees)
	attendanceSvc := attendanceService.NewAttendanceService(repos.records, repos.credentials, repos.employees, provider, identifier, recomputer, loc)
	advanceSvc := advanceService.NewAdvanceService(repos.tx, repos.advances, repos.employees, repos.records, provider, recomputer, loc)
	ledgerSvc := ledgerService.NewLedgerService(repos.tx, repos.payrolls, repos.payments, repos.advances, recomputer, loc)
	employeeSvc := employeeService.NewEmployeeService(repos.employees)

	scheduler := cron.NewScheduler(loc)
	if err := cron.NewPayrollJobs(payrollSvc).RegisterJobs(scheduler, cfg.Payroll.SweepSchedule); err != nil {
		return err
	}

	router := appHTTP.NewRouter(jwt.NewJWTService(cfg.JWT.Secret), logger, cfg.App.AllowedOrigins, appHTTP.Handlers{
		Employee:   appHTTP.NewEmployeeHandler(employeeSvc),
		Rule:       appHTTP.NewRuleHandler(provider),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		Advance:    appHTTP.NewAdvanceHandler(advanceSvc),
		Payroll:    appHTTP.NewPayrollHandler(payrollSvc),
		Ledger:     appHTTP.NewLedgerHandler(ledgerSvc),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	recomputeDone := make(chan error, 1)
	go func() { recomputeDone <- recomputer.Run(ctx) }()
	scheduler.Start()

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "storage", cfg.App.Storage)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			stop()
			scheduler.Stop()
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	scheduler.Stop()
	if err := <-recomputeDone; err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Recompute workers stopped", "error", err)
	}
	return nil
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if cfg.UsesMemory() {
		slog.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			tx:          store,
			employees:   memory.NewEmployeeRepository(store),
			rules:       memory.NewRuleRepository(store),
			records:     memory.NewAttendanceRepository(store),
			credentials: memory.NewCredentialRepository(store),
			advances:    memory.NewAdvanceRepository(store),
			payments:    memory.NewPaymentRepository(store),
			payrolls:    memory.NewPayrollRepository(store),
			close:       func() {},
		}, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.RunMigrations(db.SQL()); err != nil {
		db.Close()
		return nil, err
	}

	return &repositories{
		tx:          postgresql.NewTransactor(db),
		employees:   postgresql.NewEmployeeRepository(db),
		rules:       postgresql.NewRuleRepository(db),
		records:     postgresql.NewAttendanceRepository(db),
		credentials: postgresql.NewCredentialRepository(db),
		advances:    postgresql.NewAdvanceRepository(db),
		payments:    postgresql.NewPaymentRepository(db),
		payrolls:    postgresql.NewPayrollRepository(db),
		close:       db.Close,
	}, nil
}
