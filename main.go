//go:generate swag init -g main.go -o docs --outputTypes go,json

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"geo-attendance/config"
	"geo-attendance/pkg/metrics"
	"geo-attendance/pkg/paseto"
	"geo-attendance/repository"
	"geo-attendance/repository/memory"
	"geo-attendance/router"
	"geo-attendance/seeder"
	"geo-attendance/services"
)

const (
	shutdownTimeout = 10 * time.Second
	demoEmployees   = 10
)

// @title Geo Attendance API
// @version 1.0
// @description Geofenced check-in/out, leave management and office configuration.
//
// @BasePath /
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Session cookie, or "Bearer" followed by a space and the PASETO token.
//
// @tag.name Auth
// @tag.name Employees
// @tag.name Attendance
// @tag.name Leave
// @tag.name Notifications
// @tag.name Admin
func main() {
	if err := run(); err != nil {
		log.Fatalf("geo-attendance: %v", err)
	}
}

// run returns instead of exiting so deferred cleanup, such as closing the
// MongoDB client, always happens.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.SetupLogger(cfg.Env, os.Stdout)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	var repos repository.Repositories
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		repos = memory.NewStore().Repositories()
	default:
		client, err := config.MongoConnect(ctx, cfg.MongoURI)
		if err != nil {
			return fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		defer config.DisconnectDB(client, logger)

		db := client.Database(cfg.DBName)
		if err = config.InitDatabase(ctx, db); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		repos = repository.NewMongoRepositories(client, db)
		logger.Info("connected to MongoDB", "database", cfg.DBName)
	}

	if err = seeder.SeedAdmin(ctx, repos.Admins, cfg.AdminEmail, cfg.AdminPassword, logger); err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	if cfg.Env == config.EnvLocal && cfg.StorageDriver == config.StorageMemory {
		if _, err = seeder.SeedDemoEmployees(ctx, repos.Employees, demoEmployees, logger); err != nil {
			return fmt.Errorf("failed to seed demo employees: %w", err)
		}
	}

	maker, err := paseto.NewMaker(cfg.PasetoSecret)
	if err != nil {
		return fmt.Errorf("failed to create token maker: %w", err)
	}

	rt := services.Runtime{Log: logger, Metrics: appMetrics, Location: cfg.Location}
	offices := services.NewOfficeService(repos.Offices, rt)
	attendance := services.NewAttendanceService(repos.Attendances, repos.Employees, repos.Leaves, offices, rt)

	app := router.NewApp(router.Dependencies{
		Log:            logger,
		Metrics:        appMetrics,
		Gatherer:       reg,
		Store:          repos.Pinger,
		Maker:          maker,
		Employees:      repos.Employees,
		Auth:           services.NewAuthService(repos.Admins, repos.Employees, maker, rt),
		EmployeeSvc:    services.NewEmployeeService(repos.Employees, rt),
		Attendance:     attendance,
		Leaves:         services.NewLeaveService(repos.Leaves, repos.Employees, rt),
		Offices:        offices,
		Notifications:  services.NewNotificationService(repos.Notifications, repos.Employees, rt),
		Dashboard:      services.NewDashboardService(repos.Employees, repos.Attendances, repos.Leaves, offices, rt),
		AllowedOrigins: cfg.AllowedOrigins,
		CookieSecure:   cfg.CookieSecure,
		RequestTimeout: cfg.RequestTimeout,
		AccessLog:      true,
	})

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Env, "timezone", cfg.Location.String(),
			"docs", "/docs/index.html", "allowed_origins", cfg.AllowedOrigins)
		serveErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err = <-serveErr:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	if err = app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("server stopped gracefully")
	return nil
}
