package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/priorcoder/institute-manager/internal/backup"
	"github.com/priorcoder/institute-manager/internal/cli"
	"github.com/priorcoder/institute-manager/internal/repository"
	"github.com/priorcoder/institute-manager/internal/service"
	"github.com/priorcoder/institute-manager/pkg/config"
	"github.com/priorcoder/institute-manager/pkg/database"
	appErrors "github.com/priorcoder/institute-manager/pkg/errors"
	"github.com/priorcoder/institute-manager/pkg/export"
	"github.com/priorcoder/institute-manager/pkg/logger"
	"github.com/priorcoder/institute-manager/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	store, err := database.NewSQLite(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to open database", "path", cfg.Database.Path, "error", err)
	}
	defer store.Close() //nolint:errcheck

	receipts, err := storage.NewLocalStorage(cfg.Receipts.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare receipts directory", "dir", cfg.Receipts.Dir, "error", err)
	}

	validate := validator.New()

	courseRepo := repository.NewCourseRepository(store.DB)
	studentRepo := repository.NewStudentRepository(store.DB)
	enrollmentRepo := repository.NewEnrollmentRepository(store.DB)
	paymentRepo := repository.NewPaymentRepository(store.DB)

	renderer := export.NewReceiptRenderer(cfg.Institute.Name, cfg.Institute.Address)

	settingsStore := backup.NewSettingsStore(cfg.Backup.SettingsPath, logr)
	orchestrator := backup.NewOrchestrator(store.Path(), store, database.Validate, nil, logr)

	scheduler := backup.NewScheduler(orchestrator, settingsStore, logr)
	if err := scheduler.Start(cfg.Backup.Schedule); err != nil {
		logr.Sugar().Fatalw("invalid backup schedule", "schedule", cfg.Backup.Schedule, "error", err)
	}
	defer scheduler.Stop()

	app := &cli.App{
		Config:       cfg,
		Logger:       logr,
		Courses:      service.NewCourseService(courseRepo, validate, logr),
		Students:     service.NewStudentService(studentRepo, validate, logr),
		Enrollments:  service.NewEnrollmentService(enrollmentRepo, studentRepo, paymentRepo, validate, logr),
		Payments:     service.NewPaymentService(paymentRepo, enrollmentRepo, renderer, receipts, logr),
		Orchestrator: orchestrator,
		Settings:     settingsStore,
	}

	root := cli.NewRootCommand(app)
	if err := root.Execute(); err != nil {
		appErr := appErrors.FromError(err)
		fmt.Fprintln(os.Stderr, "Error: "+appErr.Error())
		logr.Sugar().Errorw("command failed", "code", appErr.Code, "error", err)
		os.Exit(1)
	}
}
