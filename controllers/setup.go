package controllers

import (
	"database/sql"

	"github.com/go-playground/validator/v10"
	"github.com/prepforge/prepforge_backend/repository"
	"github.com/prepforge/prepforge_backend/services"
)

var (
	validate = validator.New()

	syncService  *services.SyncService
	quotaService *services.QuotaService
	statsStore   services.StatsStore
	attemptRepo  *repository.AttemptRepository
	examRepo     *repository.ExamRepository
	userRepo     *repository.UserRepository
	versionRepo  *repository.VersionRepository
)

// Setup wires repositories and services against the live database. Called once
// from main before routes are registered.
func Setup(db *sql.DB) {
	attemptRepo = repository.NewAttemptRepository(db)
	examRepo = repository.NewExamRepository(db)
	userRepo = repository.NewUserRepository(db)

	statsRepo := repository.NewStatsRepository(db)
	statsStore = statsRepo
	statsService := services.NewStatsService(statsRepo, statsRepo)

	versionRepo = repository.NewVersionRepository(db)
	syncService = services.NewSyncService(attemptRepo, versionRepo, statsService)
	quotaService = services.NewQuotaService(repository.NewQuotaRepository(db))
}
