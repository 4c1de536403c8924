// Command server runs the transform-compiler HTTP service.
package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/mattn/go-sqlite3"

	"reportsql/internal/api"
	"reportsql/internal/caseparse"
	"reportsql/internal/config"
	internaldb "reportsql/internal/db"
	"reportsql/internal/db/repository"
	"reportsql/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	db, err := internaldb.OpenSQLite(cfg.MetaDBPath)
	if err != nil {
		logger.Error("open spec store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := internaldb.RunMigrations(db); err != nil {
		logger.Error("migrate spec store", "error", err)
		os.Exit(1)
	}

	parser := caseparse.New(logger)
	handler := api.NewHandler(
		logger,
		repository.NewTransformRepo(db, parser),
		repository.NewFilterRepo(db),
		cfg.Dialect(),
		cfg.Calendar(),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	handler.Routes(r)

	logger.Info("listening",
		"addr", cfg.ListenAddr,
		"dialect", cfg.SQLDialect,
		"spec_store", cfg.MetaDBPath,
	)
	if err := http.ListenAndServe(cfg.ListenAddr, r); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
