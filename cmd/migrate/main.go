// One-shot admin command that runs the idempotent data migrations
// against the configured database and exits.
package main

import (
	"context"
	"log"
	"log/slog"

	"college-erp/internal/app"
	"college-erp/internal/config"
	"college-erp/internal/course"
	"college-erp/internal/db"
	"college-erp/internal/fees"
	"college-erp/internal/logger"
	"college-erp/internal/metrics"
	"college-erp/internal/migrate"
	"college-erp/internal/student"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
)

func main() {
	_ = godotenv.Load()

	slogLogger := logger.NewWithServiceContext(app.ServiceName, app.Version)
	slog.SetDefault(slogLogger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// The global meter is a noop here, migrations run without a collector.
	m, err := metrics.New(otel.Meter(app.ServiceName))
	if err != nil {
		log.Fatalf("failed to initialize metrics: %v", err)
	}

	database := db.New(cfg.Database)
	defer db.Close(database)

	studentRepo := student.NewRepository(database, m)
	courseRepo := course.NewRepository(database, m)
	courseService := course.NewService(database, courseRepo, slogLogger)
	feesRepo := fees.NewRepository(database, m)
	feesService := fees.NewService(database, feesRepo, studentRepo, courseService, slogLogger, m)

	ctx := context.Background()
	runner := migrate.NewRunner(slogLogger, migrate.Default(database, studentRepo, feesService)...)

	results, err := runner.RunAll(ctx)
	for _, res := range results {
		slogLogger.Info("migration result",
			"migration", res.Name, "applied", res.Applied)
	}
	if err != nil {
		log.Fatalf("migration run failed: %v", err)
	}

	slogLogger.Info("all migrations complete", "count", len(results))
}
