package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"college-erp/internal/auth"
	"college-erp/internal/config"
	"college-erp/internal/course"
	"college-erp/internal/dashboard"
	"college-erp/internal/db"
	"college-erp/internal/exam"
	"college-erp/internal/fees"
	"college-erp/internal/health"
	"college-erp/internal/invoice"
	"college-erp/internal/logger"
	"college-erp/internal/middleware"
	"college-erp/internal/notify"
	"college-erp/internal/student"
	"college-erp/internal/telemetry"
	"college-erp/internal/users"

	"github.com/go-chi/chi/v5"
)

type App struct {
	config    *config.Config
	router    chi.Router
	server    *http.Server
	logger    *slog.Logger
	telemetry *telemetry.Telemetry
	producer  notify.Producer
}

func New() *App {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses JSON format
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		logger: slogLogger,
	}

	ctx := context.Background()

	tel, err := telemetry.Init(ctx, ServiceName, Version, slogLogger)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	app.telemetry = tel
	m := tel.Metrics

	database := db.New(cfg.Database)

	if err := db.CreateSchema(ctx, database,
		(*users.Role)(nil),
		(*users.User)(nil),
		(*auth.RefreshToken)(nil),
		(*course.Course)(nil),
		(*course.CourseDetail)(nil),
		(*course.Subject)(nil),
		(*student.Student)(nil),
		(*fees.CollegeFees)(nil),
		(*invoice.Invoice)(nil),
		(*exam.Exam)(nil),
	); err != nil {
		log.Fatal("failed to create schema:", err)
	}

	// Event producer, noop when no backend is configured
	producer, err := notify.New(cfg.Notify, slogLogger, m)
	if err != nil {
		slogLogger.Warn("failed to initialize event producer, events disabled", "error", err)
		producer = notify.Noop()
	}
	app.producer = producer

	// Repositories
	userRepo := users.NewRepository(database, m)
	authRepo := auth.NewRepository(database, m)
	courseRepo := course.NewRepository(database, m)
	studentRepo := student.NewRepository(database, m)
	feesRepo := fees.NewRepository(database, m)
	invoiceRepo := invoice.NewRepository(database, m)
	examRepo := exam.NewRepository(database, m)
	dashboardRepo := dashboard.NewRepository(database, m)

	// Services
	userService := users.NewService(userRepo, slogLogger)
	authService := auth.NewService(authRepo, userRepo, cfg.Auth, slogLogger)
	courseService := course.NewService(database, courseRepo, slogLogger)
	feesService := fees.NewService(database, feesRepo, studentRepo, courseService, slogLogger, m)
	studentService := student.NewService(database, studentRepo, courseService, feesService, producer, slogLogger, m)
	invoiceService := invoice.NewService(database, invoiceRepo, feesService, studentRepo, producer, slogLogger, m)
	examService := exam.NewService(database, examRepo, studentRepo, courseService, feesService, producer, slogLogger, m)

	if err := userService.SeedDefaultRoles(ctx); err != nil {
		slogLogger.Warn("failed to seed default roles", "error", err)
	}

	// Handlers
	userHandler := users.NewHandler(userService, slogLogger)
	authHandler := auth.NewHandler(authService, slogLogger)
	courseHandler := course.NewHandler(courseService, slogLogger)
	studentHandler := student.NewHandler(studentService, slogLogger)
	feesHandler := fees.NewHandler(feesService, slogLogger)
	invoiceHandler := invoice.NewHandler(invoiceService, slogLogger)
	examHandler := exam.NewHandler(examService, slogLogger)
	dashboardHandler := dashboard.NewHandler(dashboardRepo, slogLogger)

	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	// Health endpoints (no auth required)
	healthHandler := health.NewHandler()
	healthHandler.RegisterRoutes(app.router)

	// Public auth endpoints
	authHandler.RegisterRoutes(app.router)

	// Everything under /api requires a valid token
	app.router.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(cfg.Auth.JWTSecret, slogLogger))

		authHandler.RegisterProtectedRoutes(r)

		// Reads are open to every authenticated user
		studentHandler.RegisterRoutes(r)
		courseHandler.RegisterRoutes(r)
		feesHandler.RegisterRoutes(r)
		invoiceHandler.RegisterRoutes(r)
		examHandler.RegisterRoutes(r)
		dashboardHandler.RegisterRoutes(r)

		// Writes are gated per module by role and edit access
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireEdit(auth.ModuleAdmin))
			userHandler.RegisterRoutes(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireEdit(auth.ModuleStudents))
			studentHandler.RegisterEditRoutes(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireEdit(auth.ModuleCourses))
			courseHandler.RegisterEditRoutes(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireEdit(auth.ModuleFees))
			feesHandler.RegisterEditRoutes(r)
			invoiceHandler.RegisterEditRoutes(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireEdit(auth.ModuleExams))
			examHandler.RegisterEditRoutes(r)
		})
	})

	slogLogger.Info("application initialized successfully")

	return app
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	if a.producer != nil {
		a.producer.Close()
	}
	if err := a.telemetry.Shutdown(ctx, a.logger); err != nil {
		a.logger.Warn("telemetry shutdown failed", "error", err)
	}

	return a.server.Shutdown(ctx)
}
