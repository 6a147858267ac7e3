package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"todoboard/docs"
	"todoboard/internal/auth"
	"todoboard/internal/config"
	"todoboard/internal/database"
	"todoboard/internal/database/migration"
	handlers "todoboard/internal/http/handler"
	"todoboard/internal/http/middleware"
	"todoboard/internal/logger"
	"todoboard/internal/otel"
	"todoboard/internal/repository"
	"todoboard/internal/repository/objectstore"
	"todoboard/internal/repository/postgres"
	"todoboard/internal/repository/sqlite"
	"todoboard/internal/service"
	"todoboard/internal/storage"
)

// repositories is one storage backend wired to the repository interfaces.
type repositories struct {
	db         *sql.DB
	folders    repository.FolderRepository
	files      repository.FileRepository
	todos      repository.TodoRepository
	workspaces repository.WorkspaceRepository
}

// @title						Todoboard API
// @version					1.0
// @BasePath					/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	cfg := config.Load()

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		log.Fatalf("invalid APP_TIMEZONE %q: %v", cfg.TimeZone, err)
	}

	zl, err := logger.New(cfg.Logger, loc)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, zl)
	if err != nil {
		zl.Fatal("failed to initialize tracing", zap.Error(err))
	}

	repos, err := openRepositories(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to open store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer repos.db.Close()

	metrics, err := service.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		zl.Fatal("failed to register metrics", zap.Error(err))
	}

	workspaceSvc := service.NewWorkspaceService(repos.folders, repos.files, repos.workspaces, metrics, zl)
	importSvc, err := service.NewImportService(repos.folders, repos.files, repos.todos, repos.workspaces, metrics, zl)
	if err != nil {
		zl.Fatal("failed to build importer", zap.Error(err))
	}
	svc := handlers.Services{
		Folders:   service.NewFolderService(repos.folders, repos.files, workspaceSvc, zl),
		Files:     service.NewFileService(repos.folders, repos.files, workspaceSvc, zl),
		Todos:     service.NewTodoService(repos.files, repos.todos, zl),
		Workspace: workspaceSvc,
		Import:    importSvc,
	}

	verifier, err := auth.NewVerifier(cfg.Auth)
	if err != nil {
		zl.Fatal("failed to configure auth", zap.Error(err))
	}
	limiter := auth.NewRateLimiter(cfg.RateLimit)

	promMW, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		zl.Fatal("failed to register http metrics", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    4 * 1024 * 1024,
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(zl))
	app.Use(promMW.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, repos.db, svc,
		middleware.Auth(verifier),
		middleware.RateLimit(limiter),
		middleware.Timeout(time.Duration(cfg.RequestTimeoutSec)*time.Second),
	)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		zl.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zl.Error("server shutdown failed", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	zl.Info("server starting", zap.String("addr", addr), zap.String("backend", cfg.StoreBackend))
	if err := app.Listen(addr); err != nil {
		zl.Fatal("failed to start server", zap.Error(err))
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		zl.Error("tracer shutdown failed", zap.Error(err))
	}
}

// openRepositories connects the configured backend and brings its schema up
// to date. The postgres backend keeps workspaces in object storage; sqlite
// keeps everything in one file.
func openRepositories(ctx context.Context, cfg *config.AppConfig, zl *zap.Logger) (*repositories, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := migration.EnsureMigrated(ctx, db, migration.Postgres, zl, cfg.Database.Host); err != nil {
			db.Close()
			return nil, err
		}
		objStore, err := storage.NewMinIO(cfg.MinIO)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("object storage: %w", err)
		}
		return &repositories{
			db:         db,
			folders:    postgres.NewFolderPostgres(db),
			files:      postgres.NewFilePostgres(db),
			todos:      postgres.NewTodoPostgres(db),
			workspaces: objectstore.NewWorkspaceStore(objStore),
		}, nil

	case config.BackendSQLite:
		db, err := database.NewSQLite(cfg.SQLite)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := migration.EnsureMigrated(ctx, db, migration.SQLite, zl, cfg.SQLite.Path); err != nil {
			db.Close()
			return nil, err
		}
		store := sqlite.New(db)
		return &repositories{
			db:         db,
			folders:    store.Folders,
			files:      store.Files,
			todos:      store.Todos,
			workspaces: store.Workspaces,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported STORE_BACKEND %q", cfg.StoreBackend)
	}
}
