package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photo-gallery/internal/config"
	"photo-gallery/internal/handlers"
	"photo-gallery/internal/logger"
	"photo-gallery/internal/middleware"
	"photo-gallery/internal/repository"
	"photo-gallery/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// app holds the wired services for one server process
type app struct {
	cfg          *config.Config
	userService  *services.UserService
	photoService *services.PhotoService
	wsHub        *services.WSHub
	db           *pgxpool.Pool
}

// newApp builds the stores and services described by cfg and initializes
// both stores
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	credRepo := repository.NewCredentialRepository(cfg.CredentialsPath(), services.HashPassword)
	created, err := credRepo.Init()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential store: %w", err)
	}
	if created {
		log.Info().Str("path", credRepo.Path()).Msg("Credential store created with demo account")
	}

	storage, err := newPhotoStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}

	var index services.PhotoIndex
	if cfg.Index.Enabled {
		db, err := pgxpool.New(ctx, cfg.Index.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Ping(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		indexRepo := repository.NewPhotoIndexRepository(db)
		if err := indexRepo.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		log.Info().Msg("Photo index connection established")
		a.db = db
		index = indexRepo
	}

	a.userService = services.NewUserService(credRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	a.photoService = services.NewPhotoService(storage, index, cfg.Gallery.UploaderLabel)
	a.wsHub = services.NewWSHub()

	if err := a.photoService.Init(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize photo store: %w", err)
	}

	return a, nil
}

func newPhotoStorage(ctx context.Context, cfg *config.Config) (repository.PhotoStorage, error) {
	switch cfg.Storage.Backend {
	case "s3":
		s, err := repository.NewS3PhotoStorage(ctx, repository.S3Options{
			Region:    cfg.AWS.Region,
			Bucket:    cfg.AWS.S3Bucket,
			Prefix:    cfg.AWS.S3Prefix,
			AccessKey: cfg.AWS.AccessKey,
			SecretKey: cfg.AWS.SecretKey,
			Endpoint:  cfg.AWS.Endpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 photo storage: %w", err)
		}
		return s, nil
	default:
		return repository.NewLocalPhotoStorage(cfg.PhotosDir()), nil
	}
}

// Close releases the index connection and open websockets
func (a *app) Close() {
	if a.wsHub != nil {
		a.wsHub.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// router builds the HTTP surface
func (a *app) router() http.Handler {
	userHandler := handlers.NewUserHandler(a.userService)
	photoHandler := handlers.NewPhotoHandler(a.photoService, a.wsHub, a.cfg.Gallery.MaxUploadBytes)
	wsHandler := handlers.NewWebSocketHandler(a.wsHub)
	staticHandler := handlers.NewStaticHandler(a.cfg.Web.DistDir)

	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})

	// Public routes
	r.Post("/api/login", userHandler.Login)

	// Gated only when auth.require_token is set
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(a.userService, a.cfg.Auth.RequireToken))
		r.Post("/api/upload", photoHandler.UploadPhoto)
		r.Get("/api/photos", photoHandler.GetPhotos)
		r.Get("/photos/{filename}", photoHandler.ServePhoto)
		r.Get("/ws", wsHandler.HandleWebSocket)
	})

	// Client application and client-side routing
	r.Get("/*", staticHandler.ServeHTTP)

	return r
}

// Run starts the server and blocks until SIGINT or SIGTERM
func Run(cfg *config.Config) error {
	logger.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	a, err := newApp(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if !cfg.Auth.RequireToken {
		log.Warn().Msg("auth.require_token is off: upload and listing are reachable without logging in")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      a.router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Str("data_dir", cfg.Storage.DataDir).
			Str("backend", cfg.Storage.Backend).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	a.wsHub.Close()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
	return nil
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
