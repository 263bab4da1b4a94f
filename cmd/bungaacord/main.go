package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/BungaaFACE/BungaaCord/internal/api"
	"github.com/BungaaFACE/BungaaCord/internal/auth"
	"github.com/BungaaFACE/BungaaCord/internal/bootstrap"
	"github.com/BungaaFACE/BungaaCord/internal/config"
	"github.com/BungaaFACE/BungaaCord/internal/httputil"
	"github.com/BungaaFACE/BungaaCord/internal/logging"
	"github.com/BungaaFACE/BungaaCord/internal/media"
	"github.com/BungaaFACE/BungaaCord/internal/message"
	"github.com/BungaaFACE/BungaaCord/internal/postgres"
	"github.com/BungaaFACE/BungaaCord/internal/room"
	"github.com/BungaaFACE/BungaaCord/internal/signaling"
	"github.com/BungaaFACE/BungaaCord/internal/user"
	"github.com/BungaaFACE/BungaaCord/internal/valkey"
)

// Build metadata injected via ldflags at compile time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// server holds the shared dependencies used by route handlers and middleware.
type server struct {
	cfg      *config.Config
	db       *pgxpool.Pool
	rdb      *redis.Client
	userRepo user.Repository
	roomRepo room.Repository
	msgRepo  message.Repository
	storage  media.StorageProvider
	hub      *signaling.Hub
}

func main() {
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log.Logger = logging.New(cfg.IsDevelopment(), cfg.LogFilepath)

	log.Info().
		Str("version", version).
		Str("commit", commit).
		Str("built", date).
		Str("env", cfg.ServerEnv).
		Msg("Starting BungaaCord signaling server")

	ctx := context.Background()

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConn, cfg.DatabaseMinConn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()
	log.Info().Msg("PostgreSQL connected")

	if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info().Msg("Database migrations complete")

	rdb, err := valkey.Connect(ctx, cfg.RedisURL, 5*time.Second)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() { _ = rdb.Close() }()
	log.Info().Msg("Redis connected")

	if err := bootstrap.Run(ctx, db, cfg.AdminUUID, cfg.AdminUsername, log.Logger); err != nil {
		return fmt.Errorf("bootstrap seed data: %w", err)
	}
	log.Info().Msg("Startup seeding complete")

	userRepo := user.NewPGRepository(db, log.Logger)
	roomRepo := room.NewPGRepository(db, log.Logger)
	msgRepo := message.NewPGRepository(db, log.Logger)

	// Public URLs are relative paths served by the same host, matching original_source's "/static/media/..." and
	// "/static/avatars/..." convention rather than baking PROTOCOL/HOST/PORT into stored message content.
	var storage media.StorageProvider = media.NewLocalStorage(cfg.MediaDir, "/media")
	var avatarStorage media.StorageProvider = media.NewLocalStorage(cfg.AvatarDir, "/avatars")

	reconnect := signaling.NewReconnectBuffer(rdb, time.Duration(cfg.ReconnectTTLSeconds)*time.Second)
	hub := signaling.NewHub(roomRepo, msgRepo, userRepo, storage, reconnect, cfg.MaxChatMessages, log.Logger)

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go hub.RunPinger(pingCtx, time.Duration(cfg.PingIntervalSeconds)*time.Second)

	app := fiber.New(fiber.Config{
		AppName:   "BungaaCord",
		BodyLimit: cfg.BodyLimitBytes(),
		ErrorHandler: func(c fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			msg := "An internal error occurred"
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
				msg = e.Message
			} else {
				log.Error().Err(err).
					Str("method", c.Method()).
					Str("path", c.Path()).
					Msg("Unhandled error")
			}
			return c.Status(status).JSON(fiber.Map{"status": "error", "error": msg})
		},
	})

	app.Use(requestid.New())
	app.Use(httputil.RequestLogger(log.Logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"X-Request-ID"},
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        600,
		Expiration: time.Minute,
	}))

	srv := &server{
		cfg:      cfg,
		db:       db,
		rdb:      rdb,
		userRepo: userRepo,
		roomRepo: roomRepo,
		msgRepo:  msgRepo,
		storage:  storage,
		hub:      hub,
	}
	srv.registerRoutes(app, avatarStorage)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("Shutting down server")
		pingCancel()
		hub.Shutdown()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	log.Info().Str("addr", addr).Msg("Server listening")

	if err := app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

func (s *server) registerRoutes(app *fiber.App, avatarStorage media.StorageProvider) {
	requireUser := auth.RequireUser(s.userRepo)
	requireAdmin := auth.RequireAdmin(s.userRepo, s.cfg.AdminPanelJWTSecret)

	health := api.NewHealthHandler(s.db, s.rdb)
	app.Get("/api/v1/health", health.Health)

	indexHandler := api.NewIndexHandler()
	app.Get("/", requireUser, indexHandler.Index)

	gatewayHandler := api.NewGatewayHandler(s.hub)
	app.Get("/ws", requireUser, gatewayHandler.Upgrade)

	apiGroup := app.Group("/api", requireUser)
	apiGroup.Get("/messages", api.NewMessageHandler(s.msgRepo, log.Logger).List)
	apiGroup.Get("/user", api.NewUserHandler().Get)
	apiGroup.Get("/rooms", api.NewRoomHandler(s.roomRepo, log.Logger).List)
	apiGroup.Post("/upload", api.NewUploadHandler(s.msgRepo, s.storage, int64(s.cfg.MaxUploadMB)*1024*1024, s.cfg.MaxChatMessages, log.Logger).Upload)
	apiGroup.Post("/upload_avatar", api.NewAvatarHandler(s.userRepo, avatarStorage, int64(s.cfg.MaxAvatarMB)*1024*1024, log.Logger).Upload)
	apiGroup.Get("/get_turn_creds", api.NewTurnHandler(s.cfg.TurnSecretKey, log.Logger).GetCredentials)

	adminHandler := api.NewAdminHandler(s.userRepo, s.cfg.AdminPanelJWTSecret, log.Logger)
	adminGroup := app.Group("/admin", requireAdmin)
	adminGroup.Get("/panel", adminHandler.Panel)
	adminGroup.Get("/api/users", adminHandler.ListUsers)
	adminGroup.Post("/api/users", adminHandler.CreateUser)
	adminGroup.Delete("/api/users", adminHandler.DeleteUser)

	// Public media/avatar file serving (outside /api/, no auth required — the random filename component provides
	// sufficient entropy, matching original_source's add_static("/static/") mounts).
	serveLocal := func(prefix string, storage media.StorageProvider) {
		local, ok := storage.(*media.LocalStorage)
		if !ok {
			return
		}
		app.Get(prefix+"/*", func(c fiber.Ctx) error {
			key := c.Params("*")
			if key == "" || strings.Contains(key, "..") {
				return fiber.ErrNotFound
			}
			rc, err := local.Get(c.Context(), key)
			if err != nil {
				return fiber.ErrNotFound
			}
			defer func() { _ = rc.Close() }()
			return c.SendStream(rc)
		})
	}
	serveLocal("/media", s.storage)
	serveLocal("/avatars", avatarStorage)

	app.Use(func(_ fiber.Ctx) error {
		return fiber.ErrNotFound
	})
}
