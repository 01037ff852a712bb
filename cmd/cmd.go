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

	"fitfeed-backend/internal/config"
	"fitfeed-backend/internal/database"
	"fitfeed-backend/internal/handlers"
	"fitfeed-backend/internal/middleware"
	"fitfeed-backend/internal/repository"
	"fitfeed-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// app holds the wired handlers behind the router
type app struct {
	cfg         *config.Config
	hub         *services.WSHub
	userService *services.UserService

	users        *handlers.UserHandler
	follows      *handlers.FollowHandler
	posts        *handlers.PostHandler
	interactions *handlers.InteractionHandler
	ws           *handlers.WebSocketHandler
}

// Run starts the API server and blocks until SIGINT or SIGTERM
func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := database.Connect(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	if cfg.Database.Migrate {
		if err := database.Migrate(context.Background(), db); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
	}

	rdb, err := connectRedis(context.Background(), cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	a, err := newApp(context.Background(), cfg, db, rdb)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
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
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	a.hub.Close()

	log.Info().Msg("Server exited")
}

// newApp builds repositories, services and handlers on top of db
func newApp(ctx context.Context, cfg *config.Config, db database.Querier, rdb *redis.Client) (*app, error) {
	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	images, err := newImageStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var push *services.PushNotifier
	if cfg.APNs.KeyFile != "" {
		push, err = services.NewPushNotifier(cfg.APNs.KeyFile, cfg.APNs.KeyID, cfg.APNs.TeamID, cfg.APNs.Topic, cfg.APNs.Production)
		if err != nil {
			return nil, err
		}
		log.Info().Bool("production", cfg.APNs.Production).Msg("APNs push enabled")
	}

	// Initialize services
	hub := services.NewWSHub(rdb)
	notifier := services.NewNotifier(hub, push, userRepo)
	tokenTTL := time.Duration(cfg.JWT.TTLHours) * time.Hour

	userService := services.NewUserService(userRepo, followRepo, postRepo, cfg.JWT.Secret, tokenTTL)
	followService := services.NewFollowService(followRepo, userRepo, notifier)
	postService := services.NewPostService(postRepo, userRepo, images)
	commentService := services.NewCommentService(commentRepo, postRepo, userRepo, notifier)
	likeService := services.NewLikeService(likeRepo, postRepo, notifier)
	statsService := services.NewStatsService(postRepo, userRepo)

	// Initialize handlers
	return &app{
		cfg:          cfg,
		hub:          hub,
		userService:  userService,
		users:        handlers.NewUserHandler(userService, statsService),
		follows:      handlers.NewFollowHandler(followService),
		posts:        handlers.NewPostHandler(postService, int64(cfg.Uploads.MaxMemoryMB)<<20),
		interactions: handlers.NewInteractionHandler(commentService, likeService),
		ws:           handlers.NewWebSocketHandler(hub, userService),
	}, nil
}

func newImageStore(ctx context.Context, cfg *config.Config) (services.ImageStore, error) {
	if cfg.AWS.S3Bucket != "" {
		store, err := services.NewS3Store(ctx, cfg.AWS, cfg.Uploads.DefaultExt)
		if err != nil {
			return nil, err
		}
		log.Info().Str("bucket", cfg.AWS.S3Bucket).Msg("Storing uploads in S3")
		return store, nil
	}
	return services.NewDiskStore(cfg.Uploads.Dir, cfg.Uploads.PublicPath, cfg.Uploads.DefaultExt)
}

// connectRedis returns nil when no address is configured
func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	log.Info().Str("addr", cfg.Addr).Msg("Redis connection established")
	return rdb, nil
}

func (a *app) router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/health", handlers.Health)

	// Routes
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/users", a.users.CreateUser)
		r.Get("/users", a.users.ListUsers)
		r.Post("/signin", a.users.SignIn)
		r.Get("/posts/{id}", a.posts.GetPost)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(a.userService))

			r.Get("/users/{username}", a.users.GetProfile)
			r.Patch("/users/{username}", a.users.Rename)
			r.Put("/users/{username}/push-token", a.users.SetPushToken)
			r.Get("/users/{username}/following", a.follows.Following)
			r.Get("/users/{username}/followers", a.follows.Followers)
			r.Get("/users/{username}/posts", a.users.Heatmap)
			r.Get("/users/{username}/workout-stats", a.users.WorkoutStats)

			r.Post("/posts", a.posts.CreatePost)
			r.Delete("/posts/{id}", a.posts.DeletePost)
			r.Get("/feed", a.posts.Feed)

			r.Post("/comments", a.interactions.CreateComment)
			r.Delete("/comments/{id}", a.interactions.DeleteComment)

			r.Post("/posts/{id}/likes", a.interactions.Like)
			r.Delete("/posts/{id}/likes", a.interactions.Unlike)
			r.Get("/posts/{id}/likes", a.interactions.ListLikes)

			r.Post("/follow/{username}", a.follows.Follow)
			r.Delete("/follow/{username}", a.follows.Unfollow)
		})
	})

	// Uploaded images, only when they live on local disk
	if a.cfg.AWS.S3Bucket == "" {
		prefix := a.cfg.Uploads.PublicPath
		fs := http.StripPrefix(prefix, http.FileServer(http.Dir(a.cfg.Uploads.Dir)))
		r.Get(prefix+"/*", fs.ServeHTTP)
	}

	// WebSocket route
	r.Get("/ws", a.ws.HandleWebSocket)

	return r
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
