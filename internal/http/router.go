package http

import (
	"context"
	"log/slog"
	"time"

	"touristhub-backend/internal/config"
	"touristhub-backend/internal/http/handlers"
	"touristhub-backend/internal/http/middlewares"
	"touristhub-backend/internal/observability"
	"touristhub-backend/internal/repo/postgres"
	"touristhub-backend/internal/session"
	"touristhub-backend/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, sessions session.Store, pictures *storage.DiskStore, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(otelgin.Middleware("touristhub-api"))

	// credentialed cross-origin calls from the declared frontend origins only
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept"}
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)
	r.Use(prom.GinHandleMiddleware())
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// health: not ready unless the db and the session store both answer
	ping := func(ctx context.Context) error {
		if pool != nil {
			if err := pool.Ping(ctx); err != nil {
				return err
			}
		}

		if p, ok := sessions.(interface{ Ping(ctx context.Context) error }); ok {
			return p.Ping(ctx)
		}

		return nil
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	// wire up repositories and handlers
	usersRepo := postgres.NewUsersRepo(pool).WithMetrics(prom)

	authHandler := handlers.NewAuthHandler(usersRepo, sessions, pictures, prom, cfg)
	adminHandler := handlers.NewAdminHandler(usersRepo)
	authMW := middlewares.NewAuthMiddleware(sessions, usersRepo)

	// uploaded profile pictures
	if pictures != nil {
		r.Static("/uploads", pictures.Dir())
	}

	credLimiter := middlewares.NewRateLimiter(10, time.Minute)

	auth := r.Group("/api/auth")
	{
		auth.POST("/register",
			middlewares.RequireJSON(),
			middlewares.MaxBodyBytes(1<<20),
			credLimiter.ByIP(),
			authHandler.Register)
		auth.POST("/login",
			middlewares.RequireJSON(),
			middlewares.MaxBodyBytes(1<<20),
			credLimiter.ByIP(),
			authHandler.Login)
		auth.POST("/logout", authHandler.Logout)

		auth.GET("/profile", authMW.RequireAuth(), authHandler.Profile)
		auth.PUT("/profile",
			authMW.RequireAuth(),
			middlewares.RequireJSON(),
			middlewares.MaxBodyBytes(1<<20),
			authHandler.UpdateProfile)
		auth.POST("/upload-profile-picture",
			authMW.RequireAuth(),
			middlewares.MaxBodyBytes(5<<20),
			authHandler.UploadProfilePicture)
	}

	admin := r.Group("/api/admin", authMW.RequireAuth(), authMW.RequireRole("Admin"))
	{
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/users", adminHandler.ListUsers)
		admin.PATCH("/users/:userId/toggle-status", adminHandler.ToggleStatus)
		admin.DELETE("/users/:userId", adminHandler.DeleteUser)
	}

	return r
}
