package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mytickets/internal/cache"
	"mytickets/internal/clock"
	"mytickets/internal/config"
	"mytickets/internal/database"
	"mytickets/internal/handlers"
	"mytickets/internal/messaging"
	"mytickets/internal/metrics"
	"mytickets/internal/middleware"
	"mytickets/internal/repository"
	"mytickets/internal/search"
	"mytickets/internal/service"

	"github.com/gin-gonic/gin"
)

// Server представляет HTTP сервер API
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	cache    *cache.ValkeyClient
	services *service.Services
}

// NewServer подключает зависимости и собирает роутер. Кеш и поиск
// подключаются только когда включены в конфигурации.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := db.RunMigrations(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	server := &Server{
		config: cfg,
		db:     db,
		nats:   natsClient,
	}
	probes := handlers.Probes{DB: db}

	repos := repository.NewRepositories(db)
	deps := service.Dependencies{
		Events:    repos.Events,
		Tickets:   repos.Tickets,
		Users:     repos.Users,
		Publisher: natsClient,
		Clock:     clock.NewSystem(),
	}

	// Optional integrations degrade to disabled instead of failing startup
	if cfg.Cache.Enabled {
		valkey, err := cache.NewValkeyClient(ctx, cfg.Cache)
		if err != nil {
			slog.Warn("Events cache disabled", "error", err)
		} else {
			server.cache = valkey
			deps.Cache = valkey
		}
	}

	if cfg.Elasticsearch.Enabled {
		es, err := search.NewElasticsearchClient(ctx, cfg.Elasticsearch)
		if err != nil {
			slog.Warn("Event search disabled", "error", err)
		} else {
			deps.Search = es
			probes.Search = es
		}
	}

	server.services = service.NewServices(deps)
	server.router = NewRouter(server.services, probes, cfg.RequestTimeout)

	return server, nil
}

// NewRouter настраивает middleware и все роуты
func NewRouter(services *service.Services, probes handlers.Probes, requestTimeout time.Duration) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())
	router.Use(middleware.Timeout(requestTimeout))

	h := handlers.NewHandlers(services, probes)

	events := router.Group("/events")
	{
		events.POST("", h.CreateEvent)
		events.GET("", h.ListEvents)
		events.GET("/:id", h.GetEvent)
		events.PUT("/:id", h.UpdateEvent)
		events.DELETE("/:id", h.DeleteEvent)
	}

	tickets := router.Group("/tickets")
	{
		tickets.POST("", h.CreateTicket)
		tickets.GET("/:eventId", h.ListTickets)
		tickets.PUT("/use/:id", h.UseTicket)
	}

	router.POST("/users", h.CreateUser)

	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	return router
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup закрывает соединения
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			slog.Error("Error closing cache connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
