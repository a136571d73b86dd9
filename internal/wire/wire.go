package wire

import (
	"net/http"

	"seat-reservation/internal/adaptor"
	"seat-reservation/internal/data/repository"
	"seat-reservation/internal/usecase"
	"seat-reservation/pkg/mailer"
	"seat-reservation/pkg/middleware"
	"seat-reservation/pkg/receipt"
	"seat-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App holds the wired router and the services behind it
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Collaborators are the out-of-process pieces chosen at startup. Redis may be nil.
type Collaborators struct {
	Renderer receipt.Renderer
	Notifier mailer.Notifier
	Redis    *redis.Client
}

// Wiring builds services, handlers and the router
func Wiring(repo *repository.Repository, deps Collaborators, config *utils.Config, logger *zap.Logger) *App {
	if deps.Redis != nil {
		repo.Order = repository.NewCachedOrderRepository(repo.Order, deps.Redis, config.Redis.OrderTTL, logger)
	}

	service := usecase.NewService(repo, config, deps.Renderer, deps.Notifier, logger)
	handler := adaptor.NewHandler(service, logger)

	return &App{
		Router:  setupRouter(handler, deps, config, logger),
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	deps Collaborators,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	wireVenue(r, handler.Venue)
	wireReservation(r, handler.Reservation, deps, config, logger)

	health := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
	r.Get("/health", health)
	r.Get("/api/health", health)

	return r
}
