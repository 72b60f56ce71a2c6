package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/fakhrymubarak/weather-lookup-api/internal/config"
	"github.com/fakhrymubarak/weather-lookup-api/internal/handler"
	"github.com/fakhrymubarak/weather-lookup-api/internal/middleware"
	"github.com/fakhrymubarak/weather-lookup-api/internal/redis"
	"github.com/fakhrymubarak/weather-lookup-api/internal/repository"
	"github.com/fakhrymubarak/weather-lookup-api/internal/service"
	"github.com/fakhrymubarak/weather-lookup-api/internal/store"
)

// NewRouter mounts the weather routes and wraps them with recovery, request logging and CORS.
func NewRouter(h *handler.WeatherHandler) http.Handler {
	logger := config.GetLogger()
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return middleware.Chain(mux,
		middleware.Recoverer(logger),
		middleware.RequestLogger(logger),
		middleware.CORS(config.GetAllowedOrigins()),
	)
}

// repositoryOptions enables the Redis response cache when configured and reachable.
func repositoryOptions(ctx context.Context) []repository.Option {
	if !config.IsCacheEnabled() {
		return nil
	}
	client := redis.GetClient()
	if err := redis.Ping(ctx, client); err != nil {
		config.GetLogger().Warnw("Redis unavailable, weather cache disabled", "addr", config.GetRedisAddr(), "error", err)
		return nil
	}
	config.GetLogger().Infow("Weather cache enabled", "addr", config.GetRedisAddr(), "expiration", config.GetCacheExpiration())
	return []repository.Option{repository.WithCache(client, config.GetCacheExpiration())}
}

// NewHandler builds the full application: provider repository, a fresh in-memory store, service and router.
func NewHandler(ctx context.Context) http.Handler {
	repo := repository.NewWeatherRepository(repositoryOptions(ctx)...)
	svc := service.NewWeatherService(repo, store.NewMemoryStore())
	return NewRouter(handler.NewWeatherHandler(svc))
}

// NewHTTPServer applies the configured server timeouts.
func NewHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: config.GetServerTimeout("read_header_timeout"),
		ReadTimeout:       config.GetServerTimeout("read_timeout"),
		WriteTimeout:      config.GetServerTimeout("write_timeout"),
		IdleTimeout:       config.GetServerTimeout("idle_timeout"),
	}
}

// Serve runs srv on ln until ctx is cancelled, then shuts it down gracefully.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	serverErr := make(chan error, 1)
	go func() {
		config.GetLogger().Infow("Weather lookup server running", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetServerTimeout("shutdown_timeout"))
	defer cancel()

	config.GetLogger().Infow("Shutting down weather lookup server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-serverErr
}

// Run listens on addr and serves until ctx is cancelled.
func Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := NewHTTPServer(addr, NewHandler(ctx))
	return Serve(ctx, srv, ln)
}
