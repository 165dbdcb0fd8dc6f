package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"fleetbook/pkg/config"
	"fleetbook/pkg/contracts"
	"fleetbook/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

// Application assembles the HTTP server for one service: a health surface
// with minimal middleware, an optional public (unauthenticated) surface,
// and the secured application surface behind the full middleware stack.
type Application struct {
	cfg            *config.Config
	server         *http.Server
	rateLimiter    *middleware.UserRateLimiter
	healthHandler  http.Handler
	publicHandler  http.Handler
	securedHandler http.Handler
	publicPaths    []string
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

// SetApp wires the handlers. public may be nil; publicPaths lists the mux
// patterns served without authentication (e.g. "/api/v1/quotes").
func (a *Application) SetApp(secured contracts.Handler, public contracts.Handler, publicPaths ...string) {
	a.rateLimiter = middleware.NewUserRateLimiter(
		a.cfg.RateLimitRequests,
		a.cfg.RateLimitWindow,
		a.cfg.Log,
	)

	a.setHealthHandler()
	a.setSecuredHandler(secured)
	if public != nil {
		a.setPublicHandler(public)
		a.publicPaths = publicPaths
	}
	a.setServer()
}

func (a *Application) setHealthHandler() {
	router := httprouter.New()
	(&healthHandler{cfg: a.cfg}).RegisterRoutes(router)

	var handler http.Handler = router
	handler = middleware.RequestLogging(a.cfg.Log)(handler)
	handler = middleware.Recovery(a.cfg.Log)(handler)
	a.healthHandler = handler
}

func (a *Application) setPublicHandler(public contracts.Handler) {
	router := httprouter.New()
	public.RegisterRoutes(router)

	var handler http.Handler = router
	handler = middleware.RequestTimeout(a.cfg.RequestTimeout)(handler)
	handler = middleware.RateLimit(a.rateLimiter)(handler)
	handler = middleware.RequestLogging(a.cfg.Log)(handler)
	handler = middleware.Recovery(a.cfg.Log)(handler)
	a.publicHandler = handler
}

func (a *Application) setSecuredHandler(secured contracts.Handler) {
	router := httprouter.New()
	secured.RegisterRoutes(router)

	var handler http.Handler = router
	handler = middleware.RequestTimeout(a.cfg.RequestTimeout)(handler)
	if a.cfg.Client.Redis != nil {
		store := middleware.NewRedisIdempotencyStore(a.cfg.Client.Redis, a.cfg.IdempotencyTTL, a.cfg.Log)
		handler = middleware.Idempotency(store, "Idempotency-Key")(handler)
	}
	handler = middleware.RateLimit(a.rateLimiter)(handler)
	if a.cfg.JWTSecret != "" {
		handler = middleware.Authentication(a.cfg.JWTSecret, a.cfg.Log)(handler)
		a.cfg.Log.Info("Bearer authentication enabled")
	}
	handler = middleware.ContentTypeValidation(a.cfg.Log)(handler)
	handler = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(handler)
	handler = middleware.RequestLogging(a.cfg.Log)(handler)
	handler = middleware.Recovery(a.cfg.Log)(handler)
	a.securedHandler = handler
}

func (a *Application) setServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	for _, path := range a.publicPaths {
		mux.Handle(path, a.publicHandler)
	}
	mux.Handle("/", a.securedHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	a.rateLimiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.GracefulShutdown()
	a.cfg.Log.Info("Server stopped gracefully")
}
