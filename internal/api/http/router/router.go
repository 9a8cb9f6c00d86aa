package router

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dtroode/modulehub/internal/api/http/handler"
	"github.com/dtroode/modulehub/internal/api/http/middleware"
	"github.com/dtroode/modulehub/internal/logger"
	"github.com/dtroode/modulehub/internal/model"
)

// Limits bound request body sizes.
type Limits struct {
	MaxBodyBytes    int64
	MaxContentBytes int64
}

// Router wires HTTP routes to handlers and middleware.
type Router struct {
	authService    handler.AuthService
	authenticator  middleware.Authenticator
	moduleService  handler.ModuleService
	contextManager model.ContextManager
	registry       *prometheus.Registry
	pinger         model.Pinger
	limits         Limits
	logger         *logger.Logger
}

// New creates new Router instance. pinger may be nil when there is no
// backing database to check for readiness.
func New(
	authService handler.AuthService,
	authenticator middleware.Authenticator,
	moduleService handler.ModuleService,
	contextManager model.ContextManager,
	registry *prometheus.Registry,
	pinger model.Pinger,
	limits Limits,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		authenticator:  authenticator,
		moduleService:  moduleService,
		contextManager: contextManager,
		registry:       registry,
		pinger:         pinger,
		limits:         limits,
		logger:         logger,
	}
}

// Register builds the HTTP handler serving every route.
// Requests pass through metrics and logging before reaching the mux.
func (r *Router) Register() http.Handler {
	mux := http.NewServeMux()

	authenticate := middleware.NewAuthenticate(r.authenticator, r.contextManager, r.logger)
	r.registerAuthRoutes(mux, authenticate)
	r.registerModuleRoutes(mux, authenticate)
	r.registerHealthRoutes(mux)

	logging := middleware.NewLogging(r.logger)
	metrics := middleware.NewMetrics(r.registry)

	return metrics.Handler(logging.Handler(mux))
}

func (r *Router) registerAuthRoutes(mux *http.ServeMux, authenticate *middleware.Authenticate) {
	h := handler.NewAuth(r.authService, r.contextManager, r.limits.MaxBodyBytes, r.logger)

	mux.HandleFunc("POST /users/signup", h.Signup)
	mux.HandleFunc("POST /users/login", h.Login)
	mux.Handle("GET /whoAmI", authenticate.Handler(http.HandlerFunc(h.WhoAmI)))
	mux.Handle("POST /whoAmI", authenticate.Handler(http.HandlerFunc(h.WhoAmIProfile)))
	mux.Handle("GET /users/{id}", authenticate.Handler(http.HandlerFunc(h.GetUser)))
}

func (r *Router) registerModuleRoutes(mux *http.ServeMux, authenticate *middleware.Authenticate) {
	h := handler.NewModule(r.moduleService, r.limits.MaxBodyBytes, r.limits.MaxContentBytes, r.logger)

	routes := map[string]http.HandlerFunc{
		"POST /modules":             h.Create,
		"GET /modules":              h.Find,
		"PATCH /modules":            h.UpdateAll,
		"GET /modules/count":        h.Count,
		"GET /modules/{id}":         h.Get,
		"PATCH /modules/{id}":       h.Update,
		"PUT /modules/{id}":         h.Replace,
		"DELETE /modules/{id}":      h.Delete,
		"PUT /modules/{id}/content": h.PutContent,
		"GET /modules/{id}/content": h.GetContent,
	}
	for pattern, fn := range routes {
		mux.Handle(pattern, authenticate.Handler(fn))
	}
}

func (r *Router) registerHealthRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, req *http.Request) {
		if r.pinger != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()

			if err := r.pinger.Ping(ctx); err != nil {
				r.logger.Warn("Router: readiness check failed",
					"error", err.Error())
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.Handle("GET /metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
}
