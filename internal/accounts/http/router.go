package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/metrics"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"

	_ "github.com/aussiebroadwan/accounts/api/accounts" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService    *service.AuthService
	AccountService *service.AccountService

	// Optional. Nil disables request metrics and the /metrics endpoint.
	Metrics *metrics.Metrics

	// CORS applies to every route. No origins configured means any origin.
	CORS httpx.CORSConfig
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	return &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
	}
}

// ApplyRoutes registers every route and builds the global middleware chain.
// Call it once, after the services are set.
func (r *Router) ApplyRoutes() {
	r.middlewares = []httpx.Middleware{slogx.HTTPMiddleware(r.logger)}
	// Metrics labels by the r.Pattern the mux sets, so nothing after it may
	// swap the request for a copy.
	if r.Metrics != nil {
		r.middlewares = append(r.middlewares, r.Metrics.Middleware)
	}
	cors := r.CORS
	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	r.middlewares = append(r.middlewares, httpx.CORS(cors))

	r.registerAuth()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("GET /swagger/", httpSwagger.Handler())

	// Anything unmatched, including a known path with the wrong method.
	r.Mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		accountsdk.ErrRouteNotFound.WriteError(w)
	})
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			User Management System API
//	@version		1.0.0
//	@description	Account signup and login with stateless bearer tokens, self-service profile
//	@description	management and admin user administration.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/accounts
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:5000
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				HS256 JWT issued by signup or login. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}
	authn := RequireAuth(r.AuthService)

	r.Mux.HandleFunc("POST /api/auth/signup", h.HandleSignup)
	r.Mux.HandleFunc("POST /api/auth/login", h.HandleLogin)
	r.Mux.Handle("GET /api/auth/me", httpx.Chain(http.HandlerFunc(h.HandleMe), authn))
	r.Mux.Handle("POST /api/auth/logout", httpx.Chain(http.HandlerFunc(h.HandleLogout), authn))
}

func (r *Router) registerUsers() {
	h := &UsersHandler{AccountService: r.AccountService}
	authn := RequireAuth(r.AuthService)

	r.Mux.Handle("GET /api/users/profile",
		httpx.Chain(http.HandlerFunc(h.HandleGetProfile), authn),
	)
	r.Mux.Handle("PUT /api/users/profile",
		httpx.Chain(http.HandlerFunc(h.HandleUpdateProfile), authn),
	)
	r.Mux.Handle("PUT /api/users/change-password",
		httpx.Chain(http.HandlerFunc(h.HandleChangePassword), authn),
	)

	// Admin only
	r.Mux.Handle("GET /api/users",
		httpx.Chain(http.HandlerFunc(h.HandleList), authn, RequireAdmin),
	)
	r.Mux.Handle("PATCH /api/users/{id}/activate",
		httpx.Chain(http.HandlerFunc(h.HandleActivate), authn, RequireAdmin),
	)
	r.Mux.Handle("PATCH /api/users/{id}/deactivate",
		httpx.Chain(http.HandlerFunc(h.HandleDeactivate), authn, RequireAdmin),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /{$}", WelcomeHandler())
	r.Mux.Handle("GET /health", HealthHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))

	if r.Metrics != nil {
		r.Mux.Handle("GET /metrics", r.Metrics.Handler())
	}
}
