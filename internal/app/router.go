package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bissquit/hotel-booking/api/openapi"
	"github.com/bissquit/hotel-booking/internal/booking"
	"github.com/bissquit/hotel-booking/internal/catalog"
	"github.com/bissquit/hotel-booking/internal/domain"
	"github.com/bissquit/hotel-booking/internal/identity"
	"github.com/bissquit/hotel-booking/internal/identity/jwt"
	"github.com/bissquit/hotel-booking/internal/pkg/ctxlog"
	"github.com/bissquit/hotel-booking/internal/pkg/httputil"
	"github.com/bissquit/hotel-booking/internal/version"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const docsPage = `<!DOCTYPE html>
<html>
<head>
    <title>Hotel Booking API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
        SwaggerUIBundle({
            url: "/api/openapi.yaml",
            dom_id: '#swagger-ui',
            presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
            layout: "BaseLayout"
        });
    </script>
</body>
</html>`

func (a *App) setupRouter(ctx context.Context, repos *repositories) (*chi.Mux, error) {
	r := chi.NewRouter()

	// Metrics middleware must be first to measure full request time
	r.Use(httputil.MetricsMiddleware)

	// CORS must be early to handle preflight requests before other middleware
	r.Use(httputil.CORSMiddleware(a.config.CORS.AllowedOrigins))
	r.Use(middleware.RequestID)
	r.Use(httputil.RequestLoggerMiddleware(a.logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(a.config.Server.RequestTimeout))

	r.Get("/healthz", a.healthzHandler)
	r.Get("/readyz", a.readyzHandler)
	r.Get("/version", a.versionHandler)

	r.Get("/api/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/x-yaml")
		_, _ = w.Write(openapi.Spec)
	})

	r.Get("/docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(docsPage))
	})

	authenticator, err := jwt.NewAuthenticator(jwt.Config{
		Secret:   a.config.JWT.Secret,
		TokenTTL: a.config.JWT.TokenTTL,
		Issuer:   a.config.JWT.Issuer,
	})
	if err != nil {
		return nil, fmt.Errorf("create authenticator: %w", err)
	}

	identityService := identity.NewService(repos.users, authenticator)
	if err := a.bootstrapAdmin(ctx, identityService); err != nil {
		return nil, err
	}

	bookingService := booking.NewService(repos.bookings, nil, booking.Config{
		OperationTimeout: a.config.Booking.OperationTimeout,
		MaxCodeAttempts:  a.config.Booking.MaxCodeAttempts,
	})
	catalogService := catalog.NewService(repos.rooms, bookingService)

	identityHandler := identity.NewHandler(identityService)
	catalogHandler := catalog.NewHandler(catalogService)
	bookingHandler := booking.NewHandler(bookingService, catalogService)

	var loginLimiter func(http.Handler) http.Handler
	if a.config.RateLimit.RPS > 0 {
		limiter := httputil.NewRateLimiter(a.config.RateLimit.RPS, a.config.RateLimit.Burst, a.config.RateLimit.IdleTTL)
		a.closers = append(a.closers, limiter.Stop)
		loginLimiter = limiter.Middleware()
	}

	r.Route("/api/v1", func(r chi.Router) {
		identityHandler.RegisterRoutes(r, loginLimiter)
		catalogHandler.RegisterPublicRoutes(r)
		bookingHandler.RegisterPublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(httputil.AuthMiddleware(identityService))

			identityHandler.RegisterProtectedRoutes(r)
			bookingHandler.RegisterRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(httputil.RequireRole(domain.RoleAdmin))
				catalogHandler.RegisterAdminRoutes(r)
				bookingHandler.RegisterAdminRoutes(r)
				identityHandler.RegisterAdminRoutes(r)
			})
		})
	})

	return r, nil
}

func (a *App) bootstrapAdmin(ctx context.Context, service *identity.Service) error {
	if a.config.Admin.Email == "" {
		return nil
	}

	admin, err := service.EnsureAdmin(ctx, a.config.Admin.Email, a.config.Admin.Password)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	a.logger.Info("administrator account ready", "user_id", admin.ID, "email", admin.Email)
	return nil
}

func (a *App) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) readyzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failed := a.checkReadiness(ctx)
	if len(failed) > 0 {
		for name, err := range failed {
			ctxlog.FromContext(r.Context()).Error("readiness check failed", "check", name, "error", err)
		}
		httputil.Text(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) versionHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"commit":     version.GitCommit,
		"build_date": version.BuildDate,
	})
}
