package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/unrolled/secure"

	_ "github.com/billed/billed-app/docs"
	"github.com/billed/billed-app/internal/api/handler"
	"github.com/billed/billed-app/internal/api/middleware"
	"github.com/billed/billed-app/internal/api/views"
	"github.com/billed/billed-app/internal/core/domain"
	"github.com/billed/billed-app/internal/core/ports"
)

// Services are the use cases the HTTP layer is built on.
type Services struct {
	Store     ports.BillStore
	Receipts  ports.ReceiptStorage
	Dashboard ports.DashboardService
	Auth      ports.AuthService
	// Readiness lists the dependencies checked by /health/ready.
	Readiness map[string]handler.Pinger
}

// Options configure the router.
type Options struct {
	JWTSecret          string
	Cookie             handler.CookieConfig
	RateLimitPerMinute int
	Production         bool
	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = views.MustRenderer()
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Log)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if opts.Registry != nil {
		registerer, gatherer = opts.Registry, opts.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(opts.Log))
	e.Use(secureHeaders(opts.Production))
	e.Use(echomiddleware.BodyLimit("10M"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "billed_http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || strings.HasPrefix(c.Path(), "/health")
		},
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(svc.Auth, opts.Cookie)
	billsHandler := handler.NewBillsHandler(svc.Store, opts.Log)
	newBillHandler := handler.NewNewBillHandler(svc.Store, opts.Log)
	dashboardHandler := handler.NewDashboardHandler(svc.Dashboard)
	receiptHandler := handler.NewReceiptHandler(svc.Receipts, opts.Log)
	authMiddleware := middleware.Auth(opts.JWTSecret)
	uploadLimit := rateLimit(opts.RateLimitPerMinute)

	// --- Auth routes ---
	e.GET("/", authHandler.LoginPage)
	e.POST("/login", authHandler.Login)
	e.POST("/logout", authHandler.Logout)

	// --- Employee pages ---
	employee := e.Group("/employee", authMiddleware, middleware.RBAC(domain.TypeEmployee))
	employee.GET("/bills", billsHandler.List)
	employee.POST("/bills/new", billsHandler.NewBillClicked)
	employee.GET("/bills/preview", billsHandler.Preview)
	employee.GET("/bill/new", newBillHandler.Form)
	employee.POST("/bill/new", newBillHandler.Submit, uploadLimit...)
	employee.POST("/bill/new/file", newBillHandler.File, uploadLimit...)
	employee.POST("/bill/new/back", newBillHandler.Back)

	// --- Admin pages ---
	admin := e.Group("/admin", authMiddleware, middleware.RBAC(domain.TypeAdmin))
	admin.GET("/dashboard", dashboardHandler.Overview)
	admin.POST("/bills/:id/decision", dashboardHandler.Decide)

	// --- Receipts and JSON API ---
	e.GET("/receipts/:key", receiptHandler.Download, authMiddleware)
	v1 := e.Group("/api/v1", authMiddleware)
	v1.GET("/bills", billsHandler.APIList)

	// --- Health checks (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(svc.Readiness)

	e.GET("/health", healthHandler.Liveness)           // liveness: is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness: are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

// secureHeaders sets the browser security headers on every page except the
// swagger UI, which relies on inline scripts.
func secureHeaders(production bool) echo.MiddlewareFunc {
	s := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; style-src 'self' 'unsafe-inline'",
		SSLRedirect:           production,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         !production,
	})
	wrapped := echo.WrapMiddleware(s.Handler)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		withHeaders := wrapped(next)
		return func(c echo.Context) error {
			if strings.HasPrefix(c.Request().URL.Path, "/swagger/") {
				return next(c)
			}
			return withHeaders(c)
		}
	}
}

// rateLimit throttles receipt uploads per client IP. A non-positive limit
// disables it.
func rateLimit(perMinute int) []echo.MiddlewareFunc {
	if perMinute <= 0 {
		return nil
	}
	limiter := httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "Erreur 429: trop de requêtes", http.StatusTooManyRequests)
		}),
	)
	return []echo.MiddlewareFunc{echo.WrapMiddleware(limiter)}
}
