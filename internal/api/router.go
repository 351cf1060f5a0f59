// Package api wires the HTTP surface: fiber app, middleware chain,
// handlers, swagger docs and the prometheus endpoint.
package api

import (
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swagger "github.com/go-swagno/swagno-fiber/swagger"

	"github.com/campusware/rollcall/internal/api/docs"
	"github.com/campusware/rollcall/internal/api/handler"
	"github.com/campusware/rollcall/internal/api/middleware"
	"github.com/campusware/rollcall/internal/attendance"
	"github.com/campusware/rollcall/internal/bucket"
	"github.com/campusware/rollcall/internal/face"
	"github.com/campusware/rollcall/internal/metrics"
	"github.com/campusware/rollcall/internal/session"
	"github.com/campusware/rollcall/internal/store"
)

type Dependencies struct {
	Store    store.Store
	Sessions *session.Service
	Pipeline *attendance.Pipeline
	Verifier *attendance.FaceVerifier
	Matcher  face.Matcher
	Bucket   *bucket.Bucket
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	deps        *Dependencies
	rateLimiter *middleware.RateLimiter
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Rollcall API",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints
	healthHandler := handler.NewHealthHandler(r.deps.Store, r.deps.Matcher)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	// Prometheus metrics
	if r.deps.Registry != nil {
		metricsHandler := promhttp.HandlerFor(r.deps.Registry, promhttp.HandlerOpts{})
		r.app.Get("/metrics", adaptor.HTTPHandler(metricsHandler))
	}

	// Student-facing endpoints are unauthenticated; the per-IP limiter is
	// the only brake on abuse.
	r.rateLimiter = middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	limited := r.rateLimiter.Handler()

	scanHandler := handler.NewScanHandler(r.deps.Sessions)
	attendanceHandler := handler.NewAttendanceHandler(r.deps.Pipeline)
	faceHandler := handler.NewFaceHandler(r.deps.Verifier, r.deps.Matcher, r.deps.Bucket, r.deps.Metrics, r.logger)

	r.app.Get("/scan", limited, scanHandler.Scan)
	r.app.Post("/attendance", limited, attendanceHandler.Submit)
	r.app.Post("/face/verify", limited, faceHandler.Verify)

	// Faculty API
	v1 := r.app.Group("/v1")

	sessionHandler := handler.NewSessionHandler(r.deps.Sessions, r.logger)
	v1.Post("/sessions", sessionHandler.Create)
	v1.Get("/sessions", sessionHandler.List)
	v1.Get("/sessions/:id", sessionHandler.Get)
	v1.Patch("/sessions/:id", sessionHandler.SetActive)
	v1.Delete("/sessions/:id", sessionHandler.Delete)
	v1.Get("/sessions/:id/report", sessionHandler.Report)
	v1.Get("/sessions/:id/export", sessionHandler.Export)
	v1.Patch("/sessions/:id/records/:roll_no", sessionHandler.CorrectRecord)
	v1.Delete("/sessions/:id/records/:roll_no", sessionHandler.DeleteRecord)

	v1.Post("/face/enroll", faceHandler.Enroll)
	v1.Post("/face/reload", faceHandler.Reload)
	v1.Get("/face/status", faceHandler.Status)
	v1.Get("/face/enrolled", faceHandler.Enrolled)

	studentsHandler := handler.NewStudentsHandler(r.deps.Store)
	v1.Put("/students", studentsHandler.Upsert)
	v1.Get("/students", studentsHandler.List)
	v1.Get("/students/export", studentsHandler.Export)
	v1.Delete("/students/:roll_no", studentsHandler.Delete)
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}
	return r.app.Shutdown()
}
