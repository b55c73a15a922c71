package handler

import (
	"coreauth/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configure the HTTP application around the handler.
type Options struct {
	AllowOrigins string
	// Gatherer backs /metrics. The endpoint is not mounted when nil.
	Gatherer prometheus.Gatherer
	// AccessLog enables the per-request access log line.
	AccessLog bool
}

// NewApp builds the fiber application with every route mounted.
func NewApp(h *Handler, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "CoreAuth",
		ErrorHandler: errorHandler(h.logger),
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	if opts.AccessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	allowOrigins := opts.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + HeaderAdminKey,
	}))
	app.Use(middleware.ClientInfo())

	app.Get("/", h.HandleStatus)
	app.Get("/health", h.HandleHealth)
	if opts.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api/v1")
	api.Post("/login", h.HandleLogin)
	api.Post("/register", h.HandleRegister)
	api.Post("/license", h.HandleLicenseCheck)
	if h.tokens != nil {
		api.Get("/me", middleware.Auth(h.tokens), h.HandleMe)
	}

	admin := app.Group("/admin")
	admin.Post("/create_license", h.HandleCreateLicense)
	admin.Get("/list_users", h.HandleListUsers)
	admin.Post("/remove_user", h.HandleRemoveUser)
	admin.Post("/update_expiry", h.HandleUpdateExpiry)
	admin.Get("/licenses", h.HandleListLicenses)
	admin.Get("/statistics", h.HandleStatistics)
	admin.Get("/logs", h.HandleGetLogs)

	return app
}
