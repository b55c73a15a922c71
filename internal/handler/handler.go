package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"coreauth/internal/apperr"
	"coreauth/internal/service"
	"coreauth/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// HeaderAdminKey carries the administrator secret.
const HeaderAdminKey = "X-ADMIN-KEY"

// Handler exposes the auth and admin services over HTTP.
type Handler struct {
	auth     *service.AuthService
	admin    *service.AdminService
	tokens   *util.TokenManager
	validate *validator.Validate
	ping     func() error
	logger   *slog.Logger
}

// New builds the handler. ping backs the health endpoint and may be nil.
func New(auth *service.AuthService, admin *service.AdminService, tokens *util.TokenManager, ping func() error, logger *slog.Logger) *Handler {
	v := validator.New()
	// Report JSON field names in validation errors.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		auth:     auth,
		admin:    admin,
		tokens:   tokens,
		validate: v,
		ping:     ping,
		logger:   logger.With(slog.String("component", "http")),
	}
}

// statusOf maps a failure kind to its HTTP status.
func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.InvalidInput:
		return fiber.StatusBadRequest
	case apperr.Unauthorized:
		return fiber.StatusUnauthorized
	case apperr.AccountExpired:
		return fiber.StatusForbidden
	case apperr.NotFound:
		return fiber.StatusNotFound
	case apperr.AlreadyUsed, apperr.DuplicateUsername:
		return fiber.StatusConflict
	case apperr.InvalidLicense, apperr.InvalidCredentials:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

var messages = map[apperr.Kind]string{
	apperr.NotFound:           "User not found",
	apperr.AlreadyUsed:        "License already used",
	apperr.InvalidLicense:     "Invalid or used license",
	apperr.DuplicateUsername:  "Username already exists",
	apperr.InvalidCredentials: "Invalid credentials",
	apperr.Unauthorized:       "Unauthorized",
	apperr.AccountExpired:     "Account expired",
	apperr.InvalidInput:       "Invalid input",
	apperr.Storage:            "Internal server error",
}

// fail writes the failure envelope for err. Storage faults never expose detail.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	message := messages[kind]

	var e *apperr.Error
	if kind == apperr.InvalidInput && errors.As(err, &e) && e.Err != nil {
		message = e.Err.Error()
	}

	return c.Status(statusOf(kind)).JSON(fiber.Map{
		"success": false,
		"error":   kind.String(),
		"message": message,
	})
}

// ok writes the success envelope merged with payload.
func ok(c *fiber.Ctx, status int, payload fiber.Map) error {
	body := fiber.Map{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

// parse decodes the JSON body into dst and validates it. An empty body decodes to
// the zero value so optional fields take their defaults.
func (h *Handler) parse(c *fiber.Ctx, dst interface{}) error {
	const op = "http.parse"
	if len(c.Body()) > 0 {
		if err := c.BodyParser(dst); err != nil {
			return apperr.Errorf(op, apperr.InvalidInput, "malformed request body")
		}
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return apperr.Errorf(op, apperr.InvalidInput, "invalid fields: %s", strings.Join(fields, ", "))
		}
		return apperr.E(op, apperr.InvalidInput, err)
	}
	return nil
}

// errorHandler renders errors that escape a handler.
func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"success": false,
				"error":   strings.ToLower(strings.ReplaceAll(fe.Message, " ", "_")),
				"message": fe.Message,
			})
		}
		logger.Error("unhandled error", slog.String("path", c.Path()), slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   apperr.Storage.String(),
			"message": messages[apperr.Storage],
		})
	}
}
