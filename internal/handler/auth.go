package handler

import (
	"log/slog"

	"coreauth/internal/apperr"
	"coreauth/internal/keygen"
	"coreauth/internal/middleware"
	"coreauth/internal/model"
	"coreauth/internal/service"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "CoreAuth API running"})
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	if h.ping != nil {
		if err := h.ping(); err != nil {
			h.logger.WarnContext(c.UserContext(), "health check failed", slog.Any("error", err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"success": false,
				"status":  "unavailable",
			})
		}
	}
	return ok(c, fiber.StatusOK, fiber.Map{"status": "ok"})
}

func (h *Handler) HandleLogin(c *fiber.Ctx) error {
	input := new(model.LoginInput)
	if err := h.parse(c, input); err != nil {
		return h.fail(c, err)
	}

	account, err := h.auth.Login(c.UserContext(), input.Username, input.Password)
	if err != nil {
		return h.fail(c, err)
	}

	payload := fiber.Map{
		"user": fiber.Map{"username": account.Username},
		"info": fiber.Map{
			"expiry_date": keygen.FormatDate(account.ExpiryDate),
			"expired":     h.auth.Expired(account),
		},
	}

	if h.tokens != nil {
		token, expiresAt, err := h.tokens.GenerateToken(account.Username)
		if err != nil {
			h.logger.ErrorContext(c.UserContext(), "failed to sign session token", slog.Any("error", err))
			return h.fail(c, apperr.E("http.login", apperr.Storage, err))
		}
		payload["token"] = token
		payload["token_expires_at"] = expiresAt.UTC()
	}

	return ok(c, fiber.StatusOK, payload)
}

func (h *Handler) HandleRegister(c *fiber.Ctx) error {
	input := new(model.RegisterInput)
	if err := h.parse(c, input); err != nil {
		return h.fail(c, err)
	}

	account, err := h.auth.Register(c.UserContext(), service.RegisterParams{
		Username:   input.Username,
		Credential: input.Password,
		Email:      input.Email,
		LicenseKey: input.LicenseKey,
	})
	if err != nil {
		return h.fail(c, err)
	}

	return ok(c, fiber.StatusCreated, fiber.Map{
		"message": "Registered successfully",
		"info": fiber.Map{
			"username":    account.Username,
			"expiry_date": keygen.FormatDate(account.ExpiryDate),
		},
	})
}

func (h *Handler) HandleLicenseCheck(c *fiber.Ctx) error {
	input := new(model.LicenseCheckInput)
	if err := h.parse(c, input); err != nil {
		return h.fail(c, err)
	}

	license, err := h.auth.CheckLicense(c.UserContext(), input.LicenseKey)
	if err != nil {
		return h.fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{
		"info": fiber.Map{"expiry_date": keygen.FormatDate(license.ExpiryDate)},
	})
}

// HandleMe returns the account behind the session token.
func (h *Handler) HandleMe(c *fiber.Ctx) error {
	username, _ := c.Locals(middleware.LocalUsername).(string)
	account, err := h.auth.Account(c.UserContext(), username)
	if err != nil {
		return h.fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{
		"user": fiber.Map{
			"username":    account.Username,
			"email":       account.Email,
			"license_key": account.LicenseKey,
			"expiry_date": keygen.FormatDate(account.ExpiryDate),
			"expired":     h.auth.Expired(account),
			"last_login":  account.LastLogin,
		},
	})
}
