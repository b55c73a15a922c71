package handler

import (
	"coreauth/internal/keygen"
	"coreauth/internal/model"
	"coreauth/internal/service"

	"github.com/gofiber/fiber/v2"
)

// parseAdmin checks the administrator secret before looking at the body, so a
// caller without the secret learns nothing about the expected input.
func (h *Handler) parseAdmin(c *fiber.Ctx, operation string, dst interface{}) error {
	if err := h.admin.Gate(c.UserContext(), operation, c.Get(HeaderAdminKey)); err != nil {
		return err
	}
	return h.parse(c, dst)
}

func (h *Handler) HandleCreateLicense(c *fiber.Ctx) error {
	input := new(model.CreateLicenseInput)
	if err := h.parseAdmin(c, service.OpIssueLicense, input); err != nil {
		return h.fail(c, err)
	}

	license, err := h.admin.IssueLicense(c.UserContext(), c.Get(HeaderAdminKey), model.DaysOrDefault(input.Days))
	if err != nil {
		return h.fail(c, err)
	}

	return ok(c, fiber.StatusCreated, fiber.Map{
		"license_key": license.Key,
		"expiry_date": keygen.FormatDate(license.ExpiryDate),
	})
}

func (h *Handler) HandleListUsers(c *fiber.Ctx) error {
	accounts, err := h.admin.ListAccounts(c.UserContext(), c.Get(HeaderAdminKey))
	if err != nil {
		return h.fail(c, err)
	}

	users := make([]fiber.Map, 0, len(accounts))
	for _, a := range accounts {
		users = append(users, fiber.Map{
			"username":    a.Username,
			"email":       a.Email,
			"license_key": a.LicenseKey,
			"expiry_date": keygen.FormatDate(a.ExpiryDate),
		})
	}
	return ok(c, fiber.StatusOK, fiber.Map{"users": users})
}

func (h *Handler) HandleRemoveUser(c *fiber.Ctx) error {
	input := new(model.RemoveUserInput)
	if err := h.parseAdmin(c, service.OpRemoveAccount, input); err != nil {
		return h.fail(c, err)
	}

	if err := h.admin.RemoveAccount(c.UserContext(), c.Get(HeaderAdminKey), input.Username); err != nil {
		return h.fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"message": "User removed"})
}

func (h *Handler) HandleUpdateExpiry(c *fiber.Ctx) error {
	input := new(model.UpdateExpiryInput)
	if err := h.parseAdmin(c, service.OpUpdateExpiry, input); err != nil {
		return h.fail(c, err)
	}

	expiry, err := h.admin.UpdateExpiry(c.UserContext(), c.Get(HeaderAdminKey), input.Username, model.DaysOrDefault(input.Days))
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{
		"message":     "Expiry updated",
		"expiry_date": keygen.FormatDate(expiry),
	})
}

func (h *Handler) HandleListLicenses(c *fiber.Ctx) error {
	licenses, err := h.admin.ListLicenses(c.UserContext(), c.Get(HeaderAdminKey))
	if err != nil {
		return h.fail(c, err)
	}

	out := make([]fiber.Map, 0, len(licenses))
	for _, l := range licenses {
		out = append(out, fiber.Map{
			"license_key": l.Key,
			"expiry_date": keygen.FormatDate(l.ExpiryDate),
			"used":        l.Used,
			"created_at":  l.CreatedAt.UTC(),
		})
	}
	return ok(c, fiber.StatusOK, fiber.Map{"licenses": out})
}
