package middleware

import (
	"net/http"
	"testing"
	"time"

	"coreauth/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth(t *testing.T) {
	tokens := util.NewTokenManager("secret", time.Hour)
	token, _, err := tokens.GenerateToken("alice")
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/me", Auth(tokens), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(LocalUsername).(string))
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid_token", header: "Bearer " + token, wantStatus: fiber.StatusOK},
		{name: "missing_header", header: "", wantStatus: fiber.StatusUnauthorized},
		{name: "wrong_scheme", header: "Basic " + token, wantStatus: fiber.StatusUnauthorized},
		{name: "bad_token", header: "Bearer nope", wantStatus: fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}
