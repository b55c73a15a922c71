package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"coreauth/internal/credential"
	"coreauth/internal/database"
	"coreauth/internal/keygen"
	"coreauth/internal/service"
	"coreauth/internal/store"
	"coreauth/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const testAdminKey = "test-admin-key"

var today = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	return newTestAppWith(t, credential.Plain{})
}

func newTestAppWith(t *testing.T, verifier credential.Verifier) *fiber.App {
	t.Helper()
	db := database.OpenTest(t)
	clock := keygen.FixedClock(today)
	reg := prometheus.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	deps := service.Deps{
		Stores:  store.New(db, keygen.NewRandomGenerator(), clock, verifier),
		Clock:   clock,
		Audit:   service.NewAuditLog(db, clock),
		Metrics: service.NewMetrics(reg),
		Logger:  logger,
	}
	h := New(
		service.NewAuthService(deps, false),
		service.NewAdminService(testAdminKey, deps),
		util.NewTokenManager("token-secret", time.Hour),
		func() error { return database.Ping(db) },
		logger,
	)
	return NewApp(h, Options{Gatherer: reg})
}

// call sends a JSON request and decodes the JSON response body.
func call(t *testing.T, app *fiber.App, method, path string, body interface{}, headers map[string]string) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func adminHeaders() map[string]string {
	return map[string]string{HeaderAdminKey: testAdminKey}
}

func createLicense(t *testing.T, app *fiber.App, days int) string {
	t.Helper()
	status, body := call(t, app, "POST", "/admin/create_license", fiber.Map{"days": days}, adminHeaders())
	require.Equal(t, fiber.StatusCreated, status)
	return body["license_key"].(string)
}

func register(t *testing.T, app *fiber.App, username, password, key string) {
	t.Helper()
	status, body := call(t, app, "POST", "/api/v1/register", fiber.Map{
		"username":    username,
		"password":    password,
		"license_key": key,
	}, nil)
	require.Equal(t, fiber.StatusCreated, status, body)
}
