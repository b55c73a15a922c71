package handler

import (
	"strings"
	"testing"

	"coreauth/internal/credential"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestStatusAndHealth(t *testing.T) {
	app := newTestApp(t)

	status, body := call(t, app, "GET", "/", nil, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "CoreAuth API running", body["status"])

	status, body = call(t, app, "GET", "/health", nil, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestRegisterLoginFlow(t *testing.T) {
	app := newTestApp(t)
	key := createLicense(t, app, 30)

	status, body := call(t, app, "POST", "/api/v1/register", fiber.Map{
		"username":    "alice",
		"password":    "p1",
		"email":       "alice@example.com",
		"license_key": key,
	}, nil)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, true, body["success"])
	info := body["info"].(map[string]interface{})
	assert.Equal(t, "2024-07-01", info["expiry_date"])

	status, body = call(t, app, "POST", "/api/v1/login", fiber.Map{"username": "alice", "password": "p1"}, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "alice", body["user"].(map[string]interface{})["username"])
	info = body["info"].(map[string]interface{})
	assert.Equal(t, "2024-07-01", info["expiry_date"])
	assert.Equal(t, false, info["expired"])

	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	status, body = call(t, app, "GET", "/api/v1/me", nil, map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, fiber.StatusOK, status)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, key, user["license_key"])
	assert.Equal(t, "alice@example.com", user["email"])
}

func TestRegisterFailures(t *testing.T) {
	app := newTestApp(t)
	used := createLicense(t, app, 30)
	register(t, app, "alice", "p1", used)
	fresh := createLicense(t, app, 30)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantKind   string
	}{
		{
			name:       "missing_fields",
			body:       fiber.Map{"username": "bob"},
			wantStatus: fiber.StatusBadRequest,
			wantKind:   "invalid_input",
		},
		{
			name:       "bad_email",
			body:       fiber.Map{"username": "bob", "password": "p", "email": "nope", "license_key": fresh},
			wantStatus: fiber.StatusBadRequest,
			wantKind:   "invalid_input",
		},
		{
			name:       "unknown_license",
			body:       fiber.Map{"username": "bob", "password": "p", "license_key": "LIC-000000000000"},
			wantStatus: fiber.StatusUnprocessableEntity,
			wantKind:   "invalid_license",
		},
		{
			name:       "used_license",
			body:       fiber.Map{"username": "bob", "password": "p", "license_key": used},
			wantStatus: fiber.StatusUnprocessableEntity,
			wantKind:   "invalid_license",
		},
		{
			name:       "duplicate_username",
			body:       fiber.Map{"username": "alice", "password": "p", "license_key": fresh},
			wantStatus: fiber.StatusConflict,
			wantKind:   "duplicate_username",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, app, "POST", "/api/v1/register", tt.body, nil)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantKind, body["error"])
		})
	}

	// The failed duplicate registration must not have consumed the fresh license.
	register(t, app, "bob", "p", fresh)
}

func TestLoginFailures(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "alice", "p1", createLicense(t, app, 30))

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantKind   string
	}{
		{name: "wrong_password", body: fiber.Map{"username": "alice", "password": "nope"}, wantStatus: fiber.StatusUnprocessableEntity, wantKind: "invalid_credentials"},
		{name: "unknown_user", body: fiber.Map{"username": "ghost", "password": "p1"}, wantStatus: fiber.StatusUnprocessableEntity, wantKind: "invalid_credentials"},
		{name: "empty_body", body: fiber.Map{}, wantStatus: fiber.StatusBadRequest, wantKind: "invalid_input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, app, "POST", "/api/v1/login", tt.body, nil)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantKind, body["error"])
			assert.Nil(t, body["token"])
		})
	}
}

func TestLicenseCheck(t *testing.T) {
	app := newTestApp(t)
	key := createLicense(t, app, 7)

	status, body := call(t, app, "POST", "/api/v1/license", fiber.Map{"license_key": key}, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "2024-06-08", body["info"].(map[string]interface{})["expiry_date"])

	// Redeemed licenses still report their expiry.
	register(t, app, "alice", "p1", key)
	status, _ = call(t, app, "POST", "/api/v1/license", fiber.Map{"license_key": key}, nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, body = call(t, app, "POST", "/api/v1/license", fiber.Map{"license_key": "LIC-FFFFFFFFFFFF"}, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "invalid_license", body["error"])
}

func TestMeRequiresToken(t *testing.T) {
	app := newTestApp(t)

	status, body := call(t, app, "GET", "/api/v1/me", nil, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", body["error"])
}

func TestRegisterLoginWithBcrypt(t *testing.T) {
	verifier, err := credential.New(credential.SchemeBcrypt, bcrypt.MinCost)
	require.NoError(t, err)
	app := newTestAppWith(t, verifier)
	key := createLicense(t, app, 30)

	tests := []struct {
		name     string
		password string
	}{
		{name: "too_many_chars", password: strings.Repeat("a", 100)},
		{name: "too_many_bytes", password: strings.Repeat("é", 40)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, app, "POST", "/api/v1/register", fiber.Map{
				"username":    "alice",
				"password":    tt.password,
				"license_key": key,
			}, nil)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Equal(t, "invalid_input", body["error"])
		})
	}

	// The rejected attempts left the license redeemable.
	register(t, app, "alice", "p1", key)

	status, body := call(t, app, "POST", "/api/v1/login", fiber.Map{"username": "alice", "password": "p1"}, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, body["token"])

	status, body = call(t, app, "POST", "/api/v1/login", fiber.Map{"username": "alice", "password": "p2"}, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "invalid_credentials", body["error"])
}
