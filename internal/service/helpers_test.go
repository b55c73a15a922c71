package service

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"coreauth/internal/credential"
	"coreauth/internal/database"
	"coreauth/internal/keygen"
	"coreauth/internal/store"

	"github.com/prometheus/client_golang/prometheus"
)

const testAdminKey = "test-admin-key"

// dayD is the fixed "today" of every service test.
var dayD = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	deps  Deps
	auth  *AuthService
	admin *AdminService
	clock *testClock
	reg   *prometheus.Registry
}

func newHarness(t *testing.T, enforceExpiry bool) *harness {
	t.Helper()
	return newHarnessWith(t, enforceExpiry, credential.Plain{})
}

func newHarnessWith(t *testing.T, enforceExpiry bool, verifier credential.Verifier) *harness {
	t.Helper()
	db := database.OpenTest(t)
	clock := &testClock{now: dayD}
	reg := prometheus.NewRegistry()

	deps := Deps{
		Stores:  store.New(db, keygen.NewRandomGenerator(), clock, verifier),
		Clock:   clock,
		Audit:   NewAuditLog(db, clock),
		Metrics: NewMetrics(reg),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return &harness{
		deps:  deps,
		auth:  NewAuthService(deps, enforceExpiry),
		admin: NewAdminService(testAdminKey, deps),
		clock: clock,
		reg:   reg,
	}
}
