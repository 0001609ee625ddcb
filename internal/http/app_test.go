package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"productcatalog/internal/http/handlers"
	applog "productcatalog/internal/log"
	"productcatalog/internal/notify"
	"productcatalog/internal/repos"
	"productcatalog/web"
)

type testApp struct {
	app  *fiber.App
	db   *sqlx.DB
	logs *observer.ObservedLogs
}

// Minimal app wired like main: real store over in-memory sqlite, log notifier,
// request and notification logs captured by an observer. setup runs before the
// product routes and the NotFound fallback are mounted.
func newTestApp(t *testing.T, setup ...func(*fiber.App)) *testApp {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	core, logs := observer.New(zapcore.DebugLevel)
	zl := zap.New(core)
	applog.Init(zl)
	t.Cleanup(func() { applog.Init(nil) })

	app := fiber.New(fiber.Config{Views: web.Engine(), ErrorHandler: handlers.ErrorHandler})
	app.Server().MaxRequestBodySize = 1 << 20
	app.Use(requestid.New())
	for _, fn := range setup {
		fn(app)
	}

	deps := handlers.NewDeps(db, notify.NewLogNotifier(zl), zl)
	deps.Mount(app)
	app.Use(handlers.NotFound)
	return &testApp{app: app, db: db, logs: logs}
}

func (a *testApp) do(t *testing.T, method, path, body string) (*http.Response, string) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := a.app.Test(req, int((5 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	b, _ := io.ReadAll(resp.Body)
	return resp, string(b)
}

func (a *testApp) expect(t *testing.T, method, path, body string, status int) string {
	t.Helper()
	resp, out := a.do(t, method, path, body)
	if resp.StatusCode != status {
		t.Fatalf("%s %s: expected %d, got %d body=%s", method, path, status, resp.StatusCode, out)
	}
	return out
}

func (a *testApp) messages(level zapcore.Level, name string) []observer.LoggedEntry {
	return a.logs.FilterLevelExact(level).FilterMessage(name).All()
}

func newLimitedApp(t *testing.T, max int) *testApp {
	return newTestApp(t, func(app *fiber.App) {
		app.Use(limiter.New(limiter.Config{
			Max:        max,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.limit.hit", nil)
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
			},
		}))
	})
}
