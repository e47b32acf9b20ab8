package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"vinylhub/internal/config"
	apphttp "vinylhub/internal/http"
	applog "vinylhub/internal/log"
	"vinylhub/internal/repos"
)

func testConfig() config.Config {
	return config.Config{
		Env:           "test",
		DBDSN:         ":memory:",
		AdminUser:     "admin",
		AdminPass:     "1234",
		SessionSecret: "test-secret",
		SessionTTL:    time.Hour,
		TemplatesDir:  "../../web/templates",
		StaticDir:     "../../web/static",
		Timezone:      "America/Santiago",
	}
}

func newTestApp(t *testing.T, cfg config.Config) (*fiber.App, *sqlx.DB) {
	t.Helper()
	db, err := repos.OpenDB(cfg.DBDSN, repos.AdminSeed{Username: cfg.AdminUser, Password: cfg.AdminPass})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return apphttp.NewApp(cfg, db), db
}

// browser keeps cookies between requests the way a real client would.
type browser struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func newBrowser(t *testing.T, app *fiber.App) *browser {
	return &browser{t: t, app: app, cookies: map[string]string{}}
}

func (b *browser) do(method, path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for name, value := range b.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	resp, err := b.app.Test(req, -1)
	require.NoError(b.t, err)
	for _, ck := range resp.Cookies() {
		expired := ck.MaxAge < 0 || (!ck.Expires.IsZero() && ck.Expires.Before(time.Now()))
		if expired || ck.Value == "" {
			delete(b.cookies, ck.Name)
			continue
		}
		b.cookies[ck.Name] = ck.Value
	}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp, string(raw)
}

func (b *browser) get(path string) (*http.Response, string) { return b.do(http.MethodGet, path, nil) }

// post submits form with the current csrf token, fetching one first when needed.
func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if b.cookies["csrf_"] == "" {
		b.get("/login")
	}
	form.Set("csrf", b.cookies["csrf_"])
	return b.do(http.MethodPost, path, form)
}

func (b *browser) login(username, password string) *http.Response {
	b.t.Helper()
	resp, _ := b.post("/login", url.Values{"username": {username}, "password": {password}})
	return resp
}

type logEntry struct {
	Level  string         `json:"level"`
	Kind   string         `json:"kind"`
	Action string         `json:"action"`
	UserID float64        `json:"user_id"`
	Fields map[string]any `json:"fields"`
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

func (l *lockedBuffer) entries() []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []logEntry
	for _, line := range strings.Split(strings.TrimSpace(l.buf.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil && e.Action != "" {
			out = append(out, e)
		}
	}
	return out
}

// captureLogs redirects the process logger for the rest of the test.
func captureLogs(t *testing.T) *lockedBuffer {
	t.Helper()
	lb := &lockedBuffer{}
	old := applog.Writer()
	applog.SetOutput(lb)
	t.Cleanup(func() { applog.SetOutput(old) })
	return lb
}

func findAction(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}

func productID(t *testing.T, db *sqlx.DB, code string) int64 {
	t.Helper()
	var id int64
	require.NoError(t, db.Get(&id, `SELECT id FROM productos WHERE codigo = ?`, code))
	return id
}

func stockOf(t *testing.T, db *sqlx.DB, code string) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, `SELECT stock FROM productos WHERE codigo = ?`, code))
	return n
}
