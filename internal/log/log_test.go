package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLineCarriesRequestContext(t *testing.T) {
	var buf bytes.Buffer
	old := Writer()
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(old) })

	app := fiber.New()
	app.Post("/x", func(c *fiber.Ctx) error {
		c.Locals("requestid", "rid-1")
		c.Locals("user_id", int64(7))
		Audit(c, "thing.done", map[string]any{"n": 3})
		Error(c, "thing.fail", errors.New("boom"), nil)
		return c.SendStatus(fiber.StatusNoContent)
	})
	_, err := app.Test(httptest.NewRequest("POST", "/x", nil))
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var audit map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &audit))
	assert.Equal(t, "thing.done", audit["action"])
	assert.Equal(t, "audit", audit["kind"])
	assert.Equal(t, "rid-1", audit["req_id"])
	assert.Equal(t, float64(7), audit["user_id"])
	assert.Equal(t, "/x", audit["path"])
	assert.Equal(t, map[string]any{"n": float64(3)}, audit["fields"])

	var fail map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &fail))
	assert.Equal(t, "error", fail["level"])
	assert.Equal(t, "boom", fail["error"])
}

func TestSetLevelFiltersInfo(t *testing.T) {
	var buf bytes.Buffer
	old := Writer()
	SetOutput(&buf)
	SetLevel("warn")
	t.Cleanup(func() {
		SetLevel("info")
		SetOutput(old)
	})

	Info(nil, "quiet", nil)
	Security(nil, "loud", nil)
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}
