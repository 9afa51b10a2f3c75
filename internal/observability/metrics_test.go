package observability

import (
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/v1/login", "POST", 200, 10*time.Millisecond)
	m.RecordRequest("/api/v1/login", "POST", 200, 30*time.Millisecond)
	m.RecordError("/api/v1/login", "POST", "AUTHORIZE_FAILED")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/api/v1/login|POST|200"])
	assert.Equal(t, int64(20), snap.AvgLatencyMS["/api/v1/login|POST|200"])
	assert.Equal(t, int64(1), snap.Errors["/api/v1/login|POST|AUTHORIZE_FAILED"])

	var nilMetrics *Metrics
	nilMetrics.RecordRequest("/", "GET", 200, time.Millisecond)
	assert.Empty(t, nilMetrics.Snapshot().Requests)
}

func TestRequestLoggerKeysByRouteTemplate(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Get("/users/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	for i := 0; i < 50; i++ {
		for _, path := range []string{"/users/" + strconv.Itoa(i), "/missing/" + strconv.Itoa(i)} {
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil), -1)
			require.NoError(t, err)
			require.NoError(t, resp.Body.Close())
		}
	}

	snap := m.Snapshot()
	assert.Len(t, snap.Requests, 2)
	assert.Equal(t, int64(50), snap.Requests["/users/:id|GET|204"])
	for key, count := range snap.Requests {
		if key != "/users/:id|GET|204" {
			assert.True(t, strings.HasPrefix(key, UnmatchedRoute+"|GET|"), key)
			assert.Equal(t, int64(50), count)
		}
	}
}
