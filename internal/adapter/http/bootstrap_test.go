package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"todoapi/internal/adapter/http/helper"
	"todoapi/internal/core/telemetry"
	"todoapi/pkg/config"
	"todoapi/pkg/logger"
	. "todoapi/pkg/test"
)

func newTestRouter(t *testing.T, cfg *config.AppConfig) (*gin.Engine, *prometheus.Registry) {
	gin.SetMode(gin.TestMode)

	db := InitTestDB()
	t.Cleanup(func() {
		db.Close()
		helper.SetDebug(false)
	})

	registry := prometheus.NewRegistry()
	metrics := telemetry.NewAppMetrics(registry)
	log := logger.NewNopLogger()

	container := NewContainer(db, log, telemetry.NewNoOpProbe())

	return NewRouter(cfg, container, metrics, log, config.NewMemoryStore()), registry
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	return serveFrom(router, "192.0.2.10", method, path, body, nil)
}

func serveFrom(router *gin.Engine, remoteIP, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = remoteIP + ":51000"
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestNewRouter_StatsAreCachedUntilAWrite(t *testing.T) {
	RegisterTestingT(t)
	router, _ := newTestRouter(t, config.GetDefaultConfig())

	first := serve(router, "GET", "/api/stats/todos", "")
	Expect(first.Code).To(Equal(http.StatusOK))
	Expect(first.Header().Get("X-Cache")).To(Equal("MISS"))

	second := serve(router, "GET", "/api/stats/todos", "")
	Expect(second.Header().Get("X-Cache")).To(Equal("HIT"))
	Expect(second.Body.String()).To(Equal(first.Body.String()))

	Expect(serve(router, "POST", "/api/todos", `{"title":"Fresh"}`).Code).To(Equal(http.StatusCreated))

	third := serve(router, "GET", "/api/stats/todos", "")
	Expect(third.Header().Get("X-Cache")).To(Equal("MISS"))
	Expect(third.Body.String()).To(ContainSubstring(`"pending"`))

	Expect(serve(router, "GET", "/api/todos", "").Header().Get("X-Cache")).To(BeEmpty())
}

func TestNewRouter_RateLimitHeaders(t *testing.T) {
	RegisterTestingT(t)
	cfg := config.GetDefaultConfig()
	cfg.RateLimit.Requests = 2

	router, _ := newTestRouter(t, cfg)

	rr := serve(router, "GET", "/api/health", "")
	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Header().Get("X-RateLimit-Limit")).To(Equal("2"))
	Expect(rr.Header().Get("X-RateLimit-Remaining")).To(Equal("1"))

	Expect(serve(router, "GET", "/api/todos", "").Code).To(Equal(http.StatusOK))

	rr = serve(router, "GET", "/api/todos", "")
	Expect(rr.Code).To(Equal(http.StatusTooManyRequests))
	Expect(rr.Body.String()).To(MatchJSON(`{"success":false,"message":"Too many requests, please try again later."}`))
}

func TestNewRouter_RateLimitKeyIgnoresForwardingHeaders(t *testing.T) {
	RegisterTestingT(t)
	cfg := config.GetDefaultConfig()
	cfg.RateLimit.Requests = 3

	router, _ := newTestRouter(t, cfg)

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		rr := serveFrom(router, "203.0.113.7", "GET", "/api/health", "", map[string]string{
			"X-Forwarded-For": fmt.Sprintf("1.2.3.%d", i),
		})
		codes = append(codes, rr.Code)
	}

	Expect(codes).To(Equal([]int{200, 200, 200, 429, 429}))
	Expect(serveFrom(router, "203.0.113.8", "GET", "/api/health", "", nil).Code).To(Equal(http.StatusOK))
}

func TestNewRouter_TrustedProxyForwardsClientAddress(t *testing.T) {
	RegisterTestingT(t)
	cfg := config.GetDefaultConfig()
	cfg.RateLimit.Requests = 1
	cfg.TrustedProxies = []string{"10.0.0.0/8"}

	router, _ := newTestRouter(t, cfg)
	forwarded := func(client string) map[string]string {
		return map[string]string{"X-Forwarded-For": client}
	}

	Expect(serveFrom(router, "10.0.0.5", "GET", "/api/health", "", forwarded("198.51.100.1")).Code).To(Equal(http.StatusOK))
	Expect(serveFrom(router, "10.0.0.5", "GET", "/api/health", "", forwarded("198.51.100.2")).Code).To(Equal(http.StatusOK))
	Expect(serveFrom(router, "10.0.0.6", "GET", "/api/health", "", forwarded("198.51.100.1")).Code).To(Equal(http.StatusTooManyRequests))
}

func TestNewRouter_DisabledFeatures(t *testing.T) {
	RegisterTestingT(t)
	cfg := config.GetDefaultConfig()
	cfg.RateLimitEnabled = false
	cfg.CacheEnabled = false

	router, _ := newTestRouter(t, cfg)

	rr := serve(router, "GET", "/api/stats/priorities", "")
	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Header().Get("X-Cache")).To(BeEmpty())
	Expect(rr.Header().Get("X-RateLimit-Limit")).To(BeEmpty())
}

func TestNewRouter_CORSPreflight(t *testing.T) {
	RegisterTestingT(t)
	router, _ := newTestRouter(t, config.GetDefaultConfig())

	rr := serve(router, "OPTIONS", "/api/todos", "")

	Expect(rr.Code).To(Equal(http.StatusNoContent))
	Expect(rr.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
	Expect(rr.Header().Get("Access-Control-Allow-Methods")).To(ContainSubstring("PATCH"))
}

func TestNewRouter_RecordsRequestMetrics(t *testing.T) {
	RegisterTestingT(t)
	router, registry := newTestRouter(t, config.GetDefaultConfig())

	serve(router, "GET", "/api/health", "")
	serve(router, "GET", "/api/missing", "")

	count, err := testutil.GatherAndCount(registry, "http_requests_total")
	Expect(err).To(BeNil())
	Expect(count).To(Equal(2))
}
