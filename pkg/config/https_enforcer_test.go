package config

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

func newHTTPSRouter(enabled bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(NewHTTPSEnforcer(enabled, zap.NewNop(), "/api/health").HTTPSMiddleware())
	router.GET("/api/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/api/todos", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestHTTPSEnforcer_Disabled(t *testing.T) {
	RegisterTestingT(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "http://todo.example.com/api/todos", nil)
	newHTTPSRouter(false).ServeHTTP(w, req)

	Expect(w.Code).To(Equal(http.StatusOK))
}

func TestHTTPSEnforcer_RedirectsPlainHTTP(t *testing.T) {
	RegisterTestingT(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "http://todo.example.com/api/todos?page=2", nil)
	newHTTPSRouter(true).ServeHTTP(w, req)

	Expect(w.Code).To(Equal(http.StatusMovedPermanently))
	Expect(w.Header().Get("Location")).To(Equal("https://todo.example.com/api/todos?page=2"))
}

func TestHTTPSEnforcer_TrustsForwardedProto(t *testing.T) {
	RegisterTestingT(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "http://todo.example.com/api/todos", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	newHTTPSRouter(true).ServeHTTP(w, req)

	Expect(w.Code).To(Equal(http.StatusOK))
}

func TestHTTPSEnforcer_SkipsLocalhost(t *testing.T) {
	RegisterTestingT(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "http://localhost:8080/api/todos", nil)
	newHTTPSRouter(true).ServeHTTP(w, req)

	Expect(w.Code).To(Equal(http.StatusOK))
}

func TestHTTPSEnforcer_ExemptPath(t *testing.T) {
	RegisterTestingT(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "http://todo.example.com/api/health", nil)
	newHTTPSRouter(true).ServeHTTP(w, req)

	Expect(w.Code).To(Equal(http.StatusOK))
}

func TestHTTPSEnforcer_LocalhostLookalikeIsRedirected(t *testing.T) {
	RegisterTestingT(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "http://localhost.example.com/api/todos", nil)
	newHTTPSRouter(true).ServeHTTP(w, req)

	Expect(w.Code).To(Equal(http.StatusMovedPermanently))
}
