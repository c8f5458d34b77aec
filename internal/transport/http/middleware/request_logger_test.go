package middleware_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/clinicore/prescriptions-api/internal/transport/http/middleware"
)

func TestRequestLogger_LogsCompletionWithoutCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)

	r := gin.New()
	r.Use(middleware.RequestLogger(zap.New(core)))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	const secret = "Bearer very-secret-token"
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", secret)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var completed bool
	for _, entry := range logs.All() {
		if entry.Message == "completed" {
			completed = true
		}
		for key, value := range entry.ContextMap() {
			if strings.Contains(fmt.Sprint(value), secret) {
				t.Fatalf("credential leaked into log field %s: %v", key, value)
			}
		}
	}
	if !completed {
		t.Fatal("expected a completion entry")
	}
}
