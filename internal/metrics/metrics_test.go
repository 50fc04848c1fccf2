package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/v1/runs/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/api/v1/runs/:id", "GET", "200"))
	for _, id := range []string{"a", "b", "c"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+id, nil))
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/api/v1/runs/:id", "GET", "200"))

	if after-before != 3 {
		t.Errorf("expected 3 requests under the route label, got %v", after-before)
	}
}

func TestUnmatchedPathsCollapse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("other", "GET", "404"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wp-admin", nil))
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("other", "GET", "404"))

	if after-before != 1 {
		t.Errorf("expected unmatched path to be labelled other, delta %v", after-before)
	}
}

func TestRecordIngest(t *testing.T) {
	newBefore := testutil.ToFloat64(hotspotsIngested.WithLabelValues("test", "new"))
	dupBefore := testutil.ToFloat64(hotspotsIngested.WithLabelValues("test", "duplicate"))

	RecordIngest("test", 10, 7)

	if got := testutil.ToFloat64(hotspotsIngested.WithLabelValues("test", "new")) - newBefore; got != 7 {
		t.Errorf("new = %v, want 7", got)
	}
	if got := testutil.ToFloat64(hotspotsIngested.WithLabelValues("test", "duplicate")) - dupBefore; got != 3 {
		t.Errorf("duplicate = %v, want 3", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordRun("completed")

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "firewatch_detection_runs_total") {
		t.Error("expected detection run counter in exposition")
	}
}
