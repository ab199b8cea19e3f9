package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveClassification(t *testing.T) {
	r := NewRegistry()

	r.ObserveClassification("Show Hubs", 3, 7, nil)
	r.ObserveClassification("Show Hubs", 0, 0, errors.New("invalid input"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.ClassificationsTotal.WithLabelValues("Show Hubs", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ClassificationsTotal.WithLabelValues("Show Hubs", "error")))
	assert.Equal(t, 7.0, testutil.ToFloat64(r.LastThreshold))
}

func TestObserveMessageAndEnrichment(t *testing.T) {
	r := NewRegistry()
	r.ObserveMessage("hubs", nil)
	r.ObserveMessage("hubs", nil)
	r.ObserveEnrichment(time.Now(), nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.SessionMessagesTotal.WithLabelValues("hubs", "ok")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.EnrichmentDuration))
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.SessionsActive.Inc()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "protnet_sessions_active 1")
}
