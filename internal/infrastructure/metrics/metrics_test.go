package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"plural_proxy_server/internal/infrastructure/mq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, m *Metrics) map[string]float64 {
	t.Helper()
	mfs, err := m.Registry().Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, mf := range mfs {
		for _, metric := range mf.Metric {
			if metric.Counter == nil {
				continue
			}
			key := mf.GetName()
			for _, label := range metric.Label {
				key += "{" + label.GetName() + "=" + label.GetValue() + "}"
			}
			values[key] = metric.Counter.GetValue()
		}
	}
	return values
}

func TestHandleCountsEvents(t *testing.T) {
	m := New()
	ctx := context.Background()

	m.Handle(ctx, mq.Event{Type: mq.EventMessageProxied})
	m.Handle(ctx, mq.Event{Type: mq.EventMessageProxied})
	m.Handle(ctx, mq.Event{Type: mq.EventProxyMessageDeleted})
	m.Handle(ctx, mq.Event{Type: "unknown"})
	m.ObserveRoute("routed")
	m.ObserveRoute("not_applicable")
	m.ObserveRoute("routed")
	m.ObserveWebhookCreated()

	values := gather(t, m)
	assert.Equal(t, float64(2), values["plural_proxy_messages_proxied_total"])
	assert.Equal(t, float64(1), values["plural_proxy_messages_deleted_total"])
	assert.Equal(t, float64(2), values["plural_proxy_route_outcomes_total{outcome=routed}"])
	assert.Equal(t, float64(1), values["plural_proxy_route_outcomes_total{outcome=not_applicable}"])
	assert.Equal(t, float64(1), values["plural_proxy_webhooks_created_total"])
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.Handle(context.Background(), mq.Event{Type: mq.EventMessageProxied})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "plural_proxy_messages_proxied_total 1"))
}
