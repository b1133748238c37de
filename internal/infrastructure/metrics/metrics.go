// Package metrics 订阅代理事件并导出 Prometheus 指标
package metrics

import (
	"context"
	"net/http"

	"plural_proxy_server/internal/infrastructure/mq"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 代理相关指标
type Metrics struct {
	registry *prometheus.Registry

	proxied        prometheus.Counter
	deleted        prometheus.Counter
	routeOutcomes  *prometheus.CounterVec
	webhookCreated prometheus.Counter
}

// New 创建独立 registry 并注册全部指标
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		proxied: factory.NewCounter(prometheus.CounterOpts{
			Name: "plural_proxy_messages_proxied_total",
			Help: "Total number of messages relayed as a member",
		}),
		deleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "plural_proxy_messages_deleted_total",
			Help: "Total number of relayed messages whose identity record was cleaned up",
		}),
		routeOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "plural_proxy_route_outcomes_total",
			Help: "Proxy router outcomes by kind",
		}, []string{"outcome"}),
		webhookCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "plural_proxy_webhooks_created_total",
			Help: "Total number of relay webhooks provisioned",
		}),
	}
}

// Handle 事件订阅入口
func (m *Metrics) Handle(ctx context.Context, evt mq.Event) {
	switch evt.Type {
	case mq.EventMessageProxied:
		m.proxied.Inc()
	case mq.EventProxyMessageDeleted:
		m.deleted.Inc()
	}
}

// ObserveRoute 记录一次路由结果
func (m *Metrics) ObserveRoute(outcome string) {
	m.routeOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveWebhookCreated 记录一次 webhook 创建
func (m *Metrics) ObserveWebhookCreated() {
	m.webhookCreated.Inc()
}

// Registry 返回底层 registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler /metrics 的 HTTP 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
