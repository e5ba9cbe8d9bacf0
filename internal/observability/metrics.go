package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	PageViews     *prometheus.CounterVec
	QRGenerated   *prometheus.CounterVec
	PageMutations *prometheus.CounterVec
	BotUpdates    *prometheus.CounterVec

	handler http.Handler
}

// NewMetrics registers collectors on reg. Pass prometheus.NewRegistry()
// in tests to avoid duplicate registration.
func NewMetrics(reg *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		PageViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qrpage_page_views_total",
			Help: "Landing page renders.",
		}, []string{"has_content"}),
		QRGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qrpage_qr_generated_total",
			Help: "QR codes produced by the bot.",
		}, []string{"source"}),
		PageMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qrpage_page_mutations_total",
			Help: "Page field updates by field and result.",
		}, []string{"field", "result"}),
		BotUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qrpage_bot_updates_total",
			Help: "Telegram updates received.",
		}, []string{"kind"}),
	}

	for _, c := range []prometheus.Collector{m.PageViews, m.QRGenerated, m.PageMutations, m.BotUpdates} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	return m, nil
}

func (m *Metrics) Handler() http.Handler { return m.handler }

func (m *Metrics) ObservePageView(hasContent bool) {
	if m == nil {
		return
	}
	m.PageViews.WithLabelValues(strconv.FormatBool(hasContent)).Inc()
}

func (m *Metrics) ObserveMutation(field string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.PageMutations.WithLabelValues(field, result).Inc()
}

func (m *Metrics) ObserveQR(source string) {
	if m == nil {
		return
	}
	m.QRGenerated.WithLabelValues(source).Inc()
}

func (m *Metrics) ObserveUpdate(kind string) {
	if m == nil {
		return
	}
	m.BotUpdates.WithLabelValues(kind).Inc()
}
