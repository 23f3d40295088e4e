
package jsbridge

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kmcsr/go-jsbridge/emitter"
)

// Metrics is an emitter.Observer that records registry activity.
type Metrics struct{
	activations   *prometheus.CounterVec
	deactivations *prometheus.CounterVec
	emits         *prometheus.CounterVec
	deliveries    *prometheus.CounterVec
	listeners     *prometheus.GaugeVec
}

var _ emitter.Observer = (*Metrics)(nil)

func NewMetrics(reg prometheus.Registerer)(m *Metrics, err error){
	labels := []string{"module", "event"}
	m = &Metrics{
		activations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jsbridge",
			Subsystem: "emitter",
			Name: "activations_total",
			Help: "Times an event's native wiring was connected",
		}, labels),
		deactivations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jsbridge",
			Subsystem: "emitter",
			Name: "deactivations_total",
			Help: "Times an event's native wiring was reversed after its last subscriber left",
		}, labels),
		emits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jsbridge",
			Subsystem: "emitter",
			Name: "emits_total",
			Help: "Events emitted",
		}, labels),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jsbridge",
			Subsystem: "emitter",
			Name: "deliveries_total",
			Help: "Subscriber calls made by emits",
		}, labels),
		listeners: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "jsbridge",
			Subsystem: "emitter",
			Name: "listeners",
			Help: "Current subscribers per event",
		}, labels),
	}
	for _, c := range []prometheus.Collector{m.activations, m.deactivations, m.emits, m.deliveries, m.listeners} {
		if err = reg.Register(c); err != nil {
			return nil, err
		}
	}
	return
}

func (m *Metrics)Activated(registry string, event string){
	m.activations.WithLabelValues(registry, event).Inc()
}

func (m *Metrics)Deactivated(registry string, event string){
	m.deactivations.WithLabelValues(registry, event).Inc()
}

func (m *Metrics)Emitted(registry string, event string, delivered int){
	m.emits.WithLabelValues(registry, event).Inc()
	m.deliveries.WithLabelValues(registry, event).Add((float64)(delivered))
}

func (m *Metrics)ListenersChanged(registry string, event string, count int){
	m.listeners.WithLabelValues(registry, event).Set((float64)(count))
}

// ServeMetrics serves g on addr under /metrics until ctx is done.
func ServeMetrics(ctx context.Context, addr string, g prometheus.Gatherer)(err error){
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr: addr,
		Handler: mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext: func(net.Listener)(context.Context){ return ctx },
	}
	go func(){
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 3 * time.Second)
		defer cancel()
		server.Shutdown(sctx)
	}()
	if err = server.ListenAndServe(); errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	return
}
