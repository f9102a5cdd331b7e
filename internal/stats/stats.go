package stats

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "respkv",
			Subsystem: "server",
			Name:      "commands_total",
			Help:      "Commands applied, by command name and outcome.",
		},
		[]string{"command", "status"},
	)
	protocolErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "respkv",
			Subsystem: "server",
			Name:      "protocol_errors_total",
			Help:      "Requests rejected during parsing.",
		},
	)
	connectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "respkv",
			Subsystem: "server",
			Name:      "connections_total",
			Help:      "Client connections accepted.",
		},
	)
	keyspaceLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "respkv",
			Subsystem: "keyspace",
			Name:      "lookups_total",
			Help:      "Key lookups, by hit or miss.",
		},
		[]string{"result"},
	)
)

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(commandsTotal, protocolErrors, connectionsTotal, keyspaceLookups)
	})
}

func RecordCommand(name string, err error) {
	Register()
	status := "ok"
	if err != nil {
		status = "error"
	}
	commandsTotal.WithLabelValues(name, status).Inc()
}

func RecordProtocolError() {
	Register()
	protocolErrors.Inc()
}

func RecordConnection() {
	Register()
	connectionsTotal.Inc()
}

func RecordLookup(hit bool) {
	Register()
	result := "miss"
	if hit {
		result = "hit"
	}
	keyspaceLookups.WithLabelValues(result).Inc()
}

// Handler serves the metrics endpoint.
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}
