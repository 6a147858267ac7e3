package service

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the domain counters exported next to the HTTP metrics.
type Metrics struct {
	sessionLoads   prometheus.Counter
	staleOpenFiles prometheus.Counter
	importedTodos  prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		sessionLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "todoboard_session_loads_total",
			Help: "Workspace sessions loaded and reconciled.",
		}),
		staleOpenFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "todoboard_stale_open_files_total",
			Help: "Open files dropped from persisted workspaces because they no longer exist.",
		}),
		importedTodos: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "todoboard_imported_todos_total",
			Help: "Todos created by the importer.",
		}),
	}
	for _, c := range []prometheus.Collector{m.sessionLoads, m.staleOpenFiles, m.importedTodos} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
