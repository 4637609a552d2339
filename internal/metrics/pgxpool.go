package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// RegisterPgxPoolMetrics exposes pgx connection pool statistics as gauges
// under the cronhook namespace.
func RegisterPgxPoolMetrics(pool *pgxpool.Pool) {
	poolGauge := func(name, help string, value func(*pgxpool.Stat) int32) prometheus.GaugeFunc {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "cronhook",
			Subsystem: "pgxpool",
			Name:      name,
			Help:      help,
		}, func() float64 {
			return float64(value(pool.Stat()))
		})
	}

	prometheus.MustRegister(
		poolGauge("acquired_conns", "Connections currently checked out of the pool",
			(*pgxpool.Stat).AcquiredConns),
		poolGauge("idle_conns", "Connections sitting idle in the pool",
			(*pgxpool.Stat).IdleConns),
		poolGauge("total_conns", "Total connections held by the pool",
			(*pgxpool.Stat).TotalConns),
		poolGauge("max_conns", "Configured upper bound on pool connections",
			(*pgxpool.Stat).MaxConns),
	)
}
