package poll

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — счетчики консоли по методу Golden Signals.
type Metrics struct {
	// Latency: длительность полного цикла синхронизации
	SyncDuration *prometheus.HistogramVec

	// Errors: неудачные циклы по виду сбоя (network / protocol)
	SyncErrors *prometheus.CounterVec

	// Момент последнего успешного коммита (для алерта на «застывший» снапшот)
	LastSyncTimestamp prometheus.Gauge

	// Действия оператора по исходу
	Actions *prometheus.CounterVec

	// Внеплановые синхронизации (после успешных действий)
	ForcedSyncs prometheus.Counter

	// Уведомления, сброшенные из-за переполнения буфера
	NotificationsDropped prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern — без реестра метрики пишутся «в никуда»,
	// чтобы тесты и выключенная телеметрия не требовали nil-проверок
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		SyncDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "autosre_console_sync_duration_seconds",
			Help:    "Histogram of full sync cycle latencies.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"status"}), // ok | error

		SyncErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "autosre_console_sync_errors_total",
			Help: "Total number of failed sync cycles by error kind.",
		}, []string{"kind"}), // network | protocol

		LastSyncTimestamp: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "autosre_console_last_sync_timestamp_seconds",
			Help: "Unix time of the last successful snapshot commit.",
		}),

		Actions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "autosre_console_actions_total",
			Help: "Total number of operator actions by outcome.",
		}, []string{"action", "outcome"}), // restart_service|simulate_incident, success|failure

		ForcedSyncs: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "autosre_console_forced_syncs_total",
			Help: "Total number of out-of-band syncs requested after actions.",
		}),

		NotificationsDropped: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "autosre_console_notifications_dropped_total",
			Help: "Total number of notifications shed due to a full buffer.",
		}),
	}
}
