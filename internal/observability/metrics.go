package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	dialogMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gym_statistics",
		Subsystem: "dialog",
		Name:      "messages_total",
		Help:      "Chat messages handled by the dialog engine, by the state they arrived in.",
	}, []string{"state"})
	workoutsAppended = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gym_statistics",
		Subsystem: "store",
		Name:      "workouts_appended_total",
		Help:      "Workout records appended to the durable file.",
	})
	workoutsDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gym_statistics",
		Subsystem: "store",
		Name:      "workouts_deleted_total",
		Help:      "Workout records removed with /delete_last.",
	})
	storeWriteFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gym_statistics",
		Subsystem: "store",
		Name:      "write_failures_total",
		Help:      "Failed rewrites of the workouts or user names file.",
	})
	dashboardReloads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gym_statistics",
		Subsystem: "dashboard",
		Name:      "reloads_total",
		Help:      "Dashboard cache reloads, by the trigger that caused them.",
	}, []string{"trigger"})
	dashboardRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gym_statistics",
		Subsystem: "dashboard",
		Name:      "cached_records",
		Help:      "Records held by the dashboard cache after the last reload.",
	})
	dashboardSnapshotMtime = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gym_statistics",
		Subsystem: "dashboard",
		Name:      "snapshot_mtime_timestamp_seconds",
		Help:      "Modification time of the workouts file the dashboard snapshot was loaded from.",
	})
)

func init() {
	prometheus.MustRegister(
		dialogMessages,
		workoutsAppended,
		workoutsDeleted,
		storeWriteFailures,
		dashboardReloads,
		dashboardRecords,
		dashboardSnapshotMtime,
	)
}

func RecordDialogMessage(state string) {
	dialogMessages.WithLabelValues(state).Inc()
}

func RecordWorkoutAppended() {
	workoutsAppended.Inc()
}

func RecordWorkoutDeleted() {
	workoutsDeleted.Inc()
}

func RecordStoreWriteFailure() {
	storeWriteFailures.Inc()
}

// RecordDashboardReload updates the reload counter and snapshot gauges.
func RecordDashboardReload(trigger string, records int, mtime time.Time) {
	dashboardReloads.WithLabelValues(trigger).Inc()
	dashboardRecords.Set(float64(records))
	if !mtime.IsZero() {
		dashboardSnapshotMtime.Set(float64(mtime.Unix()))
	}
}
