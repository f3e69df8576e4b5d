// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifewood_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheLookups counts cache-aside lookups by cache name and result (hit, miss).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifewood_cache_lookups_total",
		Help: "Cache-aside lookups by cache and result",
	}, []string{"cache", "result"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lifewood_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ApplicationsSubmitted counts accepted applications by project.
	ApplicationsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifewood_applications_submitted_total",
		Help: "Applications accepted by project",
	}, []string{"project"})

	// StatusChanges counts applicant status updates by new status.
	StatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifewood_applicant_status_changes_total",
		Help: "Applicant status changes by target status",
	}, []string{"status"})

	// MailDeliveries counts notification mails by kind and outcome (sent, failed, skipped).
	MailDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifewood_mail_deliveries_total",
		Help: "Notification mails by kind and outcome",
	}, []string{"kind", "outcome"})

	// AdminLogins counts admin login attempts by outcome.
	AdminLogins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifewood_admin_logins_total",
		Help: "Admin login attempts by outcome",
	}, []string{"outcome"})

	// LiveBlobs is the number of unreleased preview blobs held by the web front.
	LiveBlobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lifewood_web_live_blobs",
		Help: "Preview blobs currently registered",
	})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
