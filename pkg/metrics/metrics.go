package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HTTP request metrics, labelled by route template rather than raw path
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usersapi_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"path", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "usersapi_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
)

// UserOperations counts service operations by name and outcome (ok, invalid, not_found, error)
var UserOperations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "usersapi_user_operations_total",
		Help: "Total number of user operations by outcome",
	},
	[]string{"operation", "result"},
)

// CacheLookups counts user cache lookups by result (hit, miss, error)
var CacheLookups = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "usersapi_cache_lookups_total",
		Help: "Total number of user cache lookups",
	},
	[]string{"result"},
)

// EventsPublished counts user events handed to the broker by type and outcome
var EventsPublished = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "usersapi_events_published_total",
		Help: "Total number of user events published",
	},
	[]string{"type", "result"},
)

// Database connection pool metrics
var (
	DBOpenConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "usersapi_db_open_connections",
			Help: "Number of open connections in the DB pool",
		},
		[]string{"db"},
	)

	DBIdleConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "usersapi_db_idle_connections",
			Help: "Number of idle connections in the DB pool",
		},
		[]string{"db"},
	)

	DBInUseConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "usersapi_db_in_use_connections",
			Help: "Number of in-use connections in the DB pool",
		},
		[]string{"db"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal, HTTPRequestDuration)
	prometheus.MustRegister(UserOperations, CacheLookups, EventsPublished)
	prometheus.MustRegister(DBOpenConns, DBIdleConns, DBInUseConns)
}
