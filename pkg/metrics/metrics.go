package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors exported by the service.
type Metrics struct {
	HTTPRequests      *prometheus.CounterVec   // method, route, status
	HTTPDuration      *prometheus.HistogramVec // method, route
	CheckIns          *prometheus.CounterVec   // result: accepted, outside_geofence, duplicate, rejected
	CheckOuts         *prometheus.CounterVec   // result: accepted, no_check_in, already_checked_out
	GeofenceDistance  prometheus.Histogram
	LeaveRequests     *prometheus.CounterVec // action: applied, approved, rejected, cancelled, overlap
	ClosedOutRecords  *prometheus.CounterVec // status: Absent, Leave
	ReportGeneration  prometheus.Histogram
	OfficeConfigureOp prometheus.Counter
}

// NewMetrics registers every collector on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		HTTPRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_http_requests_total",
			Help: "Total number of handled HTTP requests.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "attendance_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		CheckIns: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_check_ins_total",
			Help: "Check-in attempts by outcome.",
		}, []string{"result"}),
		CheckOuts: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_check_outs_total",
			Help: "Check-out attempts by outcome.",
		}, []string{"result"}),
		GeofenceDistance: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "attendance_geofence_distance_meters",
			Help:    "Distance between the employee and the office at check-in.",
			Buckets: []float64{10, 25, 50, 100, 200, 500, 1000, 5000, 20000}, //nolint:mnd // bucket bounds
		}),
		LeaveRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_leave_requests_total",
			Help: "Leave request lifecycle events.",
		}, []string{"action"}),
		ClosedOutRecords: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_closed_out_records_total",
			Help: "Records created by the day close-out.",
		}, []string{"status"}),
		ReportGeneration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name: "attendance_report_generation_duration_seconds",
			Help: "Duration of attendance workbook generation.",
		}),
		OfficeConfigureOp: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "attendance_office_configurations_total",
			Help: "Number of office geofence configurations.",
		}),
	}
}

// NewNoop returns metrics bound to a private registry, for tests and tools
// that do not expose /metrics.
func NewNoop() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
