package metrics

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Registry 独立注册表，避免与默认全局注册表冲突
var Registry = prometheus.NewRegistry()

var (
	// HTTP 请求指标
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// 业务指标
	CarsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cars_created_total",
			Help: "Total number of car records created",
		},
	)

	CarsDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cars_deleted_total",
			Help: "Total number of car records deleted",
		},
	)

	BlobDeleteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "blob_delete_failures_total",
			Help: "Image deletions that failed while deleting a car",
		},
	)

	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uploads_total",
			Help: "Total number of image uploads",
		},
		[]string{"status"},
	)
)

func init() {
	Registry.MustRegister(
		RequestsTotal,
		RequestDuration,
		CarsCreated,
		CarsDeleted,
		BlobDeleteFailures,
		UploadsTotal,
	)
}

// RecordRequest 记录一次请求
func RecordRequest(method, path, status string, duration time.Duration) {
	RequestsTotal.WithLabelValues(method, path, status).Inc()
	RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ContentType 文本暴露格式
const ContentType = string(expfmt.FmtText)

// WriteText 以 Prometheus 文本格式输出全部指标
func WriteText(w io.Writer) error {
	families, err := Registry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
