package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/services"
)

var (
	revocationOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "veridia_revocation_operations_total",
			Help: "Total certificate status change operations, by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	revocationOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "veridia_revocation_operation_duration_seconds",
			Help:    "Duration of certificate status change operations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

type revocationMetrics struct {
	next services.RevocationService
}

func NewRevocationMetricsMiddleware() services.RevocationMiddleware {
	return func(next services.RevocationService) services.RevocationService {
		return &revocationMetrics{next: next}
	}
}

func observe(operation string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}

	revocationOpsTotal.WithLabelValues(operation, outcome).Inc()
	revocationOpDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (mw *revocationMetrics) RevokeCertificate(ctx context.Context, input services.RevokeCertificateInput) (output *models.Request, err error) {
	start := time.Now()
	defer func() { observe("revoke", start, err) }()
	return mw.next.RevokeCertificate(ctx, input)
}

func (mw *revocationMetrics) RevokeCertificatesByFilter(ctx context.Context, input services.RevokeCertificatesByFilterInput) (output *models.Request, err error) {
	start := time.Now()
	defer func() { observe("revoke_by_filter", start, err) }()
	return mw.next.RevokeCertificatesByFilter(ctx, input)
}

func (mw *revocationMetrics) UnrevokeCertificate(ctx context.Context, input services.UnrevokeCertificateInput) (output *models.Request, err error) {
	start := time.Now()
	defer func() { observe("unrevoke", start, err) }()
	return mw.next.UnrevokeCertificate(ctx, input)
}

func (mw *revocationMetrics) GetCertificateBySerialNumber(ctx context.Context, input services.GetCertificateBySerialNumberInput) (*models.Certificate, error) {
	return mw.next.GetCertificateBySerialNumber(ctx, input)
}

func (mw *revocationMetrics) GetCertificates(ctx context.Context, input services.GetCertificatesInput) (string, error) {
	return mw.next.GetCertificates(ctx, input)
}
