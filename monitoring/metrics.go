package monitoring

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	ticketsSold = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_sold_total",
			Help: "Total tickets created",
		},
		[]string{"payment_method", "seller"},
	)

	emailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Total notification emails by template and outcome",
		},
		[]string{"template", "status"},
	)

	tokenVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_verifications_total",
			Help: "Total QR token verification attempts by result",
		},
		[]string{"result"},
	)

	checkIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "check_ins_total",
			Help: "Total attendance check-in attempts",
		},
		[]string{"status"},
	)

	pendingPayments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pending_payments_total",
			Help: "Tickets currently awaiting payment verification",
		},
	)

	emailSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "email_send_duration_seconds",
			Help:    "Duration of outbound email sends",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"provider"},
	)
)

type Monitor struct {
	redis *redis.Client
}

func NewMonitor(redisClient *redis.Client) *Monitor {
	monitor := &Monitor{redis: redisClient}

	// Start metrics collection
	go monitor.collectMetrics()

	return monitor
}

func (m *Monitor) collectMetrics() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		ctx := context.Background()
		m.collectPendingMetrics(ctx)
	}
}

func (m *Monitor) collectPendingMetrics(ctx context.Context) {
	// The ticket service maintains this counter alongside its dashboard cache.
	count, err := m.redis.Get(ctx, "tickets:pending_count").Int64()
	if err != nil {
		return
	}
	pendingPayments.Set(float64(count))
}

func (m *Monitor) TrackTicketSold(paymentMethod, seller string) {
	ticketsSold.WithLabelValues(paymentMethod, seller).Inc()
}

func (m *Monitor) TrackEmailSent(template, status string) {
	emailsSent.WithLabelValues(template, status).Inc()
}

func (m *Monitor) TrackVerification(result string) {
	tokenVerifications.WithLabelValues(result).Inc()
}

func (m *Monitor) TrackCheckIn(status string) {
	checkIns.WithLabelValues(status).Inc()
}

func (m *Monitor) TrackEmailDuration(provider string, duration time.Duration) {
	emailSendDuration.WithLabelValues(provider).Observe(duration.Seconds())
}
