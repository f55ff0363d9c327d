package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BooksReservedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "books_reserved_total",
		Help: "Total number of successful book reservations",
	})

	ReservationsCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservations_cancelled_total",
		Help: "Total number of cancelled reservations",
	})

	ReservationsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reservations_failed_total",
		Help: "Total number of failed reservation attempts",
	}, []string{"reason"})

	BooksIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "books_issued_total",
		Help: "Total number of books issued",
	})

	BooksReturnedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "books_returned_total",
		Help: "Total number of books returned",
	})

	FinesAssessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fines_assessed_total",
		Help: "Total number of overdue returns that incurred a fine",
	})

	FineAmountAssessed = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fine_amount_assessed",
		Help:    "Distribution of fine amounts assessed at return time",
		Buckets: []float64{2, 6, 10, 20, 50, 100, 300},
	})

	PaymentAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_attempts_total",
		Help: "Total number of payment verification attempts",
	})

	PaymentSuccessTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_success_total",
		Help: "Total number of verified payments",
	})

	PaymentFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_failed_total",
		Help: "Total number of rejected payments",
	}, []string{"reason"})

	PaymentVerifyLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_verify_latency_seconds",
		Help:    "Latency of payment verification and settlement",
		Buckets: prometheus.DefBuckets,
	})

	OverdueRemindersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "overdue_reminders_total",
		Help: "Total number of overdue reminder events published",
	})

	NotificationSendFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_send_failures_total",
		Help: "Total number of notification emails that failed to send",
	}, []string{"event_type"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
