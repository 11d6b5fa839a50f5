package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SettlementsConfirmed counts confirmed payment settlements by intent kind and payment type
	SettlementsConfirmed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "craftlink_settlements_confirmed_total",
		Help: "Payment settlements confirmed, by intent kind and payment type",
	}, []string{"kind", "payment_type", "trigger"})

	// SettlementsSkipped counts confirmation calls that were idempotent no-ops
	SettlementsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "craftlink_settlements_skipped_total",
		Help: "Settlement confirmations skipped because the intent had already advanced",
	}, []string{"kind"})

	// PayoutsInitiated counts gateway payouts created, by source
	PayoutsInitiated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "craftlink_payouts_initiated_total",
		Help: "Gateway payouts created, by source type",
	}, []string{"source"})

	// PayoutFailures counts failed gateway payout attempts, by source
	PayoutFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "craftlink_payout_failures_total",
		Help: "Gateway payout attempts that failed, by source type",
	}, []string{"source"})

	// WalletMutations counts applied wallet ledger mutations by entry type
	WalletMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "craftlink_wallet_mutations_total",
		Help: "Wallet ledger mutations applied, by entry type",
	}, []string{"entry_type"})

	// CashoutsRequested counts cashout requests by terminal outcome
	CashoutsRequested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "craftlink_cashouts_total",
		Help: "Cashout requests, by outcome",
	}, []string{"outcome"})

	// GatewayRequestDuration tracks payment gateway call latency
	GatewayRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "craftlink_gateway_request_duration_seconds",
		Help:    "Payment gateway HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "status"})

	// WebhookEvents counts received gateway webhook events by type and result
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "craftlink_webhook_events_total",
		Help: "Gateway webhook events received, by event type and result",
	}, []string{"event", "result"})

	// DatabaseConnectionsGauge tracks database pool state
	DatabaseConnectionsGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "craftlink_database_connections",
		Help: "Database connection pool state",
	}, []string{"state"})
)
