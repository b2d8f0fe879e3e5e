package constants

// Static route constants
const (
	HealthRoute         = "/healthz"
	WebhookRoute        = "/webhook"
	RetryRoute          = "/retry"
	ReconciliationRoute = "/reconciliation"
	QueueStatsRoute     = "/queue/stats"
)
