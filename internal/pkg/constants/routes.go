package constants

const (
	WebhookRoute         = "/webhook"
	HealthRoute          = "/health"
	EventsRoute          = "/events"
	EventRoute           = "/events/:eventId"
	CheckoutSessionRoute = "/create-checkout-session"
	MetricsRoute         = "/metrics"
	MonitorRoute         = "/monitor"

	// DocsBasePath and DocsPath combine to /docs for the swagger UI.
	DocsBasePath = "/"
	DocsPath     = "docs"
)
