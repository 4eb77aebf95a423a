package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"45"`

	// Optional. When set, fallback reference data is read from Postgres.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Remote agents
	AgentValidationURL string `envconfig:"AGENT_VALIDATION_URL"`
	AgentMatchingURL   string `envconfig:"AGENT_MATCHING_URL"`
	AgentRoutingURL    string `envconfig:"AGENT_ROUTING_URL"`
	AgentChatURL       string `envconfig:"AGENT_CHAT_URL"` // defaults to AGENT_ROUTING_URL
	AgentToken         string `envconfig:"AGENT_TOKEN"`
	AgentTimeoutSec    uint   `envconfig:"AGENT_TIMEOUT_SEC" default:"30"`

	// Backend REST API
	BackendURL   string `envconfig:"BACKEND_URL"`
	BackendToken string `envconfig:"BACKEND_TOKEN"`

	Language string `envconfig:"LANGUAGE" default:"en"`

	// Tracking
	TrackingIntervalSec uint    `envconfig:"TRACKING_INTERVAL_SEC" default:"30"`
	PositionTimeoutSec  uint    `envconfig:"POSITION_TIMEOUT_SEC" default:"10"`
	PositionMaxAgeSec   uint    `envconfig:"POSITION_MAX_AGE_SEC" default:"60"`
	AverageSpeedKmh     float64 `envconfig:"AVERAGE_SPEED_KMH" default:"25"`

	// Optional local SQLite journal of resolved decisions
	JournalPath string `envconfig:"JOURNAL_PATH"`

	// Reference snapshot in S3, used when DATABASE_URL is not set
	ReferenceBucket string `envconfig:"REFERENCE_BUCKET"`
	ReferenceKey    string `envconfig:"REFERENCE_KEY" default:"reference/relief.json"`
}
