package config

const (
	EnvStoreDriver = "STORE_DRIVER"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr       = "REDIS_ADDR"
	EnvRedisPassword   = "REDIS_PASSWORD"
	EnvRedisDB         = "REDIS_DB"
	EnvSummaryClaimTTL = "SUMMARY_CLAIM_TTL"

	EnvGeminiAPIKey             = "GEMINI_API_KEY"
	EnvGeminiModel              = "GEMINI_MODEL"
	EnvSummaryRequestsPerMinute = "SUMMARY_REQUESTS_PER_MINUTE"
	EnvSummaryTimeout           = "SUMMARY_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvSlotLookaheadDays    = "SLOT_LOOKAHEAD_DAYS"
	EnvMaxSpokenSlots       = "MAX_SPOKEN_SLOTS"
	EnvMaxEventSlots        = "MAX_EVENT_SLOTS"
	EnvSlotCheckConcurrency = "SLOT_CHECK_CONCURRENCY"

	EnvTranscriptWindow      = "TRANSCRIPT_WINDOW"
	EnvRecentAppointmentScan = "RECENT_APPOINTMENT_SCAN"

	EnvGreetingDelay = "GREETING_DELAY"
	EnvAgentName     = "AGENT_NAME"

	EnvMetricsPath  = "METRICS_PATH"
	EnvSeedDemoData = "SEED_DEMO_DATA"
)
