package config

import "time"

const (
	StoreDriverMongo  = "mongo"
	StoreDriverMemory = "memory"

	DefaultStoreDriver = StoreDriverMongo

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "voice_booking"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisDB         = 0
	DefaultSummaryClaimTTL = 10 * time.Minute

	DefaultGeminiModel              = "gemini-1.5-flash"
	DefaultSummaryRequestsPerMinute = 60
	DefaultSummaryTimeout           = 30 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultSlotLookaheadDays    = 7
	DefaultMaxSpokenSlots       = 6
	DefaultMaxEventSlots        = 12
	DefaultSlotCheckConcurrency = 8
	MaxSlotLookaheadDays        = 30

	DefaultTranscriptWindow      = 20
	DefaultRecentAppointmentScan = 100

	DefaultGreetingDelay = 500 * time.Millisecond
	DefaultAgentName     = "Alex"

	DefaultMetricsPath = "/metrics"

	DefaultPaginationLimit = 50
)
