package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"voicebooking/pkg/client"
	"voicebooking/pkg/logger"
)

type Config struct {
	ServiceName string
	StoreDriver string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	SummaryClaimTTL time.Duration

	GeminiAPIKey             string
	GeminiModel              string
	SummaryRequestsPerMinute int
	SummaryTimeout           time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	SlotLookaheadDays    int
	MaxSpokenSlots       int
	MaxEventSlots        int
	SlotCheckConcurrency int

	TranscriptWindow      int
	RecentAppointmentScan int

	GreetingDelay time.Duration
	AgentName     string

	MetricsPath  string
	SeedDemoData bool

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		ServiceName: serviceName,
		StoreDriver: getEnvStr(EnvStoreDriver, DefaultStoreDriver),

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		RedisAddr:       getEnvStr(EnvRedisAddr, ""),
		RedisPassword:   getEnvStr(EnvRedisPassword, ""),
		RedisDB:         getEnvNum(EnvRedisDB, DefaultRedisDB),
		SummaryClaimTTL: getEnvDuration(EnvSummaryClaimTTL, DefaultSummaryClaimTTL),

		GeminiAPIKey:             getEnvStr(EnvGeminiAPIKey, ""),
		GeminiModel:              getEnvStr(EnvGeminiModel, DefaultGeminiModel),
		SummaryRequestsPerMinute: getEnvNum(EnvSummaryRequestsPerMinute, DefaultSummaryRequestsPerMinute),
		SummaryTimeout:           getEnvDuration(EnvSummaryTimeout, DefaultSummaryTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		SlotLookaheadDays:    getEnvNum(EnvSlotLookaheadDays, DefaultSlotLookaheadDays),
		MaxSpokenSlots:       getEnvNum(EnvMaxSpokenSlots, DefaultMaxSpokenSlots),
		MaxEventSlots:        getEnvNum(EnvMaxEventSlots, DefaultMaxEventSlots),
		SlotCheckConcurrency: getEnvNum(EnvSlotCheckConcurrency, DefaultSlotCheckConcurrency),

		TranscriptWindow:      getEnvNum(EnvTranscriptWindow, DefaultTranscriptWindow),
		RecentAppointmentScan: getEnvNum(EnvRecentAppointmentScan, DefaultRecentAppointmentScan),

		GreetingDelay: getEnvDuration(EnvGreetingDelay, DefaultGreetingDelay),
		AgentName:     getEnvStr(EnvAgentName, DefaultAgentName),

		MetricsPath:  getEnvStr(EnvMetricsPath, DefaultMetricsPath),
		SeedDemoData: getEnvBool(EnvSeedDemoData, false),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	err := cfg.Validate()
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// SetRedis is a no-op when REDIS_ADDR is unset; the summary claim then stays process-local.
func (cfg *Config) SetRedis() {
	if cfg.RedisAddr == "" {
		cfg.Log.Info("Redis not configured, summary claims are process-local")
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MongoConnTimeout)
}

// SetGemini is a no-op when GEMINI_API_KEY is unset; summaries then fall back to the template summarizer.
func (cfg *Config) SetGemini() {
	if cfg.GeminiAPIKey == "" {
		cfg.Log.Info("Gemini API key not configured, using template summaries")
		return
	}
	cfg.Client.SetGemini(cfg.Log, cfg.GeminiAPIKey)
}

func (cfg *Config) UsesMemoryStore() bool {
	return cfg.StoreDriver == StoreDriverMemory
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.StoreDriver != StoreDriverMongo && cfg.StoreDriver != StoreDriverMemory {
		errors = append(errors, fmt.Sprintf("StoreDriver must be '%s' or '%s', got: %s", StoreDriverMongo, StoreDriverMemory, cfg.StoreDriver))
	}

	if cfg.StoreDriver == StoreDriverMongo {
		if cfg.MongoURI == "" {
			errors = append(errors, "MongoURI cannot be empty")
		} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
	}

	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.RedisDB < 0 {
		errors = append(errors, fmt.Sprintf("RedisDB cannot be negative, got: %d", cfg.RedisDB))
	}
	if cfg.SummaryClaimTTL <= 0 {
		errors = append(errors, fmt.Sprintf("SummaryClaimTTL must be positive, got: %s", cfg.SummaryClaimTTL))
	}
	if cfg.GeminiModel == "" {
		errors = append(errors, "GeminiModel cannot be empty")
	}
	if cfg.SummaryRequestsPerMinute <= 0 {
		errors = append(errors, fmt.Sprintf("SummaryRequestsPerMinute must be positive, got: %d", cfg.SummaryRequestsPerMinute))
	}
	if cfg.SummaryTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("SummaryTimeout must be positive, got: %s", cfg.SummaryTimeout))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}
	if cfg.GreetingDelay < 0 {
		errors = append(errors, fmt.Sprintf("GreetingDelay cannot be negative, got: %s", cfg.GreetingDelay))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.SlotLookaheadDays < 1 || cfg.SlotLookaheadDays > MaxSlotLookaheadDays {
		errors = append(errors, fmt.Sprintf("SlotLookaheadDays must be between 1 and %d, got: %d", MaxSlotLookaheadDays, cfg.SlotLookaheadDays))
	}
	if cfg.MaxSpokenSlots <= 0 {
		errors = append(errors, fmt.Sprintf("MaxSpokenSlots must be positive, got: %d", cfg.MaxSpokenSlots))
	}
	if cfg.MaxEventSlots < cfg.MaxSpokenSlots {
		errors = append(errors, fmt.Sprintf("MaxEventSlots (%d) must be >= MaxSpokenSlots (%d)", cfg.MaxEventSlots, cfg.MaxSpokenSlots))
	}
	if cfg.SlotCheckConcurrency <= 0 {
		errors = append(errors, fmt.Sprintf("SlotCheckConcurrency must be positive, got: %d", cfg.SlotCheckConcurrency))
	}
	if cfg.TranscriptWindow <= 0 {
		errors = append(errors, fmt.Sprintf("TranscriptWindow must be positive, got: %d", cfg.TranscriptWindow))
	}
	if cfg.RecentAppointmentScan <= 0 {
		errors = append(errors, fmt.Sprintf("RecentAppointmentScan must be positive, got: %d", cfg.RecentAppointmentScan))
	}
	if cfg.AgentName == "" {
		errors = append(errors, "AgentName cannot be empty")
	}
	if len(cfg.MetricsPath) == 0 || cfg.MetricsPath[0] != '/' {
		errors = append(errors, fmt.Sprintf("MetricsPath must start with '/', got: %q", cfg.MetricsPath))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"store_driver", cfg.StoreDriver,
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"redis_addr", cfg.RedisAddr,
		"redis_password_set", cfg.RedisPassword != "",
		"redis_db", cfg.RedisDB,
		"summary_claim_ttl", cfg.SummaryClaimTTL,
		"gemini_api_key_set", cfg.GeminiAPIKey != "",
		"gemini_model", cfg.GeminiModel,
		"summary_requests_per_minute", cfg.SummaryRequestsPerMinute,
		"summary_timeout", cfg.SummaryTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"slot_lookahead_days", cfg.SlotLookaheadDays,
		"max_spoken_slots", cfg.MaxSpokenSlots,
		"max_event_slots", cfg.MaxEventSlots,
		"slot_check_concurrency", cfg.SlotCheckConcurrency,
		"transcript_window", cfg.TranscriptWindow,
		"recent_appointment_scan", cfg.RecentAppointmentScan,
		"greeting_delay", cfg.GreetingDelay,
		"agent_name", cfg.AgentName,
		"metrics_path", cfg.MetricsPath,
		"seed_demo_data", cfg.SeedDemoData,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}
