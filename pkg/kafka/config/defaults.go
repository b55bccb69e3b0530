package kafka_config

import "time"

const (
	DefaultKafkaEnabled = true
	DefaultKafkaBrokers = "localhost:9092"

	DefaultEventsTopic   = "agent_events"
	DefaultSignalsTopic  = "agent_signals"
	DefaultCommandsTopic = "agent_commands"
	DefaultDLQTopic      = "agent_signals_dlq"
	DefaultConsumerGroup = "booking-agent"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1 // all replicas
	DefaultProducerCompression  = "snappy"

	DefaultConsumerStartOffset       = -1 // newest
	DefaultConsumerMinBytes          = 1
	DefaultConsumerMaxBytes          = 10 * 1024 * 1024 // 10MB
	DefaultConsumerMaxWait           = 500 * time.Millisecond
	DefaultConsumerCommitInterval    = 1 * time.Second
	DefaultConsumerHeartbeatInterval = 3 * time.Second
	DefaultConsumerSessionTimeout    = 10 * time.Second
	DefaultConsumerRebalanceTimeout  = 60 * time.Second
	DefaultConsumerMaxRetries        = 3
)
