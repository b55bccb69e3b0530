package events

import (
	"context"
	"encoding/json"
	"fmt"

	"voicebooking/pkg/kafka"
	"voicebooking/pkg/logger"
)

const (
	SchemaVersion = "1"
	Source        = "booking-agent"
)

// KafkaSink publishes events keyed by session id, so one session stays on one partition.
type KafkaSink struct {
	publisher kafka.Publisher
}

func NewKafkaSink(publisher kafka.Publisher) *KafkaSink {
	return &KafkaSink{publisher: publisher}
}

func (s *KafkaSink) Emit(ctx context.Context, event Event) error {
	msg, err := kafka.NewMessage().
		WithKey(event.SessionID).
		WithValue(event).
		WithEventType(event.Type).
		WithConversationID(event.SessionID).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithTimestamp(event.Timestamp).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", event.Type, err)
	}
	return s.publisher.Publish(ctx, msg)
}

// LogSink writes events to the service log. Used when Kafka is disabled.
type LogSink struct {
	log *logger.Logger
}

func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Emit(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Type, err)
	}
	s.log.InfoContext(ctx, "Agent event", "type", event.Type, logger.SESSION, event.SessionID, "event", string(data))
	return nil
}
