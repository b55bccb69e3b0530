package kafka_middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"voicebooking/pkg/kafka"
	"voicebooking/pkg/logger"
	"voicebooking/pkg/metrics"
)

func TestMetricsConsumerMiddleware(t *testing.T) {
	m := metrics.New("test")
	mw := MetricsConsumerMiddleware(m)
	msg := kafka.Message{Topic: "agent_signals"}

	_ = mw(context.Background(), msg, func(context.Context, kafka.Message) error { return nil })
	_ = mw(context.Background(), msg, func(context.Context, kafka.Message) error { return errors.New("boom") })

	assert.Equal(t, 1.0, testutil.ToFloat64(m.KafkaMessages.WithLabelValues("agent_signals", "consumed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.KafkaMessages.WithLabelValues("agent_signals", "failed")))
}

func TestLoggingMiddlewarePassesErrorThrough(t *testing.T) {
	want := errors.New("boom")
	mw := LoggingProducerMiddleware(logger.Discard())

	err := mw(context.Background(), kafka.Message{Topic: "agent_events"}, func(context.Context, kafka.Message) error {
		return want
	})
	assert.ErrorIs(t, err, want)
}
