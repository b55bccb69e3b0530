package kafka_middleware

import (
	"context"
	"time"

	"voicebooking/pkg/kafka"
	"voicebooking/pkg/metrics"
)

const (
	resultPublished = "published"
	resultConsumed  = "consumed"
	resultFailed    = "failed"
)

func MetricsProducerMiddleware(m *metrics.Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		m.ObserveKafka(msg.Topic, result(err, resultPublished), time.Since(start))
		return err
	}
}

func MetricsConsumerMiddleware(m *metrics.Metrics) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.ObserveKafka(msg.Topic, result(err, resultConsumed), time.Since(start))
		return err
	}
}

func result(err error, ok string) string {
	if err != nil {
		return resultFailed
	}
	return ok
}
