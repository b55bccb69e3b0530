package main

import (
	"context"
	"os"

	"voicebooking/internal/agent"
	"voicebooking/internal/bookings/handler"
	"voicebooking/internal/bookings/repository"
	"voicebooking/internal/bookings/service"
	"voicebooking/internal/bookings/validator"
	"voicebooking/internal/events"
	"voicebooking/internal/lifecycle"
	"voicebooking/pkg/app"
	"voicebooking/pkg/config"
	"voicebooking/pkg/kafka"
	kafka_config "voicebooking/pkg/kafka/config"
	kafkamiddleware "voicebooking/pkg/kafka/middleware"
	"voicebooking/pkg/metrics"
)

const ServiceName = "booking-agent"

type transport struct {
	sink     events.Sink
	commands *agent.Commands
	closers  []func() error
}

func main() {
	cfg := config.Load(ServiceName)
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting booking agent service")
	m := metrics.New(ServiceName)

	store, ping := initStore(cfg)
	v := validator.New(cfg.Log)

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	t := initTransport(cfg, kafkaCfg, m)

	registry := agent.NewRegistry(agent.Deps{
		Store:      store,
		Sink:       t.sink,
		Commands:   t.commands,
		Summarizer: initSummarizer(cfg),
		Claimer:    initClaimer(cfg),
		Validator:  v,
		Metrics:    m,
		Log:        cfg.Log,
	}, cfg)

	serverApp := app.NewApplication()
	serverApp.SetApp(
		cfg,
		m,
		handler.NewHealthHandler(ping, cfg.Log),
		handler.NewAgentHandler(store, registry, cfg.AgentName, cfg.Log),
	)

	serverApp.OnShutdown("summarize live sessions", registry.ShutdownAll)
	if kafkaCfg.Enabled {
		consumer := initSignalConsumer(cfg, kafkaCfg, m, registry.HandleMessage)
		serverApp.AddWorker(consumer)
		serverApp.OnShutdown("close signals consumer", func(context.Context) error { return consumer.Close() })
	}
	for _, closeFn := range t.closers {
		closeFn := closeFn
		serverApp.OnShutdown("close kafka producer", func(context.Context) error { return closeFn() })
	}

	serverApp.Run()
}

func initStore(cfg *config.Config) (service.BookingStore, handler.Pinger) {
	v := validator.New(cfg.Log)

	if cfg.UsesMemoryStore() {
		cfg.Log.Warn("Using in-memory store, data is lost on restart")
		return service.NewBookingStore(
			repository.NewMemoryCallerRepository(),
			repository.NewMemoryAppointmentRepository(),
			repository.NewMemoryConversationRepository(),
			v,
			cfg,
		), nil
	}

	cfg.SetMongo()
	store := service.NewBookingStore(
		repository.NewMongoCallerRepository(cfg),
		repository.NewMongoAppointmentRepository(cfg),
		repository.NewMongoConversationRepository(cfg),
		v,
		cfg,
	)
	cfg.Log.Info("Booking store initialized", "database", cfg.MongoDatabaseName)

	return store, func(ctx context.Context) error {
		return cfg.Client.Mongo.Ping(ctx, nil)
	}
}

func initTransport(cfg *config.Config, kafkaCfg *kafka_config.Config, m *metrics.Metrics) transport {
	if !kafkaCfg.Enabled {
		cfg.Log.Warn("Kafka disabled, events and commands are only logged")
		return transport{
			sink:     events.NewLogSink(cfg.Log),
			commands: agent.NewCommands(kafka.NewLogPublisher(kafkaCfg.CommandsTopic, cfg.Log)),
		}
	}

	eventsProducer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.EventsTopic, "", cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create events producer", "error", err)
	}
	commandsProducer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.CommandsTopic, "", cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create commands producer", "error", err)
	}
	for _, p := range []*kafka.Producer{eventsProducer, commandsProducer} {
		p.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
		p.Use(kafkamiddleware.MetricsProducerMiddleware(m))
	}

	t := transport{
		sink:     events.NewKafkaSink(eventsProducer),
		commands: agent.NewCommands(commandsProducer),
	}

	t.closers = []func() error{eventsProducer.Close, commandsProducer.Close}
	return t
}

func initSignalConsumer(cfg *config.Config, kafkaCfg *kafka_config.Config, m *metrics.Metrics, handle kafka.MessageHandler) *kafka.Consumer {
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		kafkaCfg.SignalsTopic,
		kafkaCfg.ConsumerGroup,
		kafkaCfg.DLQTopic,
		handle,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create signals consumer", "error", err)
	}
	consumer.Use(kafkamiddleware.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(kafkamiddleware.MetricsConsumerMiddleware(m))
	return consumer
}

func initSummarizer(cfg *config.Config) lifecycle.Summarizer {
	cfg.SetGemini()
	if cfg.Client.Gemini == nil {
		return lifecycle.TemplateSummarizer{}
	}
	return lifecycle.NewGeminiSummarizer(cfg.Client.Gemini, cfg.GeminiModel, cfg.SummaryRequestsPerMinute, cfg.SummaryTimeout)
}

func initClaimer(cfg *config.Config) lifecycle.Claimer {
	cfg.SetRedis()
	if cfg.Client.Redis == nil {
		return nil
	}
	owner, err := os.Hostname()
	if err != nil || owner == "" {
		owner = ServiceName
	}
	return lifecycle.NewRedisClaimer(cfg.Client.Redis, owner, cfg.SummaryClaimTTL)
}
