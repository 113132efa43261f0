package main

import (
	"log/slog"

	"github.com/medaimane/AthleticEdge/internal/config"
	"github.com/medaimane/AthleticEdge/internal/messaging"
	"github.com/medaimane/AthleticEdge/internal/messaging/kafka"
	"github.com/medaimane/AthleticEdge/internal/messaging/watermill"
)

func openBroker(cfg *config.Config, logger *slog.Logger) (messaging.Broker, error) {
	switch cfg.Broker {
	case "kafka":
		slog.Info("Using Kafka broker", "brokers", cfg.KafkaBrokers)
		return kafka.NewKafkaBroker(cfg.KafkaBrokers), nil
	case "watermill-kafka":
		slog.Info("Using Watermill Kafka broker", "brokers", cfg.KafkaBrokers)
		return watermill.NewKafkaBroker(cfg.KafkaBrokers, logger)
	default:
		slog.Info("Using in-process broker")
		return watermill.NewGoChannelBroker(logger), nil
	}
}
