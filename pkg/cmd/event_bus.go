package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/formforge/formforge/pkg/channels/gochannel"
	"github.com/formforge/formforge/pkg/channels/kafka"
	"github.com/formforge/formforge/pkg/eventbus"
)

// NewEventBus creates an event bus instance based on the provider.
// "gochannel" is an in-process bus for single-binary deployments; "kafka"
// reads brokers from KAFKA_BROKERS.
func NewEventBus(provider string, logger *slog.Logger) eventbus.EventBus {
	switch provider {
	case "kafka":
		pub, sub, err := kafka.CreateChannel(watermill.NewSlogLogger(logger), "formforge")
		if err != nil {
			panic(fmt.Errorf("failed to create Kafka pub/sub: %w", err))
		}

		return eventbus.NewWatermillEventBus(pub, sub)
	case "gochannel":
		pub, sub := gochannel.CreateChannel(watermill.NewSlogLogger(logger))

		return eventbus.NewWatermillEventBus(pub, sub)
	default:
		panic("Unsupported event bus provider: " + provider)
	}
}
