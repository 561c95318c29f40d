package debezium

import (
	"context"
	"fmt"
	"log/slog"

	"ouvidoria-analytics/src/domain"
	"ouvidoria-analytics/src/infra/kafka"
)

// CDCFeed consome eventos do connector Debezium de MongoDB via Kafka e os
// entrega como domain.ChangeEvent. Implementa o mesmo contrato de feed do
// change stream direto, para instalações sem acesso ao replica set.
type CDCFeed struct {
	logger      *slog.Logger
	kafkaClient *kafka.KafkaClient
	serializer  *CDCSerializer
	topic       string
}

func NewCDCFeed(logger *slog.Logger, topic string, kafkaClient *kafka.KafkaClient, collections []string) *CDCFeed {
	serializer := &CDCSerializer{
		IncludeCollections: collections,
	}

	return &CDCFeed{
		logger:      logger,
		kafkaClient: kafkaClient,
		serializer:  serializer,
		topic:       topic,
	}
}

// Watch starts consuming CDC events and calls handler for each valid event
func (f *CDCFeed) Watch(ctx context.Context, handler func(context.Context, domain.ChangeEvent) error) error {
	f.logger.Info("Starting CDC feed consumption", "topic", f.topic)

	kafkaHandler := func(messages []kafka.Message) error {
		return f.processMessages(ctx, messages, handler)
	}

	return f.kafkaClient.Consumer(ctx, kafkaHandler, f.topic)
}

func (f *CDCFeed) processMessages(ctx context.Context, messages []kafka.Message, handler func(context.Context, domain.ChangeEvent) error) error {
	if len(messages) == 0 {
		return nil
	}

	processedCount := 0
	skippedCount := 0
	errorCount := 0

	for _, msg := range messages {
		cdcEvent, err := f.serializer.ParseCDCEvent(msg.Value)
		if err != nil {
			f.logger.Error("Failed to parse CDC message",
				"error", err,
				"key", msg.Key,
				"value_length", len(msg.Value))
			errorCount++
			continue
		}

		if !f.serializer.ShouldProcessEvent(cdcEvent) {
			skippedCount++
			continue
		}

		changeEvent, err := f.serializer.ToChangeEvent(msg.Key, cdcEvent)
		if err != nil {
			f.logger.Error("Failed to translate CDC event",
				"error", err,
				"collection", cdcEvent.Source.Collection,
				"operation", cdcEvent.Operation)
			errorCount++
			continue
		}

		if err := handler(ctx, changeEvent); err != nil {
			f.logger.Error("Change event handler failed",
				"error", err,
				"event_id", changeEvent.EventID,
				"operation", changeEvent.Operation)
			errorCount++
			continue
		}

		processedCount++
	}

	f.logger.Debug("Completed CDC messages batch",
		"total", len(messages),
		"processed", processedCount,
		"skipped", skippedCount,
		"errors", errorCount)

	// Return error if all messages failed
	if errorCount > 0 && processedCount == 0 && skippedCount == 0 {
		return fmt.Errorf("failed to process any CDC messages in batch")
	}

	return nil
}

// Close closes the underlying Kafka client
func (f *CDCFeed) Close() error {
	f.logger.Info("Closing CDC feed")
	return f.kafkaClient.Close()
}
