package tradepublisher

import (
	"context"

	tradepublisherv1 "github.com/kahshiuhtang/Sticker-Market/internal/domain/trade-publisher/v1"
	"github.com/kahshiuhtang/Sticker-Market/pkg/config"
	"github.com/kahshiuhtang/Sticker-Market/pkg/errors"
	"github.com/kahshiuhtang/Sticker-Market/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Publisher represents a Kafka Publisher for publishing trade events.
type Publisher struct {
	kafkaWriter *kafka.Writer
	logger      logger.Logger
}

// NewPublisher creates a new Kafka publisher for publishing trade events.
func NewPublisher(config config.TradePublisherConfig, logger logger.Logger) *Publisher {
	kafkaWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers: config.Brokers,
		Topic:   config.Topic,
	})

	return &Publisher{
		kafkaWriter: kafkaWriter,
		logger:      logger,
	}
}

// PublishTradeEvent publishes a trade event to the trades topic.
func (p *Publisher) PublishTradeEvent(ctx context.Context, event *tradepublisherv1.TradeEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.StickerID),
		Value: tradepublisherv1.ToBytes(event),
	}

	if err := p.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.Error(err,
			logger.Field{Key: "tradeID", Value: event.TradeID},
			logger.Field{Key: "stickerID", Value: event.StickerID},
		)
		return errors.NewTracer("failed to publish trade event").Wrap(err)
	}
	return nil
}
