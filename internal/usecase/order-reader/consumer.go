package orderreader

import (
	"context"
	"encoding/json"

	orderbookv1 "github.com/kahshiuhtang/Sticker-Market/internal/domain/orderbook/v1"
	"github.com/kahshiuhtang/Sticker-Market/pkg/config"
	"github.com/kahshiuhtang/Sticker-Market/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Reader represents a Kafka Reader for consuming order requests from the
// orders topic.
type Reader struct {
	kafkaReader *kafka.Reader
	logger      logger.Logger
}

// NewReader creates a new Kafka reader for consuming order requests.
// It returns an implementation of the OrderReader interface.
func NewReader(config config.KafkaConfig, log logger.Logger) Reader {
	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     config.Brokers,
		Topic:       config.Topic,
		Partition:   0,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})

	return Reader{
		kafkaReader: kafkaReader,
		logger:      log,
	}
}

// logError is a helper method to log errors consistently
func (r Reader) logError(err error, operation string) {
	r.logger.Error(err,
		logger.Field{Key: "operation", Value: operation},
	)
}

// SetOffset sets the offset for the Kafka reader.
func (r Reader) SetOffset(offset int64) error {
	if err := r.kafkaReader.SetOffset(offset); err != nil {
		r.logError(err, "SetOffset")
		return err
	}
	return nil
}

// ReadMessage reads a message from the orders topic and parses it as an
// OrderRequest.
func (r Reader) ReadMessage(ctx context.Context) (kafka.Message, orderbookv1.OrderRequest, error) {
	msg, err := r.kafkaReader.ReadMessage(ctx)
	if err != nil {
		r.logError(err, "ReadMessage")
		return kafka.Message{Offset: 0}, orderbookv1.OrderRequest{}, err
	}

	var request orderbookv1.OrderRequest
	if err := json.Unmarshal(msg.Value, &request); err != nil {
		r.logError(err, "UnmarshalOrderRequest")
		return kafka.Message{Offset: 0}, orderbookv1.OrderRequest{}, err
	}

	r.logger.Debug("ReadMessage",
		logger.Field{Key: "type", Value: request.Type},
		logger.Field{Key: "orderID", Value: request.OrderID},
		logger.Field{Key: "stickerID", Value: request.StickerID},
		logger.Field{Key: "userID", Value: request.UserID},
		logger.Field{Key: "side", Value: request.Side},
		logger.Field{Key: "price", Value: request.Price},
	)

	request.Offset = msg.Offset // Set the offset in the order request

	return msg, request, nil
}

// Close properly closes the Kafka reader.
func (r Reader) Close() error {
	if err := r.kafkaReader.Close(); err != nil {
		r.logError(err, "Close")
		return err
	}
	return nil
}

// CommitMessages commits the messages to Kafka after processing.
func (r Reader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	// The reader runs without a consumer group; offsets are tracked by the
	// snapshot store instead of Kafka.
	return nil
}
