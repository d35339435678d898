package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/kulikvl/ip-anonymizer/internal/model"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Consumer struct {
	reader messageReader
	logger *slog.Logger
}

func NewConsumer(broker string, topic, group string, logger *slog.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: []string{broker},
			Topic:   topic,
			GroupID: group,
			ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
				logger.Error("kafka reader", "detail", fmt.Sprintf(msg, args...))
			}),
		}),
		logger: logger,
	}
}

// Consume decodes messages into logs until ctx is done. Undecodable messages
// are logged by offset and skipped. logs is closed on return.
func (c *Consumer) Consume(ctx context.Context, logs chan<- model.HttpLogRecord, decode func([]byte) (model.HttpLogRecord, error)) {
	defer close(logs)

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("context cancelled, stopping consume loop")
				return
			}

			c.logger.Error("failed to consume message", "error", err)
			continue
		}

		decodedMsg, err := decode(msg.Value)
		if err != nil {
			c.logger.Warn("failed to decode message", "error", err, "partition", msg.Partition, "offset", msg.Offset)
			continue
		}
		decodedMsg.Source = model.Source{Topic: msg.Topic, Partition: msg.Partition, Offset: msg.Offset}

		select {
		case logs <- decodedMsg:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
