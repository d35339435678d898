package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/kulikvl/ip-anonymizer/internal/anonymizer"
	"github.com/kulikvl/ip-anonymizer/internal/capnproto"
	"github.com/kulikvl/ip-anonymizer/internal/config"
	"github.com/kulikvl/ip-anonymizer/internal/database"
	"github.com/kulikvl/ip-anonymizer/internal/database/entity"
	"github.com/kulikvl/ip-anonymizer/internal/kafka"
	"github.com/kulikvl/ip-anonymizer/internal/logging"
	"github.com/kulikvl/ip-anonymizer/internal/mapper"
	"github.com/kulikvl/ip-anonymizer/internal/model"
	"github.com/kulikvl/ip-anonymizer/internal/native"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "processor: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, logging.Format(cfg.LogFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "processor: %v\n", err)
		os.Exit(1)
	}
	logger = logger.With("run_id", uuid.NewString())

	if err := run(cfg, logger); err != nil {
		logger.Error("processor stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Processor, logger *slog.Logger) error {
	// Load the scrambler before touching Kafka so a bad key or library never
	// consumes messages.
	algorithm, err := anonymizer.ParseAlgorithm(cfg.ScrambleAlgorithm)
	if err != nil {
		return err
	}
	lib, err := native.Open(cfg.ScrambleLib)
	if err != nil {
		return err
	}
	defer func() {
		if err := lib.Close(); err != nil {
			logger.Warn("failed to close scrambling library", "error", err)
		}
	}()
	engine, err := anonymizer.New(lib, cfg.KeyFile, algorithm, anonymizer.WithLogger(logger))
	if err != nil {
		return err
	}
	logger.Info("scrambler ready", "library", cfg.ScrambleLib, "algorithm", algorithm.String())

	// Gracefully handle SIGINT and SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Kafka logs channel, what we consume
	kafkaLogs := make(chan model.HttpLogRecord)
	// ClickHouse logs channel, what we write
	dbLogs := make(chan entity.HttpLogRecord)

	// Setup ClickHouse writer
	writer, err := database.NewWriter(ctx, cfg.DBDriver, cfg.DB, cfg.DBTable, cfg.WriterBufferSize, cfg.WriteInterval(), logger)
	if err != nil {
		return fmt.Errorf("failed to create ClickHouse writer: %w", err)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("failed to close ClickHouse writer", "error", err)
		} else {
			logger.Info("ClickHouse writer closed")
		}
	}()

	// Setup Kafka consumer
	consumer := kafka.NewConsumer(cfg.KafkaBroker, cfg.KafkaTopic, cfg.KafkaGroup, logger)
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Error("failed to close Kafka consumer", "error", err)
		} else {
			logger.Info("Kafka consumer closed")
		}
	}()

	// Transformer goroutine: the only user of the engine.
	go anonymizeLogs(ctx, kafkaLogs, dbLogs, engine, logger)

	go consumer.Consume(ctx, kafkaLogs, capnproto.Decode)

	writer.Write(ctx, dbLogs)
	logger.Info("received shutdown signal, shut down")
	return nil
}

// anonymizeLogs maps consumed records to rows with anonymized addresses until
// in is closed or ctx is done. Records whose address cannot be anonymized are
// logged and dropped. out is closed on return.
func anonymizeLogs(ctx context.Context, in <-chan model.HttpLogRecord, out chan<- entity.HttpLogRecord, anon mapper.AddressAnonymizer, logger *slog.Logger) {
	defer close(out)
	for l := range in {
		row, err := mapper.ToDb(l, anon)
		if err != nil {
			logger.Warn("dropping log record", "error", err, "partition", l.Source.Partition, "offset", l.Source.Offset)
			continue
		}
		select {
		case out <- row:
		case <-ctx.Done():
			return
		}
	}
}
