package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"

	"github.com/kulikvl/ip-anonymizer/internal/database/entity"
)

const (
	maxRetryBackoff        = 5 * time.Minute
	defaultShutdownTimeout = 30 * time.Second
)

func createTable(ctx context.Context, db *sql.DB, table string) error {
	// Main http logs table. remote_addr only ever holds anonymized addresses.
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %[1]s (
            timestamp           DateTime,
            resource_id         UInt64,
            bytes_sent          UInt64,
            request_time_milli  UInt64,
            response_status     UInt16,
            cache_status        LowCardinality(String),
            method              LowCardinality(String),
            remote_addr         String,
            url                 String
        ) ENGINE = MergeTree() ORDER BY timestamp
    `, table))
	if err != nil {
		return err
	}

	// Aggregated view per /24 of the anonymized address; prefix preservation
	// keeps these subnets meaningful.
	_, err = db.ExecContext(ctx, fmt.Sprintf(`
		CREATE MATERIALIZED VIEW IF NOT EXISTS %[1]s_aggregated
		ENGINE = SummingMergeTree()
		ORDER BY (resource_id, response_status, cache_status, remote_subnet)
		AS
		SELECT
			resource_id,
			response_status,
			cache_status,
			IPv4CIDRToRange(toIPv4OrDefault(remote_addr), 24).1 AS remote_subnet,
			sum(bytes_sent) AS total_bytes_sent,
			count() AS request_count
		FROM %[1]s
		GROUP BY resource_id, response_status, cache_status, remote_subnet
    `, table))

	return err
}

func insertQuery(table string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(entity.Columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(entity.Columns, ", "), placeholders)
}

// Inserts logs into database using efficient batch insertion.
func insertLogs(ctx context.Context, db *sql.DB, query string, logs []entity.HttpLogRecord) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, l := range logs {
		if _, err := stmt.ExecContext(ctx, l.Values()...); err != nil {
			return fmt.Errorf("failed to execute statement (insert): %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction (batch insert): %w", err)
	}

	return nil
}

// retryBackoff doubles from one second per failed attempt, capped at
// maxRetryBackoff.
func retryBackoff(attempt int) time.Duration {
	if attempt > 16 {
		return maxRetryBackoff
	}
	return min(time.Duration(1<<attempt)*time.Second, maxRetryBackoff)
}

type Writer struct {
	db              *sql.DB
	table           string
	query           string
	bufferSize      int
	writeInterval   time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

func NewWriter(ctx context.Context, driver, dbAddr, table string, bufferSize int, writeInterval time.Duration, logger *slog.Logger) (*Writer, error) {
	dataSource := fmt.Sprintf("tcp://%s?debug=false", dbAddr)

	db, err := sql.Open(driver, dataSource)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection to database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("connected to the database", "addr", dbAddr)

	if err := createTable(ctx, db, table); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create http logs table: %w", err)
	}

	return newWriter(db, table, bufferSize, writeInterval, logger), nil
}

func newWriter(db *sql.DB, table string, bufferSize int, writeInterval time.Duration, logger *slog.Logger) *Writer {
	return &Writer{
		db:              db,
		table:           table,
		query:           insertQuery(table),
		bufferSize:      bufferSize,
		writeInterval:   writeInterval,
		shutdownTimeout: defaultShutdownTimeout,
		logger:          logger,
	}
}

func (w *Writer) Close() error {
	return w.db.Close()
}

// Write buffers logs and inserts them in batches of at most bufferSize, every
// writeInterval or as soon as the buffer is full. It returns once logs is
// closed and every batch has been inserted. Cancelling ctx does not stop the
// draining: it starts a shutdown grace period after which batches that still
// fail to insert are dropped.
func (w *Writer) Write(ctx context.Context, logs <-chan entity.HttpLogRecord) {
	ticker := time.NewTicker(w.writeInterval)
	defer ticker.Stop()

	// Inserts outlive ctx by at most shutdownTimeout.
	insertCtx, cancelInserts := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelInserts()
	stopGrace := context.AfterFunc(ctx, func() {
		timer := time.AfterFunc(w.shutdownTimeout, cancelInserts)
		context.AfterFunc(insertCtx, func() { timer.Stop() })
	})
	defer stopGrace()

	buffer := make([]entity.HttpLogRecord, 0, w.bufferSize)

	// Goroutine to write logs to the database in batches using retry mechanism with exponential backoff.
	logBatchChannel := make(chan []entity.HttpLogRecord)
	done := make(chan struct{})
	defer func() {
		close(logBatchChannel)
		<-done
	}()
	go func() {
		defer close(done)
		for batch := range logBatchChannel {
			w.insertWithRetry(insertCtx, batch)
		}
	}()

	// Hands the buffer to the insert goroutine. A non-blocking flush leaves
	// the buffer in place while the previous batch is still being written.
	flushBuffer := func(block bool) {
		if len(buffer) == 0 {
			return
		}

		bufferToSend := slices.Clone(buffer)
		if block {
			logBatchChannel <- bufferToSend
			buffer = buffer[:0]
			return
		}

		select {
		case logBatchChannel <- bufferToSend:
			buffer = buffer[:0]
		default:
			w.logger.Warn("previous batch still being written, will retry on next tick", "buffered", len(buffer))
		}
	}

	// Main loop to handle logs and flush buffer.
	for {
		select {
		case l, ok := <-logs:
			if !ok {
				flushBuffer(true)
				return
			}
			buffer = append(buffer, l)
			if len(buffer) >= w.bufferSize {
				w.logger.Debug("buffer full, flushing", "buffered", len(buffer))
				flushBuffer(true)
			}
		case <-ticker.C:
			flushBuffer(false)
		}
	}
}

func (w *Writer) insertWithRetry(ctx context.Context, batch []entity.HttpLogRecord) {
	w.logger.Debug("inserting logs batch", "entries", len(batch))

	for i := 0; ; i++ {
		err := insertLogs(ctx, w.db, w.query, batch)
		if err == nil {
			w.logger.Info("logs inserted", "entries", len(batch), "table", w.table)
			return
		}

		wait := retryBackoff(i)
		w.logger.Warn("failed to insert logs, retrying", "error", err, "retry_in", wait)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			w.logger.Error("shutdown grace period over, dropping logs batch", "entries", len(batch))
			return
		}
	}
}
