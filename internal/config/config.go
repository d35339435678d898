// Package config loads the processor settings. Values come from an optional
// YAML file named by CONFIG_FILE and are then overridden by individual
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kulikvl/ip-anonymizer/internal/utils"
)

type Processor struct {
	KafkaBroker string `yaml:"kafka_broker"`
	KafkaTopic  string `yaml:"kafka_topic"`
	KafkaGroup  string `yaml:"kafka_group"`

	DB       string `yaml:"db"`
	DBDriver string `yaml:"db_driver"`
	DBTable  string `yaml:"db_table"`

	// RAM buffer size for logs
	WriterBufferSize int `yaml:"writer_buffer_size"`
	// insert logs every WriteIntervalSeconds seconds
	WriteIntervalSeconds int `yaml:"write_interval_seconds"`

	KeyFile           string `yaml:"key_file"`
	ScrambleLib       string `yaml:"scramble_lib"`
	ScrambleAlgorithm string `yaml:"scramble_algorithm"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func Default() Processor {
	return Processor{
		KafkaBroker:          "localhost:9092",
		KafkaTopic:           "http_log",
		KafkaGroup:           "data-engineering-task-reader",
		DB:                   "localhost:9000",
		DBDriver:             "clickhouse",
		DBTable:              "http_log",
		WriterBufferSize:     1024,
		WriteIntervalSeconds: 10,
		ScrambleAlgorithm:    "blowfish",
		LogLevel:             "info",
		LogFormat:            "text",
	}
}

func (p Processor) WriteInterval() time.Duration {
	return time.Duration(p.WriteIntervalSeconds) * time.Second
}

// Load returns Default() overlaid with CONFIG_FILE and then the environment.
func Load() (Processor, error) {
	cfg := Default()

	if path := utils.GetEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.readFile(path); err != nil {
			return Processor{}, err
		}
	}
	cfg.readEnv()

	if err := cfg.Validate(); err != nil {
		return Processor{}, err
	}
	return cfg, nil
}

func (p *Processor) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (p *Processor) readEnv() {
	p.KafkaBroker = utils.GetEnv("KAFKA_BROKER", p.KafkaBroker)
	p.KafkaTopic = utils.GetEnv("KAFKA_TOPIC", p.KafkaTopic)
	p.KafkaGroup = utils.GetEnv("KAFKA_GROUP", p.KafkaGroup)
	p.DB = utils.GetEnv("DB", p.DB)
	p.DBDriver = utils.GetEnv("DB_DRIVER", p.DBDriver)
	p.DBTable = utils.GetEnv("DB_TABLE", p.DBTable)
	p.WriterBufferSize = utils.GetEnvAsInt("WRITER_BUFFER_SIZE", p.WriterBufferSize)
	p.WriteIntervalSeconds = utils.GetEnvAsInt("WRITE_INTERVAL_SECONDS", p.WriteIntervalSeconds)
	p.KeyFile = utils.GetEnv("KEY_FILE", p.KeyFile)
	p.ScrambleLib = utils.GetEnv("SCRAMBLE_LIB", p.ScrambleLib)
	p.ScrambleAlgorithm = utils.GetEnv("SCRAMBLE_ALGORITHM", p.ScrambleAlgorithm)
	p.LogLevel = utils.GetEnv("LOG_LEVEL", p.LogLevel)
	p.LogFormat = utils.GetEnv("LOG_FORMAT", p.LogFormat)
}

func (p Processor) Validate() error {
	var errs []error
	if p.KeyFile == "" {
		errs = append(errs, errors.New("KEY_FILE is required"))
	}
	if p.ScrambleLib == "" {
		errs = append(errs, errors.New("SCRAMBLE_LIB is required"))
	}
	if p.WriterBufferSize <= 0 {
		errs = append(errs, fmt.Errorf("writer buffer size must be positive, got %d", p.WriterBufferSize))
	}
	if p.WriteIntervalSeconds <= 0 {
		errs = append(errs, fmt.Errorf("write interval must be positive, got %d", p.WriteIntervalSeconds))
	}
	return errors.Join(errs...)
}
