package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/school-grader/school-grader/internal/domain/grading"
	"github.com/school-grader/school-grader/internal/infra/kafka"
	"github.com/school-grader/school-grader/internal/runtime/docker"
	"github.com/school-grader/school-grader/internal/runtime/local"
)

const (
	defaultPythonImage      = "python:3.12-alpine"
	defaultContainerWorkdir = "/tmp"
	defaultResultsTopic     = "grading-results"
)

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseBrokerList(raw string) []string {
	fields := strings.Split(raw, ",")
	brokers := make([]string, 0, len(fields))
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	return brokers
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func parseBytes(raw string) int64 {
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

func limitsFromEnv() grading.RunLimits {
	return grading.RunLimits{
		TimeLimit:        parseDuration(os.Getenv("RUNNER_TIME_LIMIT"), 0),
		MemoryLimitBytes: parseBytes(os.Getenv("RUNNER_MEMORY_LIMIT")),
	}
}

func localConfigFromEnv() local.Config {
	cfg := local.Config{
		GoCommand:     os.Getenv("GO_COMMAND"),
		DefaultLimits: limitsFromEnv(),
	}
	if command := os.Getenv("PYTHON_COMMAND"); command != "" {
		cfg.Interpreters = map[grading.Language]local.InterpreterConfig{
			grading.LanguagePython: {Command: command},
		}
	}
	return cfg
}

func dockerConfigFromEnv() docker.Config {
	return docker.Config{
		Image:         envOrDefault("PYTHON_IMAGE", defaultPythonImage),
		Workdir:       envOrDefault("PYTHON_WORKDIR", defaultContainerWorkdir),
		DefaultLimits: limitsFromEnv(),
	}
}

// kafkaConfigFromEnv returns nil when no brokers are configured; the Kafka
// sink is opt-in.
func kafkaConfigFromEnv() *kafka.PublisherConfig {
	brokers := parseBrokerList(os.Getenv("KAFKA_BROKERS"))
	if len(brokers) == 0 {
		return nil
	}
	return &kafka.PublisherConfig{
		Brokers: brokers,
		Topic:   envOrDefault("KAFKA_RESULTS_TOPIC", defaultResultsTopic),
	}
}
