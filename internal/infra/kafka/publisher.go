package kafka

import (
	"context"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/school-grader/school-grader/internal/domain/grading"
	"github.com/school-grader/school-grader/internal/ports"
)

// Ensure Publisher implements ports.ReportSink.
var _ ports.ReportSink = (*Publisher)(nil)

// PublisherConfig configures the Kafka-based report sink.
type PublisherConfig struct {
	Brokers []string
	Topic   string
}

// Publisher pushes grading results to Kafka, one message per test case.
type Publisher struct {
	writer messageWriter
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// NewPublisher constructs a Publisher using the supplied configuration.
func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker must be provided")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic must be provided")
	}

	writer := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		AllowAutoTopicCreation: true,
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
	}

	return newPublisher(writer), nil
}

func newPublisher(writer messageWriter) *Publisher {
	return &Publisher{writer: writer}
}

// Publish serializes every test result and writes the batch to Kafka.
// Messages are keyed by test name so results for the same test land in the
// same partition.
func (p *Publisher) Publish(ctx context.Context, results []grading.TestResult) error {
	if p.writer == nil {
		return fmt.Errorf("publisher is not initialized")
	}
	if len(results) == 0 {
		return nil
	}

	msgs := make([]kafkago.Message, 0, len(results))
	for _, result := range results {
		payload, err := encodeTestResult(result)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(result.Case.Name),
			Value: payload,
			Time:  time.Now(),
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write messages: %w", err)
	}

	return nil
}

// Close releases the underlying Kafka writer.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
