//go:build integration

// Package testhelpers holds shared setup code for integration tests.
package testhelpers

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

const brokerDialInterval = 500 * time.Millisecond

// PrepareKafkaTopic waits until the broker accepts connections and then
// creates the topic the test publishes grading results to. Topic creation
// goes through the cluster controller.
func PrepareKafkaTopic(ctx context.Context, broker, topic string) error {
	conn, err := dialBroker(ctx, broker)
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("resolve controller: %w", err)
	}

	controllerAddr := net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port))
	ctrlConn, err := kafkago.DialContext(ctx, "tcp", controllerAddr)
	if err != nil {
		return fmt.Errorf("dial controller: %w", err)
	}
	defer ctrlConn.Close()

	return ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
}

func dialBroker(ctx context.Context, broker string) (*kafkago.Conn, error) {
	for {
		conn, err := kafkago.DialContext(ctx, "tcp", broker)
		if err == nil {
			return conn, nil
		}

		select {
		case <-time.After(brokerDialInterval):
		case <-ctx.Done():
			return nil, fmt.Errorf("kafka broker %q not ready: %w", broker, ctx.Err())
		}
	}
}
