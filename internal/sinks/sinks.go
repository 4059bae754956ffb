// Package sinks builds the result sinks enabled by the environment.
package sinks

import (
	"context"
	"log/slog"

	"github.com/spacesedan/sstflow/config"
	"github.com/spacesedan/sstflow/internal/clients"
	"github.com/spacesedan/sstflow/internal/clients/kafka_client"
	"github.com/spacesedan/sstflow/internal/db"
	"github.com/spacesedan/sstflow/internal/pipeline"
)

// Open returns the DynamoDB sink when RESULTS_TABLE is set and the Kafka sink
// when KAFKA_BROKER is set. The returned func releases them.
func Open(ctx context.Context, s config.Settings) ([]pipeline.ResultSink, func(), error) {
	var out []pipeline.ResultSink
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if s.ResultsTable != "" {
		client, err := clients.GetDynamoDBClient(ctx, clients.AWSOptions{
			Region:   s.AWSRegion,
			Endpoint: s.AWSEndpoint,
		})
		if err != nil {
			return nil, func() {}, err
		}
		out = append(out, db.NewRunStore(client, s.ResultsTable))
		slog.Info("[Sinks] DynamoDB sink enabled", slog.String("table", s.ResultsTable))
	}

	if s.KafkaBroker != "" {
		cfg := kafka_client.GetKafkaConfig(s.KafkaBroker, s.KafkaResultsTopic)
		producer, err := kafka_client.NewProducer(ctx, cfg)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		out = append(out, producer)
		closers = append(closers, producer.Close)
		slog.Info("[Sinks] Kafka sink enabled", slog.String("topic", cfg.Topic))
	}

	return out, closeAll, nil
}
