package db

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/sstflow/internal/models"
)

type fakeDynamo struct {
	puts    []map[string]types.AttributeValue
	batches [][]types.WriteRequest
	// unprocessed is how many leading requests of the first batch call are
	// bounced back once
	unprocessed int
	failBatch   error
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	if f.failBatch != nil {
		return nil, f.failBatch
	}
	out := &dynamodb.BatchWriteItemOutput{}
	for table, reqs := range in.RequestItems {
		if f.unprocessed > 0 {
			n := min(f.unprocessed, len(reqs))
			f.unprocessed = 0
			out.UnprocessedItems = map[string][]types.WriteRequest{table: reqs[:n]}
			reqs = reqs[n:]
		}
		f.batches = append(f.batches, reqs)
	}
	return out, nil
}

func predictions(n int) []models.Prediction {
	out := make([]models.Prediction, n)
	for i := range out {
		out[i] = models.Prediction{RunID: "run-1", Index: i, Text: "t", Expected: 0.5, Predicted: 0.4, Baseline: 0.6}
	}
	return out
}

func TestPublish_ChunksPredictions(t *testing.T) {
	fake := &fakeDynamo{}
	store := NewRunStore(fake, "runs")

	summary := models.RunSummary{RunID: "run-1", StartedAt: time.Now(), Test: models.Scores{MSE: 0.1, Pearson: math.NaN()}}
	require.NoError(t, store.Publish(context.Background(), summary, predictions(60)))

	require.Len(t, fake.puts, 1)
	var stored map[string]any
	require.NoError(t, attributevalue.UnmarshalMap(fake.puts[0], &stored))
	assert.Equal(t, "run-1", stored["run_id"])
	assert.Equal(t, "summary", stored["sk"])

	require.Len(t, fake.batches, 3)
	assert.Len(t, fake.batches[0], 25)
	assert.Len(t, fake.batches[1], 25)
	assert.Len(t, fake.batches[2], 10)

	var first map[string]any
	require.NoError(t, attributevalue.UnmarshalMap(fake.batches[0][0].PutRequest.Item, &first))
	assert.Equal(t, "prediction#000000", first["sk"])
	assert.Equal(t, "run-1", first["run_id"])
}

func TestBatchInsertPredictions_RetriesUnprocessed(t *testing.T) {
	fake := &fakeDynamo{unprocessed: 5}
	store := NewRunStore(fake, "runs")
	store.backoff = time.Millisecond

	require.NoError(t, store.BatchInsertPredictions(context.Background(), predictions(10)))

	total := 0
	for _, b := range fake.batches {
		total += len(b)
	}
	assert.Equal(t, 10, total)
}

func TestBatchInsertPredictions_Error(t *testing.T) {
	fake := &fakeDynamo{failBatch: errors.New("throttled")}
	store := NewRunStore(fake, "runs")

	err := store.BatchInsertPredictions(context.Background(), predictions(3))
	assert.ErrorContains(t, err, "throttled")
}
