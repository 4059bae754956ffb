package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/spacesedan/sstflow/internal/models"
	"github.com/spacesedan/sstflow/internal/utils"
)

const (
	maxBatchSize = 25
	maxRetries   = 3

	// one table holds both record kinds, told apart by sort key
	summarySortKey = "summary"
)

// BatchWriter is the slice of *dynamodb.Client the store needs.
type BatchWriter interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

type RunStore struct {
	client  BatchWriter
	table   string
	backoff time.Duration
}

func NewRunStore(client BatchWriter, table string) *RunStore {
	return &RunStore{client: client, table: table, backoff: 500 * time.Millisecond}
}

// Both item kinds are keyed by run_id, which the embedded models carry.
type summaryItem struct {
	SortKey string `dynamodbav:"sk"`
	models.RunSummary
	CreatedAt int64 `dynamodbav:"created_at"`
}

type predictionItem struct {
	SortKey string `dynamodbav:"sk"`
	models.Prediction
}

// Publish stores the summary and then its predictions.
func (s *RunStore) Publish(ctx context.Context, summary models.RunSummary, predictions []models.Prediction) error {
	if err := s.storeSummary(ctx, summary); err != nil {
		return err
	}
	return s.BatchInsertPredictions(ctx, predictions)
}

func (s *RunStore) storeSummary(ctx context.Context, summary models.RunSummary) error {
	item, err := attributevalue.MarshalMap(summaryItem{
		SortKey:    summarySortKey,
		RunSummary: summary.Finite(),
		CreatedAt:  time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to marshal run summary: %w", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("[DynamoDB] Failed to store run summary: %w", err)
	}

	slog.Info("[DynamoDB] Stored run summary",
		slog.String("table", s.table),
		slog.String("run_id", summary.RunID))
	return nil
}

func (s *RunStore) BatchInsertPredictions(ctx context.Context, predictions []models.Prediction) error {
	for _, batch := range utils.Chunks(predictions, maxBatchSize) {
		select {
		case <-ctx.Done():
			slog.Warn("[DynamoDB] context canceled")
			return ctx.Err()
		default:
		}

		writeRequests := make([]types.WriteRequest, 0, len(batch))
		for _, p := range batch {
			item, err := attributevalue.MarshalMap(predictionItem{
				SortKey:    fmt.Sprintf("prediction#%06d", p.Index),
				Prediction: p.Finite(),
			})
			if err != nil {
				return fmt.Errorf("[DynamoDB] Failed to marshal prediction %d: %w", p.Index, err)
			}
			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		if err := s.writeBatch(ctx, writeRequests); err != nil {
			return err
		}
	}

	slog.Info("[DynamoDB] Successfully stored predictions",
		slog.Int("count", len(predictions)))
	return nil
}

func (s *RunStore) writeBatch(ctx context.Context, writeRequests []types.WriteRequest) error {
	out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{s.table: writeRequests},
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to batch write predictions: %w", err)
	}

	retryCount := 0
	backoff := s.backoff
	for len(out.UnprocessedItems) > 0 && retryCount < maxRetries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2

		slog.Warn("[DynamoDB] Retrying unprocessed items...",
			slog.Int("retry_attempt", retryCount+1),
			slog.Int("remaining_items", len(out.UnprocessedItems[s.table])))

		out, err = s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: out.UnprocessedItems,
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] Failed to retry batch write: %w", err)
		}
		retryCount++
	}

	if remaining := len(out.UnprocessedItems[s.table]); remaining > 0 {
		slog.Error("[DynamoDB] Some items were not written even after retries",
			slog.Int("remaining_items", remaining))
		return fmt.Errorf("[DynamoDB] %d items unprocessed after %d retries", remaining, maxRetries)
	}
	return nil
}
