package clients

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

var (
	awsCfg   aws.Config
	awsErr   error
	awsOnce  sync.Once
	endpoint string
)

type AWSOptions struct {
	Region string
	// Endpoint overrides the service endpoint, e.g. a local DynamoDB.
	Endpoint string
}

func GetAWSConfig(ctx context.Context, o AWSOptions) (aws.Config, error) {
	awsOnce.Do(func() {
		slog.Info("[AWSClient] Initializing AWS Config...",
			slog.String("region", o.Region))

		cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(o.Region))
		if err != nil {
			awsErr = fmt.Errorf("[AWSClient] failed to load AWS config: %w", err)
			return
		}

		awsCfg = cfg
		endpoint = o.Endpoint
		slog.Info("[AWSClient] AWS Config Initialized")
	})

	return awsCfg, awsErr
}

func GetDynamoDBClient(ctx context.Context, o AWSOptions) (*dynamodb.Client, error) {
	cfg, err := GetAWSConfig(ctx, o)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(cfg, func(opts *dynamodb.Options) {
		if endpoint != "" {
			opts.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}
