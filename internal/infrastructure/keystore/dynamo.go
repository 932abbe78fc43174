package keystore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anant-society/membership-api/internal/config"
	"github.com/anant-society/membership-api/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// dynamoEntry is the stored item. ExpiresAt doubles as the table's native
// TTL attribute; 0 means no expiry.
type dynamoEntry struct {
	Key       string `dynamodbav:"k"`
	Value     string `dynamodbav:"v"`
	ExpiresAt int64  `dynamodbav:"expires_at"`
}

// DynamoStore is the expiring-cache backend. PutItem is already an upsert,
// so a Set carries the value and its TTL in one write. There is no window
// where the key exists without an expiry.
type DynamoStore struct {
	client    *dynamodb.Client
	tableName string
	now       func() time.Time
}

func NewDynamoStore(client *dynamodb.Client, tableName string) *DynamoStore {
	return &DynamoStore{client: client, tableName: tableName, now: time.Now}
}

// NewDynamoClient creates a DynamoDB client. When cfg.AWSEndpointURL is set
// (LocalStack), it overrides the endpoint so all traffic goes to the local
// instance.
func NewDynamoClient(ctx context.Context, cfg *config.Config) (*dynamodb.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	clientOpts := []func(*dynamodb.Options){}
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return dynamodb.NewFromConfig(awsCfg, clientOpts...), nil
}

// Bootstrap creates the key-value table and enables TTL on expires_at.
// Safe to call on every startup; skips work that is already done.
func Bootstrap(ctx context.Context, client *dynamodb.Client, tableName string) {
	_, err := client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:   aws.String(tableName),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("k"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("k"), KeyType: types.KeyTypeHash},
		},
	})
	if err != nil {
		var exists *types.ResourceInUseException
		if !errors.As(err, &exists) {
			slog.Warn("create key-value table", "table", tableName, "err", err)
			return
		}
	}

	_, err = client.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(tableName),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			AttributeName: aws.String("expires_at"),
			Enabled:       aws.Bool(true),
		},
	})
	if err != nil {
		// Re-enabling TTL on a table that already has it fails; harmless.
		slog.Debug("enable TTL", "table", tableName, "err", err)
	}
}

func (s *DynamoStore) Get(ctx context.Context, key string) (string, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       strKey("k", key),
	})
	if err != nil {
		slog.Error("keystore get", "backend", "dynamo", "err", err)
		return "", domain.ErrStoreUnavailable
	}
	if out.Item == nil {
		return "", domain.ErrNotFound
	}
	var e dynamoEntry
	if err := attributevalue.UnmarshalMap(out.Item, &e); err != nil {
		slog.Error("keystore get: unmarshal", "backend", "dynamo", "err", err)
		return "", domain.ErrStoreUnavailable
	}
	// DynamoDB deletes TTL-expired items lazily, so an expired item can
	// still be read. Re-check here so Get never returns a stale value.
	if e.ExpiresAt > 0 && e.ExpiresAt <= s.now().Unix() {
		return "", domain.ErrNotFound
	}
	return e.Value, nil
}

func (s *DynamoStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	e := dynamoEntry{Key: key, Value: value}
	if ttl > 0 {
		e.ExpiresAt = s.now().Add(ttl).Unix()
	}
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		slog.Error("keystore set: marshal", "backend", "dynamo", "err", err)
		return domain.ErrStoreUnavailable
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		slog.Error("keystore set", "backend", "dynamo", "err", err)
		return domain.ErrStoreUnavailable
	}
	return nil
}

func (s *DynamoStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       strKey("k", key),
	})
	if err != nil {
		slog.Error("keystore delete", "backend", "dynamo", "err", err)
		return domain.ErrStoreUnavailable
	}
	return nil
}

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}
