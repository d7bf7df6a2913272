package docstore

import (
	"context"
	"fmt"
	"time"

	"github.com/agrocampo/campo-api/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DynamoStore implements Store on DynamoDB. Each collection maps to one table
// named <prefix><collection> with string partition key "id".
//
// Equality queries run as table Scans with a filter expression. The watched
// collections are small (thousands of documents); a per-field GSI is the
// upgrade path if that stops being true.
type DynamoStore struct {
	client *dynamodb.Client
	prefix string
	logger *zap.Logger
}

// NewDynamoStore builds the DynamoDB client from the store configuration.
// Static credentials and a custom endpoint support DynamoDB Local; with both
// empty the default AWS credential chain applies.
func NewDynamoStore(ctx context.Context, cfg *config.StoreConfig, logger *zap.Logger) (*DynamoStore, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var clientOpts []func(*dynamodb.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
		logger.Info("using custom DynamoDB endpoint", zap.String("endpoint", cfg.Endpoint))
	}

	return &DynamoStore{
		client: dynamodb.NewFromConfig(awsCfg, clientOpts...),
		prefix: cfg.TablePrefix,
		logger: logger,
	}, nil
}

// Client exposes the underlying DynamoDB client for table bootstrap.
func (s *DynamoStore) Client() *dynamodb.Client { return s.client }

// TableName returns the table backing a collection.
func (s *DynamoStore) TableName(collection string) string {
	return s.prefix + collection
}

func (s *DynamoStore) Get(ctx context.Context, collection, id string) (map[string]any, bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.TableName(collection)),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	if len(out.Item) == 0 {
		return nil, false, nil
	}

	var data map[string]any
	if err := attributevalue.UnmarshalMap(out.Item, &data); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal %s/%s: %w", collection, id, err)
	}
	return data, true, nil
}

func (s *DynamoStore) Query(ctx context.Context, collection, field string, value any) ([]Document, error) {
	av, err := attributevalue.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query value: %w", err)
	}

	var docs []Document
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                aws.String(s.TableName(collection)),
			FilterExpression:         aws.String("#f = :v"),
			ExpressionAttributeNames: map[string]string{"#f": field},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":v": av,
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query %s by %s: %w", collection, field, err)
		}
		items, err := unmarshalDocuments(out.Items)
		if err != nil {
			return nil, err
		}
		docs = append(docs, items...)
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return docs, nil
}

func (s *DynamoStore) List(ctx context.Context, collection string) ([]Document, error) {
	var docs []Document
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.TableName(collection)),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", collection, err)
		}
		items, err := unmarshalDocuments(out.Items)
		if err != nil {
			return nil, err
		}
		docs = append(docs, items...)
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return docs, nil
}

func (s *DynamoStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.New().String()
	item := make(map[string]any, len(data)+1)
	for k, v := range data {
		item[k] = v
	}
	item["id"] = id

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return "", fmt.Errorf("failed to marshal document: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.TableName(collection)),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to add document to %s: %w", collection, err)
	}
	return id, nil
}

func (s *DynamoStore) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	if len(patch) == 0 {
		return nil
	}

	expr := "SET "
	names := map[string]string{"#id": "id"}
	values := map[string]types.AttributeValue{}
	i := 0
	for k, v := range patch {
		if i > 0 {
			expr += ", "
		}
		nk := fmt.Sprintf("#k%d", i)
		vk := fmt.Sprintf(":v%d", i)
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal patch field %s: %w", k, err)
		}
		expr += nk + " = " + vk
		names[nk] = k
		values[vk] = av
		i++
	}

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TableName(collection)),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *DynamoStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := s.client.ListTables(ctx, &dynamodb.ListTablesInput{Limit: aws.Int32(1)})
	if err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}
	return nil
}

func unmarshalDocuments(items []map[string]types.AttributeValue) ([]Document, error) {
	docs := make([]Document, 0, len(items))
	for _, item := range items {
		var data map[string]any
		if err := attributevalue.UnmarshalMap(item, &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document: %w", err)
		}
		id, _ := data["id"].(string)
		docs = append(docs, Document{ID: id, Data: data})
	}
	return docs, nil
}
