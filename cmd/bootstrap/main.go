// Command bootstrap creates the DynamoDB tables backing the watched
// collections. It is idempotent: existing tables are left alone.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/agrocampo/campo-api/internal/config"
	"github.com/agrocampo/campo-api/internal/docstore"
	"github.com/agrocampo/campo-api/internal/domain"
	"github.com/agrocampo/campo-api/internal/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Bootstrap error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	store, err := docstore.NewDynamoStore(ctx, &cfg.Store, log)
	if err != nil {
		return fmt.Errorf("failed to initialize document store: %w", err)
	}

	client := store.Client()
	for _, collection := range domain.WatchedCollections() {
		table := store.TableName(collection)
		if err := createTable(ctx, client, table); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
		log.Info("table ready", zap.String("table", table))
	}

	log.Info("bootstrap completed")
	return nil
}

func createTable(ctx context.Context, client *dynamodb.Client, table string) error {
	_, err := client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		var exists *types.ResourceInUseException
		if errors.As(err, &exists) {
			return nil
		}
		return err
	}

	waiter := dynamodb.NewTableExistsWaiter(client)
	return waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(table),
	}, time.Minute)
}
