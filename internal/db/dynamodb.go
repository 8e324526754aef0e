package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/contentflow/internal/models"
)

const (
	SCRIPTS_TABLE_NAME = "ContentFlowScripts"
	SCRIPT_RETENTION   = 30 * 24 * time.Hour
)

var ErrScriptNotFound = errors.New("script not found")

// DynamoDBAPI is the subset of *dynamodb.Client the archive needs.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// ScriptArchive keeps completed jobs in DynamoDB, keyed by job_id, with an
// expires_at attribute for table TTL.
type ScriptArchive struct {
	client DynamoDBAPI
	table  string
	now    func() time.Time
}

func NewScriptArchive(client DynamoDBAPI, table string) *ScriptArchive {
	if table == "" {
		table = SCRIPTS_TABLE_NAME
	}
	return &ScriptArchive{client: client, table: table, now: time.Now}
}

func (a *ScriptArchive) StoreScript(ctx context.Context, job models.Job) error {
	item, err := attributevalue.MarshalMap(job)
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to marshal job %s: %w", job.ID, err)
	}
	item["expires_at"] = &types.AttributeValueMemberN{
		Value: fmt.Sprintf("%d", a.now().Add(SCRIPT_RETENTION).Unix()),
	}

	_, err = a.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(a.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to store script: %w", err)
	}

	slog.Info("[DynamoDB] Stored script",
		slog.String("job_id", job.ID),
		slog.String("table", a.table))
	return nil
}

func (a *ScriptArchive) GetScript(ctx context.Context, id string) (models.Job, error) {
	out, err := a.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(a.table),
		Key: map[string]types.AttributeValue{
			"job_id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return models.Job{}, fmt.Errorf("[DynamoDB] Failed to get script: %w", err)
	}
	if len(out.Item) == 0 {
		return models.Job{}, ErrScriptNotFound
	}

	var job models.Job
	if err := attributevalue.UnmarshalMap(out.Item, &job); err != nil {
		return models.Job{}, fmt.Errorf("[DynamoDB] Failed to unmarshal script %s: %w", id, err)
	}
	return job, nil
}
