package db

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/contentflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	items  map[string]map[string]types.AttributeValue
	table  string
	putErr error
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.table = *in.TableName
	key := in.Item["job_id"].(*types.AttributeValueMemberS).Value
	f.items[key] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	key := in.Key["job_id"].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: f.items[key]}, nil
}

func TestScriptArchiveRoundTrip(t *testing.T) {
	fake := &fakeDynamo{items: map[string]map[string]types.AttributeValue{}}
	archive := NewScriptArchive(fake, "")
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	archive.now = func() time.Time { return fixed }

	job := models.Job{
		ID:     "job_20250101000000_deadbeef",
		Status: models.JobStatusCompleted,
		Request: models.GenerationRequest{
			Subreddits: []string{"technology"}, VideoStyle: "dramatic", ContentLimit: 3,
		},
		Result: &models.ScriptResult{
			Title:  "Tech Today",
			Script: "TITLE: Tech Today",
			Sources: []models.SourceItem{
				{Source: "BBC", Title: "Chips", Score: 10, Tone: "positive"},
			},
		},
		CreatedAt: fixed,
		UpdatedAt: fixed,
	}
	require.NoError(t, archive.StoreScript(context.Background(), job))
	assert.Equal(t, SCRIPTS_TABLE_NAME, fake.table)

	expires := fake.items[job.ID]["expires_at"].(*types.AttributeValueMemberN).Value
	assert.Equal(t, strconv.FormatInt(fixed.Add(SCRIPT_RETENTION).Unix(), 10), expires)

	got, err := archive.GetScript(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, job.Status, got.Status)
	assert.Equal(t, job.Request, got.Request)
	assert.Equal(t, job.Result, got.Result)
	assert.True(t, job.CreatedAt.Equal(got.CreatedAt))
}

func TestScriptArchiveErrors(t *testing.T) {
	fake := &fakeDynamo{items: map[string]map[string]types.AttributeValue{}}
	archive := NewScriptArchive(fake, "scripts")

	_, err := archive.GetScript(context.Background(), "job_missing")
	assert.ErrorIs(t, err, ErrScriptNotFound)

	fake.putErr = errors.New("throttled")
	err = archive.StoreScript(context.Background(), models.Job{ID: "job_x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}
