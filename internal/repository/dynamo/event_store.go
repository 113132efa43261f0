package dynamo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/medaimane/AthleticEdge/internal/entity"
	"github.com/medaimane/AthleticEdge/internal/repository"
)

const eventSKPrefix = "EVENT#"

// eventSK zero-pads the version so the range key sorts numerically.
func eventSK(version int) string { return fmt.Sprintf("%s%010d", eventSKPrefix, version) }

type eventRecord struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	ID         string `dynamodbav:"id"`
	StreamType string `dynamodbav:"stream_type"`
	Version    int    `dynamodbav:"version"`
	EventType  string `dynamodbav:"event_type"`
	Payload    []byte `dynamodbav:"payload"`
	CreatedAt  string `dynamodbav:"created_at"`
}

type eventStore struct {
	client    API
	tableName string
	now       func() time.Time
}

// NewEventStore keeps each order's stream in the order's own partition,
// one item per event under EVENT#<version>.
func NewEventStore(client API, tableName string) repository.EventStore {
	return &eventStore{client: client, tableName: tableName, now: time.Now}
}

// SaveEvents writes the events in one transaction. The transaction also
// checks that EVENT#<expectedVersion> exists, and each put requires its slot
// to be free, so a stale or skipped version cancels the whole write.
func (s *eventStore) SaveEvents(ctx context.Context, streamID string, streamType string, expectedVersion int, events []entity.Event) error {
	if len(events) == 0 {
		return nil
	}

	var writes []types.TransactWriteItem
	if expectedVersion > 0 {
		writes = append(writes, types.TransactWriteItem{
			ConditionCheck: &types.ConditionCheck{
				TableName: aws.String(s.tableName),
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: orderPK(streamID)},
					"SK": &types.AttributeValueMemberS{Value: eventSK(expectedVersion)},
				},
				ConditionExpression: aws.String("attribute_exists(PK)"),
			},
		})
	}

	now := s.now().UTC().Format(time.RFC3339Nano)
	for i, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", event.EventType(), err)
		}
		version := expectedVersion + i + 1
		av, err := attributevalue.MarshalMap(eventRecord{
			PK:         orderPK(streamID),
			SK:         eventSK(version),
			ID:         uuid.NewString(),
			StreamType: streamType,
			Version:    version,
			EventType:  event.EventType(),
			Payload:    payload,
			CreatedAt:  now,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal event record: %w", err)
		}
		writes = append(writes, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(s.tableName),
				Item:                av,
				ConditionExpression: aws.String("attribute_not_exists(PK)"),
			},
		})
	}

	_, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: writes})
	var canceled *types.TransactionCanceledException
	if errors.As(err, &canceled) {
		return fmt.Errorf("stream %s not at version %d: %w", streamID, expectedVersion, entity.ErrConcurrentUpdate)
	}
	if err != nil {
		return fmt.Errorf("failed to write events of stream %s: %w", streamID, err)
	}
	return nil
}

func (s *eventStore) LoadEvents(ctx context.Context, streamID string) ([]entity.EventStoreRecord, error) {
	var (
		records []entity.EventStoreRecord
		start   map[string]types.AttributeValue
	)
	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.tableName),
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk":     &types.AttributeValueMemberS{Value: orderPK(streamID)},
				":prefix": &types.AttributeValueMemberS{Value: eventSKPrefix},
			},
			ConsistentRead:    aws.Bool(true),
			ScanIndexForward:  aws.Bool(true),
			ExclusiveStartKey: start,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load events for stream %s: %w", streamID, err)
		}

		var recs []eventRecord
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &recs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal events: %w", err)
		}
		for _, rec := range recs {
			createdAt, err := time.Parse(time.RFC3339Nano, rec.CreatedAt)
			if err != nil {
				return nil, fmt.Errorf("failed to parse created_at of event %s: %w", rec.ID, err)
			}
			records = append(records, entity.EventStoreRecord{
				ID:         rec.ID,
				StreamID:   streamID,
				StreamType: rec.StreamType,
				Version:    rec.Version,
				EventType:  rec.EventType,
				Payload:    rec.Payload,
				CreatedAt:  createdAt,
			})
		}

		if len(out.LastEvaluatedKey) == 0 {
			return records, nil
		}
		start = out.LastEvaluatedKey
	}
}
