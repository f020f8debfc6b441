// Package calllog keeps one DynamoDB row per finished call.
package calllog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/wolfman30/marcel-receptionist/internal/callrecord"
	"github.com/wolfman30/marcel-receptionist/pkg/logging"
)

const entryTTL = 90 * 24 * time.Hour

// ErrNotFound indicates the call has no log entry.
var ErrNotFound = errors.New("calllog: entry not found")

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// Entry is the persisted outcome of a call.
type Entry struct {
	CallSid     string `dynamodbav:"callSid" json:"callSid"`
	CallerPhone string `dynamodbav:"callerPhone,omitempty" json:"callerPhone,omitempty"`
	CallerName  string `dynamodbav:"callerName,omitempty" json:"callerName,omitempty"`
	Outcome     string `dynamodbav:"outcome" json:"outcome"`
	Salon       string `dynamodbav:"salon,omitempty" json:"salon,omitempty"`
	Service     string `dynamodbav:"service,omitempty" json:"service,omitempty"`
	Date        string `dynamodbav:"date,omitempty" json:"date,omitempty"`
	Time        string `dynamodbav:"time,omitempty" json:"time,omitempty"`
	Barber      string `dynamodbav:"barber,omitempty" json:"barber,omitempty"`
	Turns       int    `dynamodbav:"turns" json:"turns"`
	StartedAt   string `dynamodbav:"startedAt,omitempty" json:"startedAt,omitempty"`
	EndedAt     string `dynamodbav:"endedAt" json:"endedAt"`
	ExpiresAt   int64  `dynamodbav:"expiresAt,omitempty" json:"-"`
}

// DynamoStore writes call log entries. It is a callrecord.Sink.
type DynamoStore struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

var _ callrecord.Sink = (*DynamoStore)(nil)

func NewDynamoStore(client dynamoAPI, tableName string, logger *logging.Logger) *DynamoStore {
	if client == nil {
		panic("calllog: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("calllog: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DynamoStore{client: client, tableName: tableName, logger: logger}
}

func (s *DynamoStore) Name() string { return "dynamodb" }

// Write upserts the entry for rec.CallSid. A booked entry is never
// overwritten, so a late status callback cannot downgrade it.
func (s *DynamoStore) Write(ctx context.Context, rec callrecord.Record) error {
	if rec.CallSid == "" {
		return errors.New("calllog: call sid required")
	}
	entry := EntryFromRecord(rec)
	item, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return fmt.Errorf("calllog: marshal entry: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(callSid) OR outcome <> :booked"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":booked": &types.AttributeValueMemberS{Value: string(callrecord.OutcomeBooked)},
		},
	})
	if err != nil {
		var conflict *types.ConditionalCheckFailedException
		if errors.As(err, &conflict) {
			s.logger.Debug("call log entry already booked", "call_sid", rec.CallSid)
			return nil
		}
		return fmt.Errorf("calllog: put %s: %w", rec.CallSid, err)
	}
	return nil
}

// Get loads the entry for a call.
func (s *DynamoStore) Get(ctx context.Context, callSid string) (*Entry, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"callSid": &types.AttributeValueMemberS{Value: callSid},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("calllog: get %s: %w", callSid, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var entry Entry
	if err := attributevalue.UnmarshalMap(out.Item, &entry); err != nil {
		return nil, fmt.Errorf("calllog: decode %s: %w", callSid, err)
	}
	return &entry, nil
}

// EntryFromRecord flattens a call record into a table row.
func EntryFromRecord(rec callrecord.Record) Entry {
	ended := rec.EndedAt
	if ended.IsZero() {
		ended = time.Now().UTC()
	}
	entry := Entry{
		CallSid:     rec.CallSid,
		CallerPhone: rec.CallerPhone,
		CallerName:  rec.CallerName,
		Outcome:     string(rec.Outcome),
		Salon:       rec.Salon,
		Service:     rec.Known.Service,
		Date:        rec.Known.Date,
		Time:        rec.Known.Time,
		Barber:      rec.Known.Barber,
		Turns:       len(rec.Turns),
		EndedAt:     ended.Format(time.RFC3339),
		ExpiresAt:   ended.Add(entryTTL).Unix(),
	}
	if !rec.StartedAt.IsZero() {
		entry.StartedAt = rec.StartedAt.Format(time.RFC3339)
	}
	return entry
}
