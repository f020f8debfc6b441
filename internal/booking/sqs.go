package booking

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/wolfman30/marcel-receptionist/internal/callrecord"
	"github.com/wolfman30/marcel-receptionist/pkg/logging"
)

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher sends booking.confirmed events for booked calls. Other
// outcomes are ignored. It is a callrecord.Sink.
type SQSPublisher struct {
	client   sqsAPI
	queueURL string
	logger   *logging.Logger
}

var _ callrecord.Sink = (*SQSPublisher)(nil)

func NewSQSPublisher(client sqsAPI, queueURL string, logger *logging.Logger) *SQSPublisher {
	if client == nil {
		panic("booking: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("booking: SQS queueURL cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SQSPublisher{client: client, queueURL: queueURL, logger: logger}
}

func (p *SQSPublisher) Name() string { return "sqs" }

func (p *SQSPublisher) Write(ctx context.Context, rec callrecord.Record) error {
	if !rec.Booked() {
		return nil
	}
	event := NewEvent(rec)
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("booking: marshal event: %w", err)
	}
	out, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"event_type": {DataType: aws.String("String"), StringValue: aws.String(event.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("booking: failed to send SQS message: %w", err)
	}
	p.logger.Info("booking event published",
		"call_sid", rec.CallSid,
		"event_id", event.ID,
		"message_id", aws.ToString(out.MessageId),
	)
	return nil
}
