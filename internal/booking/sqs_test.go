package booking

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/marcel-receptionist/internal/callrecord"
	"github.com/wolfman30/marcel-receptionist/internal/extract"
	"github.com/wolfman30/marcel-receptionist/pkg/logging"
)

type fakeSQS struct {
	sent []*sqs.SendMessageInput
	err  error
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, in)
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-1")}, nil
}

func bookedRecord() callrecord.Record {
	return callrecord.Record{
		CallSid:     "CA7",
		CallerPhone: "+15145551234",
		CallerName:  "Jean Tremblay",
		Salon:       "Barbier du Plateau",
		Outcome:     callrecord.OutcomeBooked,
		Known: extract.Context{
			Service: "coupe homme", Price: "30 $", Date: "demain", Time: "14h", Barber: "Marco", ClientName: "Jean",
		},
		EndedAt: time.Date(2024, time.November, 5, 14, 3, 0, 0, time.UTC),
	}
}

func TestSQSPublisherPublishesBookedCalls(t *testing.T) {
	fake := &fakeSQS{}
	pub := NewSQSPublisher(fake, "https://sqs.ca-central-1.amazonaws.com/123/bookings", logging.Discard())

	require.NoError(t, pub.Write(context.Background(), bookedRecord()))
	require.Len(t, fake.sent, 1)
	msg := fake.sent[0]
	assert.Equal(t, "https://sqs.ca-central-1.amazonaws.com/123/bookings", *msg.QueueUrl)
	assert.Equal(t, EventConfirmed, *msg.MessageAttributes["event_type"].StringValue)

	var event Event
	require.NoError(t, json.Unmarshal([]byte(*msg.MessageBody), &event))
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "booking.confirmed", event.Type)
	assert.Equal(t, "Jean Tremblay", event.ClientName)
	assert.Equal(t, "Marco", event.Barber)
	assert.Equal(t, "14h", event.Time)
	assert.Equal(t, "Barbier du Plateau", event.Salon)
}

func TestSQSPublisherSkipsOtherOutcomes(t *testing.T) {
	fake := &fakeSQS{}
	pub := NewSQSPublisher(fake, "q", logging.Discard())
	for _, outcome := range []callrecord.Outcome{callrecord.OutcomeAbandoned, callrecord.OutcomeError, callrecord.OutcomeNoSpeech} {
		rec := bookedRecord()
		rec.Outcome = outcome
		require.NoError(t, pub.Write(context.Background(), rec))
	}
	assert.Empty(t, fake.sent)
}

func TestSQSPublisherError(t *testing.T) {
	pub := NewSQSPublisher(&fakeSQS{err: errors.New("queue does not exist")}, "q", nil)
	assert.ErrorContains(t, pub.Write(context.Background(), bookedRecord()), "queue does not exist")
}

func TestNewEventUsesSpokenNameForUnknownCallers(t *testing.T) {
	rec := bookedRecord()
	rec.CallerName = ""
	rec.Known.ClientName = "Luc"
	assert.Equal(t, "Luc", NewEvent(rec).ClientName)
}
