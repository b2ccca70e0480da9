package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSQS struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{}, nil
}

func sampleEvent() Event {
	return Event{
		Type:       EventRecordApproved,
		GuildID:    "g1",
		OccurredAt: time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC),
		Record: &RecordPayload{
			Kind:         KindSale,
			RecordID:     "42",
			GrossAmount:  "100.00",
			CountryTax:   "4.50",
			PayoutAmount: "72.00",
		},
	}
}

func TestSQSNotifier(t *testing.T) {
	client := &fakeSQS{}
	n := NewSQSNotifier(client, "https://sqs.eu-west-1.amazonaws.com/1/civitas-events.fifo")

	require.NoError(t, n.Notify(context.Background(), sampleEvent()))
	require.Len(t, client.inputs, 1)

	input := client.inputs[0]
	assert.Equal(t, "g1", *input.MessageGroupId)
	assert.Equal(t, "record.approved", *input.MessageAttributes["EventType"].StringValue)

	var decoded Event
	require.NoError(t, json.Unmarshal([]byte(*input.MessageBody), &decoded))
	assert.Equal(t, "4.50", decoded.Record.CountryTax)
	assert.Nil(t, decoded.Settlement)
}

func TestSQSNotifierStandardQueue(t *testing.T) {
	client := &fakeSQS{err: errors.New("throttled")}
	n := NewSQSNotifier(client, "https://sqs.eu-west-1.amazonaws.com/1/civitas-events")

	err := n.Notify(context.Background(), sampleEvent())
	assert.ErrorContains(t, err, "throttled")
	assert.Nil(t, client.inputs[0].MessageGroupId)
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	require.NoError(t, n.Notify(context.Background(), sampleEvent()))
	entries := logs.FilterMessage("event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "record.approved", entries[0].ContextMap()["type"])
}
