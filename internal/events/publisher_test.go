package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/lshigami/quizgrader/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermillPublisher_PublishesJSONWithMetadata(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 4}, NewZerologAdapter())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, "attempts")
	require.NoError(t, err)

	pub := NewWatermillPublisher(pubSub, "attempts")
	defer pub.Close()

	event := NewAttemptCompletedEvent(11, 3, 7, 87.5, 4)
	require.NoError(t, pub.PublishAttemptEvent(ctx, event))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, event.ID, msg.UUID)
		assert.Equal(t, string(AttemptCompleted), msg.Metadata.Get("event_type"))
		assert.Equal(t, event.Source, msg.Metadata.Get("source"))
		assert.NotEmpty(t, msg.Metadata.Get("timestamp"))

		var decoded AttemptEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
		assert.Equal(t, uint(11), decoded.AttemptID)
		assert.Equal(t, uint(3), decoded.UserID)
		assert.Equal(t, uint(7), decoded.QuizID)
		require.NotNil(t, decoded.FinalScore)
		assert.Equal(t, 87.5, *decoded.FinalScore)
		assert.Equal(t, 4, decoded.GradedCount)
	case <-ctx.Done():
		t.Fatal("timed out waiting for published event")
	}
}

func TestNewAttemptFailedEvent(t *testing.T) {
	event := NewAttemptFailedEvent(5, 1, 2, "grading_failed", "grading")
	assert.Equal(t, AttemptFailed, event.Type)
	assert.Nil(t, event.FinalScore)
	assert.Equal(t, "grading_failed", event.Outcome)
	assert.Equal(t, "grading", event.Stage)
	assert.NotEmpty(t, event.ID)

	other := NewAttemptFailedEvent(5, 1, 2, "grading_failed", "grading")
	assert.NotEqual(t, event.ID, other.ID)
}

func TestNewPublisher(t *testing.T) {
	pub, err := NewPublisher(&config.Config{})
	require.NoError(t, err)
	assert.IsType(t, NoopPublisher{}, pub)
	assert.NoError(t, pub.PublishAttemptEvent(context.Background(), NewAttemptFailedEvent(0, 1, 1, "invalid_submission", "validate")))

	pub, err = NewPublisher(&config.Config{Events: config.Events{Enabled: true, Publisher: "channel", Topic: "attempts"}})
	require.NoError(t, err)
	assert.IsType(t, &WatermillPublisher{}, pub)
	assert.NoError(t, pub.PublishAttemptEvent(context.Background(), NewAttemptCompletedEvent(1, 1, 1, 100, 1)))
	assert.NoError(t, pub.Close())

	_, err = NewPublisher(&config.Config{Events: config.Events{Enabled: true, Publisher: "sqs"}})
	assert.Error(t, err)
}
