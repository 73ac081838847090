package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedMessage struct {
	topic   string
	qos     byte
	payload []byte
}

type fakeClient struct {
	messages []recordedMessage
	err      error
}

func (f *fakeClient) Publish(topic string, qos byte, _ bool, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, recordedMessage{topic: topic, qos: qos, payload: payload})
	return nil
}

func TestMQTTPublisherPublish(t *testing.T) {
	client := &fakeClient{}
	pub := NewMQTTPublisher(client, "jobboard/", nil)

	err := pub.Publish(context.Background(), Event{Resource: "jobs", Action: ActionCreated, ID: "42", Data: map[string]string{"company": "Acme"}})
	require.NoError(t, err)

	require.Len(t, client.messages, 1)
	msg := client.messages[0]
	assert.Equal(t, "jobboard/jobs/created", msg.topic)
	assert.Equal(t, byte(1), msg.qos)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &decoded))
	assert.Equal(t, "42", decoded["id"])
	assert.Equal(t, "created", decoded["action"])
	assert.NotEmpty(t, decoded["occurredAt"])
}

func TestMQTTPublisherErrors(t *testing.T) {
	client := &fakeClient{err: errors.New("not connected")}
	pub := NewMQTTPublisher(client, "jobboard", nil)

	assert.Error(t, pub.Publish(context.Background(), Event{Resource: "jobs", Action: ActionDeleted, ID: "1"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pub.Publish(ctx, Event{Resource: "jobs", Action: ActionDeleted, ID: "1"}), context.Canceled)
}
