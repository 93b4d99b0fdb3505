package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/reminder"
	"github.com/BruksfildServices01/barbershop-booking/internal/logger"
)

func reminderMessage() reminder.Message {
	return reminder.Message{
		Channel:   reminder.ChannelEmail,
		Target:    "ana@example.com",
		Template:  "appointment_reminder",
		Variables: map[string]string{"clientName": "Ana"},
	}
}

func TestHTTPNotifierPostsMessage(t *testing.T) {
	var got reminder.Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(reminder.Result{Success: true})
	}))
	defer srv.Close()

	n := NewHTTPNotifier(srv.URL, time.Second, logger.Nop())
	res := n.Send(context.Background(), reminderMessage())

	assert.True(t, res.Success)
	assert.Equal(t, "ana@example.com", got.Target)
	assert.Equal(t, "Ana", got.Variables["clientName"])
}

func TestHTTPNotifierReportsFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"provider rejected", func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(reminder.Result{Success: false, Error: "invalid_target"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			res := NewHTTPNotifier(srv.URL, time.Second, logger.Nop()).Send(context.Background(), reminderMessage())
			assert.False(t, res.Success)
			assert.NotEmpty(t, res.Error)
		})
	}
}

type fakePublisher struct {
	key string
	msg amqp.Publishing
	err error
}

func (p *fakePublisher) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	p.key = key
	p.msg = msg
	return p.err
}

func TestAMQPNotifierPublishesPersistentJSON(t *testing.T) {
	pub := &fakePublisher{}
	n := &AMQPNotifier{channel: pub, queue: "notifications", log: logger.Nop()}

	res := n.Send(context.Background(), reminderMessage())

	require.True(t, res.Success)
	assert.Equal(t, "notifications", pub.key)
	assert.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)
	assert.Equal(t, "appointment_reminder", pub.msg.Type)
	_, err := uuid.Parse(pub.msg.MessageId)
	assert.NoError(t, err)

	var body reminder.Message
	require.NoError(t, json.Unmarshal(pub.msg.Body, &body))
	assert.Equal(t, reminder.ChannelEmail, body.Channel)
}

func TestAMQPNotifierReportsPublishError(t *testing.T) {
	n := &AMQPNotifier{channel: &fakePublisher{err: errors.New("channel closed")}, queue: "q", log: logger.Nop()}

	res := n.Send(context.Background(), reminderMessage())
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "channel closed")
}
