package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/buy2brands/wholesale-api/pkg/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	channel string
	body    []byte
}

type stubPublisher struct {
	msgs []published
	err  error
}

func (s *stubPublisher) Publish(_ context.Context, channel string, payload []byte) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.msgs = append(s.msgs, published{channel: channel, body: payload})
	return 1, nil
}

func TestBroadcasterChannels(t *testing.T) {
	pub := &stubPublisher{}
	b, err := NewBroadcaster(pub, config.RealtimeConfig{})
	require.NoError(t, err)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	b.now = func() time.Time { return fixed }

	userID := uuid.New()
	require.NoError(t, b.ToAdmins(context.Background(), EventNewOrderReceived, map[string]string{"order_number": "ORD-000001"}))
	require.NoError(t, b.ToUser(context.Background(), userID, EventOrderStatusChanged, map[string]string{"status": "shipped"}))

	require.Len(t, pub.msgs, 2)
	assert.Equal(t, "admin_room", pub.msgs[0].channel)
	assert.Equal(t, "user_"+userID.String(), pub.msgs[1].channel)

	var env struct {
		Event     string            `json:"event"`
		Payload   map[string]string `json:"payload"`
		Timestamp time.Time         `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(pub.msgs[0].body, &env))
	assert.Equal(t, EventNewOrderReceived, env.Event)
	assert.Equal(t, "ORD-000001", env.Payload["order_number"])
	assert.True(t, fixed.Equal(env.Timestamp))
}

func TestBroadcasterPropagatesErrors(t *testing.T) {
	b, err := NewBroadcaster(&stubPublisher{err: errors.New("down")}, config.RealtimeConfig{AdminChannel: "admins"})
	require.NoError(t, err)
	require.Error(t, b.ToAdmins(context.Background(), EventOrderUpdated, nil))

	_, err = NewBroadcaster(nil, config.RealtimeConfig{})
	require.Error(t, err)
}
