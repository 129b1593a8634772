package pubsub

import (
	"context"
	"testing"

	"github.com/buy2brands/wholesale-api/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicResourceName(t *testing.T) {
	c := &Client{projectID: "b2b-prod"}
	assert.Equal(t, "projects/b2b-prod/topics/order-events", c.topicResourceName("order-events"))
	assert.Equal(t, "projects/other/topics/x", c.topicResourceName("projects/other/topics/x"))
	assert.Empty(t, c.topicResourceName("  "))
	assert.Empty(t, (&Client{}).topicResourceName("order-events"))
}

func TestNewClientRequiresProject(t *testing.T) {
	_, err := NewClient(context.Background(), config.EventsConfig{OrdersTopic: "order-events"}, nil)
	require.ErrorIs(t, err, errProjectIDRequired)
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	assert.Nil(t, c.Publisher("t"))
	require.Error(t, c.Ping(context.Background()))
	require.NoError(t, c.Close())
}
