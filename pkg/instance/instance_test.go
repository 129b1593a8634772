package instance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDPrefersExplicitValue(t *testing.T) {
	t.Setenv("BUY2BRANDS_INSTANCE_ID", "api-7")
	t.Setenv("DYNO", "web.1")
	assert.Equal(t, "api-7", ID("api"))
}

func TestIDFallsBackToDyno(t *testing.T) {
	t.Setenv("BUY2BRANDS_INSTANCE_ID", "")
	t.Setenv("DYNO", "web.1")
	assert.Equal(t, "web.1", ID("api"))
}

func TestIDDefaultsToServiceName(t *testing.T) {
	t.Setenv("BUY2BRANDS_INSTANCE_ID", "")
	t.Setenv("DYNO", "")
	assert.Contains(t, ID("outbox-publisher"), "outbox-publisher")
}
