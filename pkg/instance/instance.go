package instance

import (
	"os"
	"strings"
)

// ID identifies the running process in logs and outbox claims. It prefers an
// explicit id, then the platform dyno name, then the hostname.
func ID(service string) string {
	for _, key := range []string{"BUY2BRANDS_INSTANCE_ID", "DYNO"} {
		if id := strings.TrimSpace(os.Getenv(key)); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return service + "@" + host
	}
	return service + "-0"
}
