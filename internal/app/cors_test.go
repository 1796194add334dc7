package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMatchOriginPattern(t *testing.T) {
	cases := []struct {
		pattern string
		host    string
		want    bool
	}{
		{"emogo.app", "emogo.app", true},
		{"emogo.app", "evil.emogo.app.example.com", false},
		{"*.emogo.app", "api.emogo.app", true},
		{"*.emogo.app", "emogo.app.evil.com", false},
		{"localhost:*", "localhost:5173", true},
		{"localhost:*", "localhost.evil.com", false},
		{"*.emogo.app", "other.app", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, matchOriginPattern(tc.pattern, tc.host), "%s vs %s", tc.pattern, tc.host)
	}
}

func TestExtractOriginHost(t *testing.T) {
	assert.Equal(t, "emogo.app", extractOriginHost("https://emogo.app"))
	assert.Equal(t, "localhost:5173", extractOriginHost("http://localhost:5173"))
	assert.Equal(t, "not a url", extractOriginHost("not a url"))
}

func TestHumanizeDuration(t *testing.T) {
	assert.Equal(t, "42s", humanizeDuration(42*time.Second))
	assert.Equal(t, "5m0s", humanizeDuration(5*time.Minute+20*time.Second))
	assert.Equal(t, "3h0m0s", humanizeDuration(3*time.Hour+10*time.Minute))
	assert.Equal(t, "48h0m0s", humanizeDuration(49*time.Hour))
}
