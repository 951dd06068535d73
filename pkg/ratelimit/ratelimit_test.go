package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowEnforcesLimit(t *testing.T) {
	t.Parallel()

	rl := NewLoginRateLimiter(3, time.Minute)
	defer rl.Stop()

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"), "4th attempt within window must be blocked")

	// Farklı IP'ler birbirini etkilemez
	assert.True(t, rl.Allow("5.6.7.8"))
}

func TestAllowNewWindowAfterExpiry(t *testing.T) {
	t.Parallel()

	rl := NewLoginRateLimiter(1, 20*time.Millisecond)
	defer rl.Stop()

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))

	time.Sleep(30 * time.Millisecond)
	assert.True(t, rl.Allow("1.2.3.4"), "expired window starts fresh")
}

func TestResetClearsCounter(t *testing.T) {
	t.Parallel()

	rl := NewLoginRateLimiter(1, time.Minute)
	defer rl.Stop()

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))

	rl.Reset("1.2.3.4")
	assert.True(t, rl.Allow("1.2.3.4"), "successful login resets the bucket")
}

func TestRetryAfterSeconds(t *testing.T) {
	t.Parallel()

	rl := NewLoginRateLimiter(1, time.Minute)
	defer rl.Stop()

	assert.Equal(t, 0, rl.RetryAfterSeconds("unknown"))

	rl.Allow("1.2.3.4")
	retry := rl.RetryAfterSeconds("1.2.3.4")
	assert.Greater(t, retry, 0)
	assert.LessOrEqual(t, retry, 61)
}

func TestExtractIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "192.168.1.10:54321",
			want:       "192.168.1.10",
		},
		{
			name:       "x-forwarded-for wins",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"},
			want:       "203.0.113.7",
		},
		{
			name:       "x-real-ip fallback",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Real-IP": "203.0.113.9"},
			want:       "203.0.113.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			assert.Equal(t, tt.want, ExtractIP(req))
		})
	}
}

func TestFormatRetryMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "45 second(s)", FormatRetryMessage(45))
	assert.Equal(t, "2 minute(s)", FormatRetryMessage(120))
}
