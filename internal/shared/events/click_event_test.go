package events

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClickEvent(t *testing.T) {
	ev := NewClickEvent(7, "abc123", "1.2.3.4", "Mozilla/5.0", "https://google.com")

	assert.NotEqual(t, uuid.Nil, ev.EventID)
	assert.Equal(t, int64(7), ev.URLID)
	assert.Equal(t, "abc123", ev.ShortCode)
	assert.WithinDuration(t, time.Now(), ev.ClickedAt, time.Second)
	require.NotNil(t, ev.Referrer)
	assert.Equal(t, "https://google.com", *ev.Referrer)
	assert.NoError(t, ev.Validate())
}

func TestNewClickEvent_EmptyReferrerIsNull(t *testing.T) {
	ev := NewClickEvent(7, "abc123", "", "", "")

	assert.Nil(t, ev.Referrer)
	assert.Equal(t, "", ev.ReferrerOrEmpty())
}

func TestClickEvent_Validate(t *testing.T) {
	valid := NewClickEvent(1, "abc123", "", "", "")

	tests := []struct {
		name   string
		mutate func(e *ClickEvent)
	}{
		{name: "missing event id", mutate: func(e *ClickEvent) { e.EventID = uuid.Nil }},
		{name: "missing clicked_at", mutate: func(e *ClickEvent) { e.ClickedAt = time.Time{} }},
		{name: "missing short code", mutate: func(e *ClickEvent) { e.ShortCode = "" }},
		{name: "short code wider than column", mutate: func(e *ClickEvent) { e.ShortCode = "abcdefghijk" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := valid
			tt.mutate(&ev)
			assert.ErrorIs(t, ev.Validate(), ErrInvalidEvent)
		})
	}
}

func TestClickEvent_Validate_MaxShortCode(t *testing.T) {
	ev := NewClickEvent(1, "abcdefghij", "", "", "")

	assert.NoError(t, ev.Validate())
}

func TestMarshal_UsesWireFieldNames(t *testing.T) {
	ev := NewClickEvent(42, "abc123", "1.2.3.4", "curl/8.0", "")

	data, err := Marshal(ev)

	require.NoError(t, err)
	for _, field := range []string{`"eventId"`, `"urlId":42`, `"shortCode":"abc123"`, `"clickedAt"`, `"ipAddress"`, `"userAgent"`, `"referrer":null`} {
		assert.Contains(t, string(data), field)
	}

	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, ev.EventID, decoded.EventID)
	assert.True(t, ev.ClickedAt.Equal(decoded.ClickedAt))
}

func TestUnmarshal_Malformed(t *testing.T) {
	_, err := Unmarshal([]byte("{invalid json"))

	assert.Error(t, err)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{name: "X-Forwarded-For first hop", headers: map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"}, expected: "1.2.3.4"},
		{name: "X-Real-IP", headers: map[string]string{"X-Real-IP": "9.8.7.6"}, expected: "9.8.7.6"},
		{name: "RemoteAddr", remoteAddr: "10.0.0.1:12345", expected: "10.0.0.1"},
		{name: "RemoteAddr without port", remoteAddr: "10.0.0.2", expected: "10.0.0.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/abc123", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if tt.remoteAddr != "" {
				req.RemoteAddr = tt.remoteAddr
			}

			assert.Equal(t, tt.expected, ClientIP(req))
		})
	}
}
