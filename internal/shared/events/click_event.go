package events

import (
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// MaxShortCodeLen is the width of the click_events.short_code column.
const MaxShortCodeLen = 10

// ErrInvalidEvent reports a click event that is structurally unusable.
var ErrInvalidEvent = errors.New("invalid click event")

// ClickEvent represents a URL redirect click for analytics tracking.
// Published by the redirect path, consumed by the analytics consumer.
// The JSON field names are the wire format shared by every producer.
type ClickEvent struct {
	EventID   uuid.UUID `json:"eventId"`
	URLID     int64     `json:"urlId"`
	ShortCode string    `json:"shortCode"`
	ClickedAt time.Time `json:"clickedAt"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	Referrer  *string   `json:"referrer"`
}

// NewClickEvent builds an event for a click happening now.
func NewClickEvent(urlID int64, shortCode, ip, userAgent, referrer string) ClickEvent {
	ev := ClickEvent{
		EventID:   uuid.New(),
		URLID:     urlID,
		ShortCode: shortCode,
		ClickedAt: time.Now().UTC(),
		IPAddress: ip,
		UserAgent: userAgent,
	}
	if referrer != "" {
		ev.Referrer = &referrer
	}
	return ev
}

// Validate checks the fields the event store keys on.
func (e ClickEvent) Validate() error {
	switch {
	case e.EventID == uuid.Nil:
		return fmt.Errorf("%w: missing event id", ErrInvalidEvent)
	case e.ClickedAt.IsZero():
		return fmt.Errorf("%w: missing clicked_at for event %s", ErrInvalidEvent, e.EventID)
	case e.ShortCode == "":
		return fmt.Errorf("%w: missing short code for event %s", ErrInvalidEvent, e.EventID)
	case len(e.ShortCode) > MaxShortCodeLen:
		return fmt.Errorf("%w: short code longer than %d characters for event %s", ErrInvalidEvent, MaxShortCodeLen, e.EventID)
	}
	return nil
}

// ReferrerOrEmpty returns the referrer or "" when absent.
func (e ClickEvent) ReferrerOrEmpty() string {
	if e.Referrer == nil {
		return ""
	}
	return *e.Referrer
}

// Marshal serializes the event in its wire format.
func Marshal(e ClickEvent) ([]byte, error) {
	return json.Marshal(e)
}

// Unmarshal decodes a wire payload. Any decode failure is permanent:
// retrying the same bytes can never succeed.
func Unmarshal(data []byte) (ClickEvent, error) {
	var e ClickEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return ClickEvent{}, fmt.Errorf("decode click event: %w", err)
	}
	return e, nil
}
