package enrichment

import (
	"fmt"

	"linkhub/internal/shared/events"
)

// GeoResolver resolves an IP to a location; ok is false when nothing is known.
type GeoResolver interface {
	Resolve(ip string) (loc Location, ok bool)
}

// UserAgentParser parses a User-Agent header; it never fails.
type UserAgentParser interface {
	Parse(userAgent string) ParsedUserAgent
}

// Enricher maps a raw click to device and location attributes.
type Enricher struct {
	geo GeoResolver
	ua  UserAgentParser
}

// NewEnricher creates an Enricher. geo may be nil when no GeoIP database is available.
func NewEnricher(geo GeoResolver, ua UserAgentParser) *Enricher {
	if ua == nil {
		ua = NewDeviceDetector()
	}
	return &Enricher{geo: geo, ua: ua}
}

// Enrich returns best-effort attributes for ev. Lookups degrade to
// "Unknown"/nil, so the only errors are an invalid event or a panic
// inside a lookup library.
func (e *Enricher) Enrich(ev events.ClickEvent) (enriched events.EnrichedClickEvent, err error) {
	if err := ev.Validate(); err != nil {
		return events.EnrichedClickEvent{}, err
	}

	defer func() {
		if r := recover(); r != nil {
			enriched = events.EnrichedClickEvent{}
			err = fmt.Errorf("enrich event %s: recovered panic: %v", ev.EventID, r)
		}
	}()

	parsed := e.ua.Parse(ev.UserAgent)
	enriched = events.EnrichedClickEvent{
		ClickEvent: ev,
		DeviceType: parsed.DeviceType,
		Browser:    parsed.Browser,
		OS:         parsed.OS,
	}

	if e.geo != nil {
		if loc, ok := e.geo.Resolve(ev.IPAddress); ok {
			enriched.Country = loc.Country
			enriched.City = loc.City
			enriched.Latitude = loc.Latitude
			enriched.Longitude = loc.Longitude
		}
	}

	return enriched, nil
}
