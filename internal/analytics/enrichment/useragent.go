package enrichment

import (
	"strings"

	ua "github.com/mileusna/useragent"

	"linkhub/internal/shared/events"
)

// ParsedUserAgent holds the device attributes derived from a User-Agent header.
type ParsedUserAgent struct {
	DeviceType string
	Browser    string
	OS         string
}

var unknownAgent = ParsedUserAgent{
	DeviceType: events.Unknown,
	Browser:    events.Unknown,
	OS:         events.Unknown,
}

// DeviceDetector parses User-Agent strings into device type, browser and OS.
type DeviceDetector struct{}

// NewDeviceDetector creates a new DeviceDetector.
func NewDeviceDetector() *DeviceDetector {
	return &DeviceDetector{}
}

// Parse never fails. A header without a single product/version token is
// treated as unparseable and every attribute is "Unknown".
func (d *DeviceDetector) Parse(uaString string) ParsedUserAgent {
	uaString = strings.TrimSpace(uaString)
	if uaString == "" || !strings.Contains(uaString, "/") {
		return unknownAgent
	}

	parsed := ua.Parse(uaString)

	result := ParsedUserAgent{
		DeviceType: d.detectDevice(parsed),
		Browser:    orUnknown(parsed.Name),
		OS:         orUnknown(parsed.OS),
	}
	return result
}

// DetectDevice returns "Bot", "Tablet", "Mobile", "Desktop" or "Unknown".
func (d *DeviceDetector) DetectDevice(uaString string) string {
	return d.Parse(uaString).DeviceType
}

func (d *DeviceDetector) detectDevice(parsed ua.UserAgent) string {
	// Bots first, they often claim a desktop platform.
	switch {
	case parsed.Bot:
		return "Bot"
	case parsed.Tablet:
		return "Tablet"
	case parsed.Mobile:
		return "Mobile"
	case parsed.Desktop:
		return "Desktop"
	}
	return events.Unknown
}

func orUnknown(s string) string {
	if s == "" {
		return events.Unknown
	}
	return s
}
