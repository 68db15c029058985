package events

// Unknown is the value stored for device attributes that could not be determined.
const Unknown = "Unknown"

// EnrichedClickEvent is a ClickEvent plus device and location attributes.
// It is built once per event by the enricher and never re-enriched.
type EnrichedClickEvent struct {
	ClickEvent

	DeviceType string
	Browser    string
	OS         string

	Country   *string
	City      *string
	Latitude  *float64
	Longitude *float64
}
