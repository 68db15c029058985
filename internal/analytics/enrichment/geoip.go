package enrichment

import (
	"net"
	"net/netip"

	geoip2 "github.com/oschwald/geoip2-golang"
)

// Location is the geographic part of an enriched click.
type Location struct {
	Country   *string
	City      *string
	Latitude  *float64
	Longitude *float64
}

// cityReader is the subset of *geoip2.Reader used here.
type cityReader interface {
	City(ip net.IP) (*geoip2.City, error)
	Close() error
}

// GeoIPResolver resolves IP addresses to locations using a GeoIP2/GeoLite2 City database.
type GeoIPResolver struct {
	db cityReader
}

// NewGeoIPResolver creates a new GeoIPResolver.
// Returns error if the database file cannot be opened or is corrupt.
func NewGeoIPResolver(dbPath string) (*GeoIPResolver, error) {
	db, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return &GeoIPResolver{db: db}, nil
}

// Close closes the GeoIP database reader.
func (g *GeoIPResolver) Close() error {
	if g == nil || g.db == nil {
		return nil
	}
	return g.db.Close()
}

// Resolve returns the location of ipStr. The second result is false for
// private, loopback, link-local or invalid addresses, lookup failures, and
// when no database is loaded.
func (g *GeoIPResolver) Resolve(ipStr string) (Location, bool) {
	if g == nil || g.db == nil || ipStr == "" {
		return Location{}, false
	}

	addr, err := netip.ParseAddr(ipStr)
	if err != nil {
		return Location{}, false
	}
	addr = addr.Unmap()
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() || addr.IsUnspecified() {
		return Location{}, false
	}

	record, err := g.db.City(net.IP(addr.AsSlice()))
	if err != nil || record == nil {
		return Location{}, false
	}

	var loc Location
	if name := record.Country.Names["en"]; name != "" {
		loc.Country = &name
	} else if code := record.Country.IsoCode; code != "" {
		loc.Country = &code
	}
	if name := record.City.Names["en"]; name != "" {
		loc.City = &name
	}
	if record.Location.Latitude != 0 || record.Location.Longitude != 0 {
		lat, lon := record.Location.Latitude, record.Location.Longitude
		loc.Latitude = &lat
		loc.Longitude = &lon
	}

	return loc, true
}
