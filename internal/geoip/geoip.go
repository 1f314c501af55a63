// Package geoip annotates monitored servers with a country by looking
// their resolved IP up in a MaxMind GeoLite2 database, and keeps a local
// copy of that database fresh.
package geoip

import (
	"net"

	"github.com/oschwald/geoip2-golang"
)

// DB is an open GeoLite2 country database.
type DB struct {
	reader *geoip2.Reader
}

// Open loads the database at path.
func Open(path string) (*DB, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	return &DB{reader: reader}, nil
}

// Close releases the underlying reader.
func (d *DB) Close() error {
	return d.reader.Close()
}

// Country returns the ISO 3166-1 code ("US", "DE") for addr. It is empty
// when addr is not an IP literal or the database has no answer; an
// unresolvable country is never an error at a call site.
func (d *DB) Country(addr string) string {
	ip := net.ParseIP(addr)
	if ip == nil {
		return ""
	}

	record, err := d.reader.Country(ip)
	if err != nil || record == nil {
		return ""
	}
	return record.Country.IsoCode
}
