// Package models defines the data structures persisted by the monitor
// history database.
package models

import "time"

// Editions of a monitored server.
const (
	EditionJava    = "java"
	EditionBedrock = "bedrock"
)

// Sample is one status poll of one server. Unreachable servers are recorded
// too, with Reachable false and the failure in Error.
type Sample struct {
	PolledAt  time.Time `json:"polled_at"`
	Address   string    `json:"address"`
	Edition   string    `json:"edition"`
	Version   string    `json:"version"`
	MOTD      string    `json:"motd"`
	Country   string    `json:"country,omitempty"`
	Error     string    `json:"error,omitempty"`
	LatencyMS int64     `json:"latency_ms"`
	Online    int       `json:"online"`
	Max       int       `json:"max"`
	Reachable bool      `json:"reachable"`
}
