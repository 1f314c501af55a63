package status

import (
	"strconv"
	"time"

	"github.com/woozymasta/mcping/pkg/protocol"
)

// Positions of the semicolon-delimited pong payload fields. Only the first
// six are guaranteed; everything after is optional.
const (
	bedrockFieldEdition = iota
	bedrockFieldMOTD
	bedrockFieldProtocol
	bedrockFieldVersion
	bedrockFieldOnline
	bedrockFieldMax
	bedrockFieldServerID
	bedrockFieldMapName
	bedrockFieldGamemode
)

// bedrockRequiredFields is the minimum field count of a valid pong payload.
const bedrockRequiredFields = 6

// BedrockStatus is the response of a Bedrock Edition unconnected ping.
type BedrockStatus struct {
	// MapName and Gamemode are optional payload fields; nil when the server
	// does not send them.
	MapName  *string `json:"map_name"`
	Gamemode *string `json:"gamemode"`

	// MOTD is the first server description line.
	MOTD string `json:"motd"`

	Players BedrockPlayers `json:"players"`
	Version BedrockVersion `json:"version"`

	Latency time.Duration `json:"latency"`
}

// BedrockPlayers describes the player slots of a Bedrock server.
type BedrockPlayers struct {
	Online int `json:"online"`
	Max    int `json:"max"`
}

// BedrockVersion describes the server software version. Brand is the
// edition field, "MCPE" or "MCEE".
type BedrockVersion struct {
	Name     string `json:"name"`
	Protocol int    `json:"protocol"`
	Brand    string `json:"brand"`
}

// BuildBedrock assembles the response from the decoded payload fields of an
// unconnected pong. Field counts short of the optional tail are fine; a
// count short of the guaranteed six, or a non-numeric numeric field, is a
// validation failure.
func BuildBedrock(fields []string, latency time.Duration) (*BedrockStatus, error) {
	if len(fields) < bedrockRequiredFields {
		return nil, protocol.ValidationError("bedrock status", "payload has %d fields, want at least %d", len(fields), bedrockRequiredFields)
	}

	proto, err := strconv.Atoi(fields[bedrockFieldProtocol])
	if err != nil {
		return nil, protocol.ValidationError("bedrock status", "protocol version %q is not a number", fields[bedrockFieldProtocol])
	}
	online, err := strconv.Atoi(fields[bedrockFieldOnline])
	if err != nil {
		return nil, protocol.ValidationError("bedrock status", "online count %q is not a number", fields[bedrockFieldOnline])
	}
	max, err := strconv.Atoi(fields[bedrockFieldMax])
	if err != nil {
		return nil, protocol.ValidationError("bedrock status", "max count %q is not a number", fields[bedrockFieldMax])
	}

	s := &BedrockStatus{
		MOTD: fields[bedrockFieldMOTD],
		Players: BedrockPlayers{
			Online: online,
			Max:    max,
		},
		Version: BedrockVersion{
			Name:     fields[bedrockFieldVersion],
			Protocol: proto,
			Brand:    fields[bedrockFieldEdition],
		},
		Latency: latency,
	}

	if len(fields) > bedrockFieldMapName {
		name := fields[bedrockFieldMapName]
		s.MapName = &name
	}
	if len(fields) > bedrockFieldGamemode {
		mode := fields[bedrockFieldGamemode]
		s.Gamemode = &mode
	}

	return s, nil
}
