// Package status holds the validated, immutable response models built from
// the raw decoded payloads of the three status protocols, including the
// Java Edition rich-text MOTD flattening.
package status

import (
	"time"

	"github.com/woozymasta/mcping/pkg/protocol"
)

// JavaStatus is the response of a Java Edition Server List Ping exchange.
type JavaStatus struct {
	// Raw is the decoded JSON payload exactly as the server sent it.
	Raw map[string]any `json:"raw"`

	// MOTD is the server description, flattened to legacy formatting codes.
	MOTD string `json:"motd"`

	// Icon is the base64-encoded PNG favicon, nil when the server sent none.
	Icon *string `json:"icon"`

	Players JavaPlayers `json:"players"`
	Version JavaVersion `json:"version"`

	// Latency is measured by the ping exchange and attached after the
	// response is built.
	Latency time.Duration `json:"latency"`
}

// JavaPlayers describes the player slots of a Java server.
type JavaPlayers struct {
	// Sample is the advertised subset of online players, nil when the
	// server does not expose one.
	Sample []JavaPlayer `json:"sample,omitempty"`
	Online int          `json:"online"`
	Max    int          `json:"max"`
}

// JavaPlayer is one entry of the player sample.
type JavaPlayer struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// JavaVersion describes the server software version.
type JavaVersion struct {
	Name     string `json:"name"`
	Protocol int    `json:"protocol"`
}

// BuildJava validates a raw status payload and assembles the response.
// The payload must carry "players" and "version" objects and a
// "description"; a missing or mistyped key is a validation failure, never a
// partial response.
func BuildJava(raw map[string]any) (*JavaStatus, error) {
	playersRaw, err := requireObject(raw, "status", "players")
	if err != nil {
		return nil, err
	}
	versionRaw, err := requireObject(raw, "status", "version")
	if err != nil {
		return nil, err
	}
	if _, ok := raw["description"]; !ok {
		return nil, protocol.ValidationError("status", "invalid status object (no %q value)", "description")
	}

	players, err := buildJavaPlayers(playersRaw)
	if err != nil {
		return nil, err
	}
	version, err := buildJavaVersion(versionRaw)
	if err != nil {
		return nil, err
	}

	s := &JavaStatus{
		Raw:     raw,
		MOTD:    ParseMOTD(raw["description"]),
		Players: players,
		Version: version,
	}
	if icon, ok := raw["favicon"].(string); ok {
		s.Icon = &icon
	}
	return s, nil
}

func buildJavaPlayers(raw map[string]any) (JavaPlayers, error) {
	online, err := requireInt(raw, "players", "online")
	if err != nil {
		return JavaPlayers{}, err
	}
	max, err := requireInt(raw, "players", "max")
	if err != nil {
		return JavaPlayers{}, err
	}

	players := JavaPlayers{Online: online, Max: max}
	if rawSample, ok := raw["sample"]; ok {
		list, ok := rawSample.([]any)
		if !ok {
			return JavaPlayers{}, protocol.ValidationError("players", "invalid players object (expected %q to be a list, was %T)", "sample", rawSample)
		}
		players.Sample = make([]JavaPlayer, 0, len(list))
		for _, entry := range list {
			obj, ok := entry.(map[string]any)
			if !ok {
				return JavaPlayers{}, protocol.ValidationError("player", "invalid player object (expected an object, was %T)", entry)
			}
			name, err := requireString(obj, "player", "name")
			if err != nil {
				return JavaPlayers{}, err
			}
			id, err := requireString(obj, "player", "id")
			if err != nil {
				return JavaPlayers{}, err
			}
			players.Sample = append(players.Sample, JavaPlayer{Name: name, ID: id})
		}
	}
	return players, nil
}

func buildJavaVersion(raw map[string]any) (JavaVersion, error) {
	name, err := requireString(raw, "version", "name")
	if err != nil {
		return JavaVersion{}, err
	}
	proto, err := requireInt(raw, "version", "protocol")
	if err != nil {
		return JavaVersion{}, err
	}
	return JavaVersion{Name: name, Protocol: proto}, nil
}

// requireObject fetches a required key that must hold a JSON object.
func requireObject(raw map[string]any, who, key string) (map[string]any, error) {
	v, ok := raw[key]
	if !ok {
		return nil, protocol.ValidationError(who, "invalid %s object (no %q value)", who, key)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, protocol.ValidationError(who, "invalid %s object (expected %q to be an object, was %T)", who, key, v)
	}
	return obj, nil
}

// requireString fetches a required key that must hold a string.
func requireString(raw map[string]any, who, key string) (string, error) {
	v, ok := raw[key]
	if !ok {
		return "", protocol.ValidationError(who, "invalid %s object (no %q value)", who, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", protocol.ValidationError(who, "invalid %s object (expected %q to be a string, was %T)", who, key, v)
	}
	return s, nil
}

// requireInt fetches a required key that must hold an integral number.
// encoding/json decodes all numbers as float64.
func requireInt(raw map[string]any, who, key string) (int, error) {
	v, ok := raw[key]
	if !ok {
		return 0, protocol.ValidationError(who, "invalid %s object (no %q value)", who, key)
	}
	f, ok := v.(float64)
	if !ok || f != float64(int(f)) {
		return 0, protocol.ValidationError(who, "invalid %s object (expected %q to be an integer, was %v)", who, key, v)
	}
	return int(f), nil
}
