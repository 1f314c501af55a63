package status

import (
	"strconv"
	"strings"

	"github.com/woozymasta/mcping/pkg/protocol"
)

// QueryStatus is the response of a full-stat query protocol exchange.
type QueryStatus struct {
	// Raw is the key/value section exactly as the server sent it.
	Raw map[string]string `json:"raw"`

	// MOTD is the server description ("hostname" on the wire).
	MOTD string `json:"motd"`

	// Map is the current world name.
	Map string `json:"map"`

	Players  QueryPlayers  `json:"players"`
	Software QuerySoftware `json:"software"`
}

// QueryPlayers describes the player slots and the full online-player list.
type QueryPlayers struct {
	Names  []string `json:"names"`
	Online int      `json:"online"`
	Max    int      `json:"max"`
}

// QuerySoftware describes the server software, parsed from the "plugins"
// string: "<brand> <version>: <plugin>; <plugin>". Vanilla servers send an
// empty string.
type QuerySoftware struct {
	Version string   `json:"version"`
	Brand   string   `json:"brand"`
	Plugins []string `json:"plugins"`
}

// vanillaBrand is reported when the plugins string names no server mod.
const vanillaBrand = "vanilla"

// BuildQuery validates the key/value section of a full-stat reply and
// assembles the response. Missing required keys and non-numeric player
// counts are validation failures.
func BuildQuery(raw map[string]string, players []string) (*QueryStatus, error) {
	for _, key := range [...]string{"hostname", "map", "numplayers", "maxplayers", "version", "plugins"} {
		if _, ok := raw[key]; !ok {
			return nil, protocol.ValidationError("query status", "stat reply has no %q value", key)
		}
	}

	online, err := strconv.Atoi(raw["numplayers"])
	if err != nil {
		return nil, protocol.ValidationError("query status", "numplayers %q is not a number", raw["numplayers"])
	}
	max, err := strconv.Atoi(raw["maxplayers"])
	if err != nil {
		return nil, protocol.ValidationError("query status", "maxplayers %q is not a number", raw["maxplayers"])
	}

	return &QueryStatus{
		Raw:  raw,
		MOTD: raw["hostname"],
		Map:  raw["map"],
		Players: QueryPlayers{
			Names:  players,
			Online: online,
			Max:    max,
		},
		Software: parseSoftware(raw["version"], raw["plugins"]),
	}, nil
}

func parseSoftware(version, plugins string) QuerySoftware {
	software := QuerySoftware{
		Version: version,
		Brand:   vanillaBrand,
	}
	if plugins == "" {
		return software
	}

	brand, list, found := strings.Cut(plugins, ":")
	software.Brand = strings.TrimSpace(brand)
	if found {
		for _, plugin := range strings.Split(list, ";") {
			software.Plugins = append(software.Plugins, strings.TrimSpace(plugin))
		}
	}
	return software
}
