package status

import (
	"encoding/json"
	"testing"

	"github.com/woozymasta/mcping/pkg/protocol"
)

func decode(t *testing.T, payload string) map[string]any {
	t.Helper()
	var raw map[string]any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("bad test payload: %v", err)
	}
	return raw
}

func TestBuildJava(t *testing.T) {
	raw := decode(t, `{
		"description": {"text": "A Minecraft Server"},
		"players": {"max": 20, "online": 1, "sample": [{"name": "Dinnerbone", "id": "61699b2e-d327-4a01-9f1e-0ea8c3f06bc6"}]},
		"version": {"name": "1.8-pre1", "protocol": 44},
		"favicon": "data:image/png;base64,foo"
	}`)

	s, err := BuildJava(raw)
	if err != nil {
		t.Fatalf("BuildJava: %v", err)
	}
	if s.MOTD != "A Minecraft Server" {
		t.Errorf("MOTD = %q", s.MOTD)
	}
	if s.Players.Online != 1 || s.Players.Max != 20 {
		t.Errorf("players = %d/%d", s.Players.Online, s.Players.Max)
	}
	if len(s.Players.Sample) != 1 || s.Players.Sample[0].Name != "Dinnerbone" {
		t.Errorf("sample = %+v", s.Players.Sample)
	}
	if s.Version.Name != "1.8-pre1" || s.Version.Protocol != 44 {
		t.Errorf("version = %+v", s.Version)
	}
	if s.Icon == nil || *s.Icon != "data:image/png;base64,foo" {
		t.Errorf("Icon = %v", s.Icon)
	}
	if s.Raw["description"] == nil {
		t.Error("Raw should keep the payload as sent")
	}
}

func TestBuildJavaNoSample(t *testing.T) {
	raw := decode(t, `{
		"description": "hi",
		"players": {"max": 20, "online": 0},
		"version": {"name": "1.8", "protocol": 47}
	}`)
	s, err := BuildJava(raw)
	if err != nil {
		t.Fatalf("BuildJava: %v", err)
	}
	if s.Players.Sample != nil {
		t.Errorf("sample = %+v, want nil", s.Players.Sample)
	}
	if s.Icon != nil {
		t.Error("Icon should be nil")
	}
}

func TestBuildJavaInvalid(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"no players", `{"description": "x", "version": {"name": "1.8", "protocol": 47}}`},
		{"no version", `{"description": "x", "players": {"max": 20, "online": 0}}`},
		{"no description", `{"players": {"max": 20, "online": 0}, "version": {"name": "1.8", "protocol": 47}}`},
		{"players not object", `{"description": "x", "players": 3, "version": {"name": "1.8", "protocol": 47}}`},
		{"no online", `{"description": "x", "players": {"max": 20}, "version": {"name": "1.8", "protocol": 47}}`},
		{"online not integer", `{"description": "x", "players": {"max": 20, "online": 1.5}, "version": {"name": "1.8", "protocol": 47}}`},
		{"version name not string", `{"description": "x", "players": {"max": 20, "online": 0}, "version": {"name": 18, "protocol": 47}}`},
		{"sample not list", `{"description": "x", "players": {"max": 20, "online": 0, "sample": "nope"}, "version": {"name": "1.8", "protocol": 47}}`},
		{"sample entry no id", `{"description": "x", "players": {"max": 20, "online": 0, "sample": [{"name": "a"}]}, "version": {"name": "1.8", "protocol": 47}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildJava(decode(t, tc.payload))
			if protocol.KindOf(err) != protocol.KindValidation {
				t.Fatalf("got %v, want a validation error", err)
			}
		})
	}
}
