package status

import "strings"

// legacyPrefix introduces a legacy formatting code in flattened MOTD text.
const legacyPrefix = "§"

// styleOrder lists the rich-text style attributes in the order their codes
// are emitted. The color attribute is handled separately since its code
// depends on the value.
var styleOrder = [...]struct {
	key  string
	code string
}{
	{"bold", "l"},
	{"strikethrough", "m"},
	{"italic", "o"},
	{"underlined", "n"},
	{"obfuscated", "k"},
	{"reset", "r"},
}

// colorCodes maps rich-text color names to their legacy code characters.
// Unknown names (web colors some servers emit) are dropped.
var colorCodes = map[string]string{
	"dark_red":     "4",
	"red":          "c",
	"gold":         "6",
	"yellow":       "e",
	"dark_green":   "2",
	"green":        "a",
	"aqua":         "b",
	"dark_aqua":    "3",
	"dark_blue":    "1",
	"blue":         "9",
	"light_purple": "d",
	"dark_purple":  "5",
	"white":        "f",
	"gray":         "7",
	"dark_gray":    "8",
	"black":        "0",
}

// ParseMOTD flattens the "description" field of a status payload into plain
// text with legacy formatting codes. The wire form is either a plain
// string, a rich-text object with "text" and "extra" entries, or a bare
// list of such entries.
func ParseMOTD(raw any) string {
	switch desc := raw.(type) {
	case string:
		return desc
	case map[string]any:
		entries, _ := desc["extra"].([]any)
		end, _ := desc["text"].(string)
		return flattenEntries(entries) + end
	case []any:
		return flattenEntries(desc)
	default:
		return ""
	}
}

func flattenEntries(entries []any) string {
	var sb strings.Builder
	for _, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		if name, ok := entry["color"].(string); ok {
			if code, known := colorCodes[name]; known {
				sb.WriteString(legacyPrefix + code)
			}
		}
		for _, style := range styleOrder {
			if set, ok := entry[style.key].(bool); ok && set {
				sb.WriteString(legacyPrefix + style.code)
			}
		}
		if text, ok := entry["text"].(string); ok {
			sb.WriteString(text)
		}
	}
	return sb.String()
}
