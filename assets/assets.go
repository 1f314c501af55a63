// Package assets embeds the static files shipped inside the binary,
// currently the SQL migrations of the history database.
package assets

import (
	"embed"
	"path"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var embedFS embed.FS

// Migrations returns the embedded migration file names in apply order.
func Migrations() ([]string, error) {
	entries, err := embedFS.ReadDir("migrations")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	return names, nil
}

// Migration returns the content of one embedded migration file.
func Migration(name string) ([]byte, error) {
	return embedFS.ReadFile(path.Join("migrations", name))
}
