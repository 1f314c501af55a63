// Package vars holds build metadata injected with -ldflags at release time.
package vars

import (
	"fmt"
	"os"
	"time"
)

// License of the project.
const License = "MIT"

// Populated by the linker; defaults describe a development build.
var (
	// Name of the project
	Name = "mcping"

	// Version is the release tag, e.g. v1.2.3
	Version = "dev"

	// Commit is the git SHA the binary was built from
	Commit = "unknown"

	// URL to repository (https)
	URL = "https://github.com/woozymasta/mcping"

	buildTime string
)

// Built returns the build timestamp, epoch when none was injected.
func Built() time.Time {
	if t, err := time.Parse(time.RFC3339, buildTime); err == nil {
		return t.UTC()
	}
	return time.Unix(0, 0).UTC()
}

// CommitShort returns the abbreviated git commit hash.
func CommitShort() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}

// Print writes the build information to the standard output.
func Print() {
	fmt.Printf(`name:     %s
url:      %s
file:     %s
version:  %s
commit:   %s
built:    %s
license:  %s
`, Name, URL, os.Args[0], Version, Commit, Built().Format(time.RFC3339), License)
}
