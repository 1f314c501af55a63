// Package config handles the parsing and validation of application configuration
// from command-line arguments and environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/woozymasta/mcping/internal/logger"
	"github.com/woozymasta/mcping/internal/vars"
)

// Modes the CLI can run in.
const (
	ModePing    = "ping"
	ModeStatus  = "status"
	ModeQuery   = "query"
	ModeBedrock = "bedrock"
	ModeJSON    = "json"
	ModeMonitor = "monitor"
	ModeHistory = "history"
)

// Config represents the complete application flags configuration.
type Config struct {
	// betteralign:ignore

	Query   Query         `group:"Query Options" env-namespace:"MCPING"`
	Monitor Monitor       `group:"Monitor Options" namespace:"monitor" env-namespace:"MCPING_MONITOR"`
	Storage Storage       `group:"Storage Options" namespace:"db" env-namespace:"MCPING_DB"`
	GeoIP   GeoIP         `group:"GeoIP Options" namespace:"geoip" env-namespace:"MCPING_GEOIP"`
	Logger  logger.Config `group:"Logger Options" namespace:"log" env-namespace:"MCPING_LOG"`

	Version bool `short:"v" long:"version" description:"Print version and build info"`

	Args struct {
		Mode      string   `positional-arg-name:"mode" description:"One of: ping, status, query, bedrock, json, monitor, history"`
		Addresses []string `positional-arg-name:"address" description:"Server address like mc.example.com or play.example.com:25565"`
	} `positional-args:"true"`
}

// Query holds the options shared by all one-shot protocol modes.
type Query struct {
	// betteralign:ignore

	Timeout  time.Duration `short:"t" long:"timeout" env:"TIMEOUT" description:"Per-socket-operation timeout" default:"3s"`
	Protocol uint32        `short:"p" long:"protocol" env:"PROTOCOL" description:"SLP protocol version to advertise" default:"47"`
}

// Monitor holds the polling loop configuration.
type Monitor struct {
	// betteralign:ignore

	Interval  time.Duration `long:"interval" env:"INTERVAL" description:"Delay between poll cycles" default:"1m"`
	Workers   int           `long:"workers" env:"WORKERS" description:"Concurrent poll workers" default:"10"`
	Rate      float64       `long:"rate" env:"RATE" description:"Maximum polls per second across all workers" default:"8"`
	Retention time.Duration `long:"retention" env:"RETENTION" description:"Drop history samples older than this" default:"720h"`
	Bedrock   bool          `long:"bedrock" env:"BEDROCK" description:"Poll addresses as Bedrock Edition servers"`
}

// Storage holds database configuration.
type Storage struct {
	// betteralign:ignore

	Path          string `short:"d" long:"path" env:"PATH" description:"Path to SQLite history database" default:"mcping.db"`
	Last          int    `long:"last" env:"LAST" description:"Samples per address shown by the history mode" default:"10"`
	GenerateCount int    `long:"gen-fake-data" hidden:"true"`
}

// GeoIP holds MaxMind GeoIP configuration for the monitor mode.
type GeoIP struct {
	// betteralign:ignore

	Path     string        `short:"g" long:"path" env:"PATH" description:"Path to MMDB file (empty disables country lookup)"`
	URL      string        `long:"url" env:"URL" description:"URL to download MMDB" default:"https://git.io/GeoLite2-Country.mmdb"`
	Interval time.Duration `long:"interval" env:"INTERVAL" description:"Update interval check" default:"24h"`
}

// Parse reads the configuration from flags and environment variables.
// It terminates the application if the configuration is invalid or if the
// help flag is invoked.
func Parse() *Config {
	var cfg Config
	parser := flags.NewParser(&cfg, flags.Default)
	parser.NamespaceDelimiter = "-"
	parser.Usage = "[OPTIONS] mode [address...]"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}

	if cfg.Version {
		vars.Print()
		os.Exit(0)
	}

	switch cfg.Args.Mode {
	case ModePing, ModeStatus, ModeQuery, ModeBedrock, ModeJSON, ModeMonitor, ModeHistory:
	case "":
		// Seeding fake data needs no mode.
		if cfg.Storage.GenerateCount > 0 {
			return &cfg
		}
		fmt.Fprintln(os.Stderr, "Mode argument is required: ping, status, query, bedrock, json, monitor or history")
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "Unknown mode %q: want ping, status, query, bedrock, json, monitor or history\n", cfg.Args.Mode)
		os.Exit(1)
	}

	if len(cfg.Args.Addresses) == 0 && cfg.Args.Mode != "" {
		fmt.Fprintln(os.Stderr, "At least one server address is required")
		os.Exit(1)
	}

	return &cfg
}
