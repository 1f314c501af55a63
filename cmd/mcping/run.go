package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/woozymasta/mcping/internal/config"
	"github.com/woozymasta/mcping/pkg/mcping"
	"github.com/woozymasta/mcping/pkg/status"
)

// runOnce executes one one-shot mode against one address and prints the
// result to standard output.
func runOnce(cfg *config.Config, addr string) error {
	switch cfg.Args.Mode {
	case config.ModePing:
		return runPing(cfg, addr)
	case config.ModeStatus:
		return runStatus(cfg, addr)
	case config.ModeQuery:
		return runQuery(cfg, addr)
	case config.ModeBedrock:
		return runBedrock(cfg, addr)
	case config.ModeJSON:
		return runJSON(cfg, addr)
	default:
		return fmt.Errorf("unknown mode %q", cfg.Args.Mode)
	}
}

func javaServer(cfg *config.Config, addr string) (*mcping.JavaServer, error) {
	server, err := mcping.LookupJava(addr)
	if err != nil {
		return nil, err
	}
	server.Timeout = cfg.Query.Timeout
	server.Version = cfg.Query.Protocol
	return server, nil
}

func runPing(cfg *config.Config, addr string) error {
	server, err := javaServer(cfg, addr)
	if err != nil {
		return err
	}

	latency, err := server.Ping()
	if err != nil {
		return err
	}
	fmt.Println(formatLatency(latency))
	return nil
}

func runStatus(cfg *config.Config, addr string) error {
	server, err := javaServer(cfg, addr)
	if err != nil {
		return err
	}

	resp, err := server.Status()
	if err != nil {
		return err
	}

	fmt.Printf("version: v%s (protocol %d)\n", resp.Version.Name, resp.Version.Protocol)
	fmt.Printf("motd: %q\n", resp.MOTD)
	fmt.Printf("players: %d/%d %s\n", resp.Players.Online, resp.Players.Max, formatSample(resp.Players.Sample))
	fmt.Printf("ping: %s\n", formatLatency(resp.Latency))
	return nil
}

func runQuery(cfg *config.Config, addr string) error {
	server, err := javaServer(cfg, addr)
	if err != nil {
		return err
	}

	resp, err := server.Query()
	if err != nil {
		return err
	}

	fmt.Printf("host: %s:%s\n", resp.Raw["hostip"], resp.Raw["hostport"])
	fmt.Printf("software: v%s %s\n", resp.Software.Version, resp.Software.Brand)
	fmt.Printf("plugins: %v\n", resp.Software.Plugins)
	fmt.Printf("motd: %q\n", resp.MOTD)
	fmt.Printf("players: %d/%d %v\n", resp.Players.Online, resp.Players.Max, resp.Players.Names)
	return nil
}

func runBedrock(cfg *config.Config, addr string) error {
	server, err := mcping.LookupBedrock(addr)
	if err != nil {
		return err
	}
	server.Timeout = cfg.Query.Timeout

	resp, err := server.Status()
	if err != nil {
		return err
	}

	fmt.Printf("version: v%s %s (protocol %d)\n", resp.Version.Name, resp.Version.Brand, resp.Version.Protocol)
	fmt.Printf("motd: %q\n", resp.MOTD)
	fmt.Printf("players: %d/%d\n", resp.Players.Online, resp.Players.Max)
	if resp.MapName != nil {
		fmt.Printf("map: %q\n", *resp.MapName)
	}
	if resp.Gamemode != nil {
		fmt.Printf("gamemode: %s\n", *resp.Gamemode)
	}
	fmt.Printf("ping: %s\n", formatLatency(resp.Latency))
	return nil
}

// runJSON prints machine-readable status with an online flag; an
// unreachable server produces {"online":false} with a zero exit code.
func runJSON(cfg *config.Config, addr string) error {
	type result struct {
		Status *status.JavaStatus `json:"status,omitempty"`
		Error  string             `json:"error,omitempty"`
		Online bool               `json:"online"`
	}

	out := result{}
	server, err := javaServer(cfg, addr)
	if err == nil {
		var resp *status.JavaStatus
		resp, err = server.Status()
		if err == nil {
			out.Online = true
			out.Status = resp
		}
	}
	if err != nil {
		out.Error = err.Error()
	}

	payload, err := json.Marshal(out)
	if err != nil {
		return err
	}
	fmt.Println(string(payload))
	return nil
}

func formatLatency(latency time.Duration) string {
	return fmt.Sprintf("%.3fms", float64(latency.Microseconds())/1000)
}

func formatSample(sample []status.JavaPlayer) string {
	if sample == nil {
		return "No players online"
	}

	names := make([]string, 0, len(sample))
	for _, player := range sample {
		names = append(names, fmt.Sprintf("%s (%s)", player.Name, player.ID))
	}
	return fmt.Sprintf("%v", names)
}
