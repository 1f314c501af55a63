package geoip

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// refreshClient bounds the whole database download.
var refreshClient = &http.Client{Timeout: 5 * time.Minute}

// EnsureDB makes sure a database file exists at path and is no older than
// maxAge, downloading a fresh copy from url otherwise.
func EnsureDB(path, url string, maxAge time.Duration) error {
	info, err := os.Stat(path)
	switch {
	case err == nil && time.Since(info.ModTime()) < maxAge:
		log.Debug().Str("path", path).Msg("GeoIP database is up to date")
		return nil
	case err == nil:
		log.Info().Str("path", path).Msg("GeoIP database is outdated, updating...")
	case os.IsNotExist(err):
		log.Info().Str("path", path).Msg("GeoIP database missing, downloading...")
	default:
		return err
	}

	return download(path, url)
}

// download fetches url into dst through a temporary file in the same
// directory, so the swap is a single rename.
func download(dst, url string) error {
	resp, err := refreshClient.Get(url) //nolint:gosec
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d downloading GeoIP database", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "geoip-*.mmdb")
	if err != nil {
		return err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), dst)
}
