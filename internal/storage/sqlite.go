// Package storage handles database connections, schema migrations, and the
// status-sample history operations using SQLite.
package storage

import (
	"database/sql"
	"time"

	"github.com/woozymasta/mcping/internal/models"
	_ "modernc.org/sqlite" // Driver sqlite
)

// Repository manages the SQLite database connection.
type Repository struct {
	db *sql.DB
}

// New initializes a new SQLite connection, sets connection pool parameters,
// and runs migrations.
func New(dbPath string) (*Repository, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(1 * time.Hour)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// InsertSample appends one poll result to the history.
func (r *Repository) InsertSample(s models.Sample) error {
	query := `
	INSERT INTO samples (
		polled_at, address, edition, reachable,
		online, max_players, version, motd, latency_ms, country, error
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`

	_, err := r.db.Exec(query,
		s.PolledAt, s.Address, s.Edition, s.Reachable,
		s.Online, s.Max, s.Version, s.MOTD, s.LatencyMS, s.Country, s.Error,
	)

	return err
}

// LastSamples returns the most recent n samples for one address, newest
// first.
func (r *Repository) LastSamples(addr string, n int) ([]models.Sample, error) {
	rows, err := r.db.Query(`
		SELECT polled_at, address, edition, reachable,
		       online, max_players, version, motd, latency_ms, country, error
		FROM samples
		WHERE address = ?
		ORDER BY polled_at DESC
		LIMIT ?
	`, addr, n)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var samples []models.Sample
	for rows.Next() {
		var s models.Sample
		if err := rows.Scan(
			&s.PolledAt, &s.Address, &s.Edition, &s.Reachable,
			&s.Online, &s.Max, &s.Version, &s.MOTD, &s.LatencyMS, &s.Country, &s.Error,
		); err != nil {
			continue
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

// CountSamples returns the total number of stored samples.
func (r *Repository) CountSamples() (int64, error) {
	var count int64
	err := r.db.QueryRow(`SELECT COUNT(*) FROM samples`).Scan(&count)
	return count, err
}

// PruneBefore deletes samples polled before the cutoff and reports how many
// rows went away.
func (r *Repository) PruneBefore(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM samples WHERE polled_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
