package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents a schema migration applied in version order.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of schema changes. Append only; never edit
// an entry that has shipped.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		SQL: `
CREATE TABLE IF NOT EXISTS locations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	address TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT 'other',
	latitude REAL NOT NULL,
	longitude REAL NOT NULL,
	is_verified INTEGER NOT NULL DEFAULT 0,
	is_active INTEGER NOT NULL DEFAULT 1,
	search_count INTEGER NOT NULL DEFAULT 0,
	route_count INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_locations_coords ON locations(latitude, longitude);
CREATE INDEX IF NOT EXISTS idx_locations_name ON locations(name);

CREATE TABLE IF NOT EXISTS routes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	start_location_id INTEGER NOT NULL REFERENCES locations(id),
	end_location_id INTEGER NOT NULL REFERENCES locations(id),
	transport_modes TEXT NOT NULL DEFAULT '[]',
	fare_min REAL NOT NULL DEFAULT 0,
	fare_max REAL NOT NULL DEFAULT 0,
	duration_minutes INTEGER NOT NULL DEFAULT 0,
	is_verified INTEGER NOT NULL DEFAULT 0,
	is_active INTEGER NOT NULL DEFAULT 1,
	average_rating REAL NOT NULL DEFAULT 0,
	usage_count INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_routes_endpoints ON routes(start_location_id, end_location_id);

CREATE TABLE IF NOT EXISTS route_steps (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	route_id INTEGER NOT NULL REFERENCES routes(id),
	position INTEGER NOT NULL,
	from_location_id INTEGER NOT NULL REFERENCES locations(id),
	to_location_id INTEGER NOT NULL REFERENCES locations(id),
	transport_mode TEXT NOT NULL,
	instructions TEXT NOT NULL DEFAULT '',
	fare_min REAL NOT NULL DEFAULT 0,
	fare_max REAL NOT NULL DEFAULT 0,
	duration_minutes INTEGER NOT NULL DEFAULT 0,
	pickup_point TEXT NOT NULL DEFAULT '',
	dropoff_point TEXT NOT NULL DEFAULT '',
	report_count INTEGER NOT NULL DEFAULT 0,
	fare_sum REAL NOT NULL DEFAULT 0,
	fare_average REAL NOT NULL DEFAULT 0,
	duration_count INTEGER NOT NULL DEFAULT 0,
	duration_sum REAL NOT NULL DEFAULT 0,
	duration_average REAL NOT NULL DEFAULT 0,
	reports_updated_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(route_id, position)
);
CREATE INDEX IF NOT EXISTS idx_route_steps_route ON route_steps(route_id, position);

CREATE TABLE IF NOT EXISTS route_segments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	start_location_id INTEGER NOT NULL REFERENCES locations(id),
	end_location_id INTEGER NOT NULL REFERENCES locations(id),
	transport_modes TEXT NOT NULL DEFAULT '[]',
	intermediate_stops TEXT NOT NULL DEFAULT '[]',
	fare_min REAL NOT NULL DEFAULT 0,
	fare_max REAL NOT NULL DEFAULT 0,
	duration_minutes INTEGER NOT NULL DEFAULT 0,
	distance_km REAL NOT NULL DEFAULT 0,
	is_verified INTEGER NOT NULL DEFAULT 0,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_route_segments_start ON route_segments(start_location_id);

CREATE TABLE IF NOT EXISTS fare_feedback (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	reference TEXT NOT NULL UNIQUE,
	step_id INTEGER NOT NULL REFERENCES route_steps(id),
	user_id TEXT,
	amount_paid REAL NOT NULL,
	duration_minutes INTEGER,
	vehicle_type TEXT NOT NULL,
	travelled_at TIMESTAMP NOT NULL,
	rating INTEGER NOT NULL,
	comments TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_fare_feedback_step ON fare_feedback(step_id, created_at);
`,
	},
}

// Migrate applies all pending migrations to the given database.
func Migrate(d *sql.DB) error {
	if _, err := d.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := appliedVersions(d)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}

		err := Transaction(d, func(tx *sql.Tx) error {
			if _, err := tx.Exec(m.SQL); err != nil {
				return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
			}
			if _, err := tx.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		log.Printf("Applied migration %d: %s", m.Version, m.Name)
	}

	return nil
}

func appliedVersions(d *sql.DB) (map[int]bool, error) {
	rows, err := d.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}

	return applied, rows.Err()
}
