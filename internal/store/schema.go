package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// Schema version tracking (PRAGMA user_version):
//
//	100 - transfers table
//	101 - request_headers table
//
// Version 31 is a historical alias for 100 from a parallel release line.
// Versions below 100 predate any migration logic; they, and any version
// above the current one (a downgrade), collapse to the baseline so every
// step re-runs. Steps drop and recreate the tables they own, which makes
// re-running a step always safe and makes downgrades destructive rather
// than partial.
const (
	currentSchemaVersion = 101
	oldestKnownVersion   = 100
	baselineVersion      = 99
	legacyAliasVersion   = 31
)

// CurrentSchemaVersion returns the schema version this code migrates toward.
func CurrentSchemaVersion() int {
	return currentSchemaVersion
}

// migrate brings the database from its stored version to the current one,
// applying version steps in strict ascending order, one at a time.
func migrate(db *sql.DB, logger *slog.Logger) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	from := normalizeVersion(version, logger)

	for v := from + 1; v <= currentSchemaVersion; v++ {
		if err := upgradeTo(db, v); err != nil {
			return fmt.Errorf("upgrade to version %d: %w", v, err)
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// normalizeVersion maps the stored version onto the step ladder. Anything we
// cannot upgrade incrementally collapses to the baseline, which destroys all
// existing data; that tradeoff is deliberate and logged, never silent.
func normalizeVersion(version int, logger *slog.Logger) int {
	switch {
	case version == currentSchemaVersion:
		return version
	case version == legacyAliasVersion:
		// Same schema as the oldest known version, numbered differently in
		// another release line.
		return oldestKnownVersion
	case version == 0:
		logger.Debug("populating new database", "version", currentSchemaVersion)
		return baselineVersion
	case version < oldestKnownVersion:
		logger.Warn("upgrading schema with no incremental path, destroying all data",
			"from", version, "to", currentSchemaVersion)
		return baselineVersion
	case version > currentSchemaVersion:
		logger.Warn("downgrading schema, destroying all data",
			"from", version, "to", currentSchemaVersion)
		return baselineVersion
	default:
		return version
	}
}

// upgradeTo applies the single step from (version - 1) to version.
func upgradeTo(db *sql.DB, version int) error {
	switch version {
	case 100:
		return createTransfersTable(db)
	case 101:
		return createHeadersTable(db)
	default:
		return fmt.Errorf("no migration step defined for schema version %d", version)
	}
}

// createTransfersTable drops and recreates the transfers table.
func createTransfersTable(db *sql.DB) error {
	if _, err := db.Exec("DROP TABLE IF EXISTS transfers"); err != nil {
		return fmt.Errorf("drop transfers: %w", err)
	}
	_, err := db.Exec(`
		CREATE TABLE transfers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uri TEXT,
			redirect_retries INTEGER,
			app_data TEXT,
			no_integrity BOOLEAN,
			file_name_hint TEXT,
			ota_update BOOLEAN,
			local_path TEXT,
			mime_type TEXT,
			destination INTEGER,
			no_system_files BOOLEAN,
			visibility INTEGER,
			control INTEGER,
			status INTEGER,
			failed_connections INTEGER,
			last_modification BIGINT,
			notification_package TEXT,
			notification_class TEXT,
			notification_extras TEXT,
			cookie_data TEXT,
			user_agent TEXT,
			referer TEXT,
			total_bytes INTEGER,
			current_bytes INTEGER,
			etag TEXT,
			uid INTEGER,
			other_uid INTEGER,
			title TEXT,
			description TEXT,
			media_scanned BOOLEAN
		)
	`)
	if err != nil {
		return fmt.Errorf("create transfers: %w", err)
	}
	return nil
}

// createHeadersTable drops and recreates the request_headers table. There is
// deliberately no foreign key to transfers: the delete path cascades header
// rows explicitly, and the drop-and-recreate migration steps must stay
// independent of each other.
func createHeadersTable(db *sql.DB) error {
	if _, err := db.Exec("DROP TABLE IF EXISTS request_headers"); err != nil {
		return fmt.Errorf("drop request_headers: %w", err)
	}
	_, err := db.Exec(`
		CREATE TABLE request_headers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			transfer_id INTEGER NOT NULL,
			header TEXT NOT NULL,
			value TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create request_headers: %w", err)
	}
	return nil
}

// SchemaVersion returns the stored schema version.
func (s *Store) SchemaVersion() (int, error) {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}

// SchemaDump returns the CREATE statements of all tables, ordered by name
// and whitespace-normalized. Used by tests to compare migrated databases
// against freshly created ones.
func (s *Store) SchemaDump() (string, error) {
	rows, err := s.db.Query(`
		SELECT sql FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name ASC
	`)
	if err != nil {
		return "", fmt.Errorf("query sqlite_master: %w", err)
	}
	defer rows.Close()

	var stmts []string
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return "", fmt.Errorf("scan schema: %w", err)
		}
		stmts = append(stmts, strings.Join(strings.Fields(stmt), " "))
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate schema: %w", err)
	}

	return strings.Join(stmts, ";\n") + "\n", nil
}
