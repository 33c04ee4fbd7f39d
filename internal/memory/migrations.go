package memory

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Schema versions:
// v1: sessions, interactions, verified_claims
// v2: knowledge_docs with embedding column; evidence_count on
//     verified_claims
const currentSchemaVersion = 2

// pendingMigrations lists column additions applied to databases created
// before the column existed. ALTER TABLE ADD COLUMN is idempotent here
// because we check the column first.
var pendingMigrations = []struct {
	Table  string
	Column string
	Def    string
}{
	{"verified_claims", "evidence_count", "INTEGER DEFAULT 0"},
	{"knowledge_docs", "source", "TEXT DEFAULT ''"},
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS interactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			query TEXT NOT NULL,
			processed_input TEXT NOT NULL DEFAULT '',
			verdict TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS verified_claims (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			claim_text TEXT NOT NULL,
			verdict TEXT NOT NULL,
			confidence REAL NOT NULL DEFAULT 0,
			evidence_count INTEGER DEFAULT 0,
			session_id TEXT NOT NULL DEFAULT '',
			retrieved_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS knowledge_docs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			content TEXT NOT NULL,
			source TEXT DEFAULT '',
			embedding TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_session ON interactions(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_claims_retrieved ON verified_claims(retrieved_at)`,
	}

	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	for _, m := range pendingMigrations {
		if s.columnExists(m.Table, m.Column) {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.Table, m.Column, m.Def)
		if _, err := s.db.Exec(stmt); err != nil {
			// Another writer may have added it concurrently.
			if !strings.Contains(err.Error(), "duplicate column") {
				return fmt.Errorf("migration %s.%s failed: %w", m.Table, m.Column, err)
			}
		}
		s.logger.Debug("applied migration",
			zap.String("table", m.Table), zap.String("column", m.Column))
	}

	return s.setSchemaVersion(currentSchemaVersion)
}

func (s *Store) columnExists(table, column string) bool {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notNull, pk int
		var dflt interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			continue
		}
		if name == column {
			return true
		}
	}
	return false
}

func (s *Store) setSchemaVersion(version int) error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		_, err := s.db.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
		return err
	}
	_, err := s.db.Exec("UPDATE schema_version SET version = ?", version)
	return err
}

// SchemaVersion returns the current schema version of the database.
func (s *Store) SchemaVersion() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	return version, err
}
