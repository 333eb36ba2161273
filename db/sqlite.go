package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"pm-cockpit/agents"
	"pm-cockpit/llm"
)

// DB wraps the SQLite database holding conversations, per-agent settings
// and project metadata.
type DB struct {
	conn *sql.DB
}

// New opens (creating if needed) the database at dbPath and runs
// migrations plus default seeding.
func New(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single connection.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := db.seedDefaults(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to seed defaults: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	migrations := []string{
		// One row per chat message, append-only. chat_key is the composite
		// conversation key: "<projectID>-<agentID>" or "standalone-<agentID>".
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			chat_key TEXT NOT NULL,
			seq INTEGER,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			timestamp INTEGER NOT NULL
		)`,

		// Per-agent dispatch configuration.
		`CREATE TABLE IF NOT EXISTS agent_settings (
			agent_id TEXT PRIMARY KEY,
			provider TEXT NOT NULL,
			model TEXT NOT NULL DEFAULT '',
			api_base_url TEXT NOT NULL DEFAULT '',
			api_key TEXT NOT NULL DEFAULT '',
			temperature REAL NOT NULL DEFAULT 0,
			max_tokens INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Generic key-value settings (global API key, session flag).
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			objective TEXT NOT NULL DEFAULT '',
			methodology TEXT NOT NULL DEFAULT 'Agile',
			status TEXT NOT NULL DEFAULT 'Ativo',
			start_date TEXT NOT NULL DEFAULT '',
			end_date TEXT NOT NULL DEFAULT '',
			budget TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS risks (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			description TEXT NOT NULL,
			impact INTEGER NOT NULL,
			probability INTEGER NOT NULL,
			exposure INTEGER NOT NULL,
			mitigation TEXT NOT NULL DEFAULT '',
			owner TEXT NOT NULL DEFAULT '',
			review_date TEXT NOT NULL DEFAULT '',
			FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_messages_chat_key ON messages(chat_key, seq)`,
		`CREATE INDEX IF NOT EXISTS idx_risks_project_id ON risks(project_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.conn.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, migration)
		}
	}

	return nil
}

// seedDefaults inserts a settings row for every registered agent and, on a
// fresh database, the demo projects.
func (db *DB) seedDefaults() error {
	defaults := llm.DefaultSettings()
	for _, def := range agents.Definitions {
		_, err := db.conn.Exec(
			`INSERT OR IGNORE INTO agent_settings (agent_id, provider, model, temperature) VALUES (?, ?, ?, ?)`,
			string(def.ID), defaults.Provider, defaults.Model, defaults.Temperature,
		)
		if err != nil {
			return fmt.Errorf("failed to seed settings for %s: %w", def.ID, err)
		}
	}

	var projectCount int64
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM projects").Scan(&projectCount); err != nil {
		return fmt.Errorf("failed to count projects: %w", err)
	}
	if projectCount == 0 {
		for _, p := range demoProjects {
			if err := db.CreateProject(p); err != nil {
				return err
			}
		}
	}

	return nil
}

var demoProjects = []*Project{
	{
		ID:          "p1",
		Name:        "Modernização ERP 2.0",
		Objective:   "Migração de sistemas legados para nuvem.",
		Methodology: "Agile",
		Status:      "Ativo",
		StartDate:   "15/01/2024",
		Budget:      "R$ 500.000",
	},
	{
		ID:          "p2",
		Name:        "Lançamento App Mobile",
		Objective:   "Novo canal de vendas para clientes B2C.",
		Methodology: "Hybrid",
		Status:      "Em Risco",
		StartDate:   "20/11/2023",
		Budget:      "R$ 150.000",
	},
}
