package db

import (
	"database/sql"
	"fmt"
	"time"

	"pm-cockpit/agents"
	"pm-cockpit/llm"
)

const globalAPIKeySetting = "global_api_key"

// AgentSettings returns the dispatch configuration for one agent. Agents
// without a stored row (e.g. added after the database was created) get the
// defaults.
func (db *DB) AgentSettings(agentID agents.ID) (llm.Settings, error) {
	var s llm.Settings
	err := db.conn.QueryRow(
		"SELECT provider, model, api_base_url, api_key, temperature, max_tokens FROM agent_settings WHERE agent_id = ?",
		string(agentID),
	).Scan(&s.Provider, &s.Model, &s.BaseURL, &s.APIKey, &s.Temperature, &s.MaxTokens)

	if err == sql.ErrNoRows {
		return llm.DefaultSettings(), nil
	}
	if err != nil {
		return llm.Settings{}, fmt.Errorf("failed to load settings for %s: %w", agentID, err)
	}
	return s, nil
}

// UpdateAgentSettings replaces the stored dispatch configuration for one
// agent. Records are never deleted, only overwritten.
func (db *DB) UpdateAgentSettings(agentID agents.ID, s llm.Settings) error {
	_, err := db.conn.Exec(
		`INSERT INTO agent_settings (agent_id, provider, model, api_base_url, api_key, temperature, max_tokens, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(agent_id) DO UPDATE SET
			provider = excluded.provider,
			model = excluded.model,
			api_base_url = excluded.api_base_url,
			api_key = excluded.api_key,
			temperature = excluded.temperature,
			max_tokens = excluded.max_tokens,
			updated_at = excluded.updated_at`,
		string(agentID), s.Provider, s.Model, s.BaseURL, s.APIKey, s.Temperature, s.MaxTokens, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update settings for %s: %w", agentID, err)
	}
	return nil
}

// GlobalAPIKey returns the process-wide fallback credential stored in the
// settings table, empty when unset.
func (db *DB) GlobalAPIKey() (string, error) {
	return db.Setting(globalAPIKeySetting)
}

// SetGlobalAPIKey stores the process-wide fallback credential.
func (db *DB) SetGlobalAPIKey(key string) error {
	return db.SetSetting(globalAPIKeySetting, key)
}

// Setting reads one key-value setting, empty string when absent.
func (db *DB) Setting(key string) (string, error) {
	var value string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting writes one key-value setting.
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}
