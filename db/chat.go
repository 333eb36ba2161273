package db

import (
	"fmt"

	"pm-cockpit/agents"
	"pm-cockpit/llm"
)

// ChatKey builds the composite conversation key for a (project, agent)
// pair. Agent chats outside any project use the standalone prefix.
func ChatKey(projectID string, agentID agents.ID) string {
	if projectID == "" {
		return "standalone-" + string(agentID)
	}
	return projectID + "-" + string(agentID)
}

// AppendMessage appends one message to the conversation identified by
// chatKey. Messages are immutable once appended; insertion order is the
// conversation order.
func (db *DB) AppendMessage(chatKey string, msg llm.ChatMessage) error {
	_, err := db.conn.Exec(
		`INSERT INTO messages (id, chat_key, seq, role, content, timestamp)
		 VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE chat_key = ?), ?, ?, ?)`,
		msg.ID, chatKey, chatKey, msg.Role, msg.Content, msg.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// ListMessages returns the full ordered history of one conversation. A
// conversation that was never written to reads as empty.
func (db *DB) ListMessages(chatKey string) ([]llm.ChatMessage, error) {
	rows, err := db.conn.Query(
		"SELECT id, role, content, timestamp FROM messages WHERE chat_key = ? ORDER BY seq ASC",
		chatKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []llm.ChatMessage
	for rows.Next() {
		var msg llm.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// ClearChat removes every message of one conversation. Clearing an empty or
// nonexistent conversation is a no-op.
func (db *DB) ClearChat(chatKey string) error {
	_, err := db.conn.Exec("DELETE FROM messages WHERE chat_key = ?", chatKey)
	if err != nil {
		return fmt.Errorf("failed to clear chat: %w", err)
	}
	return nil
}

// CountMessages returns the number of messages in one conversation.
func (db *DB) CountMessages(chatKey string) (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM messages WHERE chat_key = ?", chatKey).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}
