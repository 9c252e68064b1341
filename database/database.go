package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Journal is an append-only log of handled chat commands.
type Journal struct {
	db *sql.DB
}

type Command struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	Route     string    `json:"route"`
	Outcome   string    `json:"outcome"`
	Timestamp time.Time `json:"timestamp"`
}

func New(dbPath string) (*Journal, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	journal := &Journal{db: db}
	if err := journal.init(); err != nil {
		db.Close()
		return nil, err
	}

	return journal, nil
}

func (j *Journal) init() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS chats (
			id INTEGER PRIMARY KEY,
			username TEXT,
			first_seen DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS commands (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id INTEGER,
			username TEXT,
			text TEXT,
			route TEXT,
			outcome TEXT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (chat_id) REFERENCES chats (id)
		)`,
	}

	for _, query := range queries {
		if _, err := j.db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

// RecordCommand stores one handled command and registers the chat on first sight.
func (j *Journal) RecordCommand(chatID int64, username, text, route, outcome string) error {
	_, err := j.db.Exec(`INSERT OR IGNORE INTO chats (id, username) VALUES (?, ?)`, chatID, username)
	if err != nil {
		return err
	}

	query := `INSERT INTO commands (chat_id, username, text, route, outcome) VALUES (?, ?, ?, ?, ?)`
	_, err = j.db.Exec(query, chatID, username, text, route, outcome)
	return err
}

// RecentCommands returns the latest commands of a chat, oldest first.
func (j *Journal) RecentCommands(chatID int64, limit int) ([]Command, error) {
	query := `SELECT id, chat_id, username, text, route, outcome, timestamp
			  FROM commands
			  WHERE chat_id = ?
			  ORDER BY id DESC
			  LIMIT ?`

	rows, err := j.db.Query(query, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var commands []Command
	for rows.Next() {
		var c Command
		err := rows.Scan(&c.ID, &c.ChatID, &c.Username, &c.Text, &c.Route, &c.Outcome, &c.Timestamp)
		if err != nil {
			return nil, err
		}
		commands = append(commands, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to get chronological order (oldest first)
	for i := 0; i < len(commands)/2; i++ {
		k := len(commands) - 1 - i
		commands[i], commands[k] = commands[k], commands[i]
	}

	return commands, nil
}

// DailyStats counts the commands handled today.
func (j *Journal) DailyStats() (int, error) {
	query := `SELECT COUNT(*) FROM commands
			  WHERE DATE(timestamp) = DATE('now')`
	var count int
	err := j.db.QueryRow(query).Scan(&count)
	return count, err
}

func (j *Journal) Close() error {
	return j.db.Close()
}
