package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

type HistoryStore struct {
	DB *sql.DB
}

func NewHistoryStore(dbPath string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if dbPath == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	// Create tables if not exist
	queries := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id TEXT,
			role TEXT,
			content TEXT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS solutions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id TEXT,
			provider TEXT,
			problem TEXT,
			plan_json TEXT,
			status TEXT,
			error TEXT,
			created_at INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS solutions_chat ON solutions (chat_id, id);`,
		`CREATE TABLE IF NOT EXISTS media (
			id TEXT PRIMARY KEY,
			chat_id TEXT,
			content_type TEXT,
			data BLOB,
			created_at INTEGER
		);`,
	}
	for _, q := range queries {
		_, err = db.Exec(q)
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	return &HistoryStore{DB: db}, nil
}

func (h *HistoryStore) Close() error {
	return h.DB.Close()
}

func (h *HistoryStore) AddMessage(chatID string, role string, content string) error {
	query := `INSERT INTO messages (chat_id, role, content) VALUES (?, ?, ?)`
	_, err := h.DB.Exec(query, chatID, role, content)
	return err
}

// RecordSolution stores the outcome of a request and returns its row id.
func (h *HistoryStore) RecordSolution(s Solution) (int64, error) {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	query := `INSERT INTO solutions (chat_id, provider, problem, plan_json, status, error, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := h.DB.Exec(query, s.ChatID, s.Provider, s.Problem, s.PlanJSON, s.Status, s.Error, s.CreatedAt.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("record solution: %w", err)
	}
	return res.LastInsertId()
}

// RecentSolutions returns the latest solutions of a chat, newest first.
func (h *HistoryStore) RecentSolutions(chatID string, limit int) ([]Solution, error) {
	query := `SELECT id, chat_id, provider, problem, plan_json, status, error, created_at
		FROM solutions WHERE chat_id = ? ORDER BY id DESC LIMIT ?`
	rows, err := h.DB.Query(query, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Solution
	for rows.Next() {
		var s Solution
		var created int64
		if err := rows.Scan(&s.ID, &s.ChatID, &s.Provider, &s.Problem, &s.PlanJSON, &s.Status, &s.Error, &created); err != nil {
			return nil, err
		}
		s.CreatedAt = time.UnixMilli(created)
		out = append(out, s)
	}
	return out, rows.Err()
}

// SaveMedia stores an image and returns the id it can be fetched by.
func (h *HistoryStore) SaveMedia(chatID, contentType string, data []byte) (string, error) {
	id := uuid.NewString()
	query := `INSERT INTO media (id, chat_id, content_type, data, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := h.DB.Exec(query, id, chatID, contentType, data, time.Now().UnixMilli()); err != nil {
		return "", fmt.Errorf("save media: %w", err)
	}
	return id, nil
}

func (h *HistoryStore) GetMedia(id string) (*Media, error) {
	query := `SELECT id, chat_id, content_type, data, created_at FROM media WHERE id = ?`
	var m Media
	var created int64
	err := h.DB.QueryRow(query, id).Scan(&m.ID, &m.ChatID, &m.ContentType, &m.Data, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	m.CreatedAt = time.UnixMilli(created)
	return &m, nil
}

// PurgeMedia deletes images created before the cutoff.
func (h *HistoryStore) PurgeMedia(before time.Time) (int64, error) {
	res, err := h.DB.Exec(`DELETE FROM media WHERE created_at < ?`, before.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
