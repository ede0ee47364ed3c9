package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/tliang07/askflow/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS chats (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			role TEXT NOT NULL,
			text TEXT NOT NULL,
			meta TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chats_user ON chats(user_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS files (
			file_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			filename TEXT NOT NULL,
			content_type TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_files_user ON files(user_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS file_chunks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			file_id TEXT NOT NULL,
			filename TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			content TEXT NOT NULL,
			embedding TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (file_id) REFERENCES files(file_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_user ON file_chunks(user_id, file_id, chunk_index)`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			input TEXT NOT NULL,
			final_reply TEXT,
			agent_path TEXT,
			confidence REAL NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			completed_at DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_user ON runs(user_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS run_steps (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			agent TEXT NOT NULL,
			output TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (run_id) REFERENCES runs(run_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_steps_run ON run_steps(run_id, id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// AppendChat stores one chat history entry.
func (s *SQLiteStore) AppendChat(ctx context.Context, msg *domain.ChatMessage) error {
	meta, err := json.Marshal(msg.Meta)
	if err != nil {
		return fmt.Errorf("failed to marshal meta: %w", err)
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO chats (user_id, role, text, meta, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.UserID, msg.Role, msg.Text, string(meta), msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert chat: %w", err)
	}
	return nil
}

// RecentChats returns the most recent chat entries for a user, newest first.
func (s *SQLiteStore) RecentChats(ctx context.Context, userID string, limit int) ([]domain.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, role, text, meta, created_at FROM chats
		 WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		var meta sql.NullString
		if err := rows.Scan(&msg.UserID, &msg.Role, &msg.Text, &meta, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		if meta.Valid && meta.String != "" && meta.String != "null" {
			_ = json.Unmarshal([]byte(meta.String), &msg.Meta)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// CreateFile stores a file record.
func (s *SQLiteStore) CreateFile(ctx context.Context, file *domain.FileRecord) error {
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO files (file_id, user_id, filename, content_type, created_at) VALUES (?, ?, ?, ?, ?)`,
		file.FileID, file.UserID, file.Filename, file.ContentType, file.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert file: %w", err)
	}
	return nil
}

// AddChunk stores one content chunk with an optional embedding vector.
func (s *SQLiteStore) AddChunk(ctx context.Context, chunk *domain.Chunk) error {
	var embedding any
	if chunk.Embedding != nil {
		b, err := json.Marshal(chunk.Embedding)
		if err != nil {
			return fmt.Errorf("failed to marshal embedding: %w", err)
		}
		embedding = string(b)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO file_chunks (user_id, file_id, filename, chunk_index, content, embedding)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		chunk.UserID, chunk.FileID, chunk.Filename, chunk.ChunkIndex, chunk.Content, embedding)
	if err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}
	return nil
}

// Search ranks file chunks by term frequency, then fills remaining
// slots with chat history hits.
func (s *SQLiteStore) Search(ctx context.Context, userID, query string, topK int) ([]domain.Evidence, error) {
	terms := queryTerms(query)
	results := []domain.Evidence{}
	if len(terms) == 0 || topK <= 0 {
		return results, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT file_id, filename, chunk_index, content FROM file_chunks WHERE user_id = ?`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var fileHits []domain.Evidence
	for rows.Next() {
		var fileID, filename, content string
		var chunkIndex int
		if err := rows.Scan(&fileID, &filename, &chunkIndex, &content); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		score := termFrequency(content, terms)
		if score <= 0 {
			continue
		}
		fileHits = append(fileHits, domain.Evidence{
			SourceType: domain.SourceFile,
			Source:     filename,
			FileID:     fileID,
			ChunkIndex: chunkIndex,
			Score:      score,
			Snippet:    makeSnippet(content),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(fileHits, func(i, j int) bool { return fileHits[i].Score > fileHits[j].Score })
	if len(fileHits) > topK {
		fileHits = fileHits[:topK]
	}
	results = append(results, fileHits...)

	remaining := topK - len(results)
	if remaining <= 0 {
		return results, nil
	}

	chatRows, err := s.db.QueryContext(ctx,
		`SELECT text, created_at FROM chats WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer chatRows.Close()

	var chatHits []domain.Evidence
	for chatRows.Next() {
		var text string
		var createdAt time.Time
		if err := chatRows.Scan(&text, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		score := termFrequency(text, terms)
		if score <= 0 {
			continue
		}
		chatHits = append(chatHits, domain.Evidence{
			SourceType: domain.SourceChat,
			Source:     "chat_history",
			Score:      score,
			Snippet:    makeSnippet(text),
			CreatedAt:  createdAt.UTC().Format(time.RFC3339),
		})
	}
	if err := chatRows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(chatHits, func(i, j int) bool { return chatHits[i].Score > chatHits[j].Score })
	if len(chatHits) > remaining {
		chatHits = chatHits[:remaining]
	}
	return append(results, chatHits...), nil
}

// CreateRun persists a new run record.
func (s *SQLiteStore) CreateRun(ctx context.Context, run *domain.Run) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, user_id, input, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.RunID, run.UserID, run.Input, string(run.Status), run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// AppendRunStep logs one agent step for a run.
func (s *SQLiteStore) AppendRunStep(ctx context.Context, runID string, result *domain.AgentResult) error {
	output, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal step output: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO run_steps (run_id, agent, output) VALUES (?, ?, ?)`,
		runID, string(result.Agent), string(output))
	if err != nil {
		return fmt.Errorf("failed to insert run step: %w", err)
	}
	return nil
}

// FinalizeRun records the terminal state of a run.
func (s *SQLiteStore) FinalizeRun(ctx context.Context, runID string, status domain.RunStatus, reply string, path []string, confidence float64) error {
	pathJSON, err := json.Marshal(path)
	if err != nil {
		return fmt.Errorf("failed to marshal agent path: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE runs SET final_reply = ?, agent_path = ?, confidence = ?, status = ?, completed_at = ?
		 WHERE run_id = ?`,
		reply, string(pathJSON), confidence, string(status), time.Now().UTC(), runID)
	if err != nil {
		return fmt.Errorf("failed to finalize run: %w", err)
	}
	return nil
}

// GetRun fetches a run record with its ordered step log.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*domain.Run, error) {
	run, err := s.scanRun(s.db.QueryRowContext(ctx,
		`SELECT run_id, user_id, input, final_reply, agent_path, confidence, status, created_at, completed_at
		 FROM runs WHERE run_id = ?`, runID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT agent, output FROM run_steps WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run steps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var step domain.RunStep
		var output sql.NullString
		if err := rows.Scan(&step.Agent, &output); err != nil {
			return nil, fmt.Errorf("failed to scan run step: %w", err)
		}
		if output.Valid {
			step.Output = json.RawMessage(output.String)
		}
		run.Steps = append(run.Steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns a user's runs, most recent first, without step logs.
func (s *SQLiteStore) ListRuns(ctx context.Context, userID string, limit int) ([]domain.Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, user_id, input, final_reply, agent_path, confidence, status, created_at, completed_at
		 FROM runs WHERE user_id = ? ORDER BY created_at DESC, run_id LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []domain.Run{}
	for rows.Next() {
		run, err := s.scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanRun(row rowScanner) (*domain.Run, error) {
	var run domain.Run
	var reply, pathJSON sql.NullString
	var completedAt sql.NullTime
	var status string
	if err := row.Scan(&run.RunID, &run.UserID, &run.Input, &reply, &pathJSON,
		&run.Confidence, &status, &run.CreatedAt, &completedAt); err != nil {
		return nil, err
	}
	run.Status = domain.RunStatus(status)
	if reply.Valid {
		run.FinalReply = reply.String
	}
	if pathJSON.Valid && pathJSON.String != "" {
		_ = json.Unmarshal([]byte(pathJSON.String), &run.AgentPath)
	}
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	return &run, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
