package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tliang07/askflow/internal/domain"
)

// MongoStore implements Store using MongoDB. Search uses $text indexes
// ranked by textScore instead of the in-process term-frequency scoring
// of the SQLite store; both satisfy the same ordered-scored contract.
type MongoStore struct {
	client *mongo.Client
	chats  *mongo.Collection
	files  *mongo.Collection
	chunks *mongo.Collection
	runs   *mongo.Collection
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)

// NewMongoStore connects to MongoDB and ensures the indexes exist.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(dbName)
	s := &MongoStore{
		client: client,
		chats:  db.Collection("chats"),
		files:  db.Collection("files"),
		chunks: db.Collection("file_chunks"),
		runs:   db.Collection("workflow_runs"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	regular := []struct {
		coll *mongo.Collection
		keys bson.D
	}{
		{s.chats, bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{s.files, bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{s.chunks, bson.D{{Key: "user_id", Value: 1}, {Key: "file_id", Value: 1}, {Key: "chunk_index", Value: 1}}},
		{s.runs, bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{s.runs, bson.D{{Key: "run_id", Value: 1}}},
	}
	for _, ix := range regular {
		if _, err := ix.coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: ix.keys}); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	// Mongo allows only one text index per collection; an existing one
	// (any name/field) is accepted as-is.
	for _, coll := range []*mongo.Collection{s.chats, s.chunks} {
		_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "text", Value: "text"}}})
		if err != nil && !strings.Contains(err.Error(), "IndexOptionsConflict") && !strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("failed to create text index: %w", err)
		}
	}
	return nil
}

type mongoChat struct {
	UserID    string         `bson:"user_id"`
	Role      string         `bson:"role"`
	Text      string         `bson:"text"`
	Meta      map[string]any `bson:"meta,omitempty"`
	CreatedAt time.Time      `bson:"created_at"`
}

// AppendChat stores one chat history entry.
func (s *MongoStore) AppendChat(ctx context.Context, msg *domain.ChatMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	_, err := s.chats.InsertOne(ctx, mongoChat{
		UserID:    msg.UserID,
		Role:      msg.Role,
		Text:      msg.Text,
		Meta:      msg.Meta,
		CreatedAt: msg.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert chat: %w", err)
	}
	return nil
}

// RecentChats returns the most recent chat entries for a user, newest first.
func (s *MongoStore) RecentChats(ctx context.Context, userID string, limit int) ([]domain.ChatMessage, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := s.chats.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoChat
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode chats: %w", err)
	}
	messages := make([]domain.ChatMessage, 0, len(docs))
	for _, d := range docs {
		messages = append(messages, domain.ChatMessage{
			UserID:    d.UserID,
			Role:      d.Role,
			Text:      d.Text,
			Meta:      d.Meta,
			CreatedAt: d.CreatedAt,
		})
	}
	return messages, nil
}

// CreateFile stores a file record.
func (s *MongoStore) CreateFile(ctx context.Context, file *domain.FileRecord) error {
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now().UTC()
	}
	_, err := s.files.InsertOne(ctx, bson.M{
		"file_id":      file.FileID,
		"user_id":      file.UserID,
		"filename":     file.Filename,
		"content_type": file.ContentType,
		"created_at":   file.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert file: %w", err)
	}
	return nil
}

// AddChunk stores one content chunk. Content is written to both the
// "content" and "text" fields so the shared text index applies.
func (s *MongoStore) AddChunk(ctx context.Context, chunk *domain.Chunk) error {
	doc := bson.M{
		"user_id":     chunk.UserID,
		"file_id":     chunk.FileID,
		"filename":    chunk.Filename,
		"chunk_index": chunk.ChunkIndex,
		"content":     chunk.Content,
		"text":        chunk.Content,
		"created_at":  time.Now().UTC(),
	}
	if chunk.Embedding != nil {
		doc["embedding"] = chunk.Embedding
	}
	if _, err := s.chunks.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}
	return nil
}

type mongoChunkHit struct {
	Content    string  `bson:"content"`
	FileID     string  `bson:"file_id"`
	Filename   string  `bson:"filename"`
	ChunkIndex int     `bson:"chunk_index"`
	Score      float64 `bson:"score"`
}

type mongoChatHit struct {
	Text      string    `bson:"text"`
	CreatedAt time.Time `bson:"created_at"`
	Score     float64   `bson:"score"`
}

// Search runs $text queries over file chunks and chat history.
func (s *MongoStore) Search(ctx context.Context, userID, query string, topK int) ([]domain.Evidence, error) {
	results := []domain.Evidence{}
	q := strings.TrimSpace(query)
	if q == "" || topK <= 0 {
		return results, nil
	}

	textScore := bson.M{"$meta": "textScore"}
	chunkOpts := options.Find().
		SetProjection(bson.M{"_id": 0, "score": textScore, "content": 1, "file_id": 1, "filename": 1, "chunk_index": 1}).
		SetSort(bson.M{"score": textScore}).
		SetLimit(int64(topK))
	cur, err := s.chunks.Find(ctx, bson.M{"user_id": userID, "$text": bson.M{"$search": q}}, chunkOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	var chunkHits []mongoChunkHit
	if err := cur.All(ctx, &chunkHits); err != nil {
		return nil, fmt.Errorf("failed to decode chunk hits: %w", err)
	}
	for _, h := range chunkHits {
		results = append(results, domain.Evidence{
			SourceType: domain.SourceFile,
			Source:     h.Filename,
			FileID:     h.FileID,
			ChunkIndex: h.ChunkIndex,
			Score:      h.Score,
			Snippet:    makeSnippet(h.Content),
		})
	}

	remaining := topK - len(results)
	if remaining <= 0 {
		return results, nil
	}

	chatOpts := options.Find().
		SetProjection(bson.M{"_id": 0, "score": textScore, "text": 1, "created_at": 1}).
		SetSort(bson.M{"score": textScore}).
		SetLimit(int64(remaining))
	chatCur, err := s.chats.Find(ctx, bson.M{"user_id": userID, "$text": bson.M{"$search": q}}, chatOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to search chats: %w", err)
	}
	var chatHits []mongoChatHit
	if err := chatCur.All(ctx, &chatHits); err != nil {
		return nil, fmt.Errorf("failed to decode chat hits: %w", err)
	}
	for _, h := range chatHits {
		results = append(results, domain.Evidence{
			SourceType: domain.SourceChat,
			Source:     "chat_history",
			Score:      h.Score,
			Snippet:    makeSnippet(h.Text),
			CreatedAt:  h.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return results, nil
}

type mongoRun struct {
	RunID       string         `bson:"run_id" json:"run_id"`
	UserID      string         `bson:"user_id" json:"user_id"`
	Input       string         `bson:"input" json:"input"`
	Steps       []mongoRunStep `bson:"steps" json:"steps"`
	FinalReply  string         `bson:"final_reply,omitempty" json:"final_reply,omitempty"`
	AgentPath   []string       `bson:"agent_path,omitempty" json:"agent_path,omitempty"`
	Confidence  float64        `bson:"confidence,omitempty" json:"confidence"`
	Status      string         `bson:"status" json:"status"`
	CreatedAt   time.Time      `bson:"created_at" json:"created_at"`
	CompletedAt *time.Time     `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

type mongoRunStep struct {
	Agent  string `bson:"agent"`
	Output string `bson:"output"`
}

// CreateRun persists a new run record.
func (s *MongoStore) CreateRun(ctx context.Context, run *domain.Run) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := s.runs.InsertOne(ctx, bson.M{
		"run_id":     run.RunID,
		"user_id":    run.UserID,
		"input":      run.Input,
		"steps":      []bson.M{},
		"status":     string(run.Status),
		"created_at": run.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// AppendRunStep pushes one agent step onto a run's step log.
func (s *MongoStore) AppendRunStep(ctx context.Context, runID string, result *domain.AgentResult) error {
	output, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal step output: %w", err)
	}
	_, err = s.runs.UpdateOne(ctx,
		bson.M{"run_id": runID},
		bson.M{"$push": bson.M{"steps": bson.M{"agent": string(result.Agent), "output": string(output)}}})
	if err != nil {
		return fmt.Errorf("failed to append run step: %w", err)
	}
	return nil
}

// FinalizeRun records the terminal state of a run.
func (s *MongoStore) FinalizeRun(ctx context.Context, runID string, status domain.RunStatus, reply string, path []string, confidence float64) error {
	_, err := s.runs.UpdateOne(ctx,
		bson.M{"run_id": runID},
		bson.M{"$set": bson.M{
			"final_reply":  reply,
			"agent_path":   path,
			"confidence":   confidence,
			"status":       string(status),
			"completed_at": time.Now().UTC(),
		}})
	if err != nil {
		return fmt.Errorf("failed to finalize run: %w", err)
	}
	return nil
}

// GetRun fetches a run record with its step log.
func (s *MongoStore) GetRun(ctx context.Context, runID string) (*domain.Run, error) {
	var doc mongoRun
	err := s.runs.FindOne(ctx, bson.M{"run_id": runID},
		options.FindOne().SetProjection(bson.M{"_id": 0})).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	return doc.toDomain(), nil
}

// ListRuns returns a user's runs, most recent first, without step logs.
func (s *MongoStore) ListRuns(ctx context.Context, userID string, limit int) ([]domain.Run, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 0, "steps": 0}).
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := s.runs.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	var docs []mongoRun
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode runs: %w", err)
	}
	runs := make([]domain.Run, 0, len(docs))
	for _, d := range docs {
		runs = append(runs, *d.toDomain())
	}
	return runs, nil
}

func (d *mongoRun) toDomain() *domain.Run {
	run := &domain.Run{
		RunID:       d.RunID,
		UserID:      d.UserID,
		Input:       d.Input,
		FinalReply:  d.FinalReply,
		AgentPath:   d.AgentPath,
		Confidence:  d.Confidence,
		Status:      domain.RunStatus(d.Status),
		CreatedAt:   d.CreatedAt,
		CompletedAt: d.CompletedAt,
	}
	for _, s := range d.Steps {
		run.Steps = append(run.Steps, domain.RunStep{Agent: s.Agent, Output: json.RawMessage(s.Output)})
	}
	return run
}

// Close disconnects the Mongo client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
