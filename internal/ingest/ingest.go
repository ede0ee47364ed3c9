package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tliang07/askflow/config"
	"github.com/tliang07/askflow/internal/adapter/llm"
	"github.com/tliang07/askflow/internal/domain"
	"github.com/tliang07/askflow/internal/store"
)

const maxEmbedChars = 2000

// Ingestor runs the PDF ingestion pipeline: file record, text
// extraction, chunking, optional embeddings, chunk storage.
type Ingestor struct {
	store store.Store
	llm   llm.Client
	cfg   *config.Config
}

// New creates an Ingestor.
func New(st store.Store, llmClient llm.Client, cfg *config.Config) *Ingestor {
	return &Ingestor{store: st, llm: llmClient, cfg: cfg}
}

// IngestPDF ingests one saved PDF file for a user.
func (i *Ingestor) IngestPDF(ctx context.Context, userID, filePath, filename string) (*domain.IngestResult, error) {
	file := &domain.FileRecord{
		FileID:      uuid.New().String(),
		UserID:      userID,
		Filename:    filename,
		ContentType: "application/pdf",
		CreatedAt:   time.Now().UTC(),
	}
	if err := i.store.CreateFile(ctx, file); err != nil {
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	text, err := ExtractPDFText(filePath, i.cfg.MaxPDFPages)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return &domain.IngestResult{
			OK:       true,
			FileID:   file.FileID,
			Filename: filename,
			Chunks:   0,
			Warning:  "No extractable text found in PDF (scanned image PDF). OCR is not enabled.",
		}, nil
	}

	if len(text) > i.cfg.MaxPDFTextChars {
		text = text[:i.cfg.MaxPDFTextChars]
	}

	chunks := ChunkText(text, i.cfg.ChunkSize, i.cfg.ChunkOverlap, i.cfg.MaxPDFChunks)
	for idx, chunk := range chunks {
		var embedding []float64
		if i.cfg.EnableEmbeddings {
			input := chunk
			if len(input) > maxEmbedChars {
				input = input[:maxEmbedChars]
			}
			// Embedding failure degrades to a nil vector; ingestion continues.
			if vec, err := i.llm.Embeddings(ctx, input, i.cfg.EmbedModel); err == nil {
				embedding = vec
			}
		}

		if err := i.store.AddChunk(ctx, &domain.Chunk{
			UserID:     userID,
			FileID:     file.FileID,
			Filename:   filename,
			ChunkIndex: idx,
			Content:    chunk,
			Embedding:  embedding,
		}); err != nil {
			return nil, fmt.Errorf("failed to store chunk %d: %w", idx, err)
		}
	}

	return &domain.IngestResult{
		OK:       true,
		FileID:   file.FileID,
		Filename: filename,
		Chunks:   len(chunks),
	}, nil
}
