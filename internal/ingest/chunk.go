// Package ingest turns uploaded PDFs into searchable content chunks.
package ingest

import "strings"

const minChunkSize = 200

// ChunkText slices text with a sliding window and overlap. maxChunks
// keeps huge documents from producing unbounded output.
func ChunkText(text string, chunkSize, overlap, maxChunks int) []string {
	if text == "" {
		return nil
	}

	if chunkSize < minChunkSize {
		chunkSize = minChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap > chunkSize-1 {
		overlap = chunkSize - 1
	}
	step := chunkSize - overlap
	if step < 1 {
		step = 1
	}

	var chunks []string
	for i := 0; i < len(text) && len(chunks) < maxChunks; i += step {
		end := i + chunkSize
		if end > len(text) {
			end = len(text)
		}
		chunk := strings.TrimSpace(text[i:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}
