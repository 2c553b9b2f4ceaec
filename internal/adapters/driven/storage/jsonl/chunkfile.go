// Package jsonl reads and writes the line-delimited chunk artifact that
// hands off between extraction and indexing.
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kohi-labs/kohi-cli/internal/core/domain"
	"github.com/kohi-labs/kohi-cli/internal/core/ports/driven"
	"github.com/kohi-labs/kohi-cli/internal/logger"
)

// Ensure ChunkFile implements the interface.
var _ driven.ChunkStore = (*ChunkFile)(nil)

// maxLineBytes bounds a single artifact line. Long descriptions fit in
// well under a megabyte once segmented.
const maxLineBytes = 4 * 1024 * 1024

// ChunkFile is a file-based ChunkStore, one JSON chunk per line.
type ChunkFile struct{}

// NewChunkFile creates a chunk file store.
func NewChunkFile() *ChunkFile {
	return &ChunkFile{}
}

// WriteChunks writes chunks to path, replacing any previous artifact.
// The write goes through a temp file and rename so a crash never leaves
// a half-written artifact behind.
func (f *ChunkFile) WriteChunks(path string, chunks []domain.Chunk) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".chunks-*.jsonl")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for _, c := range chunks {
		if err := enc.Encode(c); err != nil {
			tmp.Close()
			return fmt.Errorf("encode chunk %s: %w", c.ChunkID, err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp artifact: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish artifact: %w", err)
	}

	logger.Debug("Wrote %d chunks to %s", len(chunks), path)
	return nil
}

// ReadChunks reads the artifact back. Lines that fail to parse or miss
// an essential key are skipped and counted, never fatal; a partially
// corrupted artifact still yields its valid chunks.
func (f *ChunkFile) ReadChunks(path string) ([]domain.Chunk, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open artifact: %w", err)
	}
	defer file.Close()

	var chunks []domain.Chunk
	skipped := 0

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var chunk domain.Chunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			logger.Debug("Line %d: unparseable, skipped: %v", lineNo, err)
			skipped++
			continue
		}
		if chunk.ChunkID == "" || chunk.DocID == "" || chunk.Content == "" || !chunk.Type.Valid() {
			logger.Debug("Line %d: missing essential keys, skipped", lineNo)
			skipped++
			continue
		}
		chunks = append(chunks, chunk)
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("read artifact: %w", err)
	}

	if skipped > 0 {
		logger.Warn("Artifact %s: skipped %d invalid lines", path, skipped)
	}
	return chunks, skipped, nil
}
