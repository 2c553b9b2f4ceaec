// Package sqlite provides product and chunk persistence backed by SQLite,
// including the direct substring search used by the hybrid retriever.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/kohi-labs/kohi-cli/internal/core/domain"
	"github.com/kohi-labs/kohi-cli/internal/core/ports/driven"
	"github.com/kohi-labs/kohi-cli/internal/normalisers"
)

// Ensure Store implements the interface.
var _ driven.ProductStore = (*Store)(nil)

// schema creates the two tables on first open. Products carry the raw
// searchable columns; chunks carry the extracted retrieval units keyed
// by chunk id.
const schema = `
CREATE TABLE IF NOT EXISTS products (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	price       REAL,
	sold_count  REAL,
	rating      REAL,
	description TEXT,
	link        TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(name);

CREATE TABLE IF NOT EXISTS chunks (
	chunk_id TEXT PRIMARY KEY,
	doc_id   TEXT NOT NULL,
	type     TEXT NOT NULL,
	content  TEXT NOT NULL,
	metadata TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chunks_doc_id ON chunks(doc_id);
`

// Store is the SQLite-backed product store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a store at the specified data directory.
// If dataDir is empty, defaults to ~/.kohi/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".kohi", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "products.db")

	// WAL mode for concurrent read access during retrieval
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SaveProducts replaces the searchable product rows with the given
// records. Replacement keeps the direct-search corpus aligned with the
// latest transform run.
func (s *Store) SaveProducts(ctx context.Context, records []domain.ProductRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM products"); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (name, price, sold_count, rating, description, link)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if r.Name == "" {
			continue
		}
		description, _ := r.Fields["description"].(string)

		var price any
		if p := normalisers.ParsePrice(r.Price); p != nil {
			price = *p
		}

		_, err := stmt.ExecContext(ctx,
			r.Name,
			price,
			numericOrNil(r.SoldCount),
			numericOrNil(r.Fields["rating"]),
			description,
			r.Link,
		)
		if err != nil {
			return fmt.Errorf("insert product %q: %w", r.Name, err)
		}
	}

	return tx.Commit()
}

// SaveChunks upserts extracted chunks keyed by chunk id.
func (s *Store) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (chunk_id, doc_id, type, content, metadata)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			doc_id = excluded.doc_id,
			type = excluded.type,
			content = excluded.content,
			metadata = excluded.metadata`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		metadata, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata for %s: %w", c.ChunkID, err)
		}
		if _, err := stmt.ExecContext(ctx, c.ChunkID, c.DocID, string(c.Type), c.Content, string(metadata)); err != nil {
			return fmt.Errorf("upsert chunk %s: %w", c.ChunkID, err)
		}
	}

	return tx.Commit()
}

// GetChunk retrieves a chunk by its chunk id.
func (s *Store) GetChunk(ctx context.Context, chunkID string) (*domain.Chunk, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT chunk_id, doc_id, type, content, metadata FROM chunks WHERE chunk_id = ?", chunkID)

	chunk, err := scanChunk(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get chunk %s: %w", chunkID, err)
	}
	return chunk, nil
}

// ListChunks returns all chunks for a product in chunk id order.
func (s *Store) ListChunks(ctx context.Context, docID string) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT chunk_id, doc_id, type, content, metadata FROM chunks WHERE doc_id = ? ORDER BY chunk_id", docID)
	if err != nil {
		return nil, fmt.Errorf("list chunks for %s: %w", docID, err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunks = append(chunks, *chunk)
	}
	return chunks, rows.Err()
}

// SearchProducts runs a case-insensitive substring match against the
// name and description columns.
func (s *Store) SearchProducts(ctx context.Context, query string) ([]domain.DirectHit, error) {
	pattern := "%" + escapeLike(query) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, price, sold_count, rating, description, link
		FROM products
		WHERE lower(name) LIKE lower(?) ESCAPE '\'
		   OR lower(description) LIKE lower(?) ESCAPE '\'`,
		pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	var hits []domain.DirectHit
	for rows.Next() {
		var hit domain.DirectHit
		var price, soldCount, rating sql.NullFloat64
		var description, link sql.NullString
		if err := rows.Scan(&hit.Name, &price, &soldCount, &rating, &description, &link); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		hit.Price = price.Float64
		hit.SoldCount = soldCount.Float64
		hit.Rating = rating.Float64
		hit.Description = description.String
		hit.Link = link.String
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// CountProducts returns the number of stored product rows.
func (s *Store) CountProducts(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanChunk(row scanner) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var typ, metadata string
	if err := row.Scan(&chunk.ChunkID, &chunk.DocID, &typ, &chunk.Content, &metadata); err != nil {
		return nil, err
	}
	chunk.Type = domain.ChunkType(typ)
	if err := json.Unmarshal([]byte(metadata), &chunk.Metadata); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &chunk, nil
}

// escapeLike escapes the LIKE wildcards in user input.
func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

// numericOrNil converts raw numeric-ish values to a driver-friendly
// float64, or nil when absent or unparseable.
func numericOrNil(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
		return nil
	default:
		return nil
	}
}
