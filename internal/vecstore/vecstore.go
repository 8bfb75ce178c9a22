// Package vecstore persists bill embeddings as SQLite BLOBs.
package vecstore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
)

// Metadata is stored alongside each vector so search results can be
// rendered without joining back to the bills table.
type Metadata struct {
	BillNumber  string
	Title       string
	TextPreview string
}

const (
	maxTitleLen   = 1000
	maxPreviewLen = 500
)

// Store is a vector index keyed by bill id. Vectors are normalized on
// write so dot product equals cosine similarity; upserting the same bill
// overwrites rather than duplicates.
type Store struct {
	db *sql.DB
}

// ScoredBill pairs a bill id with a similarity score.
type ScoredBill struct {
	BillID int64
	Score  float64
}

// New creates the vector store, creating its table if needed. The store
// shares the main database file.
func New(db *sql.DB) (*Store, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS bill_vectors (
			bill_id      INTEGER PRIMARY KEY,
			embedding    BLOB NOT NULL,
			dimensions   INTEGER NOT NULL,
			bill_number  TEXT NOT NULL,
			title        TEXT NOT NULL,
			text_preview TEXT NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("creating vector table: %w", err)
	}
	return &Store{db: db}, nil
}

// Upsert writes a bill's vector and metadata, replacing any previous
// version. Metadata strings are clipped to their column limits.
func (s *Store) Upsert(ctx context.Context, billID int64, vector []float32, meta Metadata) error {
	normalized := normalize(vector)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bill_vectors (bill_id, embedding, dimensions, bill_number, title, text_preview)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(bill_id) DO UPDATE SET
			embedding=excluded.embedding, dimensions=excluded.dimensions,
			bill_number=excluded.bill_number, title=excluded.title,
			text_preview=excluded.text_preview
	`, billID, float32ToBlob(normalized), len(normalized),
		meta.BillNumber, clip(meta.Title, maxTitleLen), clip(meta.TextPreview, maxPreviewLen))
	if err != nil {
		return fmt.Errorf("upserting vector for bill %d: %w", billID, err)
	}
	return nil
}

// Has reports whether a vector exists for the bill.
func (s *Store) Has(ctx context.Context, billID int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bill_vectors WHERE bill_id = ?", billID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Count returns the number of stored vectors.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bill_vectors").Scan(&n)
	return n, err
}

// Search returns the top-k bills by cosine similarity to the query
// vector. Brute force over all stored vectors; exact, not approximate.
func (s *Store) Search(ctx context.Context, query []float32, limit int) ([]ScoredBill, error) {
	if limit <= 0 {
		limit = 10
	}
	normalizedQuery := normalize(query)

	rows, err := s.db.QueryContext(ctx, "SELECT bill_id, embedding, dimensions FROM bill_vectors")
	if err != nil {
		return nil, fmt.Errorf("loading vectors: %w", err)
	}
	defer rows.Close()

	var results []ScoredBill
	for rows.Next() {
		var billID int64
		var blob []byte
		var dims int
		if err := rows.Scan(&billID, &blob, &dims); err != nil {
			return nil, err
		}
		vec := blobToFloat32(blob, dims)
		if len(vec) != len(normalizedQuery) {
			continue
		}
		results = append(results, ScoredBill{BillID: billID, Score: dotProduct(normalizedQuery, vec)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Insertion sort by descending score; result sets are small.
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && results[j].Score > results[j-1].Score; j-- {
			results[j], results[j-1] = results[j-1], results[j]
		}
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func normalize(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)
	out := make([]float32, len(v))
	if norm == 0 {
		return out
	}
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dotProduct(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func float32ToBlob(v []float32) []byte {
	blob := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(x))
	}
	return blob
}

func blobToFloat32(blob []byte, dims int) []float32 {
	if len(blob) < 4*dims {
		dims = len(blob) / 4
	}
	v := make([]float32, dims)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return v
}
