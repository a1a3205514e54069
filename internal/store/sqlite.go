package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id            TEXT PRIMARY KEY,
	category      TEXT NOT NULL,
	filename      TEXT NOT NULL,
	law_name      TEXT NOT NULL DEFAULT '',
	jurisdiction  TEXT NOT NULL DEFAULT '',
	total_chunks  INTEGER NOT NULL,
	created_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS chunks (
	id                      TEXT PRIMARY KEY,
	document_id             TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	chunk_index             INTEGER NOT NULL,
	content                 TEXT NOT NULL,
	chunk_type              TEXT NOT NULL,
	statute_article_number  TEXT NOT NULL DEFAULT '',
	decision_number         TEXT NOT NULL DEFAULT '',
	metadata                TEXT NOT NULL DEFAULT '{}',
	UNIQUE(document_id, chunk_index)
);

CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);
`

// DB is the SQLite document/chunk store. A single connection is used since
// SQLite allows one writer; WAL keeps readers unblocked.
type DB struct {
	db *sql.DB
}

// OpenDB opens (creating if needed) the store at path. Use ":memory:" for
// tests.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close releases the underlying connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// SaveDocument persists a document and its chunks in one transaction. IDs
// are assigned here; the document's ID and TotalChunks fields are set on
// return. Chunk order in the slice defines chunk_index.
func (d *DB) SaveDocument(ctx context.Context, doc *Document, chunks []*Chunk) error {
	doc.ID = uuid.NewString()
	doc.TotalChunks = len(chunks)
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, category, filename, law_name, jurisdiction, total_chunks, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Category, doc.Filename, doc.LawName, doc.Jurisdiction, doc.TotalChunks, doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	for i, c := range chunks {
		c.ID = uuid.NewString()
		c.DocumentID = doc.ID
		c.Index = i

		meta, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("marshal chunk metadata: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO chunks (id, document_id, chunk_index, content, chunk_type, statute_article_number, decision_number, metadata)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.DocumentID, c.Index, c.Content, c.Type, c.StatuteArticleNumber, c.DecisionNumber, string(meta))
		if err != nil {
			return fmt.Errorf("insert chunk %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit document: %w", err)
	}
	return nil
}

// GetDocument fetches a document by ID.
func (d *DB) GetDocument(ctx context.Context, id string) (*Document, error) {
	doc := &Document{}
	err := d.db.QueryRowContext(ctx,
		`SELECT id, category, filename, law_name, jurisdiction, total_chunks, created_at
		 FROM documents WHERE id = ?`, id).
		Scan(&doc.ID, &doc.Category, &doc.Filename, &doc.LawName, &doc.Jurisdiction, &doc.TotalChunks, &doc.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	return doc, nil
}

// DeleteDocument removes a document; its chunks go with it via the
// cascading foreign key.
func (d *DB) DeleteDocument(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ChunksByDocument returns a document's chunks in chunk_index order.
func (d *DB) ChunksByDocument(ctx context.Context, documentID string) ([]*Chunk, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, document_id, chunk_index, content, chunk_type, statute_article_number, decision_number, metadata
		 FROM chunks WHERE document_id = ? ORDER BY chunk_index`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list chunks for %s: %w", documentID, err)
	}
	defer rows.Close()
	return scanChunks(rows)
}

// GetChunks fetches chunks by ID, returned keyed by ID.
func (d *DB) GetChunks(ctx context.Context, ids []string) (map[string]*Chunk, error) {
	out := make(map[string]*Chunk, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	// Bound query size; ID lists come from top-k searches and stay small.
	placeholders := make([]byte, 0, 2*len(ids))
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args = append(args, id)
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT id, document_id, chunk_index, content, chunk_type, statute_article_number, decision_number, metadata
		 FROM chunks WHERE id IN (`+string(placeholders)+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("get chunks: %w", err)
	}
	defer rows.Close()

	chunks, err := scanChunks(rows)
	if err != nil {
		return nil, err
	}
	for _, c := range chunks {
		out[c.ID] = c
	}
	return out, nil
}

// ListCorpus returns every chunk joined with its document fields, shaped
// for a lexical index rebuild.
func (d *DB) ListCorpus(ctx context.Context) ([]*CorpusEntry, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT c.id, c.content, c.chunk_type, c.chunk_index, c.metadata,
		        d.id, d.category, d.filename, d.law_name, d.jurisdiction
		 FROM chunks c JOIN documents d ON c.document_id = d.id
		 ORDER BY d.created_at, c.chunk_index`)
	if err != nil {
		return nil, fmt.Errorf("list corpus: %w", err)
	}
	defer rows.Close()
	return scanCorpus(rows)
}

// GetCorpus returns corpus entries for specific chunk IDs, keyed by ID.
// Used by the semantic channel to attach content and metadata to vector
// hits.
func (d *DB) GetCorpus(ctx context.Context, ids []string) (map[string]*CorpusEntry, error) {
	out := make(map[string]*CorpusEntry, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := make([]byte, 0, 2*len(ids))
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args = append(args, id)
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT c.id, c.content, c.chunk_type, c.chunk_index, c.metadata,
		        d.id, d.category, d.filename, d.law_name, d.jurisdiction
		 FROM chunks c JOIN documents d ON c.document_id = d.id
		 WHERE c.id IN (`+string(placeholders)+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("get corpus entries: %w", err)
	}
	defer rows.Close()

	entries, err := scanCorpus(rows)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		out[e.ChunkID] = e
	}
	return out, nil
}

func scanCorpus(rows *sql.Rows) ([]*CorpusEntry, error) {
	var entries []*CorpusEntry
	for rows.Next() {
		var (
			entry     CorpusEntry
			chunkType string
			chunkIdx  int
			metaJSON  string
			docID     string
			category  string
			filename  string
			lawName   string
			jurisd    string
		)
		if err := rows.Scan(&entry.ChunkID, &entry.Content, &chunkType, &chunkIdx, &metaJSON,
			&docID, &category, &filename, &lawName, &jurisd); err != nil {
			return nil, fmt.Errorf("scan corpus row: %w", err)
		}

		meta := map[string]string{}
		if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
			return nil, fmt.Errorf("decode chunk metadata: %w", err)
		}
		meta["document_id"] = docID
		meta["category"] = category
		meta["filename"] = filename
		meta["chunk_type"] = chunkType
		meta["chunk_index"] = strconv.Itoa(chunkIdx)
		if lawName != "" {
			meta["law_name"] = lawName
		}
		if jurisd != "" {
			meta["jurisdiction"] = jurisd
		}

		entry.Metadata = meta
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate corpus: %w", err)
	}
	return entries, nil
}

// Stats counts documents and chunks by category.
func (d *DB) Stats(ctx context.Context) (*Stats, error) {
	s := &Stats{ChunksByCategory: map[string]int{}}

	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&s.Documents); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&s.Chunks); err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT d.category, COUNT(*) FROM chunks c JOIN documents d ON c.document_id = d.id GROUP BY d.category`)
	if err != nil {
		return nil, fmt.Errorf("count chunks by category: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		s.ChunksByCategory[cat] = n
	}
	return s, rows.Err()
}

func scanChunks(rows *sql.Rows) ([]*Chunk, error) {
	var chunks []*Chunk
	for rows.Next() {
		c := &Chunk{}
		var metaJSON string
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Index, &c.Content, &c.Type,
			&c.StatuteArticleNumber, &c.DecisionNumber, &metaJSON); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		c.Metadata = map[string]string{}
		if err := json.Unmarshal([]byte(metaJSON), &c.Metadata); err != nil {
			return nil, fmt.Errorf("decode chunk metadata: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}
