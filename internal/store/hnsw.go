package store

import (
	"bufio"
	"context"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/coder/hnsw"
)

// VectorStoreConfig sizes the HNSW graph.
type VectorStoreConfig struct {
	Dimensions int
	M          int
	EfSearch   int
}

// DefaultVectorStoreConfig returns graph parameters suited to corpora in
// the tens of thousands of chunks.
func DefaultVectorStoreConfig(dimensions int) VectorStoreConfig {
	return VectorStoreConfig{
		Dimensions: dimensions,
		M:          16,
		EfSearch:   100,
	}
}

// HNSWStore is the in-process vector store behind the semantic channel.
// String chunk IDs map to uint64 graph keys; removal is lazy, a deleted
// ID is dropped from the maps and its node is skipped at query time.
type HNSWStore struct {
	mu     sync.RWMutex
	graph  *hnsw.Graph[uint64]
	dims   int
	idMap  map[string]uint64
	keyMap map[uint64]string
	next   uint64
	closed bool
}

// NewHNSWStore builds an empty cosine-metric store.
func NewHNSWStore(cfg VectorStoreConfig) (*HNSWStore, error) {
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("invalid dimensions %d", cfg.Dimensions)
	}

	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	if cfg.M > 0 {
		graph.M = cfg.M
	}
	if cfg.EfSearch > 0 {
		graph.EfSearch = cfg.EfSearch
	}

	return &HNSWStore{
		graph:  graph,
		dims:   cfg.Dimensions,
		idMap:  make(map[string]uint64),
		keyMap: make(map[uint64]string),
	}, nil
}

// Dimensions returns the configured vector length.
func (s *HNSWStore) Dimensions() int {
	return s.dims
}

// Add inserts vectors under the given chunk IDs. Every vector must match
// the configured dimensionality; a mismatch rejects the whole call before
// any insertion.
func (s *HNSWStore) Add(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids/vectors length mismatch: %d vs %d", len(ids), len(vectors))
	}
	for i, v := range vectors {
		if len(v) != s.dims {
			return fmt.Errorf("vector %d has %d dimensions, want %d: %w", i, len(v), s.dims, ErrDimensionMismatch)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		key, exists := s.idMap[id]
		if !exists {
			key = s.next
			s.next++
			s.idMap[id] = key
			s.keyMap[key] = id
		}

		vec := make([]float32, len(vectors[i]))
		copy(vec, vectors[i])
		normalizeVectorInPlace(vec)

		s.graph.Add(hnsw.MakeNode(key, vec))
	}
	return nil
}

// Search returns the k nearest chunk IDs with cosine similarity scores in
// [0, 1].
func (s *HNSWStore) Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error) {
	if len(query) != s.dims {
		return nil, fmt.Errorf("query has %d dimensions, want %d: %w", len(query), s.dims, ErrDimensionMismatch)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	if s.graph.Len() == 0 || k <= 0 {
		return []*VectorResult{}, nil
	}

	normalized := make([]float32, len(query))
	copy(normalized, query)
	normalizeVectorInPlace(normalized)

	nodes := s.graph.Search(normalized, k)

	results := make([]*VectorResult, 0, len(nodes))
	for _, node := range nodes {
		id, ok := s.keyMap[node.Key]
		if !ok {
			// Lazily deleted node still present in the graph.
			continue
		}
		distance := s.graph.Distance(normalized, node.Value)
		results = append(results, &VectorResult{
			ChunkID: id,
			Score:   distanceToScore(distance),
		})
	}
	return results, nil
}

// Delete drops IDs from the mapping. Graph nodes linger until the next
// full rebuild but can never surface in results.
func (s *HNSWStore) Delete(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	for _, id := range ids {
		if key, ok := s.idMap[id]; ok {
			delete(s.idMap, id)
			delete(s.keyMap, key)
		}
	}
	return nil
}

// Count returns the number of live vectors.
func (s *HNSWStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.idMap)
}

// Close marks the store unusable.
func (s *HNSWStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type hnswMetadata struct {
	Dimensions int
	IDMap      map[string]uint64
	Next       uint64
}

// Save writes the graph and ID mappings next to path. The graph goes to
// path itself, the mappings to path+".meta". Writes go through a temp
// file and rename.
func (s *HNSWStore) Save(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	if err := s.graph.Export(file); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("export graph: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close index file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename index file: %w", err)
	}

	return s.saveMetadata(path + ".meta")
}

func (s *HNSWStore) saveMetadata(path string) error {
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create metadata file: %w", err)
	}

	meta := hnswMetadata{
		Dimensions: s.dims,
		IDMap:      s.idMap,
		Next:       s.next,
	}
	if err := gob.NewEncoder(file).Encode(meta); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close metadata file: %w", err)
	}
	return os.Rename(tmp, path)
}

// Load restores a store saved with Save. A missing file leaves the store
// empty and is not an error, so a fresh deployment starts clean.
func (s *HNSWStore) Load(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	metaFile, err := os.Open(path + ".meta")
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open metadata file: %w", err)
	}
	defer metaFile.Close()

	var meta hnswMetadata
	if err := gob.NewDecoder(metaFile).Decode(&meta); err != nil {
		return fmt.Errorf("decode metadata: %w", err)
	}
	if meta.Dimensions != s.dims {
		return fmt.Errorf("saved index has %d dimensions, configured %d: %w",
			meta.Dimensions, s.dims, ErrDimensionMismatch)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open index file: %w", err)
	}
	defer file.Close()

	// Import needs an io.ByteReader.
	if err := s.graph.Import(bufio.NewReader(file)); err != nil {
		return fmt.Errorf("import graph: %w", err)
	}

	s.idMap = meta.IDMap
	s.next = meta.Next
	s.keyMap = make(map[uint64]string, len(meta.IDMap))
	for id, key := range meta.IDMap {
		s.keyMap[key] = id
	}
	return nil
}

func normalizeVectorInPlace(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
}

// distanceToScore maps cosine distance in [0, 2] to similarity in [0, 1].
func distanceToScore(distance float32) float32 {
	score := 1 - distance/2
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
