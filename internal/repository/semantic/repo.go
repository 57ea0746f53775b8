// Package semantic adapts the remote vector-similarity service into the
// engine's ranking-source contract. The service is external: calls carry
// their own timeout and a failure here degrades the query, it never fails it.
package semantic

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/askdex/askdex/internal/db"
	"github.com/askdex/askdex/internal/domain/search/candidate"
)

const (
	keyPrefix = "askdex:passage:"
	indexName = "askdex:passages:idx"
)

// store is the consumer interface for vector operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	DelMulti(ctx context.Context, keys []string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Vectorized pairs a passage identifier with its embedding and tag fields.
type Vectorized struct {
	ID     string
	Vector []float32
	Tags   map[string]string
}

// Repo implements the semantic ranking source over a Redis vector index.
type Repo struct {
	store   store
	dim     int
	timeout time.Duration
}

// New creates a semantic index repository. timeout bounds each remote call
// independently of the request deadline.
func New(s store, dim int, timeout time.Duration) *Repo {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Repo{store: s, dim: dim, timeout: timeout}
}

// EnsureIndex creates the passage vector index if it does not exist.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, indexName)
	if err != nil {
		return fmt.Errorf("probe index: %w", err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     indexName,
		Prefixes: []string{keyPrefix},
		Fields: []db.IndexField{
			{Name: "topic", Type: db.IndexFieldTag},
			{Name: "audience", Type: db.IndexFieldTag},
			{Name: "doc_kind", Type: db.IndexFieldTag},
			{
				Name:           "vector",
				Type:           db.IndexFieldVector,
				VectorAlgo:     db.VectorHNSW,
				VectorDim:      r.dim,
				VectorDistance: db.DistanceCosine,
			},
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && err != db.ErrIndexExists {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Search runs a KNN similarity query and maps hits to ranked candidates.
// Scores are cosine similarity, monotonic with relevance.
func (r *Repo) Search(
	ctx context.Context, queryVector []float32, limit int, tags map[string]string,
) ([]candidate.Ranked, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    indexName,
		Vector:       queryVector,
		K:            limit,
		Tags:         tags,
		ReturnFields: []string{"__vector_score"},
	})
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	out := make([]candidate.Ranked, 0, len(sr.Entries))
	for rank, entry := range sr.Entries {
		id := entry.Key
		if len(id) > len(keyPrefix) && id[:len(keyPrefix)] == keyPrefix {
			id = id[len(keyPrefix):]
		}
		out = append(out, candidate.NewRanked(id, entry.Score, rank, candidate.Semantic))
	}
	return out, nil
}

// Upsert writes passage vectors and tag fields in one pipelined round-trip.
func (r *Repo) Upsert(ctx context.Context, items []Vectorized) error {
	if len(items) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	hashItems := make([]db.HashSetItem, len(items))
	for i, item := range items {
		fields := map[string]string{
			"vector": vectorField(item.Vector),
			"dim":    strconv.Itoa(len(item.Vector)),
		}
		for k, v := range item.Tags {
			fields[k] = v
		}
		hashItems[i] = db.HashSetItem{Key: keyPrefix + item.ID, Fields: fields}
	}

	if err := r.store.HSetMulti(ctx, hashItems); err != nil {
		return fmt.Errorf("upsert vectors: %w", err)
	}
	return nil
}

// Delete removes passage vectors by identifier.
func (r *Repo) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyPrefix + id
	}
	if err := r.store.DelMulti(ctx, keys); err != nil {
		return fmt.Errorf("delete vectors: %w", err)
	}
	return nil
}

// vectorField encodes a float32 vector into the binary hash field format
// FT.SEARCH expects for KNN blobs.
func vectorField(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
