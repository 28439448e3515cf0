package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/qdrant/go-client/qdrant"
)

// defaultCallTimeout bounds each individual Qdrant RPC so a hung backend
// cannot block a turn indefinitely.
const defaultCallTimeout = 10 * time.Second

// QdrantConfig holds connection parameters for a Qdrant vector index instance.
type QdrantConfig struct {
	// Host is the Qdrant server hostname (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// Collection is the Qdrant collection name holding dialogue records.
	Collection string

	// VectorSize is the dimensionality of the embeddings stored in this
	// collection. Must match the embedder's output size.
	VectorSize uint64

	// APIKey is the optional Qdrant API key for authenticated clusters.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool

	// CallTimeout bounds each RPC. Defaults to 10s if zero.
	CallTimeout time.Duration
}

// QdrantIndex implements VectorIndex backed by a Qdrant instance.
type QdrantIndex struct {
	// client is the underlying Qdrant gRPC client.
	client *qdrant.Client

	// cfg holds the resolved configuration for this index.
	cfg *QdrantConfig
}

// NewQdrantIndex creates a new QdrantIndex and ensures the target collection
// exists with the configured dimensionality. If the collection already exists
// with a different vector size, an error is returned — dimensionality
// mismatch is a configuration fault that must fail at startup, not surface
// as per-record errors later.
func NewQdrantIndex(ctx context.Context, cfg *QdrantConfig) (*QdrantIndex, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("qdrant: collection name must not be empty")
	}
	if cfg.VectorSize == 0 {
		return nil, fmt.Errorf("qdrant: vector size must not be zero")
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to create client: %w", err)
	}

	idx := &QdrantIndex{client: client, cfg: cfg}
	if err := idx.ensureCollection(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}

	return idx, nil
}

// ensureCollection creates the collection if absent, or verifies that an
// existing collection's vector size matches the configured dimensionality.
func (x *QdrantIndex) ensureCollection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, x.cfg.CallTimeout)
	defer cancel()

	exists, err := x.client.CollectionExists(ctx, x.cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant: failed to check collection existence: %w", err)
	}
	if exists {
		return x.verifyDimensions(ctx)
	}

	return x.createCollection(ctx)
}

// verifyDimensions compares the existing collection's vector size with the
// configured one and fails loudly on mismatch.
func (x *QdrantIndex) verifyDimensions(ctx context.Context) error {
	info, err := x.client.GetCollectionInfo(ctx, x.cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant: failed to read collection info for %q: %w", x.cfg.Collection, err)
	}

	size := info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()
	if size != 0 && size != x.cfg.VectorSize {
		return fmt.Errorf("qdrant: collection %q has vector size %d but the embedder produces %d — "+
			"reset the collection or fix EMBEDDING_DIMENSIONS", x.cfg.Collection, size, x.cfg.VectorSize)
	}
	return nil
}

// createCollection creates a fresh collection with cosine similarity.
func (x *QdrantIndex) createCollection(ctx context.Context) error {
	err := x.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: x.cfg.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     x.cfg.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: failed to create collection %q: %w", x.cfg.Collection, err)
	}
	return nil
}

// Reset drops the collection if present and recreates it empty. Deleting a
// collection that does not exist is not an error, so calling Reset twice in a
// row is safe. All previously indexed records are destroyed.
func (x *QdrantIndex) Reset(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, x.cfg.CallTimeout)
	defer cancel()

	if err := x.client.DeleteCollection(ctx, x.cfg.Collection); err != nil {
		return fmt.Errorf("qdrant: failed to delete collection %q: %w", x.cfg.Collection, err)
	}

	return x.createCollection(ctx)
}

// Upsert stores or overwrites a batch of records by ID. The write is waited
// on so the whole batch is visible to subsequent queries before Upsert
// returns — callers never observe a partially applied batch.
func (x *QdrantIndex) Upsert(ctx context.Context, records []IndexedRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(records))
	for _, rec := range records {
		if uint64(len(rec.Vector)) != x.cfg.VectorSize {
			return fmt.Errorf("qdrant: record %s has vector size %d, collection expects %d",
				rec.ID, len(rec.Vector), x.cfg.VectorSize)
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(rec.ID),
			Vectors: qdrant.NewVectors(rec.Vector...),
			Payload: qdrant.NewValueMap(recordPayload(rec)),
		})
	}

	ctx, cancel := context.WithTimeout(ctx, x.cfg.CallTimeout)
	defer cancel()

	_, err := x.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: x.cfg.Collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert failed: %w", err)
	}

	return nil
}

// Query performs a cosine similarity search restricted to records of the
// given type and returns at most k results, best match first.
func (x *QdrantIndex) Query(ctx context.Context, vector []float32, recordType RecordType, k int) ([]RetrievalResult, error) {
	ctx, cancel := context.WithTimeout(ctx, x.cfg.CallTimeout)
	defer cancel()

	limit := uint64(k) //nolint:gosec // k is a small positive result cap
	points, err := x.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: x.cfg.Collection,
		Query:          qdrant.NewQuery(vector...),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch(payloadKeyType, string(recordType)),
			},
		},
		Limit:       &limit,
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: query failed: %w", err)
	}

	results := make([]RetrievalResult, 0, len(points))
	for _, p := range points {
		results = append(results, resultFromPayload(p.GetScore(), p.GetPayload()))
	}

	return results, nil
}

// Ping checks Qdrant reachability via its native health-check RPC.
// Used by the server's readiness probe.
func (x *QdrantIndex) Ping(ctx context.Context) error {
	_, err := x.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// Close closes the underlying Qdrant gRPC connection.
func (x *QdrantIndex) Close() error {
	return x.client.Close()
}
