package vectorindex

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/yanqian/smart-faq/internal/domain/faq"
)

// payloadFAQID carries the caller id; Qdrant point ids must be UUIDs or integers.
const payloadFAQID = "faq_id"

var pointNamespace = uuid.MustParse("6f1d8c1e-3b5a-4c1e-9a55-2f7e0c9b8a10")

// QdrantOptions configures the Qdrant connection.
type QdrantOptions struct {
	Host       string
	Port       int
	APIKey     string
	Collection string
	Dimensions int
}

// QdrantIndex stores FAQ vectors in a Qdrant collection with cosine distance.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
}

// NewQdrantIndex connects and ensures the collection exists.
func NewQdrantIndex(ctx context.Context, opts QdrantOptions) (*QdrantIndex, error) {
	if opts.Host == "" {
		opts.Host = "localhost"
	}
	if opts.Port == 0 {
		opts.Port = 6334
	}
	if opts.Collection == "" {
		opts.Collection = "faqs"
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   opts.Host,
		Port:   opts.Port,
		APIKey: opts.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("connect qdrant: %w", err)
	}
	idx := &QdrantIndex{client: client, collection: opts.Collection}
	if err := idx.ensureCollection(ctx, opts.Dimensions); err != nil {
		_ = client.Close()
		return nil, err
	}
	return idx, nil
}

func (q *QdrantIndex) ensureCollection(ctx context.Context, dims int) error {
	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if exists {
		return nil
	}
	if dims <= 0 {
		return fmt.Errorf("vector dimensions required to create collection %q", q.collection)
	}
	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(dims),
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

// Close releases the gRPC connection.
func (q *QdrantIndex) Close() error {
	return q.client.Close()
}

func (q *QdrantIndex) Upsert(ctx context.Context, id string, vector []float32, metadata map[string]string) error {
	wait := true
	payload := map[string]any{payloadFAQID: id}
	for k, v := range metadata {
		payload[k] = v
	}
	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Wait:           &wait,
		Points: []*qdrant.PointStruct{{
			Id:      pointID(id),
			Vectors: qdrant.NewVectors(vector...),
			Payload: qdrant.NewValueMap(payload),
		}},
	})
	return err
}

func (q *QdrantIndex) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	wait := true
	points := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		points = append(points, pointID(id))
	}
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collection,
		Wait:           &wait,
		Points:         qdrant.NewPointsSelector(points...),
	})
	return err
}

func (q *QdrantIndex) Query(ctx context.Context, vector []float32, opts faq.QueryOptions) ([]faq.VectorMatch, error) {
	limit := uint64(opts.TopK)
	if limit == 0 {
		limit = 5
	}
	// the faq id lives in the payload, so it is always fetched
	resp, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Limit:          &limit,
		Query:          qdrant.NewQuery(vector...),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	matches := make([]faq.VectorMatch, 0, len(resp))
	for _, point := range resp {
		payload := stringPayload(point.Payload)
		id := payload[payloadFAQID]
		if id == "" {
			continue
		}
		delete(payload, payloadFAQID)
		match := faq.VectorMatch{ID: id, Score: float64(point.Score)}
		if opts.ReturnMetadata {
			match.Metadata = payload
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func pointID(id string) *qdrant.PointId {
	return qdrant.NewIDUUID(uuid.NewSHA1(pointNamespace, []byte(id)).String())
}

func stringPayload(payload map[string]*qdrant.Value) map[string]string {
	out := make(map[string]string, len(payload))
	for k, v := range payload {
		if s, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
			out[k] = s.StringValue
		}
	}
	return out
}

var _ faq.VectorIndex = (*QdrantIndex)(nil)
