package vectorindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/smart-faq/internal/domain/faq"
)

func TestMemoryIndexRanksByCosine(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "a", []float32{1, 0}, map[string]string{faq.MetadataQuestion: "A?"}))
	require.NoError(t, idx.Upsert(ctx, "b", []float32{1, 1}, map[string]string{faq.MetadataQuestion: "B?"}))
	require.NoError(t, idx.Upsert(ctx, "c", []float32{0, 1}, nil))

	matches, err := idx.Query(ctx, []float32{1, 0.1}, faq.QueryOptions{TopK: 2, ReturnMetadata: true})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, "a", matches[0].ID)
	require.Equal(t, "b", matches[1].ID)
	require.Greater(t, matches[0].Score, matches[1].Score)
	require.Equal(t, "A?", matches[0].Metadata[faq.MetadataQuestion])

	matches, err = idx.Query(ctx, []float32{1, 0}, faq.QueryOptions{TopK: 5})
	require.NoError(t, err)
	require.Len(t, matches, 3)
	require.Nil(t, matches[0].Metadata)
}

func TestMemoryIndexUpsertReplacesAndDeletes(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "a", []float32{1, 0}, nil))
	require.NoError(t, idx.Upsert(ctx, "a", []float32{0, 1}, nil))
	require.Equal(t, 1, idx.Len())

	matches, err := idx.Query(ctx, []float32{0, 1}, faq.QueryOptions{TopK: 1})
	require.NoError(t, err)
	require.InDelta(t, 1.0, matches[0].Score, 1e-9)

	require.NoError(t, idx.DeleteByIDs(ctx, []string{"a", "zzz"}))
	matches, err = idx.Query(ctx, []float32{0, 1}, faq.QueryOptions{TopK: 1})
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestMemoryIndexRejectsEmptyVectors(t *testing.T) {
	idx := NewMemoryIndex()
	require.Error(t, idx.Upsert(context.Background(), "a", nil, nil))
	_, err := idx.Query(context.Background(), nil, faq.QueryOptions{})
	require.Error(t, err)
}

func TestPointIDIsStable(t *testing.T) {
	require.Equal(t, pointID("1").GetUuid(), pointID("1").GetUuid())
	require.NotEqual(t, pointID("1").GetUuid(), pointID("2").GetUuid())
}
