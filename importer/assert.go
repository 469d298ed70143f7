package importer

import (
	"context"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/public-forge/imposm3-testkit/testdb"
)

// AssertMissingNode checks that node id is not in the cache.
func AssertMissingNode(t testdb.TestingT, ctx context.Context, r *Runner, id int64) bool {
	t.Helper()
	result, err := r.QueryCache(ctx, CacheQuery{Nodes: []int64{id}})
	require.NoError(t, err)
	return assert.Nilf(t, result.Node(id), "node %d found", id)
}

// AssertCachedNode checks that node id is cached at lon/lat (6 decimal places).
func AssertCachedNode(t testdb.TestingT, ctx context.Context, r *Runner, id int64, lon, lat float64) *CachedElement {
	t.Helper()
	result, err := r.QueryCache(ctx, CacheQuery{Nodes: []int64{id}})
	require.NoError(t, err)
	node := result.Node(id)
	require.NotNilf(t, node, "node %d not found", id)
	testdb.AssertAlmostEqual(t, lon, node.Lon, 6)
	testdb.AssertAlmostEqual(t, lat, node.Lat, 6)
	return node
}

// AssertCachedWay checks that way id is cached.
func AssertCachedWay(t testdb.TestingT, ctx context.Context, r *Runner, id int64) *CachedElement {
	t.Helper()
	result, err := r.QueryCache(ctx, CacheQuery{Ways: []int64{id}})
	require.NoError(t, err)
	way := result.Way(id)
	require.NotNilf(t, way, "way %d not found", id)
	return way
}
