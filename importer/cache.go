package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CacheQuery selects the elements to read back from the imposm3 cache.
type CacheQuery struct {
	Nodes     []int64
	Ways      []int64
	Relations []int64
	Deps      bool // Deps includes the dependencies of the selected elements.
	Full      bool // Full resolves way and relation members.
}

// CachedElement is one cached node, way or relation.
type CachedElement struct {
	ID   int64             `json:"id"`
	Tags map[string]string `json:"tags"`
	Lon  float64           `json:"lon"`
	Lat  float64           `json:"lat"`
	Refs []int64           `json:"refs"`
}

// CacheResult maps element ids to their cached form. Missing elements are present with a nil value.
type CacheResult struct {
	Nodes     map[string]*CachedElement `json:"nodes"`
	Ways      map[string]*CachedElement `json:"ways"`
	Relations map[string]*CachedElement `json:"relations"`
}

// Node returns the cached node id, nil when it is not cached.
func (c *CacheResult) Node(id int64) *CachedElement {
	return c.Nodes[strconv.FormatInt(id, 10)]
}

// Way returns the cached way id, nil when it is not cached.
func (c *CacheResult) Way(id int64) *CachedElement {
	return c.Ways[strconv.FormatInt(id, 10)]
}

// Relation returns the cached relation id, nil when it is not cached.
func (c *CacheResult) Relation(id int64) *CachedElement {
	return c.Relations[strconv.FormatInt(id, 10)]
}

func (q CacheQuery) args(cacheDir string) []string {
	args := []string{"query-cache", "-cachedir", cacheDir}
	if len(q.Nodes) > 0 {
		args = append(args, "-node", joinIDs(q.Nodes))
	}
	if len(q.Ways) > 0 {
		args = append(args, "-way", joinIDs(q.Ways))
	}
	if len(q.Relations) > 0 {
		args = append(args, "-rel", joinIDs(q.Relations))
	}
	if q.Deps {
		args = append(args, "-deps")
	}
	if q.Full {
		args = append(args, "-full")
	}
	return args
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// QueryCache reads elements from the imposm3 cache with the query-cache sub-command.
// The database connection is left open since the cache is not stored in the database.
func (r *Runner) QueryCache(ctx context.Context, query CacheQuery) (*CacheResult, error) {
	output, err := r.run(ctx, query.args(r.config.CacheDir))
	if err != nil {
		return nil, err
	}
	result := &CacheResult{}
	if err := json.Unmarshal(output, result); err != nil {
		return nil, fmt.Errorf("decoding query-cache output: %w", err)
	}
	return result, nil
}
