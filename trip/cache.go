package trip

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultCacheTTL bounds how long a fetched walking network stays
	// reusable. Street networks change slowly; an hour is conservative.
	DefaultCacheTTL = time.Hour

	// DefaultQuantizeMeters is the grid step used to quantize cache keys
	// so that nearby requests share an entry.
	DefaultQuantizeMeters = 100.0
)

// GraphCache stores walking networks keyed by region.
type GraphCache interface {
	Get(ctx context.Context, key string) (*Graph, bool)
	Set(ctx context.Context, key string, g *Graph)
}

// CacheKey quantizes a region to a stable cache key. Centers within the
// same quantization cell and radii rounded to the cell size share keys.
func CacheKey(center orb.Point, radiusMeters, quantizeMeters float64) string {
	if quantizeMeters <= 0 {
		quantizeMeters = DefaultQuantizeMeters
	}
	// Roughly convert the cell size to degrees at mid latitudes.
	cellDeg := quantizeMeters / 111000.0
	qLon := int64(center[0] / cellDeg)
	qLat := int64(center[1] / cellDeg)
	qRad := int64(radiusMeters/quantizeMeters + 0.5)
	return fmt.Sprintf("walkgraph:%d:%d:%d", qLon, qLat, qRad)
}

// MemoryCache is an in-process GraphCache with TTL eviction.
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

type memoryEntry struct {
	graph   *Graph
	expires time.Time
}

// NewMemoryCache creates a memory cache with the given TTL, or
// DefaultCacheTTL when non-positive.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{ttl: ttl, entries: make(map[string]memoryEntry)}
}

// Get returns the cached graph for key if present and unexpired.
func (c *MemoryCache) Get(_ context.Context, key string) (*Graph, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.graph, true
}

// Set stores a graph under key.
func (c *MemoryCache) Set(_ context.Context, key string, g *Graph) {
	c.mu.Lock()
	c.entries[key] = memoryEntry{graph: g, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Len returns the number of live entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// RedisCache is a GraphCache backed by Redis, for sharing fetched
// networks across service instances. Redis enforces the TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects a cache to the Redis instance at addr.
func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

// Get returns the cached graph for key if present. Redis errors are
// treated as misses so an unavailable cache never fails a request.
func (c *RedisCache) Get(ctx context.Context, key string) (*Graph, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[cache] redis get %s: %v", key, err)
		}
		return nil, false
	}
	g, err := unmarshalGraph(data)
	if err != nil {
		log.Printf("[cache] corrupt redis entry %s: %v", key, err)
		return nil, false
	}
	return g, true
}

// Set stores a graph under key with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key string, g *Graph) {
	data, err := marshalGraph(g)
	if err != nil {
		log.Printf("[cache] marshaling graph for %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("[cache] redis set %s: %v", key, err)
	}
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error { return c.client.Close() }

// CachingProvider decorates a Provider with a GraphCache. Concurrent
// requests for the same uncached region may both hit the upstream; the
// last write wins, which is harmless for identical payloads.
type CachingProvider struct {
	Upstream Provider
	Cache    GraphCache
	Quantize float64
}

// NewCachingProvider wraps upstream with cache.
func NewCachingProvider(upstream Provider, cache GraphCache, quantizeMeters float64) *CachingProvider {
	return &CachingProvider{Upstream: upstream, Cache: cache, Quantize: quantizeMeters}
}

// FetchWalkingGraph serves from cache when possible, otherwise fetches
// from the upstream provider and stores the result.
func (p *CachingProvider) FetchWalkingGraph(ctx context.Context, center orb.Point, radiusMeters float64) (*Graph, error) {
	key := CacheKey(center, radiusMeters, p.Quantize)
	if g, ok := p.Cache.Get(ctx, key); ok {
		log.Printf("[cache] hit %s", key)
		return g, nil
	}

	g, err := p.Upstream.FetchWalkingGraph(ctx, center, radiusMeters)
	if err != nil {
		return nil, err
	}
	p.Cache.Set(ctx, key, g)
	return g, nil
}

// graphDoc is the serialized form of a Graph for the Redis cache.
type graphDoc struct {
	Nodes []graphNodeDoc `json:"nodes"`
	Edges []graphEdgeDoc `json:"edges"`
}

type graphNodeDoc struct {
	ID  int64   `json:"id"`
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type graphEdgeDoc struct {
	From   int64   `json:"from"`
	To     int64   `json:"to"`
	Meters float64 `json:"meters"`
}

func marshalGraph(g *Graph) ([]byte, error) {
	doc := graphDoc{Nodes: make([]graphNodeDoc, 0, len(g.nodes))}
	for _, n := range g.nodes {
		doc.Nodes = append(doc.Nodes, graphNodeDoc{ID: n.ID, Lon: n.Location[0], Lat: n.Location[1]})
	}
	for from, edges := range g.adj {
		for _, e := range edges {
			// Each undirected edge appears in both adjacency lists; keep one copy.
			if from < e.to {
				doc.Edges = append(doc.Edges, graphEdgeDoc{From: from, To: e.to, Meters: e.meters})
			}
		}
	}
	return json.Marshal(doc)
}

func unmarshalGraph(data []byte) (*Graph, error) {
	var doc graphDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	g := NewGraph()
	for _, n := range doc.Nodes {
		g.AddNode(n.ID, orb.Point{n.Lon, n.Lat})
	}
	for _, e := range doc.Edges {
		g.AddEdge(e.From, e.To, e.Meters)
	}
	return g, nil
}
