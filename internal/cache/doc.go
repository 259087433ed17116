// Package cache provides the keyed cache behind glshade's stage and
// program caches.
//
// Cache[K, V] is a map with access ordering and an optional soft limit.
// When an insert pushes the cache past its soft limit, the least recently
// used quarter is evicted and handed to the eviction callback, which is
// where owners release whatever the value holds (GPU handles, indexes).
//
//	c := cache.New[string, *Stage](0, nil) // unlimited
//	c.Set("shape.vert", stage)
//	stage, ok := c.Get("shape.vert")
//
// Explicit removal (Delete, Clear) never runs the callback; the
// removed values are returned so the caller decides how to release them.
//
// # Thread Safety
//
// Cache is not safe for concurrent use. glshade drives it from the single
// rendering goroutine that owns the GPU context.
package cache
