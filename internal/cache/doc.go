// Package cache provides the generic content-addressed map behind the
// atlas cache.
//
// Entries are never evicted individually. The owner discards the whole
// map with Clear when the storage the values point into is reset.
//
//	c := cache.New[string, int]()
//	v, _ := c.GetOrCreate("key", func() (int, bool) { return 42, true })
//
// # Thread Safety
//
// Cache is not safe for concurrent use; it is owned by one renderer.
package cache
