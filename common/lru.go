package common

// LruCache is a fixed capacity map evicting the least recently used entry
// when full. It is not safe for concurrent use.
type LruCache[K comparable, V any] struct {
	entries  map[K]*lruEntry[K, V]
	capacity int
	head     *lruEntry[K, V] // most recently used
	tail     *lruEntry[K, V]
}

type lruEntry[K comparable, V any] struct {
	key        K
	val        V
	prev, next *lruEntry[K, V]
}

// NewLruCache creates a cache holding at most capacity entries; a capacity
// below one is raised to one.
func NewLruCache[K comparable, V any](capacity int) *LruCache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &LruCache[K, V]{
		entries:  make(map[K]*lruEntry[K, V], capacity),
		capacity: capacity,
	}
}

// Get returns the value of the key and marks it as used.
func (c *LruCache[K, V]) Get(key K) (V, bool) {
	e, found := c.entries[key]
	if !found {
		var empty V
		return empty, false
	}
	c.moveToFront(e)
	return e.val, true
}

// Set adds or updates the key. If a new key exceeds the capacity, the least
// recently used entry is evicted and reported.
func (c *LruCache[K, V]) Set(key K, val V) (evictedKey K, evicted bool) {
	if e, found := c.entries[key]; found {
		e.val = val
		c.moveToFront(e)
		return evictedKey, false
	}

	var e *lruEntry[K, V]
	if len(c.entries) >= c.capacity {
		e = c.tail
		c.unlink(e)
		delete(c.entries, e.key)
		evictedKey, evicted = e.key, true
	} else {
		e = new(lruEntry[K, V])
	}
	e.key, e.val = key, val
	c.entries[key] = e
	c.pushFront(e)
	return evictedKey, evicted
}

func (c *LruCache[K, V]) moveToFront(e *lruEntry[K, V]) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.pushFront(e)
}

func (c *LruCache[K, V]) pushFront(e *lruEntry[K, V]) {
	e.prev, e.next = nil, c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *LruCache[K, V]) unlink(e *lruEntry[K, V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev, e.next = nil, nil
}
