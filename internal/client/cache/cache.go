// Package cache is a small tag-keyed query cache. Each tag holds the last
// fetched value together with a generation counter; Invalidate bumps the
// generation and marks the tag dirty so that the next read goes to the
// source again. Last-known data stays readable while a tag is dirty.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrTypeMismatch is returned when a tag holds a value of another type.
var ErrTypeMismatch = errors.New("cached value has a different type")

type entry struct {
	data      any
	has       bool
	dataGen   uint64
	fetchedAt time.Time
	gen       uint64
	dirty     bool
}

// Cache holds one entry per tag. The zero value is not usable; call New.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
	now     func() time.Time

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(tag string)
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		now:     time.Now,
		subs:    make(map[int]func(string)),
	}
}

func (c *Cache) entryLocked(tag string) *entry {
	e, ok := c.entries[tag]
	if !ok {
		e = &entry{}
		c.entries[tag] = e
	}
	return e
}

// Fetch returns the cached value for tag when it is clean, otherwise calls
// fn. Concurrent callers for the same tag and generation share one call.
// The shared call does not inherit the cancellation of the caller that
// started it: a caller whose ctx ends gets ctx.Err() while the others keep
// waiting for the result.
func Fetch[T any](ctx context.Context, c *Cache, tag string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	c.mu.Lock()
	e := c.entryLocked(tag)
	if e.has && !e.dirty {
		data := e.data
		c.mu.Unlock()
		v, ok := data.(T)
		if !ok {
			return zero, fmt.Errorf("tag %q: %w", tag, ErrTypeMismatch)
		}
		return v, nil
	}
	gen := e.gen
	c.mu.Unlock()

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(tag+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		data, err := fn(shared)
		if err != nil {
			return nil, err
		}
		c.store(tag, gen, data)
		return data, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return zero, res.Err
	}
	v, ok := res.Val.(T)
	if !ok {
		return zero, fmt.Errorf("tag %q: %w", tag, ErrTypeMismatch)
	}
	return v, nil
}

// store records data fetched under generation gen. The dirty flag is only
// cleared when no invalidation happened since the fetch started.
func (c *Cache) store(tag string, gen uint64, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(tag)
	if e.has && gen < e.dataGen {
		return
	}
	e.data = data
	e.has = true
	e.dataGen = gen
	e.fetchedAt = c.now()
	if gen == e.gen {
		e.dirty = false
	}
}

// Peek returns the last-known value without I/O. stale is true when the tag
// was invalidated after that value was fetched.
func Peek[T any](c *Cache, tag string) (v T, ok bool, stale bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, found := c.entries[tag]
	if !found || !e.has {
		return v, false, false
	}
	v, ok = e.data.(T)
	if !ok {
		return v, false, false
	}
	return v, true, e.dirty
}

// Invalidate marks tag dirty. Any read that starts after Invalidate returns
// sees the dirty flag and re-fetches.
func (c *Cache) Invalidate(tag string) {
	c.mu.Lock()
	e := c.entryLocked(tag)
	e.gen++
	e.dirty = true
	c.mu.Unlock()

	c.subMu.Lock()
	fns := make([]func(string), 0, len(c.subs))
	for id := 0; id < c.nextID; id++ {
		if fn, ok := c.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(tag)
	}
}

// FetchedAt reports when the current value of tag was fetched.
func (c *Cache) FetchedAt(tag string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[tag]
	if !ok || !e.has {
		return time.Time{}, false
	}
	return e.fetchedAt, true
}

// Generation is the number of invalidations tag has seen.
func (c *Cache) Generation(tag string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[tag]; ok {
		return e.gen
	}
	return 0
}

// OnInvalidate registers fn to run after every Invalidate, in registration
// order. The returned func removes it.
func (c *Cache) OnInvalidate(fn func(tag string)) func() {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}
