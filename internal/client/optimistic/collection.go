package optimistic

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophsocial/internal/common"
)

// Collection is an ordered, keyed list of items safe for concurrent use.
type Collection[K comparable, T any] struct {
	key  func(T) K
	opts options

	mu    sync.Mutex
	items []T
	// gen is bumped by Reset; resolutions from an older generation are dropped.
	gen      uint64
	inflight map[K]struct{}
	subs     map[int]func()
	nextSub  int
}

func NewCollection[K comparable, T any](key func(T) K, items []T, opts ...Option) *Collection[K, T] {
	c := &Collection[K, T]{
		key:      key,
		opts:     buildOptions(opts),
		inflight: make(map[K]struct{}),
		subs:     make(map[int]func()),
	}
	c.items = append([]T(nil), items...)
	return c
}

// Items returns a copy of the current items.
func (c *Collection[K, T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...)
}

func (c *Collection[K, T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Collection[K, T]) Get(k K) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(k); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// InFlight reports whether k has a mutation pending.
func (c *Collection[K, T]) InFlight(k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[k]
	return ok
}

// Subscribe registers fn to be called after every change.
func (c *Collection[K, T]) Subscribe(fn func()) (cancel func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Reset replaces all items, as after a fresh fetch. Pending mutations keep
// running but their resolutions no longer apply.
func (c *Collection[K, T]) Reset(items []T) {
	c.mu.Lock()
	c.items = append([]T(nil), items...)
	c.gen++
	c.inflight = make(map[K]struct{})
	c.mu.Unlock()
	c.notify()
}

// Put replaces the item with the same key, reporting whether it existed.
func (c *Collection[K, T]) Put(item T) bool {
	c.mu.Lock()
	ok := c.put(c.gen, c.key(item), item)
	c.mu.Unlock()
	if ok {
		c.notify()
	}
	return ok
}

// Update applies next to the item at k, runs remote with the desired item
// and reconciles with the authoritative item remote returns, if any. A
// returned item keyed other than k is ignored and the desired item stays.
func (c *Collection[K, T]) Update(ctx context.Context, k K, next func(T) T, remote func(context.Context, T) (*T, error)) Result[T] {
	var before, desired T

	c.mu.Lock()
	if _, busy := c.inflight[k]; busy {
		c.mu.Unlock()
		return Result[T]{Err: common.Busy(c.opts.name)}
	}
	i := c.indexOf(k)
	if i < 0 {
		c.mu.Unlock()
		return Result[T]{Err: c.missing()}
	}
	gen := c.gen
	before = c.items[i]
	desired = next(before)
	c.inflight[k] = struct{}{}
	c.mu.Unlock()

	res := Execute(ctx, Mutation[T, *T]{
		Snapshot: func() T { return before },
		Apply:    func() { c.apply(gen, func() { c.put(gen, k, desired) }) },
		Remote: func(ctx context.Context) (*T, error) {
			v, err := remote(ctx, desired)
			if v != nil && c.key(*v) != k {
				c.opts.log.Debug(ctx, "ignoring reply for another item", "op", c.opts.name)
				v = nil
			}
			return v, err
		},
		Reconcile: func(v *T) {
			c.resolve(ctx, gen, k, func() {
				if v != nil {
					c.put(gen, k, *v)
				}
			})
		},
		Rollback: func(s T) {
			c.resolve(ctx, gen, k, func() { c.put(gen, k, s) })
		},
	})
	c.logRollback(ctx, "update", res.Err)

	out := Result[T]{Err: res.Err}
	switch {
	case res.Err != nil:
		out.Value = before
	case res.Value != nil:
		out.Value, out.Authoritative = *res.Value, true
	default:
		out.Value = desired
	}
	return out
}

// Remove deletes the item at k and runs remote. On failure the item is
// re-inserted at its original position, clamped to the current length,
// unless an item with that key has reappeared meanwhile.
func (c *Collection[K, T]) Remove(ctx context.Context, k K, remote func(context.Context) error) Result[T] {
	type snapshot struct {
		item  T
		index int
	}

	c.mu.Lock()
	if _, busy := c.inflight[k]; busy {
		c.mu.Unlock()
		return Result[T]{Err: common.Busy(c.opts.name)}
	}
	i := c.indexOf(k)
	if i < 0 {
		c.mu.Unlock()
		return Result[T]{Err: c.missing()}
	}
	gen := c.gen
	snap := snapshot{item: c.items[i], index: i}
	c.inflight[k] = struct{}{}
	c.mu.Unlock()

	res := Execute(ctx, Mutation[snapshot, struct{}]{
		Snapshot: func() snapshot { return snap },
		Apply: func() {
			c.apply(gen, func() {
				if j := c.indexOf(k); j >= 0 {
					c.items = append(c.items[:j], c.items[j+1:]...)
				}
			})
		},
		Remote: func(ctx context.Context) (struct{}, error) { return struct{}{}, remote(ctx) },
		Reconcile: func(struct{}) {
			c.resolve(ctx, gen, k, func() {})
		},
		Rollback: func(s snapshot) {
			c.resolve(ctx, gen, k, func() {
				if c.indexOf(k) >= 0 {
					return
				}
				at := min(s.index, len(c.items))
				c.items = append(c.items[:at], append([]T{s.item}, c.items[at:]...)...)
			})
		},
	})
	c.logRollback(ctx, "remove", res.Err)
	return Result[T]{Value: snap.item, Err: res.Err}
}

// Insert adds placeholder, keyed by a temporary key, at the front or the
// back and runs remote. On success the placeholder is replaced in place by
// the authoritative item; on failure it is removed.
func (c *Collection[K, T]) Insert(ctx context.Context, placeholder T, front bool, remote func(context.Context) (*T, error)) Result[T] {
	tmp := c.key(placeholder)

	c.mu.Lock()
	if _, busy := c.inflight[tmp]; busy {
		c.mu.Unlock()
		return Result[T]{Err: common.Busy(c.opts.name)}
	}
	gen := c.gen
	c.inflight[tmp] = struct{}{}
	c.mu.Unlock()

	res := Execute(ctx, Mutation[struct{}, *T]{
		Snapshot: func() struct{} { return struct{}{} },
		Apply: func() {
			c.apply(gen, func() {
				if front {
					c.items = append([]T{placeholder}, c.items...)
				} else {
					c.items = append(c.items, placeholder)
				}
			})
		},
		Remote: remote,
		Reconcile: func(v *T) {
			c.resolve(ctx, gen, tmp, func() {
				if v == nil {
					return
				}
				if i := c.indexOf(tmp); i >= 0 {
					c.items[i] = *v
				}
			})
		},
		Rollback: func(struct{}) {
			c.resolve(ctx, gen, tmp, func() {
				if i := c.indexOf(tmp); i >= 0 {
					c.items = append(c.items[:i], c.items[i+1:]...)
				}
			})
		},
	})
	c.logRollback(ctx, "insert", res.Err)

	out := Result[T]{Value: placeholder, Err: res.Err}
	if res.Err == nil && res.Value != nil {
		out.Value, out.Authoritative = *res.Value, true
	}
	return out
}

// apply runs fn under the lock when gen is current, then notifies.
func (c *Collection[K, T]) apply(gen uint64, fn func()) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	fn()
	c.mu.Unlock()
	c.notify()
}

// resolve releases k and runs fn when gen is current. Stale resolutions
// only log.
func (c *Collection[K, T]) resolve(ctx context.Context, gen uint64, k K, fn func()) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		c.opts.log.Debug(ctx, "dropping stale resolution", "op", c.opts.name)
		return
	}
	delete(c.inflight, k)
	fn()
	c.mu.Unlock()
	c.notify()
}

// put replaces the item at k. It must be called with mu held.
func (c *Collection[K, T]) put(gen uint64, k K, item T) bool {
	if c.gen != gen {
		return false
	}
	if i := c.indexOf(k); i >= 0 {
		c.items[i] = item
		return true
	}
	return false
}

func (c *Collection[K, T]) indexOf(k K) int {
	for i, it := range c.items {
		if c.key(it) == k {
			return i
		}
	}
	return -1
}

func (c *Collection[K, T]) logRollback(ctx context.Context, kind string, err error) {
	if err == nil {
		return
	}
	c.opts.log.Warn(ctx, "optimistic "+kind+" rolled back", "op", c.opts.name, "kind", common.KindOf(err).String())
}

func (c *Collection[K, T]) missing() error {
	return &common.Failure{Kind: common.KindNotFound, Op: c.opts.name, Message: "item is not loaded"}
}

func (c *Collection[K, T]) notify() {
	c.mu.Lock()
	subs := make([]func(), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}
