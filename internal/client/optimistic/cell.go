package optimistic

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophsocial/internal/common"
)

// Cell holds a single keyed value, such as the user a profile shows, with
// the same mutation contract as Collection.
type Cell[K comparable, T any] struct {
	key  func(T) K
	opts options

	mu       sync.Mutex
	val      T
	ok       bool
	gen      uint64
	inflight bool
}

func NewCell[K comparable, T any](key func(T) K, opts ...Option) *Cell[K, T] {
	return &Cell[K, T]{key: key, opts: buildOptions(opts)}
}

func (c *Cell[K, T]) Get() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.val, c.ok
}

// Set stores v as a freshly loaded value; pending resolutions are dropped.
func (c *Cell[K, T]) Set(v T) {
	c.mu.Lock()
	c.val, c.ok = v, true
	c.gen++
	c.inflight = false
	c.mu.Unlock()
}

func (c *Cell[K, T]) Clear() {
	c.mu.Lock()
	var zero T
	c.val, c.ok = zero, false
	c.gen++
	c.inflight = false
	c.mu.Unlock()
}

func (c *Cell[K, T]) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight
}

// Update applies next to the held value and runs remote. Resolutions are
// dropped when the cell has been Set or Cleared since.
func (c *Cell[K, T]) Update(ctx context.Context, next func(T) T, remote func(context.Context, T) (*T, error)) Result[T] {
	c.mu.Lock()
	if c.inflight {
		c.mu.Unlock()
		return Result[T]{Err: common.Busy(c.opts.name)}
	}
	if !c.ok {
		c.mu.Unlock()
		return Result[T]{Err: &common.Failure{Kind: common.KindNotFound, Op: c.opts.name, Message: "nothing is loaded"}}
	}
	gen, k := c.gen, c.key(c.val)
	before := c.val
	desired := next(before)
	c.inflight = true
	c.mu.Unlock()

	res := Execute(ctx, Mutation[T, *T]{
		Snapshot: func() T { return before },
		Apply:    func() { c.resolve(gen, k, false, func() { c.val = desired }) },
		Remote: func(ctx context.Context) (*T, error) {
			v, err := remote(ctx, desired)
			if v != nil && c.key(*v) != k {
				c.opts.log.Debug(ctx, "ignoring reply for another value", "op", c.opts.name)
				v = nil
			}
			return v, err
		},
		Reconcile: func(v *T) {
			c.resolve(gen, k, true, func() {
				if v != nil {
					c.val = *v
				}
			})
		},
		Rollback: func(s T) {
			c.resolve(gen, k, true, func() { c.val = s })
		},
	})
	if res.Err != nil {
		c.opts.log.Warn(ctx, "optimistic update rolled back", "op", c.opts.name, "kind", common.KindOf(res.Err).String())
	}

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

// resolve runs fn when the cell still holds key k from generation gen.
func (c *Cell[K, T]) resolve(gen uint64, k K, release bool, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen || !c.ok || c.key(c.val) != k {
		return
	}
	if release {
		c.inflight = false
	}
	fn()
}
