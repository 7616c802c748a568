package optimistic

import (
	"context"

	"github.com/dmitrijs2005/gophsocial/internal/common"
)

// Mutation parameterises Execute. S is the snapshot type, R the remote
// result.
type Mutation[S, R any] struct {
	Snapshot  func() S
	Apply     func()
	Remote    func(ctx context.Context) (R, error)
	Reconcile func(R)
	Rollback  func(S)
}

// Result is the outcome of a mutation.
type Result[T any] struct {
	// Value is the state left in place: the authoritative value, the
	// optimistic guess, or the restored snapshot.
	Value T
	// Authoritative is true when the server returned the value.
	Authoritative bool
	Err           error
}

func (r Result[T]) OK() bool { return r.Err == nil }

func (r Result[T]) Kind() common.Kind { return common.KindOf(r.Err) }

// Execute runs m. It never retries.
func Execute[S, R any](ctx context.Context, m Mutation[S, R]) Result[R] {
	snap := m.Snapshot()
	m.Apply()

	v, err := m.Remote(ctx)
	if err != nil {
		m.Rollback(snap)
		return Result[R]{Err: err}
	}
	m.Reconcile(v)
	return Result[R]{Value: v}
}
