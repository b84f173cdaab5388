package queries

import (
	"context"
	"time"

	"dispatch/internal/pkg/errs"
)

// DefaultStoreTimeout bounds a query when no WithStoreTimeout option is given.
const DefaultStoreTimeout = 5 * time.Second

// Option customizes the collaborators shared by all query handlers.
type Option func(*runtime)

// WithStoreTimeout bounds each query, including its store round-trips, to d. A query that
// runs out of time fails with an Unavailable error. Non-positive values keep the default.
func WithStoreTimeout(d time.Duration) Option {
	return func(r *runtime) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// runtime carries the store deadline every query handler runs under.
type runtime struct {
	timeout time.Duration
}

func newRuntime(opts ...Option) runtime {
	r := runtime{timeout: DefaultStoreTimeout}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func (r runtime) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// settle reports a failure caused by the expired deadline as Unavailable, whatever layer
// noticed it first. Domain failures pass through untouched.
func (r runtime) settle(ctx context.Context, operation string, err error) error {
	if err == nil || ctx.Err() == nil || errs.KindOf(err) != errs.KindInternal {
		return err
	}
	return errs.NewUnavailableError(operation, err)
}
