package store

import (
	"context"

	"github.com/cenkalti/backoff/v4"
)

// RetryingBackend wraps another Backend and retries each operation with
// an exponential backoff on failure. The in-memory backend this package
// ships never fails transiently, so RetryingBackend exists for the
// Backend implementations callers plug in themselves — a networked or
// disk-backed store, where a Save can fail on a transient I/O error that
// a second attempt clears.
type RetryingBackend struct {
	inner Backend
	newBO func() backoff.BackOff
}

// NewRetryingBackend wraps inner, retrying failed operations according to
// policy. If policy is nil, a default exponential backoff capped at
// backoff.DefaultMaxElapsedTime is used.
func NewRetryingBackend(inner Backend, policy func() backoff.BackOff) *RetryingBackend {
	if policy == nil {
		policy = func() backoff.BackOff { return backoff.NewExponentialBackOff() }
	}
	return &RetryingBackend{inner: inner, newBO: policy}
}

func (b *RetryingBackend) Load(ctx context.Context, key string) (value []byte, ok bool, err error) {
	op := func() error {
		value, ok, err = b.inner.Load(ctx, key)
		return err
	}
	retryErr := backoff.Retry(op, backoff.WithContext(b.newBO(), ctx))
	return value, ok, retryErr
}

func (b *RetryingBackend) Save(ctx context.Context, key string, value []byte) error {
	op := func() error { return b.inner.Save(ctx, key, value) }
	return backoff.Retry(op, backoff.WithContext(b.newBO(), ctx))
}

func (b *RetryingBackend) Delete(ctx context.Context, key string) error {
	op := func() error { return b.inner.Delete(ctx, key) }
	return backoff.Retry(op, backoff.WithContext(b.newBO(), ctx))
}
