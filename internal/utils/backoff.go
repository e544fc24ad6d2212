package utils

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// Backoff retries a function with exponential backoff plus jitter.
type Backoff struct {
	Base       time.Duration
	MaxRetries int
}

type permanentError struct{ err error }

func (p permanentError) Error() string { return p.err.Error() }
func (p permanentError) Unwrap() error { return p.err }

// Permanent marks an error as not retryable (e.g. a 4xx response).
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

// Do runs fn until it succeeds, returns a permanent error, the retry budget
// is exhausted or the context is done.
func (b Backoff) Do(ctx context.Context, fn func(attempt int) error) error {
	base := b.Base
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	var err error
	for i := 0; i <= b.MaxRetries; i++ {
		err = fn(i)
		if err == nil || IsPermanent(err) {
			return err
		}
		if i == b.MaxRetries {
			break
		}
		sleep := time.Duration(1<<i)*base + time.Duration(rand.Int63n(int64(base)))
		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return err
		}
	}
	return err
}
