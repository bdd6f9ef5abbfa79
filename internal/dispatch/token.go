package dispatch

import (
	"strconv"
	"sync/atomic"
	"time"
)

// TokenSource hands out timestamp derived tokens (unix milliseconds, like the
// real vendors' request ids) that are strictly increasing, so two calls never
// share a token even within the same millisecond.
type TokenSource struct {
	last atomic.Int64
	now  func() time.Time
}

// NewTokenSource returns a source reading the given clock; nil means time.Now.
func NewTokenSource(now func() time.Time) *TokenSource {
	if now == nil {
		now = time.Now
	}
	return &TokenSource{now: now}
}

// Next returns the next token.
func (ts *TokenSource) Next() string {
	for {
		last := ts.last.Load()
		next := ts.now().UnixMilli()
		if next <= last {
			next = last + 1
		}
		if ts.last.CompareAndSwap(last, next) {
			return strconv.FormatInt(next, 10)
		}
	}
}
