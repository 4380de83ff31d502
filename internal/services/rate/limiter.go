package rate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidUser = errors.New("invalid user id")

// TooFastError is returned when a burst window overflows.
type TooFastError struct {
	RetryAfterSec int64
}

func (e TooFastError) Error() string {
	return fmt.Sprintf("too fast, retry in %ds", e.RetryAfter())
}

func (e TooFastError) RetryAfter() int64 {
	if e.RetryAfterSec <= 0 {
		return 1
	}
	return e.RetryAfterSec
}

func IsTooFast(err error) (*TooFastError, bool) {
	var tf TooFastError
	if errors.As(err, &tf) {
		return &tf, true
	}
	return nil, false
}

// WindowStore counts hits in fixed expiring windows.
type WindowStore interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Peek(ctx context.Context, key string) (int64, time.Duration, error)
}

type window struct {
	name   string
	length time.Duration
	limit  int64
}

// Limiter applies per-minute and per-10s windows to one discovery action
// (swipe or pointer). A zero limit disables that window.
type Limiter struct {
	store   WindowStore
	action  string
	windows []window
}

func NewLimiter(store WindowStore, action string, perMinute, per10Sec int) *Limiter {
	if strings.TrimSpace(action) == "" {
		action = "swipe"
	}

	var windows []window
	if perMinute > 0 {
		windows = append(windows, window{name: "min", length: time.Minute, limit: int64(perMinute)})
	}
	if per10Sec > 0 {
		windows = append(windows, window{name: "10s", length: 10 * time.Second, limit: int64(per10Sec)})
	}

	return &Limiter{store: store, action: action, windows: windows}
}

// Allow charges one action against every window.
func (l *Limiter) Allow(ctx context.Context, userID string) error {
	if err := l.check(userID); err != nil {
		return err
	}

	var wait time.Duration
	for _, w := range l.windows {
		count, ttl, err := l.store.Hit(ctx, l.key(w, userID), w.length)
		if err != nil {
			return err
		}
		if count > w.limit && ttl > wait {
			wait = ttl
		}
	}
	if wait > 0 {
		return TooFastError{RetryAfterSec: ceilSeconds(wait)}
	}
	return nil
}

// RetryAfter reports the remaining wait in seconds without charging.
func (l *Limiter) RetryAfter(ctx context.Context, userID string) (int64, error) {
	if err := l.check(userID); err != nil {
		return 0, err
	}

	var wait time.Duration
	for _, w := range l.windows {
		count, ttl, err := l.store.Peek(ctx, l.key(w, userID))
		if err != nil {
			return 0, err
		}
		if count >= w.limit && ttl > wait {
			wait = ttl
		}
	}
	return ceilSeconds(wait), nil
}

func (l *Limiter) check(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidUser
	}
	if l.store == nil {
		return fmt.Errorf("rate limiter store is nil")
	}
	return nil
}

func (l *Limiter) key(w window, userID string) string {
	return "roam:rate:" + l.action + ":" + w.name + ":" + userID
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	return sec
}
