// Package lock provides keyed mutual exclusion used to serialize writers per
// photographer-date and per booking.
package lock

import (
	"context"
	"fmt"
	"sync"

	"photosession/internal/pkg/apperror"
)

var ErrBusy = apperror.New(apperror.KindConflict, "RESOURCE_BUSY", "resource is being modified by another request, retry with fresh data")

// Locker hands out exclusive ownership of a key until release is called.
// Calling release more than once is a no-op.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

func SlotKey(photographerID int64, date string) string {
	return fmt.Sprintf("slot_lock:%d:%s", photographerID, date)
}

func BookingKey(bookingID int64) string {
	return fmt.Sprintf("booking_lock:%d", bookingID)
}

// Local is an in-process Locker. It only serializes goroutines of a single
// instance; use Redis when running more than one replica.
type Local struct {
	mu    sync.Mutex
	slots map[string]*localSlot
}

type localSlot struct {
	ch   chan struct{}
	refs int
}

func NewLocal() *Local {
	return &Local{slots: make(map[string]*localSlot)}
}

func (l *Local) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &localSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(key, s)
		return nil, fmt.Errorf("%w: %v", ErrBusy, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.unref(key, s)
		})
	}, nil
}

func (l *Local) unref(key string, s *localSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}
