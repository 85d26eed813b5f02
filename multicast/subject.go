// Package multicast provides the publish-subscribe primitives behind the
// vcr4j event streams.
//
// A Subject fans values out to any number of subscribers. Publication is
// serialized: a subscriber never observes two publications interleaved, and
// it observes values in exactly the order they were published. Callbacks
// run on the publisher's goroutine, so subscribers that need to block
// should hand the value off to their own goroutine.
package multicast

import (
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// Observable is the read side of a Subject. Engine APIs expose event
// streams as Observables so callers can subscribe but not publish.
type Observable[T any] interface {
	// Subscribe registers fn to be called for every subsequent published
	// value. It returns a cancel function that removes the subscription.
	// Values published before Subscribe are not replayed.
	Subscribe(fn func(T)) (cancel func())
}

// Subject is a multicast, replay-free event stream.
// The zero value is not usable; create one with NewSubject.
type Subject[T any] struct {
	mu     sync.Mutex // serializes Publish
	subs   *xsync.MapOf[uint64, func(T)]
	nextID atomic.Uint64
}

// NewSubject creates an empty Subject.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{
		subs: xsync.NewMapOf[uint64, func(T)](),
	}
}

// Subscribe registers fn and returns its cancel function.
// Subscribing and cancelling are safe during concurrent publication.
func (s *Subject[T]) Subscribe(fn func(T)) func() {
	id := s.nextID.Add(1)
	s.subs.Store(id, fn)

	return func() {
		s.subs.Delete(id)
	}
}

// Publish delivers v to every current subscriber, in registration-unspecified
// subscriber order but strictly serialized with other publications.
func (s *Subject[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs.Range(func(_ uint64, fn func(T)) bool {
		fn(v)

		return true
	})
}

// Size returns the current number of subscribers.
func (s *Subject[T]) Size() int {
	return s.subs.Size()
}

// Distinct is a Subject that suppresses consecutive duplicate values,
// comparing each published value against the last one delivered.
// The first published value is always delivered.
type Distinct[T comparable] struct {
	subject *Subject[T]

	mu      sync.Mutex
	last    T
	hasLast bool
}

// NewDistinct creates an empty Distinct subject.
func NewDistinct[T comparable]() *Distinct[T] {
	return &Distinct[T]{
		subject: NewSubject[T](),
	}
}

// Subscribe registers fn and returns its cancel function.
func (d *Distinct[T]) Subscribe(fn func(T)) func() {
	return d.subject.Subscribe(fn)
}

// Publish delivers v to subscribers unless it equals the previously
// published value.
func (d *Distinct[T]) Publish(v T) {
	d.mu.Lock()
	if d.hasLast && d.last == v {
		d.mu.Unlock()

		return
	}
	d.last = v
	d.hasLast = true
	d.mu.Unlock()

	d.subject.Publish(v)
}

// Size returns the current number of subscribers.
func (d *Distinct[T]) Size() int {
	return d.subject.Size()
}

// Compile-time checks: both subjects satisfy Observable.
var (
	_ Observable[int] = (*Subject[int])(nil)
	_ Observable[int] = (*Distinct[int])(nil)
)
