package body

// EnteredFunc receives a record the first time its identity is tracked.
type EnteredFunc func(r *Record)

// IdentityFunc receives the identity of a body that left or was evicted.
type IdentityFunc func(id uint64)

// subscribers is an ordered list of callbacks. Removal copies the list so a
// delivery loop already ranging over the old slice is unaffected.
type subscribers[F any] struct {
	next  int
	items []subscriber[F]
}

type subscriber[F any] struct {
	key int
	fn  F
}

func (s *subscribers[F]) add(fn F) func() {
	s.next++
	key := s.next
	s.items = append(s.items, subscriber[F]{key: key, fn: fn})
	return func() { s.remove(key) }
}

func (s *subscribers[F]) remove(key int) {
	for i, it := range s.items {
		if it.key == key {
			items := make([]subscriber[F], 0, len(s.items)-1)
			items = append(items, s.items[:i]...)
			s.items = append(items, s.items[i+1:]...)
			return
		}
	}
}

// eventBus delivers lifecycle transitions synchronously in subscription order.
// A panicking subscriber is recovered and does not stop delivery to the rest.
type eventBus struct {
	entered subscribers[EnteredFunc]
	left    subscribers[IdentityFunc]
	evicted subscribers[IdentityFunc]

	panics int64
}

func (b *eventBus) emitEntered(r *Record) {
	for _, s := range b.entered.items {
		b.call("entered", r.id, func() { s.fn(r) })
	}
}

func (b *eventBus) emitLeft(id uint64) {
	for _, s := range b.left.items {
		b.call("left", id, func() { s.fn(id) })
	}
}

func (b *eventBus) emitEvicted(id uint64) {
	for _, s := range b.evicted.items {
		b.call("evicted", id, func() { s.fn(id) })
	}
}

func (b *eventBus) call(kind string, id uint64, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			b.panics++
			opsf("[Tracker] %s subscriber panicked for body %d: %v", kind, id, rec)
		}
	}()
	fn()
}
