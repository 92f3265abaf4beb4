package kvstore

import (
	"fmt"
	"sync"
)

type observer[T ~string] struct {
	id int
	fn func(T)
}

// Observed is one persisted key held in memory. It is loaded once at
// construction, replaced only through Set, and every Set notifies the
// subscribers before returning.
type Observed[T ~string] struct {
	// setMu serializes Set so observers see values in write order.
	setMu     sync.Mutex
	mu        sync.RWMutex
	store     Store
	key       string
	fallback  T
	value     T
	observers []observer[T]
	nextId    int
}

// NewObserved loads key from store. When nothing is stored the value is
// fallback.
func NewObserved[T ~string](store Store, key string, fallback T) (*Observed[T], error) {
	raw, found, err := store.Get(key)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", key, err)
	}

	value := fallback
	if found {
		value = T(raw)
	}

	return &Observed[T]{
		store:    store,
		key:      key,
		fallback: fallback,
		value:    value,
	}, nil
}

func (o *Observed[T]) Get() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.value
}

// Set replaces the in-memory value, then writes it through. The empty value
// removes the stored entry and resets to the fallback. The in-memory value
// is replaced even when the write fails; the write error is returned.
// Concurrent calls are applied one at a time, each notifying every observer
// before the next starts, so an observer must not call Set itself.
func (o *Observed[T]) Set(v T) error {
	o.setMu.Lock()
	defer o.setMu.Unlock()

	o.mu.Lock()
	var err error
	if v == "" {
		o.value = o.fallback
		err = o.store.Delete(o.key)
	} else {
		o.value = v
		err = o.store.Put(o.key, string(v))
	}
	current := o.value
	subs := make([]observer[T], len(o.observers))
	copy(subs, o.observers)
	o.mu.Unlock()

	for _, s := range subs {
		s.fn(current)
	}

	if err != nil {
		return fmt.Errorf("persist %q: %w", o.key, err)
	}
	return nil
}

// Subscribe registers fn for every later Set. The returned func removes it.
func (o *Observed[T]) Subscribe(fn func(T)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.nextId++
	id := o.nextId
	o.observers = append(o.observers, observer[T]{id: id, fn: fn})

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		for i, s := range o.observers {
			if s.id == id {
				o.observers = append(o.observers[:i], o.observers[i+1:]...)
				return
			}
		}
	}
}
