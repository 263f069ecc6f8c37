// Package observable holds a value whose changes are pushed to subscribers.
//
// Each subscriber channel has room for one pending value. A slow subscriber
// never blocks Set: its pending value is replaced by the newest one, so
// readers observe the latest state rather than every intermediate one.
package observable

import "sync"

type Value[T any] struct {
	mu          sync.RWMutex
	current     T
	subscribers map[chan T]struct{}
	closed      bool
}

func New[T any](initial T) *Value[T] {
	return &Value[T]{
		current:     initial,
		subscribers: map[chan T]struct{}{},
	}
}

func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.current
}

func (v *Value[T]) Set(value T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.current = value
	for ch := range v.subscribers {
		push(ch, value)
	}
}

// Subscribe returns a channel that first yields the current value. The
// returned function unsubscribes and closes the channel.
func (v *Value[T]) Subscribe() (<-chan T, func()) {
	ch := make(chan T, 1)

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		ch <- v.current
		close(ch)

		return ch, func() {}
	}

	ch <- v.current
	v.subscribers[ch] = struct{}{}

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()

			if _, ok := v.subscribers[ch]; ok {
				delete(v.subscribers, ch)
				close(ch)
			}
		})
	}
}

// Close closes every subscriber channel; later Set calls only update the value.
func (v *Value[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.closed = true
	for ch := range v.subscribers {
		delete(v.subscribers, ch)
		close(ch)
	}
}

func push[T any](ch chan T, value T) {
	for {
		select {
		case ch <- value:
			return
		default:
		}

		select {
		case <-ch:
		default:
		}
	}
}
