// Package event is an in-process publish/subscribe bus.
//
//	event.Listen(event.CartChanged, hub.OnCartChanged)
//	event.Fire(event.CartChanged, event.CartChange{UserID: 1, Count: 3})
//
// Listeners run on the firing goroutine, in registration order, so they
// must not block.
package event

import "sync"

// CartChanged fires after any successful cart mutation.
const CartChanged = "cart.changed"

// CartChange is the CartChanged payload. Count is the distinct-item count
// shown on the cart badge.
type CartChange struct {
	UserID uint `json:"user_id"`
	Count  int  `json:"count"`
}

type Handler func(payload interface{})

var (
	mu       sync.RWMutex
	handlers = map[string][]Handler{}
)

func Listen(name string, h Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[name] = append(handlers[name], h)
}

func listeners(name string) []Handler {
	mu.RLock()
	defer mu.RUnlock()
	return append([]Handler(nil), handlers[name]...)
}

// Fire calls every listener in order on the caller's goroutine.
func Fire(name string, payload interface{}) {
	for _, h := range listeners(name) {
		h(payload)
	}
}

// Flush removes all listeners.
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	handlers = map[string][]Handler{}
}
