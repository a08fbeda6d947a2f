package events

import (
	"sync"

	"github.com/sisu-network/lib/log"
)

// Handler wraps a listener callback. Listeners are identified by their *Handler, so registering the
// same handler twice for one event has no effect.
type Handler struct {
	fn func(event string, payload interface{})
}

func NewHandler(fn func(event string, payload interface{})) *Handler {
	return &Handler{fn: fn}
}

// Emitter is a named-event publish/subscribe registry. Emit calls listeners synchronously, in
// registration order.
type Emitter struct {
	lock      *sync.RWMutex
	listeners map[string][]*Handler
}

func NewEmitter() *Emitter {
	return &Emitter{
		lock:      &sync.RWMutex{},
		listeners: make(map[string][]*Handler),
	}
}

func (e *Emitter) On(event string, h *Handler) {
	if h == nil {
		return
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	for _, existing := range e.listeners[event] {
		if existing == h {
			return
		}
	}

	e.listeners[event] = append(e.listeners[event], h)
}

// OnFunc registers fn and returns its handler so that it can be removed with Off later.
func (e *Emitter) OnFunc(event string, fn func(event string, payload interface{})) *Handler {
	h := NewHandler(fn)
	e.On(event, h)
	return h
}

func (e *Emitter) Off(event string, h *Handler) {
	e.lock.Lock()
	defer e.lock.Unlock()

	handlers := e.listeners[event]
	for i, existing := range handlers {
		if existing == h {
			// Copy so that a concurrent Emit iterating over the old slice is unaffected.
			updated := make([]*Handler, 0, len(handlers)-1)
			updated = append(updated, handlers[:i]...)
			updated = append(updated, handlers[i+1:]...)
			e.listeners[event] = updated
			return
		}
	}
}

func (e *Emitter) RemoveAllListeners(event string) {
	e.lock.Lock()
	defer e.lock.Unlock()

	delete(e.listeners, event)
}

func (e *Emitter) ListenerCount(event string) int {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return len(e.listeners[event])
}

// Emit invokes every listener of event with payload. A panicking listener is logged and does not
// prevent the remaining listeners from running.
func (e *Emitter) Emit(event string, payload interface{}) {
	e.lock.RLock()
	handlers := e.listeners[event]
	e.lock.RUnlock()

	for _, h := range handlers {
		e.invoke(h, event, payload)
	}
}

func (e *Emitter) invoke(h *Handler, event string, payload interface{}) {
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("Listener for event %s panicked: %v", event, r)
		}
	}()

	h.fn(event, payload)
}
