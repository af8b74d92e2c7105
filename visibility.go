package vsync

import (
	"sync"
)

type (
	// Visibility is the oracle for whether the host surface is visible.
	//
	// OnVisibilityChanged registers a handler called on every transition,
	// returning a function that removes it.
	Visibility interface {
		IsVisible() bool
		OnVisibilityChanged(handler func()) (remove func())
	}

	// VisibilityState is a settable Visibility, for hosts that push their
	// visibility (e.g. lifecycle events) rather than exposing an oracle.
	//
	// Instances must be initialized using the NewVisibilityState factory.
	VisibilityState struct {
		handlers []visibilityHandler
		nextID   uint64
		mu       sync.RWMutex
		visible  bool
	}

	visibilityHandler struct {
		fn func()
		id uint64
	}
)

var _ Visibility = (*VisibilityState)(nil)

// NewVisibilityState returns a VisibilityState with the given initial value.
func NewVisibilityState(visible bool) *VisibilityState {
	return &VisibilityState{visible: visible}
}

// IsVisible returns the current value.
func (x *VisibilityState) IsVisible() bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.visible
}

// OnVisibilityChanged registers handler, to be called after every change.
func (x *VisibilityState) OnVisibilityChanged(handler func()) (remove func()) {
	if handler == nil {
		panic(`vsync: nil visibility handler`)
	}

	x.mu.Lock()
	id := x.nextID
	x.nextID++
	x.handlers = append(x.handlers, visibilityHandler{fn: handler, id: id})
	x.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			x.mu.Lock()
			for i, h := range x.handlers {
				if h.id == id {
					x.handlers = append(x.handlers[:i:i], x.handlers[i+1:]...)
					break
				}
			}
			x.mu.Unlock()
		})
	}
}

// Set updates the value, notifying handlers if it changed. Handlers are
// called synchronously, in registration order, without any lock held.
func (x *VisibilityState) Set(visible bool) {
	x.mu.Lock()
	if x.visible == visible {
		x.mu.Unlock()
		return
	}
	x.visible = visible
	handlers := x.handlers
	x.mu.Unlock()

	for _, h := range handlers {
		h.fn()
	}
}

// Handlers returns the number of registered handlers.
func (x *VisibilityState) Handlers() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.handlers)
}
