package specscribe

import (
	"context"
	"sync"
	"sync/atomic"
)

// CallbackChangeToken is a ChangeToken that supports active callbacks.
// Used by drivers that have native change events (local, memory).
type CallbackChangeToken struct {
	mu        sync.RWMutex
	changed   atomic.Bool
	callbacks []func()
}

// NewCallbackChangeToken creates a new ChangeToken that supports active callbacks.
func NewCallbackChangeToken() *CallbackChangeToken {
	return &CallbackChangeToken{}
}

func (t *CallbackChangeToken) HasChanged() bool {
	return t.changed.Load()
}

func (t *CallbackChangeToken) RegisterChangeCallback(callback func()) (unregister func()) {
	t.mu.Lock()
	t.callbacks = append(t.callbacks, callback)
	index := len(t.callbacks) - 1
	t.mu.Unlock()

	// A callback registered after the change still fires once.
	if t.changed.Load() {
		callback()
	}

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if index < len(t.callbacks) {
			t.callbacks[index] = nil
		}
	}
}

// SignalChange marks the token as changed and invokes all callbacks.
// Drivers call it when a matching change is detected.
func (t *CallbackChangeToken) SignalChange() {
	if t.changed.Swap(true) {
		return
	}

	t.mu.RLock()
	callbacks := make([]func(), len(t.callbacks))
	copy(callbacks, t.callbacks)
	t.mu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb()
		}
	}
}

// OnChange continuously watches for changes, producing a fresh token each
// time the previous one fires, until ctx is done or the returned cancel
// function is called.
//
//	cancel := specscribe.OnChange(ctx,
//	    func() (specscribe.ChangeToken, error) {
//	        return fs.(specscribe.CanWatch).Watch(ctx, "cv/**")
//	    },
//	    func() {
//	        slog.Info("cv staged")
//	    },
//	)
//	defer cancel()
func OnChange(ctx context.Context, tokenProducer func() (ChangeToken, error), changeAction func()) (cancel func()) {
	ctx, cancelFunc := context.WithCancel(ctx)

	go func() {
		token, err := tokenProducer()
		if err != nil {
			return
		}

		for {
			done := make(chan struct{})
			var once sync.Once
			unregister := token.RegisterChangeCallback(func() {
				once.Do(func() { close(done) })
			})

			select {
			case <-ctx.Done():
				unregister()
				return
			case <-done:
				unregister()
			}

			// Subscribe again before running the action so changes made
			// by or during the action are not missed.
			next, err := tokenProducer()
			changeAction()
			if err != nil {
				return
			}
			token = next
		}
	}()

	return cancelFunc
}
