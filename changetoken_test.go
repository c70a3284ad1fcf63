package specscribe

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestCallbackChangeToken(t *testing.T) {
	t.Run("signals registered callbacks once", func(t *testing.T) {
		token := NewCallbackChangeToken()
		var calls atomic.Int32
		token.RegisterChangeCallback(func() { calls.Add(1) })

		if token.HasChanged() {
			t.Fatal("new token must not report a change")
		}

		token.SignalChange()
		token.SignalChange()

		if !token.HasChanged() {
			t.Error("expected HasChanged after signal")
		}
		if got := calls.Load(); got != 1 {
			t.Errorf("callback called %d times, want 1", got)
		}
	})

	t.Run("late registration fires immediately", func(t *testing.T) {
		token := NewCallbackChangeToken()
		token.SignalChange()

		called := false
		token.RegisterChangeCallback(func() { called = true })
		if !called {
			t.Error("expected callback registered after change to fire")
		}
	})

	t.Run("unregistered callback is skipped", func(t *testing.T) {
		token := NewCallbackChangeToken()
		called := false
		unregister := token.RegisterChangeCallback(func() { called = true })
		unregister()

		token.SignalChange()
		if called {
			t.Error("unregistered callback must not fire")
		}
	})
}

func TestOnChange(t *testing.T) {
	t.Run("runs action for each produced token", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		tokens := make(chan *CallbackChangeToken, 10)
		actions := make(chan struct{}, 10)

		stop := OnChange(ctx, func() (ChangeToken, error) {
			tok := NewCallbackChangeToken()
			tokens <- tok
			return tok, nil
		}, func() { actions <- struct{}{} })
		defer stop()

		for i := 0; i < 3; i++ {
			select {
			case tok := <-tokens:
				tok.SignalChange()
			case <-time.After(time.Second):
				t.Fatalf("no token produced for change %d", i+1)
			}
			select {
			case <-actions:
			case <-time.After(time.Second):
				t.Fatalf("action not run for change %d", i+1)
			}
		}
	})

	t.Run("stops on producer error", func(t *testing.T) {
		var produced atomic.Int32
		stop := OnChange(context.Background(), func() (ChangeToken, error) {
			produced.Add(1)
			return nil, errors.New("watch failed")
		}, func() {
			t.Error("action must not run")
		})
		defer stop()

		time.Sleep(20 * time.Millisecond)
		if got := produced.Load(); got != 1 {
			t.Errorf("producer called %d times, want 1", got)
		}
	})

	t.Run("cancel stops watching", func(t *testing.T) {
		token := NewCallbackChangeToken()
		var actions atomic.Int32

		stop := OnChange(context.Background(), func() (ChangeToken, error) {
			return token, nil
		}, func() { actions.Add(1) })

		stop()
		time.Sleep(20 * time.Millisecond)
		token.SignalChange()
		time.Sleep(20 * time.Millisecond)

		if actions.Load() != 0 {
			t.Error("action ran after cancel")
		}
	})
}
