package tui

import (
	"context"
	"sync"
	"sync/atomic"

	"taskdesk/internal/tasklist"

	tea "github.com/charmbracelet/bubbletea"
)

// Bridge carries orchestrator callbacks into the running program. It is a
// confirm.Confirmer and an attachment.Alerter. Until a program is attached,
// confirmations are declined and alerts are dropped.
type Bridge struct {
	mu    sync.Mutex
	send  func(tea.Msg)
	done  <-chan struct{}
	dirty atomic.Bool
}

// NewBridge returns a detached Bridge.
func NewBridge() *Bridge { return &Bridge{} }

// attach routes messages to send until done is closed. Callers blocked on
// an alert are released when done closes.
func (b *Bridge) attach(send func(tea.Msg), done <-chan struct{}) {
	b.mu.Lock()
	b.send = send
	b.done = done
	b.mu.Unlock()
}

func (b *Bridge) post(msg tea.Msg) (<-chan struct{}, bool) {
	b.mu.Lock()
	send, done := b.send, b.done
	b.mu.Unlock()
	if send == nil {
		return nil, false
	}
	send(msg)
	return done, true
}

// Confirm shows prompt and blocks until the user answers or ctx ends.
func (b *Bridge) Confirm(ctx context.Context, prompt string) (bool, error) {
	reply := make(chan bool, 1)
	if _, ok := b.post(confirmMsg{prompt: prompt, reply: reply}); !ok {
		return false, nil
	}
	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Alert shows a failed attachment operation and blocks until the user
// dismisses it or the program exits.
func (b *Bridge) Alert(fileName string, err error) {
	ack := make(chan struct{})
	done, ok := b.post(alertMsg{name: fileName, err: err, ack: ack})
	if !ok {
		return
	}
	select {
	case <-ack:
	case <-done:
	}
}

// Changed tells the program that orchestrator state moved. It never blocks:
// notifications can fire from inside Update, where a blocking send would
// deadlock. Bursts collapse into one message.
func (b *Bridge) Changed(tasklist.Snapshot) {
	if !b.dirty.CompareAndSwap(false, true) {
		return
	}
	go func() {
		b.dirty.Store(false)
		b.post(changedMsg{})
	}()
}
