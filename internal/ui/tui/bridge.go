package tui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lumipallolabs/diskprune/internal/clearing"
	"github.com/lumipallolabs/diskprune/internal/core"
	"github.com/lumipallolabs/diskprune/internal/model"
)

// Message types for a running clear
type (
	clearViewMsg struct {
		session *clearSession
		view    clearing.View
	}
	clearDoneMsg struct {
		session  *clearSession
		event    core.ClearCompletedEvent
		root     model.NodeID
		returned model.NodeID
		err      error
	}
)

// clearSession connects one clear operation, running on its own
// goroutine, to the Bubble Tea loop. Keys flow in through events and
// dialog snapshots flow out through views.
type clearSession struct {
	events   chan clearing.Event
	wake     chan struct{}
	resized  atomic.Bool
	stopped  atomic.Bool
	views    chan clearing.View
	returned model.NodeID
}

func newClearSession() *clearSession {
	return &clearSession{
		events:   make(chan clearing.Event, 64),
		wake:     make(chan struct{}, 1),
		views:    make(chan clearing.View, 1),
		returned: model.None,
	}
}

// Send queues an input for the engine without blocking. Resizes are
// coalesced and an interrupt is sticky. Keys beyond the buffer are
// dropped, except quit which turns into an interrupt.
func (s *clearSession) Send(ev clearing.Event) {
	switch {
	case ev.Interrupt:
		s.stopped.Store(true)
	case ev.Key != clearing.KeyNone:
		select {
		case s.events <- ev:
			return
		default:
		}
		if ev.Key != clearing.KeyQuit {
			return
		}
		s.stopped.Store(true)
	case ev.Resize:
		s.resized.Store(true)
	default:
		return
	}
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Poll implements clearing.EventSource
func (s *clearSession) Poll(blocking bool) clearing.Event {
	for {
		if s.stopped.Load() {
			return clearing.Event{Interrupt: true}
		}
		select {
		case ev := <-s.events:
			return ev
		default:
		}
		if s.resized.Swap(false) {
			return clearing.Event{Resize: true}
		}
		if !blocking {
			return clearing.Event{}
		}
		select {
		case ev := <-s.events:
			return ev
		case <-s.wake:
		}
	}
}

// Draw implements clearing.Hooks. Only the latest snapshot is kept, so
// the engine never waits for the screen.
func (s *clearSession) Draw(v clearing.View) {
	select {
	case <-s.views:
	default:
	}
	s.views <- v
}

// Return implements clearing.Hooks
func (s *clearSession) Return(node model.NodeID) {
	s.returned = node
}

// listen waits for the next dialog snapshot
func (s *clearSession) listen() tea.Cmd {
	views := s.views
	return func() tea.Msg {
		v, ok := <-views
		if !ok {
			return nil // Clear finished
		}
		return clearViewMsg{session: s, view: v}
	}
}

// run clears node and reports back once the engine returns
func (s *clearSession) run(ctrl *core.Controller, node model.NodeID) tea.Cmd {
	return func() tea.Msg {
		ev, err := ctrl.Clear(node, clearing.NewOSFS(), s, s)
		close(s.views)
		return clearDoneMsg{
			session:  s,
			event:    ev,
			root:     node,
			returned: s.returned,
			err:      err,
		}
	}
}

var (
	_ clearing.EventSource = (*clearSession)(nil)
	_ clearing.Hooks       = (*clearSession)(nil)
)
