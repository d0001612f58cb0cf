package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lumipallolabs/diskprune/internal/clearing"
)

func TestClearSessionPoll(t *testing.T) {
	s := newClearSession()

	assert.Equal(t, clearing.Event{}, s.Poll(false), "nothing pending")

	s.Send(clearing.Event{Key: clearing.KeyQuit})
	assert.Equal(t, clearing.Event{Key: clearing.KeyQuit}, s.Poll(false))

	s.Send(clearing.Event{Key: clearing.KeyAccept})
	assert.Equal(t, clearing.Event{Key: clearing.KeyAccept}, s.Poll(true))
}

func TestClearSessionDropsKeyOverflow(t *testing.T) {
	s := newClearSession()
	for i := 0; i < cap(s.events)+10; i++ {
		s.Send(clearing.Event{Key: clearing.KeyLeft})
	}
	assert.Len(t, s.events, cap(s.events))
}

func TestClearSessionKeepsLatestView(t *testing.T) {
	s := newClearSession()
	s.Draw(clearing.View{State: clearing.StateConfirm})
	s.Draw(clearing.View{State: clearing.StateProgress, Path: "/x"})

	msg := s.listen()()
	view, ok := msg.(clearViewMsg)
	assert.True(t, ok)
	assert.Equal(t, "/x", view.view.Path)
	assert.Same(t, s, view.session)

	close(s.views)
	assert.Nil(t, s.listen()())
}

func TestClearSessionCoalescesResizes(t *testing.T) {
	s := newClearSession()
	for i := 0; i < cap(s.events)*2; i++ {
		s.Send(clearing.Event{Resize: true})
	}
	s.Send(clearing.Event{Key: clearing.KeyQuit})

	assert.Equal(t, clearing.Event{Key: clearing.KeyQuit}, s.Poll(false), "keys are not crowded out")
	assert.Equal(t, clearing.Event{Resize: true}, s.Poll(false))
	assert.Equal(t, clearing.Event{}, s.Poll(false))
}

func TestClearSessionNeverDropsQuit(t *testing.T) {
	s := newClearSession()
	for i := 0; i < cap(s.events); i++ {
		s.Send(clearing.Event{Key: clearing.KeyLeft})
	}
	s.Send(clearing.Event{Key: clearing.KeyQuit})

	assert.Equal(t, clearing.Event{Interrupt: true}, s.Poll(false))
	assert.Equal(t, clearing.Event{Interrupt: true}, s.Poll(true), "stop is sticky")
}

func TestClearSessionBlockingPollWakesOnResize(t *testing.T) {
	s := newClearSession()
	got := make(chan clearing.Event)
	go func() { got <- s.Poll(true) }()

	s.Send(clearing.Event{Resize: true})
	select {
	case ev := <-got:
		assert.Equal(t, clearing.Event{Resize: true}, ev)
	case <-time.After(2 * time.Second):
		t.Fatal("blocking poll did not wake")
	}
}
