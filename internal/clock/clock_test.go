package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func TestSim_AdvanceWithoutListeners(t *testing.T) {
	c := NewSim(start)

	ev := c.Advance(time.Minute)
	assert.Equal(t, start, ev.Previous)
	assert.Equal(t, start.Add(time.Minute), ev.Current)
	assert.Equal(t, start.Add(time.Minute), c.Now())
}

func TestSim_NotifiesInOrder(t *testing.T) {
	c := NewSim(start)

	var calls []string
	c.Subscribe(func(TimeChanged) { calls = append(calls, "a") })
	c.Subscribe(func(TimeChanged) { calls = append(calls, "b") })

	c.Advance(time.Hour)
	c.Advance(time.Hour)

	assert.Equal(t, []string{"a", "b", "a", "b"}, calls)
	assert.Equal(t, 2, c.Listeners())
}

func TestSim_Unsubscribe(t *testing.T) {
	c := NewSim(start)

	count := 0
	sub := c.Subscribe(func(TimeChanged) { count++ })
	c.Advance(time.Minute)

	sub.Unsubscribe()
	sub.Unsubscribe()
	c.Advance(time.Minute)

	assert.Equal(t, 1, count)
	assert.Zero(t, c.Listeners())
}

func TestSim_ListenerDetachesItself(t *testing.T) {
	c := NewSim(start)

	var sub Subscription
	seen := 0
	sub = c.Subscribe(func(TimeChanged) {
		seen++
		sub.Unsubscribe()
	})

	other := 0
	c.Subscribe(func(TimeChanged) { other++ })

	c.Advance(time.Minute)
	c.Advance(time.Minute)

	assert.Equal(t, 1, seen)
	assert.Equal(t, 2, other)
}

func TestSim_ListenerDetachesLaterListener(t *testing.T) {
	c := NewSim(start)

	var second Subscription
	c.Subscribe(func(TimeChanged) { second.Unsubscribe() })

	called := false
	second = c.Subscribe(func(TimeChanged) { called = true })

	c.Advance(time.Minute)
	assert.False(t, called)
}

func TestSim_SetBackwards(t *testing.T) {
	c := NewSim(start)

	var got []TimeChanged
	c.Subscribe(func(ev TimeChanged) { got = append(got, ev) })

	c.Set(start.Add(-time.Hour))

	require.Len(t, got, 1)
	assert.True(t, got[0].Current.Before(got[0].Previous))
}
