package clock

import (
	"sync"
	"time"
)

// TimeChanged is delivered to listeners every time simulated time moves
type TimeChanged struct {
	Previous time.Time
	Current  time.Time
}

// Listener receives clock events on the goroutine that moved the clock
type Listener func(TimeChanged)

// Subscription detaches a listener. Unsubscribe is idempotent.
type Subscription interface {
	Unsubscribe()
}

// Clock is the time source the market runs on
// ⭐ SSOT: nothing in the engine reads the wall clock directly
type Clock interface {
	Now() time.Time
	Subscribe(Listener) Subscription
}

// Sim is a manually driven clock. Listeners run synchronously, in
// subscription order, and may unsubscribe themselves while being notified.
type Sim struct {
	mu        sync.Mutex
	now       time.Time
	nextID    int
	listeners map[int]Listener
	order     []int
}

// NewSim creates a clock reading start
func NewSim(start time.Time) *Sim {
	return &Sim{
		now:       start,
		listeners: make(map[int]Listener),
	}
}

// Now returns the current simulated time
func (c *Sim) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Subscribe registers l until the returned subscription is cancelled
func (c *Sim) Subscribe(l Listener) Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	c.order = append(c.order, id)

	return &subscription{clock: c, id: id}
}

// Listeners returns the number of attached listeners
func (c *Sim) Listeners() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners)
}

// Advance moves the clock forward by d and notifies listeners
func (c *Sim) Advance(d time.Duration) TimeChanged {
	c.mu.Lock()
	t := c.now.Add(d)
	c.mu.Unlock()
	return c.Set(t)
}

// Set moves the clock to t and notifies listeners. t may be earlier than
// Now; rejecting regressions is up to the listeners.
func (c *Sim) Set(t time.Time) TimeChanged {
	c.mu.Lock()
	ev := TimeChanged{Previous: c.now, Current: t}
	c.now = t
	ids := append([]int(nil), c.order...)
	c.mu.Unlock()

	for _, id := range ids {
		c.mu.Lock()
		l, ok := c.listeners[id]
		c.mu.Unlock()
		if !ok {
			continue // detached by an earlier listener
		}
		l(ev)
	}

	return ev
}

func (c *Sim) unsubscribe(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.listeners[id]; !ok {
		return
	}
	delete(c.listeners, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

type subscription struct {
	clock *Sim
	id    int
	once  sync.Once
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() { s.clock.unsubscribe(s.id) })
}
