package cartstore

import (
	"sync"
	"time"
)

// Activity tracks whether an execution context is in use. It is the
// server-side stand-in for window focus: Touch marks the context active and
// IdleAfter without a touch marks it inactive again. Every inactive→active
// transition runs the registered callbacks once.
type Activity struct {
	mu        sync.Mutex
	active    bool
	lastTouch time.Time
	idleAfter time.Duration
	nextID    int
	callbacks map[int]func()
	now       func() time.Time

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewActivity starts inactive. A zero idleAfter disables the idle loop, so
// only SetActive(false) can make the context inactive.
func NewActivity(idleAfter time.Duration) *Activity {
	a := &Activity{
		idleAfter: idleAfter,
		callbacks: make(map[int]func()),
		now:       time.Now,
		stop:      make(chan struct{}),
	}
	if idleAfter > 0 {
		a.wg.Add(1)
		go a.idleLoop(idleTick(idleAfter))
	}
	return a
}

const minIdleTick = time.Millisecond

func idleTick(idleAfter time.Duration) time.Duration {
	if tick := idleAfter / 4; tick >= minIdleTick {
		return tick
	}
	return minIdleTick
}

func (a *Activity) idleLoop(tick time.Duration) {
	defer a.wg.Done()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.expire()
		case <-a.stop:
			return
		}
	}
}

func (a *Activity) expire() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active && a.now().Sub(a.lastTouch) >= a.idleAfter {
		a.active = false
	}
}

// Touch records use of the context.
func (a *Activity) Touch() {
	a.SetActive(true)
}

func (a *Activity) SetActive(active bool) {
	a.mu.Lock()
	wasActive := a.active
	a.active = active
	if active {
		a.lastTouch = a.now()
	}
	var fire []func()
	if active && !wasActive {
		fire = make([]func(), 0, len(a.callbacks))
		for _, cb := range a.callbacks {
			fire = append(fire, cb)
		}
	}
	a.mu.Unlock()

	// callbacks run outside the lock so they may Touch or unsubscribe
	for _, cb := range fire {
		cb()
	}
}

func (a *Activity) IsActive() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// Subscribe registers cb for inactive→active transitions and returns its
// unsubscribe func.
func (a *Activity) Subscribe(cb func()) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextID
	a.nextID++
	a.callbacks[id] = cb

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.callbacks, id)
	}
}

// Close stops the idle loop and drops every subscriber.
func (a *Activity) Close() {
	a.once.Do(func() {
		close(a.stop)
		a.wg.Wait()
		a.mu.Lock()
		a.callbacks = make(map[int]func())
		a.mu.Unlock()
	})
}
