package ticker

import (
	"sync"
	"time"
)

// Ticker is an abstraction of a ticker from standard time package.
// It contains a channel which produces ticks at certain intervals
// defined by implementations. When the ticker is stopped, no more
// ticks will be sent via the channel.
type Ticker interface {

	// C returns the channel on which the ticks are delivered.
	C() <-chan time.Time

	// Stop turns off a ticker. After Stop, no more ticks will be sent.
	Stop()
}

// TimeTicker delivers a first tick after an initial delay and then one
// tick per period. At most one tick is kept pending while the consumer is
// busy; further ticks are dropped, so a slow consumer runs at most one
// extra round after a long job instead of working off a backlog.
type TimeTicker struct {
	c    chan time.Time
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewTimeTicker creates a started TimeTicker.
func NewTimeTicker(initialDelay, period time.Duration) *TimeTicker {
	t := &TimeTicker{
		c:    make(chan time.Time, 1),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go t.run(initialDelay, period)
	return t
}

func (t *TimeTicker) run(initialDelay, period time.Duration) {
	defer close(t.done)

	delay := time.NewTimer(initialDelay)
	defer delay.Stop()
	select {
	case <-t.stop:
		return
	case now := <-delay.C:
		t.deliver(now)
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-t.stop:
			return
		case now := <-ticker.C:
			t.deliver(now)
		}
	}
}

func (t *TimeTicker) deliver(now time.Time) {
	select {
	case t.c <- now:
	default:
	}
}

func (t *TimeTicker) C() <-chan time.Time {
	return t.c
}

func (t *TimeTicker) Stop() {
	t.once.Do(func() {
		close(t.stop)
		<-t.done
		// discard a tick that was delivered but not consumed
		select {
		case <-t.c:
		default:
		}
	})
}

// ManualTicker is a Ticker driven explicitly by calling Tick. It is
// intended for tests that need full control over the timing of ticks.
type ManualTicker struct {
	c    chan time.Time
	stop chan struct{}
	once sync.Once
}

func NewManualTicker() *ManualTicker {
	return &ManualTicker{
		c:    make(chan time.Time),
		stop: make(chan struct{}),
	}
}

// Tick blocks until the tick was received by the consumer. It returns false
// if the ticker was stopped before the tick could be delivered.
func (t *ManualTicker) Tick() bool {
	select {
	case t.c <- time.Now():
		return true
	case <-t.stop:
		return false
	}
}

func (t *ManualTicker) C() <-chan time.Time {
	return t.c
}

func (t *ManualTicker) Stop() {
	t.once.Do(func() { close(t.stop) })
}
