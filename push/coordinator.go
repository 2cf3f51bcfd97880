package push

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/todobackend/ws-contract-tests/framework"
)

// TimeoutError means the expected event did not arrive within the allotted
// window. It is distinct from a decode failure (the message was garbage) and
// from a connection failure (the channel broke), so callers can tell the
// three apart.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for a matching push event", e.Duration)
}

// ErrWaitCancelled is returned when a wait is abandoned before it matched,
// either by the caller or by CancelAll during teardown.
var ErrWaitCancelled = errors.New("wait for push event was cancelled")

type subscription struct {
	id         int
	predicate  Predicate
	result     chan Event
	cancelled  chan struct{}
	cancelOnce sync.Once
}

// Coordinator correlates push events with the tests waiting for them. Any
// number of goroutines may hold active subscriptions against the same
// coordinator; each event is broadcast to every active subscription, and
// each subscription is completed by the first event its predicate accepts.
type Coordinator struct {
	subs   map[int]*subscription
	lastID int
	logger framework.Logger
	lock   sync.Mutex
}

func NewCoordinator(logger framework.Logger) *Coordinator {
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &Coordinator{
		subs:   make(map[int]*subscription),
		logger: logger,
	}
}

// Wait is a handle on one registered subscription.
type Wait struct {
	owner *Coordinator
	sub   *subscription
}

// Subscribe registers a subscription and returns immediately. To avoid the
// race where a notification arrives before anyone is listening, callers must
// subscribe before issuing the action that triggers the event, and only then
// block on Await.
func (c *Coordinator) Subscribe(predicate Predicate) *Wait {
	sub := &subscription{
		predicate: predicate,
		result:    make(chan Event, 1),
		cancelled: make(chan struct{}),
	}
	c.lock.Lock()
	c.lastID++
	sub.id = c.lastID
	c.subs[sub.id] = sub
	c.lock.Unlock()
	return &Wait{owner: c, sub: sub}
}

// Dispatch delivers one decoded event to every active subscription. It is
// called from the channel's delivery path. Subscriptions are evaluated in
// arbitrary order; each matching subscription is completed and removed, and
// one event may complete any number of subscriptions.
func (c *Coordinator) Dispatch(event Event) {
	c.lock.Lock()
	var matched []*subscription
	for id, sub := range c.subs {
		if sub.predicate(event) {
			matched = append(matched, sub)
			delete(c.subs, id)
		}
	}
	c.lock.Unlock()

	if len(matched) > 0 {
		c.logger.Printf("Event %s (todo %d) matched %d subscription(s)", event.Kind, event.Todo.ID, len(matched))
	}
	for _, sub := range matched {
		// The result channel is buffered and each subscription is completed
		// at most once, so this never blocks the delivery path.
		sub.result <- event
	}
}

// Await blocks until a matching event arrives or the timeout elapses. It is
// equivalent to Subscribe followed by Wait.Await, for callers that do not
// need the registration to precede some other action.
func (c *Coordinator) Await(predicate Predicate, timeout time.Duration) (Event, error) {
	return c.Subscribe(predicate).Await(timeout)
}

// ActiveWaits reports how many subscriptions are currently registered.
func (c *Coordinator) ActiveWaits() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.subs)
}

// CancelAll abandons every active subscription, releasing each parked caller
// with ErrWaitCancelled. Used at teardown and when the channel fails, so
// that pending waits end promptly instead of running out their timeouts.
func (c *Coordinator) CancelAll() {
	c.lock.Lock()
	subs := c.subs
	c.subs = make(map[int]*subscription)
	c.lock.Unlock()

	if len(subs) > 0 {
		c.logger.Printf("Cancelling %d pending wait(s)", len(subs))
	}
	for _, sub := range subs {
		sub.cancelOnce.Do(func() { close(sub.cancelled) })
	}
}

func (c *Coordinator) remove(sub *subscription) {
	c.lock.Lock()
	delete(c.subs, sub.id)
	c.lock.Unlock()
}

// Await parks the caller until the subscription matches, the timeout
// elapses, or the wait is cancelled. The channel's delivery path is never
// blocked by parked callers.
func (w *Wait) Await(timeout time.Duration) (Event, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	select {
	case ev := <-w.sub.result:
		return ev, nil
	case <-w.sub.cancelled:
		w.owner.remove(w.sub)
		return Event{}, ErrWaitCancelled
	case <-deadline.C:
		w.owner.remove(w.sub)
		// A match may have completed between the timer firing and the
		// removal; prefer it over reporting a timeout.
		select {
		case ev := <-w.sub.result:
			return ev, nil
		default:
		}
		return Event{}, &TimeoutError{Duration: timeout}
	}
}

// AwaitContext is like Await but can also be released by the context, which
// counts as cancellation rather than timeout.
func (w *Wait) AwaitContext(ctx context.Context, timeout time.Duration) (Event, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	select {
	case ev := <-w.sub.result:
		return ev, nil
	case <-w.sub.cancelled:
		w.owner.remove(w.sub)
		return Event{}, ErrWaitCancelled
	case <-ctx.Done():
		w.Cancel()
		return Event{}, ErrWaitCancelled
	case <-deadline.C:
		w.owner.remove(w.sub)
		select {
		case ev := <-w.sub.result:
			return ev, nil
		default:
		}
		return Event{}, &TimeoutError{Duration: timeout}
	}
}

// Cancel abandons this subscription. Safe to call more than once and after
// the wait has already completed.
func (w *Wait) Cancel() {
	w.owner.remove(w.sub)
	w.sub.cancelOnce.Do(func() { close(w.sub.cancelled) })
}
