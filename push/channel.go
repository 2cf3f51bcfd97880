package push

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/todobackend/ws-contract-tests/framework"
)

const closeWriteTimeout = time.Second

// State describes the lifecycle of a Channel.
type State int

const (
	StateClosed State = iota
	StateConnecting
	StateOpen
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	default:
		return "closed"
	}
}

// ConnectionError means the push channel could not be established. There is
// no built-in retry; a caller that wants to retry must call Dial again.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot open push channel at %s: %s", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// MessageHandler receives each raw message from the channel's read loop.
type MessageHandler func(raw []byte)

// Listeners holds optional callbacks observing channel state transitions.
// Callbacks are informational only; they run on the channel's read loop or
// on the goroutine calling Dial or Close, so they must return promptly.
type Listeners struct {
	OnOpen    func()
	OnClosing func()
	OnClosed  func(code int, reason string)
	OnFailure func(err error)
}

// Channel is the single push-notification connection shared by a test run.
// It owns the WebSocket connection, a read loop that feeds raw messages to
// the configured handler, and the state transitions observable through
// registered Listeners.
type Channel struct {
	url       string
	conn      *websocket.Conn
	handler   MessageHandler
	logger    framework.Logger
	state     State
	lastErr   error
	listeners []Listeners
	closing   bool
	done      chan struct{}
	lock      sync.Mutex
}

// Dial opens the push channel and starts its read loop. The handler is
// called once per received message, in order, on the read loop goroutine.
// Listeners passed here observe all transitions including the initial open;
// listeners added later with AddListener only see subsequent ones.
func Dial(url string, handler MessageHandler, logger framework.Logger, listeners ...Listeners) (*Channel, error) {
	if logger == nil {
		logger = framework.NullLogger()
	}
	c := &Channel{
		url:       url,
		handler:   handler,
		logger:    logger,
		state:     StateConnecting,
		listeners: listeners,
		done:      make(chan struct{}),
	}
	logger.Printf("Opening push channel at %s", url)
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		c.state = StateClosed
		c.lastErr = err
		if resp != nil {
			err = fmt.Errorf("%w (HTTP %d)", err, resp.StatusCode)
			_ = resp.Body.Close()
		}
		return nil, &ConnectionError{URL: url, Err: err}
	}
	c.conn = conn
	c.state = StateOpen
	for _, l := range listeners {
		if l.OnOpen != nil {
			l.OnOpen()
		}
	}
	go c.readLoop()
	return c, nil
}

// AddListener registers callbacks for subsequent state transitions.
func (c *Channel) AddListener(l Listeners) {
	c.lock.Lock()
	c.listeners = append(c.listeners, l)
	c.lock.Unlock()
}

// State returns the channel's current lifecycle state.
func (c *Channel) State() State {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.state
}

// LastError returns the transport error that closed the channel, if any.
func (c *Channel) LastError() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.lastErr
}

// Done is closed when the read loop has exited, whether by Close or by a
// transport failure.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Send writes a text message on an open channel. It is best-effort: sending
// on a channel that is not open is a usage error reported by a false return,
// not an error value, and a transport failure during the write also returns
// false after being logged.
func (c *Channel) Send(data []byte) bool {
	c.lock.Lock()
	if c.state != StateOpen {
		state := c.state
		c.lock.Unlock()
		c.logger.Printf("Discarded send of %d bytes because the push channel is %s", len(data), state)
		return false
	}
	// Writing under the lock serializes writers; gorilla/websocket allows
	// only one concurrent writer per connection.
	err := c.conn.WriteMessage(websocket.TextMessage, data)
	c.lock.Unlock()
	if err != nil {
		c.logger.Printf("Failed to send on push channel: %s", err)
		return false
	}
	return true
}

// Close performs the close handshake and releases the connection. It is
// idempotent: closing an already-closed or closing channel logs a warning
// and does nothing else.
func (c *Channel) Close(code int, reason string) {
	c.lock.Lock()
	if c.state == StateClosing || c.state == StateClosed {
		state := c.state
		c.lock.Unlock()
		c.logger.Printf("Warning: Close called on a push channel that is already %s", state)
		return
	}
	c.state = StateClosing
	c.closing = true
	conn := c.conn
	listeners := c.snapshotListenersLocked()
	c.lock.Unlock()

	for _, l := range listeners {
		if l.OnClosing != nil {
			l.OnClosing()
		}
	}

	msg := websocket.FormatCloseMessage(code, reason)
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteTimeout)); err != nil {
		c.logger.Printf("Error sending close frame: %s", err)
	}
	_ = conn.Close()

	c.lock.Lock()
	c.state = StateClosed
	c.lock.Unlock()

	for _, l := range listeners {
		if l.OnClosed != nil {
			l.OnClosed(code, reason)
		}
	}
}

// snapshotListenersLocked must be called with the lock held.
func (c *Channel) snapshotListenersLocked() []Listeners {
	return append([]Listeners(nil), c.listeners...)
}

func (c *Channel) readLoop() {
	defer close(c.done)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.lock.Lock()
			deliberate := c.closing
			c.state = StateClosed
			if !deliberate {
				c.lastErr = err
			}
			listeners := c.snapshotListenersLocked()
			c.lock.Unlock()
			if !deliberate {
				c.logger.Printf("Push channel failed: %s", err)
				_ = c.conn.Close()
				for _, l := range listeners {
					if l.OnFailure != nil {
						l.OnFailure(err)
					}
				}
			}
			return
		}
		if c.handler != nil {
			c.handler(data)
		}
	}
}
