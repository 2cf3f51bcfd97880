package push

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPushServer is a minimal WebSocket endpoint standing in for the todo
// service's push channel.
type testPushServer struct {
	server   *httptest.Server
	conns    chan *websocket.Conn
	received chan []byte
}

var testUpgrader = websocket.Upgrader{}

func newTestPushServer(t *testing.T) *testPushServer {
	s := &testPushServer{
		conns:    make(chan *websocket.Conn, 10),
		received: make(chan []byte, 100),
	}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.conns <- conn
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			s.received <- data
		}
	}))
	t.Cleanup(s.server.Close)
	return s
}

func (s *testPushServer) url() string {
	return "ws" + strings.TrimPrefix(s.server.URL, "http")
}

func (s *testPushServer) awaitConn(t *testing.T) *websocket.Conn {
	select {
	case conn := <-s.conns:
		return conn
	case <-time.After(time.Second):
		require.Fail(t, "timed out waiting for the channel to connect")
		return nil
	}
}

func awaitBytes(t *testing.T, ch <-chan []byte) []byte {
	select {
	case data := <-ch:
		return data
	case <-time.After(time.Second):
		require.Fail(t, "timed out waiting for a message")
		return nil
	}
}

func TestDialFailureReturnsConnectionError(t *testing.T) {
	_, err := Dial("ws://127.0.0.1:1/ws", nil, nil)
	require.Error(t, err)
	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "ws://127.0.0.1:1/ws", connErr.URL)
}

func TestDialOpensChannelAndDeliversMessagesInOrder(t *testing.T) {
	s := newTestPushServer(t)
	messages := make(chan []byte, 10)

	c, err := Dial(s.url(), func(raw []byte) { messages <- raw }, nil)
	require.NoError(t, err)
	defer c.Close(websocket.CloseNormalClosure, "test done")
	assert.Equal(t, StateOpen, c.State())

	conn := s.awaitConn(t)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("one")))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("two")))

	assert.Equal(t, "one", string(awaitBytes(t, messages)))
	assert.Equal(t, "two", string(awaitBytes(t, messages)))
}

func TestSendDeliversOnOpenChannel(t *testing.T) {
	s := newTestPushServer(t)
	c, err := Dial(s.url(), nil, nil)
	require.NoError(t, err)
	defer c.Close(websocket.CloseNormalClosure, "test done")
	s.awaitConn(t)

	assert.True(t, c.Send([]byte("ping")))
	assert.Equal(t, "ping", string(awaitBytes(t, s.received)))
}

func TestSendOnClosedChannelReturnsFalse(t *testing.T) {
	s := newTestPushServer(t)
	c, err := Dial(s.url(), nil, nil)
	require.NoError(t, err)
	s.awaitConn(t)

	c.Close(websocket.CloseNormalClosure, "closing early")
	assert.False(t, c.Send([]byte("too late")))
}

func TestCloseIsIdempotentAndNotifiesListenersOnce(t *testing.T) {
	s := newTestPushServer(t)

	var openCount, closingCount, closedCount int32
	var closedCode int32
	c, err := Dial(s.url(), nil, nil, Listeners{
		OnOpen:    func() { atomic.AddInt32(&openCount, 1) },
		OnClosing: func() { atomic.AddInt32(&closingCount, 1) },
		OnClosed: func(code int, reason string) {
			atomic.AddInt32(&closedCount, 1)
			atomic.StoreInt32(&closedCode, int32(code))
		},
	})
	require.NoError(t, err)
	s.awaitConn(t)
	assert.Equal(t, int32(1), atomic.LoadInt32(&openCount))

	c.Close(websocket.CloseNormalClosure, "first")
	c.Close(websocket.CloseNormalClosure, "second")
	c.Close(websocket.CloseNormalClosure, "third")

	assert.Equal(t, StateClosed, c.State())
	assert.Equal(t, int32(1), atomic.LoadInt32(&closingCount))
	assert.Equal(t, int32(1), atomic.LoadInt32(&closedCount))
	assert.Equal(t, int32(websocket.CloseNormalClosure), atomic.LoadInt32(&closedCode))
	assert.NoError(t, c.LastError(), "a deliberate close is not a failure")
}

func TestServerDisconnectFiresFailureListener(t *testing.T) {
	s := newTestPushServer(t)
	c, err := Dial(s.url(), nil, nil)
	require.NoError(t, err)
	conn := s.awaitConn(t)

	failures := make(chan error, 1)
	c.AddListener(Listeners{OnFailure: func(err error) { failures <- err }})

	require.NoError(t, conn.Close())

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		require.Fail(t, "read loop did not exit after server disconnect")
	}
	assert.Equal(t, StateClosed, c.State())
	assert.Error(t, c.LastError())
	select {
	case err := <-failures:
		assert.Error(t, err)
	default:
		require.Fail(t, "failure listener was not invoked")
	}
}

func TestListenersPassedToDialObserveImmediateFailure(t *testing.T) {
	s := newTestPushServer(t)

	// The listener is registered before the read loop starts, so even a
	// failure right after the connection opens must reach it.
	failures := make(chan error, 1)
	c, err := Dial(s.url(), nil, nil, Listeners{
		OnFailure: func(err error) { failures <- err },
	})
	require.NoError(t, err)

	conn := s.awaitConn(t)
	require.NoError(t, conn.Close())

	select {
	case err := <-failures:
		assert.Error(t, err)
	case <-time.After(time.Second):
		require.Fail(t, "failure listener registered at dial time was not invoked")
	}
	assert.Equal(t, StateClosed, c.State())
}

func TestChannelFeedsDecodedEventsToCoordinator(t *testing.T) {
	s := newTestPushServer(t)
	coordinator := NewCoordinator(nil)

	c, err := Dial(s.url(), func(raw []byte) {
		ev, err := Decode(raw)
		if err != nil {
			return // logged and dropped in the real wiring
		}
		coordinator.Dispatch(ev)
	}, nil)
	require.NoError(t, err)
	defer c.Close(websocket.CloseNormalClosure, "test done")
	conn := s.awaitConn(t)

	w := coordinator.Subscribe(MatchTodo(EventCreated, 12))

	// A malformed message must not satisfy the subscription or break the
	// channel; the following well-formed one must.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"new_todo","data":{}}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"new_todo","data":{"id":12,"text":"hello","completed":false}}`)))

	ev, err := w.Await(2 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(12), ev.Todo.ID)
	assert.Equal(t, "hello", ev.Todo.Text)
	assert.Equal(t, StateOpen, c.State())
}
