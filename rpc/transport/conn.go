package transport

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spotify/snakebite/rpc/common"
	"github.com/spotify/snakebite/rpc/hadoop"
	"github.com/spotify/snakebite/rpc/wire"

	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

// Connection states. A connection moves Handshaking -> Ready -> Closed and
// never back; no call may be sent before Ready.
const (
	stateHandshaking int32 = iota
	stateReady
	stateClosed
)

// callResult carries the outcome of one call from the read loop to the
// waiting invoker.
type callResult struct {
	payload []byte
	err     error
}

// --------------------------------------------------------------------------
// Conn
// --------------------------------------------------------------------------

// Conn owns one TCP socket bound to exactly one endpoint, the callId
// counter for that session, and the table of pending calls. Multiple
// invocations may be outstanding concurrently: the send path is serialized
// by a mutex and a single reader goroutine demultiplexes responses by
// callId.
type Conn struct {
	endpoint common.Endpoint
	sock     net.Conn

	state   atomic.Int32
	sending sync.Mutex // guards sock writes and the callId counter
	callID  uint32

	pending *xsync.MapOf[uint32, chan callResult]

	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error // set before closed is closed
}

// Dial connects to the endpoint, performs the handshake with the endpoint's
// protocol version and starts the response reader. The handshake is
// write-only, so a version mismatch only surfaces on the first call.
func Dial(connector Connector, endpoint common.Endpoint, user string) (*Conn, error) {
	sock, err := connector.Connect(endpoint)
	if err != nil {
		return nil, &common.TransportError{Endpoint: endpoint, Op: "connect", Err: err}
	}

	c := &Conn{
		endpoint: endpoint,
		sock:     sock,
		pending:  xsync.NewMapOf[uint32, chan callResult](),
		closed:   make(chan struct{}),
	}
	c.state.Store(stateHandshaking)

	if err := writeHandshake(sock, endpoint.Version, user); err != nil {
		_ = sock.Close()
		return nil, &common.TransportError{Endpoint: endpoint, Op: "handshake", Err: err}
	}
	c.state.Store(stateReady)

	logger.Debugf("connected to %s as %q using protocol version %d", endpoint.Addr(), user, endpoint.Version)

	go c.readLoop()
	return c, nil
}

// Endpoint returns the endpoint this connection is bound to.
func (c *Conn) Endpoint() common.Endpoint {
	return c.endpoint
}

// Ready reports whether calls may still be sent on this connection.
func (c *Conn) Ready() bool {
	return c.state.Load() == stateReady
}

// Invoke sends one call and blocks until its response frame arrives, the
// context expires, or the connection fails. Request frame layout:
//
//	+----------------------------------------------------------+
//	|  total length (4 bytes, big endian)                      |
//	|  varint length + serialized RequestHeader                |
//	|  varint length + serialized request payload              |
//	+----------------------------------------------------------+
func (c *Conn) Invoke(ctx context.Context, method string, request []byte) ([]byte, error) {
	if !c.Ready() {
		return nil, c.closeReason()
	}

	start := time.Now()

	c.sending.Lock()
	callID := c.callID
	c.callID++ // wraps modulo 2^32

	header := hadoop.RequestHeader{
		RPCKind:    hadoop.RPCKindProtocolBuffer,
		RPCOp:      hadoop.RPCOpFinalPayload,
		CallID:     callID,
		MethodName: method,
	}
	body := append(wire.EncodeVarintPrefixed(header.Marshal()), wire.EncodeVarintPrefixed(request)...)

	// Register the completion slot before writing so the reader cannot
	// race the response past us.
	respCh := make(chan callResult, 1)
	c.pending.Store(callID, respCh)

	_, err := c.sock.Write(wire.EncodeFixedU32Prefixed(body))
	c.sending.Unlock()

	if err != nil {
		c.pending.Delete(callID)
		terr := &common.TransportError{Endpoint: c.endpoint, Op: "send " + method, Err: err}
		c.closeWithError(terr)
		return nil, terr
	}

	select {
	case res := <-respCh:
		return res.payload, res.err
	case <-ctx.Done():
		// The protocol has no cancellation primitive; a frame we no
		// longer wait for would poison the stream position, so the
		// whole connection goes down with the call.
		c.pending.Delete(callID)
		timeout := &common.TimeoutError{
			Endpoint: c.endpoint,
			Method:   method,
			After:    time.Since(start).Round(time.Millisecond),
		}
		c.closeWithError(timeout)
		return nil, timeout
	case <-c.closed:
		// The reader may have delivered the result just before closing.
		select {
		case res := <-respCh:
			return res.payload, res.err
		default:
			return nil, c.closeReason()
		}
	}
}

// Close shuts the connection down and fails all pending calls.
func (c *Conn) Close() error {
	c.closeWithError(&common.TransportError{Endpoint: c.endpoint, Op: "close", Err: net.ErrClosed})
	return nil
}

// --------------------------------------------------------------------------
// Response reading
// --------------------------------------------------------------------------

// readLoop is the single reader of the socket. It reads one frame per
// iteration and routes it by callId. Any framing error poisons the stream
// position, so it tears down the whole connection rather than one call.
func (c *Conn) readLoop() {
	r := bufio.NewReader(c.sock)
	for {
		headerBytes, err := wire.ReadVarintPrefixed(r)
		if err != nil {
			c.closeWithError(&common.TransportError{Endpoint: c.endpoint, Op: "read response header", Err: err})
			return
		}
		header, err := hadoop.UnmarshalResponseHeader(headerBytes)
		if err != nil {
			c.closeWithError(&common.TransportError{Endpoint: c.endpoint, Op: "decode response header", Err: err})
			return
		}

		segment, err := wire.ReadFixedU32Prefixed(r)
		if err != nil {
			c.closeWithError(&common.TransportError{Endpoint: c.endpoint, Op: "read response body", Err: err})
			return
		}

		switch header.Status {
		case hadoop.StatusSuccess:
			c.complete(header.CallID, callResult{payload: segment})

		case hadoop.StatusError:
			remote, err := decodeRemoteError(segment, false)
			if err != nil {
				c.closeWithError(&common.TransportError{Endpoint: c.endpoint, Op: "decode remote error", Err: err})
				return
			}
			c.complete(header.CallID, callResult{err: remote})

		case hadoop.StatusFatal:
			remote, err := decodeRemoteError(segment, true)
			if err != nil {
				c.closeWithError(&common.TransportError{Endpoint: c.endpoint, Op: "decode remote error", Err: err})
				return
			}
			c.complete(header.CallID, callResult{err: remote})
			c.closeWithError(&common.TransportError{
				Endpoint: c.endpoint,
				Op:       "session",
				Err:      fmt.Errorf("terminated by server: %w", remote),
			})
			return

		default:
			c.closeWithError(&common.TransportError{
				Endpoint: c.endpoint,
				Op:       "decode response header",
				Err:      fmt.Errorf("unknown call status %d", header.Status),
			})
			return
		}
	}
}

// decodeRemoteError decomposes an ERROR/FATAL body: a u32-length-prefixed
// exception class name followed by a u32-length-prefixed stack trace.
func decodeRemoteError(segment []byte, fatal bool) (*common.RemoteCallError, error) {
	r := bytes.NewReader(segment)
	class, err := wire.ReadFixedU32Prefixed(r)
	if err != nil {
		return nil, err
	}
	stack, err := wire.ReadFixedU32Prefixed(r)
	if err != nil {
		return nil, err
	}
	return &common.RemoteCallError{
		ClassName:  string(class),
		StackTrace: string(stack),
		Fatal:      fatal,
	}, nil
}

// complete routes one result to the matching pending call.
func (c *Conn) complete(callID uint32, res callResult) {
	if ch, ok := c.pending.LoadAndDelete(callID); ok {
		ch <- res
		return
	}
	logger.Warnf("response for unknown call id %d on %s dropped", callID, c.endpoint.Addr())
}

// --------------------------------------------------------------------------
// Teardown
// --------------------------------------------------------------------------

// closeWithError moves the connection to Closed exactly once and fails
// every pending call with the close reason.
func (c *Conn) closeWithError(reason error) {
	c.closeOnce.Do(func() {
		c.state.Store(stateClosed)
		c.closeErr = reason
		close(c.closed)
		_ = c.sock.Close()

		c.pending.Range(func(callID uint32, ch chan callResult) bool {
			if _, ok := c.pending.LoadAndDelete(callID); ok {
				ch <- callResult{err: reason}
			}
			return true
		})

		logger.Debugf("connection to %s closed: %v", c.endpoint.Addr(), reason)
	})
}

func (c *Conn) closeReason() error {
	select {
	case <-c.closed:
		return c.closeErr
	default:
		return &common.TransportError{Endpoint: c.endpoint, Op: "send", Err: fmt.Errorf("connection not ready")}
	}
}
