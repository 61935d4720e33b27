package transport

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/spotify/snakebite/rpc/common"
	"github.com/spotify/snakebite/rpc/hadoop"
	"github.com/spotify/snakebite/rpc/wire"
)

var testEndpoint = common.Endpoint{Host: "namenode", Port: 8020, Version: 9}

// pipeConnector hands out the client half of a net.Pipe and runs serve on
// the server half, so tests can play NameNode without a real socket.
type pipeConnector struct {
	serve func(net.Conn)
}

func (p *pipeConnector) Connect(_ common.Endpoint) (net.Conn, error) {
	client, server := net.Pipe()
	go p.serve(server)
	return client, nil
}

func (p *pipeConnector) GetName() string { return "pipe" }

// acceptHandshake consumes the session preamble and returns the fixed bytes
// and the decoded connection context.
func acceptHandshake(t *testing.T, r io.Reader) ([]byte, *hadoop.ConnectionContext) {
	t.Helper()
	head := make([]byte, 7)
	if _, err := io.ReadFull(r, head); err != nil {
		t.Errorf("reading handshake preamble: %v", err)
		return nil, nil
	}
	ctxBytes, err := wire.ReadFixedU32Prefixed(r)
	if err != nil {
		t.Errorf("reading connection context: %v", err)
		return nil, nil
	}
	cc, err := hadoop.UnmarshalConnectionContext(ctxBytes)
	if err != nil {
		t.Errorf("decoding connection context: %v", err)
		return nil, nil
	}
	return head, cc
}

// readCall consumes one request frame.
func readCall(t *testing.T, r io.Reader) (*hadoop.RequestHeader, []byte) {
	t.Helper()
	frame, err := wire.ReadFixedU32Prefixed(r)
	if err != nil {
		t.Errorf("reading request frame: %v", err)
		return nil, nil
	}
	br := bytes.NewReader(frame)
	headerBytes, err := wire.ReadVarintPrefixed(br)
	if err != nil {
		t.Errorf("reading request header: %v", err)
		return nil, nil
	}
	header, err := hadoop.UnmarshalRequestHeader(headerBytes)
	if err != nil {
		t.Errorf("decoding request header: %v", err)
		return nil, nil
	}
	payload, err := wire.ReadVarintPrefixed(br)
	if err != nil {
		t.Errorf("reading request payload: %v", err)
		return nil, nil
	}
	return header, payload
}

func writeResponse(w io.Writer, callID uint32, status hadoop.CallStatus, segment []byte) {
	header := hadoop.ResponseHeader{CallID: callID, Status: status}
	buf := append(wire.EncodeVarintPrefixed(header.Marshal()), wire.EncodeFixedU32Prefixed(segment)...)
	_, _ = w.Write(buf)
}

func errorSegment(class, stack string) []byte {
	return append(wire.EncodeFixedU32Prefixed([]byte(class)), wire.EncodeFixedU32Prefixed([]byte(stack))...)
}

func TestDialSendsHandshake(t *testing.T) {
	headCh := make(chan []byte, 1)
	ctxCh := make(chan *hadoop.ConnectionContext, 1)

	connector := &pipeConnector{serve: func(s net.Conn) {
		head, cc := acceptHandshake(t, s)
		headCh <- head
		ctxCh <- cc
	}}

	conn, err := Dial(connector, testEndpoint, "alice")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	head := <-headCh
	want := []byte{'h', 'r', 'p', 'c', 9, 80, 0}
	if !bytes.Equal(head, want) {
		t.Errorf("handshake preamble = %v, want %v", head, want)
	}

	cc := <-ctxCh
	if cc.EffectiveUser != "alice" {
		t.Errorf("effective user = %q, want %q", cc.EffectiveUser, "alice")
	}
	if cc.Protocol != hadoop.ClientProtocolName {
		t.Errorf("protocol = %q, want %q", cc.Protocol, hadoop.ClientProtocolName)
	}
}

func TestDialUsesEndpointVersion(t *testing.T) {
	headCh := make(chan []byte, 1)
	connector := &pipeConnector{serve: func(s net.Conn) {
		head, _ := acceptHandshake(t, s)
		headCh <- head
	}}

	old := common.Endpoint{Host: "namenode", Port: 8020, Version: 7}
	conn, err := Dial(connector, old, "alice")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if head := <-headCh; head[4] != 7 {
		t.Errorf("handshake version byte = %d, want 7", head[4])
	}
}

func TestInvokeRoundTrip(t *testing.T) {
	connector := &pipeConnector{serve: func(s net.Conn) {
		acceptHandshake(t, s)
		r := bufio.NewReader(s)
		header, payload := readCall(t, r)
		if header == nil {
			return
		}
		if header.RPCKind != hadoop.RPCKindProtocolBuffer || header.RPCOp != hadoop.RPCOpFinalPayload {
			t.Errorf("header kind/op = %d/%d, want 2/0", header.RPCKind, header.RPCOp)
		}
		if header.CallID != 0 {
			t.Errorf("first callId = %d, want 0", header.CallID)
		}
		if header.MethodName != "getFileInfo" {
			t.Errorf("method = %q, want getFileInfo", header.MethodName)
		}
		writeResponse(s, header.CallID, hadoop.StatusSuccess, payload)
	}}

	conn, err := Dial(connector, testEndpoint, "alice")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	got, err := conn.Invoke(context.Background(), "getFileInfo", []byte("ping"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("ping")) {
		t.Errorf("payload = %q, want %q", got, "ping")
	}
}

func TestRemoteErrorLeavesConnectionUsable(t *testing.T) {
	connector := &pipeConnector{serve: func(s net.Conn) {
		acceptHandshake(t, s)
		r := bufio.NewReader(s)

		header, _ := readCall(t, r)
		if header == nil {
			return
		}
		stack := "java.io.FileNotFoundException: File /missing does not exist.\n\tat org.apache.hadoop..."
		writeResponse(s, header.CallID, hadoop.StatusError, errorSegment("java.io.FileNotFoundException", stack))

		header, _ = readCall(t, r)
		if header == nil {
			return
		}
		writeResponse(s, header.CallID, hadoop.StatusSuccess, []byte("ok"))
	}}

	conn, err := Dial(connector, testEndpoint, "alice")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	_, err = conn.Invoke(context.Background(), "getFileInfo", nil)
	var remote *common.RemoteCallError
	if !errors.As(err, &remote) {
		t.Fatalf("got %v, want a RemoteCallError", err)
	}
	if !remote.IsClass("FileNotFoundException") {
		t.Errorf("class = %q, want FileNotFoundException", remote.ClassName)
	}
	if remote.Fatal {
		t.Error("ordinary remote error marked fatal")
	}
	if common.IsConnectionFault(err) {
		t.Error("ordinary remote error classified as connection fault")
	}
	if !conn.Ready() {
		t.Fatal("connection not usable after an ordinary remote error")
	}

	got, err := conn.Invoke(context.Background(), "getListing", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("ok")) {
		t.Errorf("payload = %q, want %q", got, "ok")
	}
}

func TestFatalResponseClosesConnection(t *testing.T) {
	connector := &pipeConnector{serve: func(s net.Conn) {
		acceptHandshake(t, s)
		r := bufio.NewReader(s)
		header, _ := readCall(t, r)
		if header == nil {
			return
		}
		writeResponse(s, header.CallID, hadoop.StatusFatal,
			errorSegment("org.apache.hadoop.ipc.StandbyException", "Operation category READ is not supported in state standby"))
	}}

	conn, err := Dial(connector, testEndpoint, "alice")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	_, err = conn.Invoke(context.Background(), "getFileInfo", nil)
	var remote *common.RemoteCallError
	if !errors.As(err, &remote) {
		t.Fatalf("got %v, want a RemoteCallError", err)
	}
	if !remote.Fatal {
		t.Error("FATAL response not marked fatal")
	}
	if !common.IsConnectionFault(err) {
		t.Error("fatal remote error not classified as connection fault")
	}

	// The reader tears the connection down right after delivering the
	// result; give it a moment.
	deadline := time.Now().Add(time.Second)
	for conn.Ready() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if conn.Ready() {
		t.Fatal("connection still ready after a FATAL response")
	}

	if _, err := conn.Invoke(context.Background(), "getFileInfo", nil); err == nil {
		t.Error("Invoke on a closed connection did not fail")
	}
}

func TestResponsesOutOfOrder(t *testing.T) {
	connector := &pipeConnector{serve: func(s net.Conn) {
		acceptHandshake(t, s)
		r := bufio.NewReader(s)

		first, firstPayload := readCall(t, r)
		second, secondPayload := readCall(t, r)
		if first == nil || second == nil {
			return
		}
		// Answer in reverse arrival order; correlation is by callId.
		writeResponse(s, second.CallID, hadoop.StatusSuccess, secondPayload)
		writeResponse(s, first.CallID, hadoop.StatusSuccess, firstPayload)
	}}

	conn, err := Dial(connector, testEndpoint, "alice")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	var wg sync.WaitGroup
	for _, payload := range []string{"call-a", "call-b"} {
		wg.Add(1)
		go func(payload string) {
			defer wg.Done()
			got, err := conn.Invoke(context.Background(), "getFileInfo", []byte(payload))
			if err != nil {
				t.Errorf("Invoke(%q): %v", payload, err)
				return
			}
			if string(got) != payload {
				t.Errorf("Invoke(%q) = %q, response routed to the wrong call", payload, got)
			}
		}(payload)
	}
	wg.Wait()
}

func TestTruncatedResponseFailsCall(t *testing.T) {
	connector := &pipeConnector{serve: func(s net.Conn) {
		acceptHandshake(t, s)
		r := bufio.NewReader(s)
		header, _ := readCall(t, r)
		if header == nil {
			return
		}
		// A header promising a 100-byte segment, followed by 3 bytes and EOF.
		respHeader := hadoop.ResponseHeader{CallID: header.CallID, Status: hadoop.StatusSuccess}
		_, _ = s.Write(wire.EncodeVarintPrefixed(respHeader.Marshal()))
		_, _ = s.Write([]byte{0x00, 0x00, 0x00, 100, 'a', 'b', 'c'})
		_ = s.Close()
	}}

	conn, err := Dial(connector, testEndpoint, "alice")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	_, err = conn.Invoke(context.Background(), "getFileInfo", nil)
	var terr *common.TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("got %v, want a TransportError", err)
	}
	var truncated *common.TruncatedStreamError
	if !errors.As(err, &truncated) {
		t.Errorf("cause %v, want a TruncatedStreamError", err)
	}
	if !common.IsConnectionFault(err) {
		t.Error("truncated stream not classified as connection fault")
	}
	if conn.Ready() {
		t.Error("connection still ready after a truncated response")
	}
}

func TestInvokeTimeout(t *testing.T) {
	release := make(chan struct{})
	connector := &pipeConnector{serve: func(s net.Conn) {
		acceptHandshake(t, s)
		r := bufio.NewReader(s)
		readCall(t, r)
		<-release // never answer
		_ = s.Close()
	}}
	defer close(release)

	conn, err := Dial(connector, testEndpoint, "alice")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = conn.Invoke(ctx, "getListing", nil)
	var timeout *common.TimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("got %v, want a TimeoutError", err)
	}
	if timeout.Method != "getListing" {
		t.Errorf("timeout method = %q, want getListing", timeout.Method)
	}
	if !common.IsConnectionFault(err) {
		t.Error("timeout not classified as connection fault")
	}
	if conn.Ready() {
		t.Error("connection still ready after a timeout; the stream position cannot be trusted")
	}
}

func TestCloseFailsPendingCalls(t *testing.T) {
	started := make(chan struct{})
	connector := &pipeConnector{serve: func(s net.Conn) {
		acceptHandshake(t, s)
		r := bufio.NewReader(s)
		readCall(t, r)
		close(started)
		// Hold the connection open without answering.
		buf := make([]byte, 1)
		_, _ = s.Read(buf)
	}}

	conn, err := Dial(connector, testEndpoint, "alice")
	if err != nil {
		t.Fatal(err)
	}

	result := make(chan error, 1)
	go func() {
		_, err := conn.Invoke(context.Background(), "getFileInfo", nil)
		result <- err
	}()

	<-started
	_ = conn.Close()

	select {
	case err := <-result:
		if err == nil {
			t.Error("pending call succeeded after Close")
		}
	case <-time.After(time.Second):
		t.Fatal("pending call not released by Close")
	}
}
