package resolver

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"

	"github.com/spotify/snakebite/rpc/common"
	"github.com/spotify/snakebite/rpc/hadoop"
	"github.com/spotify/snakebite/rpc/wire"
)

// scriptConnector simulates a cluster: every port maps either to a serve
// function or, when absent, to a refused connection. Dial attempts are
// recorded in order.
type scriptConnector struct {
	mu    sync.Mutex
	dials []common.Endpoint
	serve map[int]func(net.Conn)
}

func (c *scriptConnector) Connect(endpoint common.Endpoint) (net.Conn, error) {
	c.mu.Lock()
	c.dials = append(c.dials, endpoint)
	serve := c.serve[endpoint.Port]
	c.mu.Unlock()

	if serve == nil {
		return nil, errors.New("connection refused")
	}
	client, server := net.Pipe()
	go serve(server)
	return client, nil
}

func (c *scriptConnector) GetName() string { return "script" }

func (c *scriptConnector) dialCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.dials)
}

// echoServer accepts the handshake and answers every call with its own
// request payload.
func echoServer(s net.Conn) {
	if !acceptHandshake(s) {
		return
	}
	r := bufio.NewReader(s)
	for {
		header, payload, ok := readCall(r)
		if !ok {
			return
		}
		writeResponse(s, header.CallID, hadoop.StatusSuccess, payload)
	}
}

// rejectingServer accepts the handshake and answers every call with an
// ordinary remote error of the given class.
func rejectingServer(class string) func(net.Conn) {
	return func(s net.Conn) {
		if !acceptHandshake(s) {
			return
		}
		r := bufio.NewReader(s)
		for {
			header, _, ok := readCall(r)
			if !ok {
				return
			}
			segment := append(wire.EncodeFixedU32Prefixed([]byte(class)), wire.EncodeFixedU32Prefixed([]byte(class+": denied"))...)
			writeResponse(s, header.CallID, hadoop.StatusError, segment)
		}
	}
}

// silentServer accepts the handshake and the first call but never answers,
// holding the connection open until the client gives up.
func silentServer(s net.Conn) {
	if !acceptHandshake(s) {
		return
	}
	r := bufio.NewReader(s)
	if _, _, ok := readCall(r); !ok {
		return
	}
	buf := make([]byte, 1)
	_, _ = s.Read(buf)
}

func acceptHandshake(s net.Conn) bool {
	head := make([]byte, 7)
	if _, err := io.ReadFull(s, head); err != nil {
		return false
	}
	_, err := wire.ReadFixedU32Prefixed(s)
	return err == nil
}

func readCall(r io.Reader) (*hadoop.RequestHeader, []byte, bool) {
	frame, err := wire.ReadFixedU32Prefixed(r)
	if err != nil {
		return nil, nil, false
	}
	br := bytes.NewReader(frame)
	headerBytes, err := wire.ReadVarintPrefixed(br)
	if err != nil {
		return nil, nil, false
	}
	header, err := hadoop.UnmarshalRequestHeader(headerBytes)
	if err != nil {
		return nil, nil, false
	}
	payload, err := wire.ReadVarintPrefixed(br)
	if err != nil {
		return nil, nil, false
	}
	return header, payload, true
}

func writeResponse(w io.Writer, callID uint32, status hadoop.CallStatus, segment []byte) {
	header := hadoop.ResponseHeader{CallID: callID, Status: status}
	buf := append(wire.EncodeVarintPrefixed(header.Marshal()), wire.EncodeFixedU32Prefixed(segment)...)
	_, _ = w.Write(buf)
}

func testConfig(endpoints ...common.Endpoint) common.ClientConfig {
	return common.ClientConfig{
		Endpoints:     endpoints,
		EffectiveUser: "alice",
		TimeoutSecond: 5,
	}
}

func TestInvokeReusesConnection(t *testing.T) {
	nn1 := common.Endpoint{Host: "nn1", Port: 1, Version: 9}
	connector := &scriptConnector{serve: map[int]func(net.Conn){1: echoServer}}

	r := New(testConfig(nn1), connector)
	defer r.Close()

	for i := 0; i < 3; i++ {
		got, err := r.Invoke(context.Background(), "getFileInfo", []byte("ping"))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, []byte("ping")) {
			t.Errorf("payload = %q, want %q", got, "ping")
		}
	}
	if n := connector.dialCount(); n != 1 {
		t.Errorf("dialed %d times for 3 calls, want 1", n)
	}
}

func TestFailoverToNextEndpoint(t *testing.T) {
	nn1 := common.Endpoint{Host: "nn1", Port: 1, Version: 9}
	nn2 := common.Endpoint{Host: "nn2", Port: 2, Version: 9}
	connector := &scriptConnector{serve: map[int]func(net.Conn){2: echoServer}} // nn1 refuses

	r := New(testConfig(nn1, nn2), connector)
	defer r.Close()

	got, err := r.Invoke(context.Background(), "getFileInfo", []byte("ping"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("ping")) {
		t.Errorf("payload = %q, want %q", got, "ping")
	}

	connector.mu.Lock()
	dials := append([]common.Endpoint(nil), connector.dials...)
	connector.mu.Unlock()
	want := []common.Endpoint{nn1, nn2}
	if len(dials) != 2 || dials[0] != want[0] || dials[1] != want[1] {
		t.Errorf("dials = %v, want %v", dials, want)
	}
}

func TestTimeoutFailsOverToNextEndpoint(t *testing.T) {
	nn1 := common.Endpoint{Host: "nn1", Port: 1, Version: 9}
	nn2 := common.Endpoint{Host: "nn2", Port: 2, Version: 9}
	connector := &scriptConnector{serve: map[int]func(net.Conn){
		1: silentServer, // accepts the call, never answers
		2: echoServer,
	}}

	config := testConfig(nn1, nn2)
	config.TimeoutSecond = 1
	r := New(config, connector)
	defer r.Close()

	// The timeout budget is per endpoint attempt, so the retry against nn2
	// must run with a fresh deadline and succeed.
	got, err := r.Invoke(context.Background(), "getFileInfo", []byte("ping"))
	if err != nil {
		t.Fatalf("failover after a timeout failed: %v", err)
	}
	if !bytes.Equal(got, []byte("ping")) {
		t.Errorf("payload = %q, want %q", got, "ping")
	}
	if n := connector.dialCount(); n != 2 {
		t.Errorf("dialed %d endpoints, want 2", n)
	}
}

func TestAllEndpointsUnreachable(t *testing.T) {
	nn1 := common.Endpoint{Host: "nn1", Port: 1, Version: 9}
	nn2 := common.Endpoint{Host: "nn2", Port: 2, Version: 9}
	connector := &scriptConnector{} // everything refuses

	r := New(testConfig(nn1, nn2), connector)
	defer r.Close()

	_, err := r.Invoke(context.Background(), "getFileInfo", nil)
	var unreachable *common.AllEndpointsUnreachableError
	if !errors.As(err, &unreachable) {
		t.Fatalf("got %v, want an AllEndpointsUnreachableError", err)
	}
	if len(unreachable.Failures) != 2 {
		t.Fatalf("recorded %d failures, want 2", len(unreachable.Failures))
	}
	if unreachable.Failures[0].Endpoint != nn1 || unreachable.Failures[1].Endpoint != nn2 {
		t.Errorf("failure order = %v, want [nn1 nn2]", unreachable.Failures)
	}
	for _, f := range unreachable.Failures {
		if f.Err == nil {
			t.Errorf("failure for %s carries no error", f.Endpoint)
		}
	}
}

func TestRemoteErrorDoesNotFailOver(t *testing.T) {
	nn1 := common.Endpoint{Host: "nn1", Port: 1, Version: 9}
	nn2 := common.Endpoint{Host: "nn2", Port: 2, Version: 9}
	connector := &scriptConnector{serve: map[int]func(net.Conn){
		1: rejectingServer("org.apache.hadoop.security.AccessControlException"),
		2: echoServer,
	}}

	r := New(testConfig(nn1, nn2), connector)
	defer r.Close()

	_, err := r.Invoke(context.Background(), "mkdirs", nil)
	var remote *common.RemoteCallError
	if !errors.As(err, &remote) {
		t.Fatalf("got %v, want a RemoteCallError", err)
	}
	if !remote.IsClass("AccessControlException") {
		t.Errorf("class = %q, want AccessControlException", remote.ClassName)
	}
	if n := connector.dialCount(); n != 1 {
		t.Errorf("dialed %d endpoints for a remote error, want 1", n)
	}
}
