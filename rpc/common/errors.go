package common

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Error taxonomy
// --------------------------------------------------------------------------
//
// The protocol distinguishes two failure worlds that must never be mixed up:
// local transport faults (the connection is broken, the stream position can
// no longer be trusted) and remote application errors (a well-formed answer
// from the server that happens to be a Java exception). Only the former make
// an endpoint a failover candidate.

// TruncatedStreamError reports that the byte stream ended in the middle of a
// framing element. The segment name identifies what was being read.
type TruncatedStreamError struct {
	Segment string
}

func (e *TruncatedStreamError) Error() string {
	return fmt.Sprintf("truncated stream while reading %s", e.Segment)
}

// TransportError reports a local I/O or framing failure on a connection.
// The connection is unusable afterwards and has been closed.
type TransportError struct {
	Endpoint Endpoint
	Op       string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error on %s during %s: %v", e.Endpoint, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// TimeoutError reports that a caller-specified deadline expired before the
// response arrived. The underlying connection has been closed, since a
// half-read frame makes the stream unusable.
type TimeoutError struct {
	Endpoint Endpoint
	Method   string
	After    time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("call %q to %s timed out after %s", e.Method, e.Endpoint, e.After)
}

// RemoteCallError is an application-level failure reported by the NameNode.
// It carries the Java exception class name and the remote stack trace as
// plain strings; callers match on ClassName rather than on a reconstructed
// exception hierarchy. Fatal marks server-initiated session termination.
type RemoteCallError struct {
	ClassName  string
	StackTrace string
	Fatal      bool
}

func (e *RemoteCallError) Error() string {
	msg := e.ClassName
	if first := firstLine(e.StackTrace); first != "" {
		msg += ": " + first
	}
	if e.Fatal {
		return "fatal remote error " + msg
	}
	return "remote error " + msg
}

// IsClass reports whether the remote exception class name matches. It
// accepts both fully qualified names and the bare class name.
func (e *RemoteCallError) IsClass(name string) bool {
	if e.ClassName == name {
		return true
	}
	return strings.HasSuffix(e.ClassName, "."+name)
}

// AllEndpointsUnreachableError aggregates the per-endpoint failures after
// every configured NameNode was tried for one logical call.
type AllEndpointsUnreachableError struct {
	Failures []EndpointFailure
}

// EndpointFailure records why one endpoint was given up on.
type EndpointFailure struct {
	Endpoint Endpoint
	Err      error
}

func (e *AllEndpointsUnreachableError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("all %d configured namenodes unreachable:", len(e.Failures)))
	for _, f := range e.Failures {
		sb.WriteString(fmt.Sprintf("\n  %s: %v", f.Endpoint, f.Err))
	}
	return sb.String()
}

// --------------------------------------------------------------------------
// Classification helpers
// --------------------------------------------------------------------------

// IsConnectionFault reports whether err makes the connection (and thus the
// endpoint) unusable: transport failures, timeouts and FATAL remote errors.
// Ordinary remote errors are legitimate answers and never count.
func IsConnectionFault(err error) bool {
	var transport *TransportError
	if errors.As(err, &transport) {
		return true
	}
	var timeout *TimeoutError
	if errors.As(err, &timeout) {
		return true
	}
	var remote *RemoteCallError
	if errors.As(err, &remote) {
		return remote.Fatal
	}
	return false
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}
