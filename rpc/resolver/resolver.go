// Package resolver owns the configured NameNode list and the active
// connection. It presents a single Invoke operation that is resilient to
// individual endpoints being unreachable: on a connection fault it closes
// the active connection and retries the same logical call against the next
// configured endpoint, repeating the handshake there. Ordinary remote
// errors are legitimate answers and never trigger failover.
//
// "Failover" here means "try the next configured address" in the order
// given; there is no active/standby role discovery and no runtime protocol
// version detection. Endpoints are assumed to address the same namespace.
package resolver

import (
	"context"
	"sync"
	"time"

	"github.com/spotify/snakebite/rpc/common"
	"github.com/spotify/snakebite/rpc/transport"

	"github.com/VictoriaMetrics/metrics"
)

var logger = common.Logger("resolver")

var (
	requestsTotal        = metrics.GetOrCreateCounter(`snakebite_rpc_requests_total`)
	remoteErrorsTotal    = metrics.GetOrCreateCounter(`snakebite_rpc_remote_errors_total`)
	transportErrorsTotal = metrics.GetOrCreateCounter(`snakebite_rpc_transport_errors_total`)
	failoversTotal       = metrics.GetOrCreateCounter(`snakebite_rpc_failovers_total`)
)

// Resolver selects among the configured endpoints and hands calls to the
// active connection. It is safe for concurrent use; the fields below are
// guarded by mu.
type Resolver struct {
	config    common.ClientConfig
	connector transport.Connector

	mu     sync.Mutex
	active *transport.Conn
	next   int // index of the endpoint to try for the next connection
}

// New creates a resolver over the configured endpoint list. The connector
// is injectable for tests; production passes transport.NewTCPConnector().
func New(config common.ClientConfig, connector transport.Connector) *Resolver {
	return &Resolver{
		config:    config,
		connector: connector,
	}
}

// Config returns the read-only client configuration the resolver owns.
func (r *Resolver) Config() common.ClientConfig {
	return r.config
}

// Invoke sends one logical call, failing over across endpoints when the
// active connection is or becomes unusable. Every endpoint is tried at most
// once per invocation; if none succeeds the per-endpoint failures are
// aggregated into an AllEndpointsUnreachableError.
func (r *Resolver) Invoke(ctx context.Context, method string, request []byte) ([]byte, error) {
	requestsTotal.Inc()

	var failures []common.EndpointFailure

	for attempt := 0; attempt < len(r.config.Endpoints); attempt++ {
		conn, err := r.connection()
		if err != nil {
			// The endpoint never came up; record it and move on.
			failures = append(failures, common.EndpointFailure{Endpoint: r.lastEndpoint(), Err: err})
			transportErrorsTotal.Inc()
			continue
		}

		payload, err := r.invokeOnce(ctx, conn, method, request)
		if err == nil {
			return payload, nil
		}

		if !common.IsConnectionFault(err) {
			// A well-formed remote answer (e.g. file not found). The
			// endpoint is healthy; propagate as-is.
			remoteErrorsTotal.Inc()
			return nil, err
		}

		transportErrorsTotal.Inc()
		failures = append(failures, common.EndpointFailure{Endpoint: conn.Endpoint(), Err: err})
		r.markDown(conn)

		if attempt < len(r.config.Endpoints)-1 {
			failoversTotal.Inc()
			logger.Warnf("namenode %s unusable (%v), failing over", conn.Endpoint(), err)
		}
	}

	return nil, &common.AllEndpointsUnreachableError{Failures: failures}
}

// invokeOnce sends one call on one connection under the configured timeout.
// The timeout is per endpoint attempt: an endpoint that times out must not
// consume the budget of the remaining ones, or failover would start with an
// already-expired context and fail instantly.
func (r *Resolver) invokeOnce(ctx context.Context, conn *transport.Conn, method string, request []byte) ([]byte, error) {
	if r.config.TimeoutSecond > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(r.config.TimeoutSecond)*time.Second)
		defer cancel()
	}
	return conn.Invoke(ctx, method, request)
}

// Close shuts down the active connection, if any.
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		_ = r.active.Close()
		r.active = nil
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// connection returns the active connection, dialing the next configured
// endpoint if there is none. The first endpoint that completes a handshake
// becomes active.
func (r *Resolver) connection() (*transport.Conn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil && r.active.Ready() {
		return r.active, nil
	}
	r.active = nil

	endpoint := r.config.Endpoints[r.next%len(r.config.Endpoints)]
	r.next++

	conn, err := transport.Dial(r.connector, endpoint, r.config.User())
	if err != nil {
		return nil, err
	}

	logger.Infof("connected to namenode %s", endpoint)
	r.active = conn
	return conn, nil
}

// markDown closes the given connection and forgets it if still active.
func (r *Resolver) markDown(conn *transport.Conn) {
	_ = conn.Close()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == conn {
		r.active = nil
	}
}

// lastEndpoint names the endpoint the most recent dial attempt targeted.
func (r *Resolver) lastEndpoint() common.Endpoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := (r.next - 1 + len(r.config.Endpoints)) % len(r.config.Endpoints)
	return r.config.Endpoints[idx]
}
