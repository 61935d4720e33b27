package transport

import (
	"net"
	"time"

	"github.com/spotify/snakebite/rpc/common"
)

var logger = common.Logger("transport")

// --------------------------------------------------------------------------
// Interface Definitions for dependency injection
// --------------------------------------------------------------------------

// Connector abstracts how the raw socket to an endpoint is established.
// Tests inject in-process pipes; production uses the TCP connector.
type Connector interface {
	// Connect establishes a single connection to the given endpoint
	Connect(endpoint common.Endpoint) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "tcp")
	GetName() string
}

// --------------------------------------------------------------------------
// TCP connector
// --------------------------------------------------------------------------

const dialTimeout = 10 * time.Second

type tcpConnector struct{}

// NewTCPConnector returns the production connector dialing NameNodes over
// TCP with TCP_NODELAY set, matching the request/response traffic pattern.
func NewTCPConnector() Connector {
	return &tcpConnector{}
}

func (c *tcpConnector) GetName() string {
	return "tcp"
}

func (c *tcpConnector) Connect(endpoint common.Endpoint) (net.Conn, error) {
	conn, err := net.DialTimeout("tcp", endpoint.Addr(), dialTimeout)
	if err != nil {
		return nil, err
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	return conn, nil
}
