package transport

import (
	"net"

	"github.com/spotify/snakebite/rpc/common"
	"github.com/spotify/snakebite/rpc/hadoop"
	"github.com/spotify/snakebite/rpc/wire"
)

// Handshake constants. The session preamble is write-only: the server never
// answers it, errors surface on the first real call at the earliest.
const (
	rpcHeader             = "hrpc"
	authMethodSimple      = 80
	serializationProtobuf = 0
)

// writeHandshake sends the one-time session setup on a freshly opened
// socket:
//
//	+----------------------------------------------------------+
//	|  "hrpc" (4 bytes)                                        |
//	|  protocol version (1 byte, per endpoint)                 |
//	|  auth method (1 byte, 80 = SIMPLE)                       |
//	|  serialization type (1 byte, 0 = protobuf)               |
//	|  context length (4 bytes, big endian)                    |
//	|  serialized IpcConnectionContext                         |
//	+----------------------------------------------------------+
func writeHandshake(sock net.Conn, version byte, user string) error {
	context := hadoop.ConnectionContext{
		EffectiveUser: user,
		Protocol:      hadoop.ClientProtocolName,
	}

	buf := make([]byte, 0, 64)
	buf = append(buf, rpcHeader...)
	buf = append(buf, version, authMethodSimple, serializationProtobuf)
	buf = append(buf, wire.EncodeFixedU32Prefixed(context.Marshal())...)

	_, err := sock.Write(buf)
	return err
}

// Handshake is exported for tests that need to drive the session setup
// against a fake server without a full Conn.
func Handshake(sock net.Conn, endpoint common.Endpoint, user string) error {
	return writeHandshake(sock, endpoint.Version, user)
}
