package hadoop

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// --------------------------------------------------------------------------
// RPC header constants
// --------------------------------------------------------------------------

// ClientProtocolName is the Java protocol class every NameNode call is
// addressed to.
const ClientProtocolName = "org.apache.hadoop.hdfs.protocol.ClientProtocol"

// Values for RequestHeader.RPCKind and RequestHeader.RPCOp.
const (
	RPCKindProtocolBuffer int32 = 2 // RPC_PROTOCOL_BUFFER
	RPCOpFinalPayload     int32 = 0 // RPC_FINAL_PAYLOAD
)

// CallStatus is the server's verdict on one call, carried in every
// response header.
type CallStatus int32

const (
	StatusSuccess CallStatus = 0
	StatusError   CallStatus = 1
	StatusFatal   CallStatus = 2
)

func (s CallStatus) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusError:
		return "ERROR"
	case StatusFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// --------------------------------------------------------------------------
// Request header
// --------------------------------------------------------------------------

// RequestHeader precedes every request payload on the wire. The callId
// correlates the eventual response; the method name routes the payload to
// the right ClientProtocol operation on the server.
type RequestHeader struct {
	RPCKind    int32
	RPCOp      int32
	CallID     uint32
	MethodName string
}

func (h *RequestHeader) Marshal() []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(h.RPCKind))
	buf = protowire.AppendTag(buf, 2, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(h.RPCOp))
	buf = protowire.AppendTag(buf, 3, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(h.CallID))
	buf = protowire.AppendTag(buf, 4, protowire.BytesType)
	buf = protowire.AppendString(buf, h.MethodName)
	return buf
}

// UnmarshalRequestHeader exists for the benefit of in-process test servers;
// the client itself never parses request headers.
func UnmarshalRequestHeader(b []byte) (*RequestHeader, error) {
	h := &RequestHeader{}
	d := newFieldReader(b)
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			h.RPCKind = int32(d.varint())
		case 2:
			h.RPCOp = int32(d.varint())
		case 3:
			h.CallID = uint32(d.varint())
		case 4:
			h.MethodName = d.string()
		default:
			d.skip(num, typ)
		}
	}
	return h, d.err
}

// --------------------------------------------------------------------------
// Response header
// --------------------------------------------------------------------------

// ResponseHeader is parsed from every inbound frame and used only to route
// the following segment to the matching pending call.
type ResponseHeader struct {
	CallID uint32
	Status CallStatus
}

func (h *ResponseHeader) Marshal() []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(h.CallID))
	buf = protowire.AppendTag(buf, 2, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(h.Status))
	return buf
}

func UnmarshalResponseHeader(b []byte) (*ResponseHeader, error) {
	h := &ResponseHeader{}
	d := newFieldReader(b)
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			h.CallID = uint32(d.varint())
		case 2:
			h.Status = CallStatus(d.varint())
		default:
			d.skip(num, typ)
		}
	}
	return h, d.err
}

// --------------------------------------------------------------------------
// Connection context
// --------------------------------------------------------------------------

// ConnectionContext is sent once per connection as the handshake payload.
// It names the effective user and the protocol class the session targets.
type ConnectionContext struct {
	EffectiveUser string
	Protocol      string
}

func (c *ConnectionContext) Marshal() []byte {
	var userInfo []byte
	userInfo = protowire.AppendTag(userInfo, 1, protowire.BytesType)
	userInfo = protowire.AppendString(userInfo, c.EffectiveUser)

	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.BytesType)
	buf = protowire.AppendBytes(buf, userInfo)
	buf = protowire.AppendTag(buf, 2, protowire.BytesType)
	buf = protowire.AppendString(buf, c.Protocol)
	return buf
}

// UnmarshalConnectionContext is used by in-process test servers.
func UnmarshalConnectionContext(b []byte) (*ConnectionContext, error) {
	c := &ConnectionContext{}
	d := newFieldReader(b)
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			inner := newFieldReader(d.bytes())
			for {
				n2, t2, ok2 := inner.next()
				if !ok2 {
					break
				}
				if n2 == 1 {
					c.EffectiveUser = inner.string()
				} else {
					inner.skip(n2, t2)
				}
			}
			if inner.err != nil {
				return nil, inner.err
			}
		case 2:
			c.Protocol = d.string()
		default:
			d.skip(num, typ)
		}
	}
	return c, d.err
}
