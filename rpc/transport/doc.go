// Package transport implements the connection layer of the NameNode RPC
// engine: socket establishment, the write-only session handshake, the call
// dispatcher that assigns callIds and correlates responses, and the
// response decoder that classifies SUCCESS, ERROR and FATAL frames.
//
// The package focuses on:
//   - One Conn per endpoint owning the socket, callId counter and pending
//     call table exclusively
//   - A single reader goroutine demultiplexing responses by callId, with
//     writes serialized by a mutex so frames never interleave
//   - Strict separation between transport faults (which poison the stream
//     and fail every pending call) and remote errors (which fail exactly
//     one call, unless FATAL)
//
// Key Components:
//
//   - Connector: interface for socket establishment, injectable so tests
//     can run against in-process pipes.
//
//   - Conn: a single multiplexed connection. Invoke blocks the caller until
//     the matching response frame is fully read or the connection fails.
package transport
