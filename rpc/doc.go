// Package rpc implements the client side of the Hadoop RPC protocol used to
// talk to an HDFS NameNode. It is the communication layer underneath the
// typed filesystem client, wire-compatible with multiple NameNode protocol
// versions.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC engine,
//     including endpoint configuration, the error taxonomy, and logging.
//
//   - wire: The two length-prefix encodings the protocol mixes within one
//     stream (protobuf varint prefixes and 4-byte big-endian prefixes).
//
//   - hadoop: Hand-marshalled protobuf messages for the RPC headers, the
//     connection context, and the ClientProtocol request/response payloads.
//
//   - transport: Connection lifecycle (dial, handshake, close), the call
//     dispatcher correlating callIds to pending invocations, and the
//     response decoder classifying SUCCESS/ERROR/FATAL frames.
//
//   - resolver: Endpoint selection and failover across the configured
//     NameNode list.
package rpc
