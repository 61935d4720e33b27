// Package hadoop defines the protobuf messages exchanged with the NameNode
// and marshals them by hand on top of protowire primitives: the RPC request
// and response headers, the connection context sent during the handshake,
// and the ClientProtocol request/response payloads for the supported
// filesystem operations.
//
// Unknown fields are skipped during decoding, so responses from newer
// servers with additional fields remain parseable. The Marshal* response
// helpers and Unmarshal* request helpers exist for in-process test servers;
// the client itself only marshals requests and unmarshals responses.
package hadoop
