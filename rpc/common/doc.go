// Package common contains the core data structures and utilities shared
// across the RPC engine: the client/endpoint configuration, the error
// taxonomy separating transport faults from remote application errors, and
// the logging setup.
//
// Key Components:
//
//   - Endpoint / ClientConfig: the static, ordered NameNode list with
//     per-endpoint protocol versions, resolved once at startup.
//
//   - TransportError, TimeoutError, TruncatedStreamError: local failures
//     that close the connection and make the endpoint a failover candidate.
//
//   - RemoteCallError: a server-reported Java exception, identified by class
//     name. Only FATAL remote errors terminate the connection.
//
//   - AllEndpointsUnreachableError: terminal failure after every configured
//     NameNode was tried for a single logical call.
package common
