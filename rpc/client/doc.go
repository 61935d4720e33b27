// Package client is the filesystem operation layer over the NameNode RPC
// engine. It maps shell-flavored operations (ls, mkdir, rm, mv, chmod,
// chown, setrep, du, count, touchz and friends) onto ClientProtocol calls,
// adding the client-side semantics the protocol itself does not provide:
// existence and type checks with rm(1)-style error messages, listing
// pagination, recursive descent, and the trash move on remove.
//
// Operations taking multiple paths process them in order and stop at the
// first failure, returning the results gathered so far.
package client
