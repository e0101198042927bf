// Package domain holds the types shared across the bridge: the closed
// error taxonomy, the request/response envelope, and the records that
// cross the process boundary.
//
// The `type` tags carried by Error are a wire contract. The remote
// caller branches on them without knowing anything about host-side
// error values, so they must stay stable across versions.
package domain
