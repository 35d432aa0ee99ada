// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ConnRealm Contributors

// Package realm implements connection-delegated authentication: a credential
// pair is valid exactly when the backing store accepts a connection opened
// with it. No password is stored, hashed, or compared locally.
//
// # Acquisition modes
//
// A Realm acquires its connection one of two ways, decided by Config:
//   - Factory mode: a named, unpooled ConnectorFactory is resolved from a
//     Registry (global or caller-local scope) and asked for a connection
//     using the supplied credentials.
//   - Direct mode: a named Driver is looked up from a driver facility and
//     opens a connection to a configured address using the credentials.
//
// Connection pooling is inherently incompatible with this scheme: a pooled
// factory would hand back a connection authenticated as somebody else, or
// skip authentication entirely. Bind only unpooled factories.
//
// # Roles
//
// On a successful connection, an optional single-parameter role query runs
// over that same authenticated connection; the first column of each result
// row becomes a role on the returned Principal, in row order.
//
// # Failure behavior
//
// Authenticate never panics and never leaks store internals to end users.
// Every failure returns a coded error (see the Code* constants); hosts treat
// any error as "no principal". Configuration mistakes are logged at error
// level so operators can tell them apart from routine credential rejections,
// which are logged at warning level.
package realm
