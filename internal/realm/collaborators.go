// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ConnRealm Contributors

package realm

import "context"

// Scope selects which registry namespace a factory lookup searches.
type Scope int

const (
	// ScopeGlobal is the single process-wide registry namespace.
	ScopeGlobal Scope = iota
	// ScopeLocal is the caller-local namespace, selected by the calling
	// context rather than implicit thread-bound state.
	ScopeLocal
)

// String returns the scope name for logging.
func (s Scope) String() string {
	if s == ScopeLocal {
		return "local"
	}
	return "global"
}

// Rows is the result cursor produced by a role query. It is shaped after
// pgx.Rows so store adapters stay thin.
type Rows interface {
	// Next advances to the next row, reporting false when exhausted.
	Next() bool

	// Scan copies the leading columns of the current row into dest.
	// Implementations must tolerate fewer destinations than result columns;
	// extra columns are ignored.
	Scan(dest ...any) error

	// Err returns the error, if any, that terminated iteration.
	Err() error

	// Close releases the cursor. Safe to call more than once.
	Close()
}

// Conn is a transient, single-use connection to the backing store. The realm
// owns it for the duration of one authentication attempt and closes it on
// every exit path.
type Conn interface {
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Close(ctx context.Context) error
}

// ConnectorFactory produces a connection authenticated as the supplied
// credential. Implementations must not pool: each Connect call has to reach
// the store so the store itself verifies the credential.
type ConnectorFactory interface {
	Connect(ctx context.Context, username, password string) (Conn, error)
}

// Registry resolves a symbolic resource name to a ConnectorFactory.
// Implementations must be safe for concurrent use.
type Registry interface {
	Lookup(name string, scope Scope) (ConnectorFactory, error)
}

// Driver opens a connection to an address using the supplied credential.
// The store performs authentication as part of connection establishment.
type Driver interface {
	Open(ctx context.Context, address, username, password string) (Conn, error)
}

// Drivers is the driver facility consumed in direct mode. The process-global
// implementation lives in the driver package; tests substitute fakes.
type Drivers interface {
	Lookup(name string) (Driver, error)
}
