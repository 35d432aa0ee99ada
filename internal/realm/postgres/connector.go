// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ConnRealm Contributors

// Package postgres adapts PostgreSQL (via pgx) to the realm's collaborator
// interfaces: an unpooled per-credential connection factory and a named
// driver for direct mode.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/alphapenguin/connrealm/internal/realm"
)

// Connector is an unpooled realm.ConnectorFactory. Every Connect call dials
// the server anew with the supplied credential, which is the whole point:
// pooling would hand back a connection authenticated as somebody else.
type Connector struct {
	base *pgx.ConnConfig
}

// NewConnector parses connString (URL or DSN form, without credentials) and
// returns a factory producing connections authenticated per call.
func NewConnector(connString string) (*Connector, error) {
	base, err := pgx.ParseConfig(connString)
	if err != nil {
		return nil, oops.
			With("operation", "parse connection string").
			Wrap(err)
	}
	return &Connector{base: base}, nil
}

// Connect opens a new connection authenticated as username/password.
func (c *Connector) Connect(ctx context.Context, username, password string) (realm.Conn, error) {
	cfg := c.base.Copy()
	cfg.User = username
	cfg.Password = password

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, classifyConnectError(err)
	}
	return &Conn{conn: conn}, nil
}

// DriverName is the name the postgres driver registers under.
const DriverName = "postgres"

// Driver implements realm.Driver by opening pgx connections by address.
type Driver struct{}

// Open parses address and connects as username/password.
func (Driver) Open(ctx context.Context, address, username, password string) (realm.Conn, error) {
	connector, err := NewConnector(address)
	if err != nil {
		return nil, err
	}
	return connector.Connect(ctx, username, password)
}

// pgxConn is the slice of *pgx.Conn the adapter needs; pgxmock satisfies it.
type pgxConn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close(ctx context.Context) error
}

// Conn wraps a single pgx connection as a realm.Conn.
type Conn struct {
	conn pgxConn
}

// Query runs sql over the authenticated connection.
func (c *Conn) Query(ctx context.Context, sql string, args ...any) (realm.Rows, error) {
	pgxRows, err := c.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, oops.With("operation", "query").Wrap(err)
	}
	return &rows{rows: pgxRows}, nil
}

// Close releases the connection.
func (c *Conn) Close(ctx context.Context) error {
	if err := c.conn.Close(ctx); err != nil {
		return oops.With("operation", "close connection").Wrap(err)
	}
	return nil
}

// rows adapts pgx.Rows to realm.Rows. Scan fills only the leading columns so
// role queries returning extra columns still work.
type rows struct {
	rows pgx.Rows
}

func (r *rows) Next() bool {
	return r.rows.Next()
}

func (r *rows) Scan(dest ...any) error {
	if len(dest) == 0 {
		return nil
	}

	values, err := r.rows.Values()
	if err != nil {
		return oops.With("operation", "read row values").Wrap(err)
	}
	if len(values) < len(dest) {
		return oops.
			With("columns", len(values)).
			With("destinations", len(dest)).
			Errorf("row has fewer columns than scan destinations")
	}

	for i, d := range dest {
		target, ok := d.(*string)
		if !ok {
			return oops.Errorf("unsupported scan destination type %T", d)
		}
		*target = asString(values[i])
	}
	return nil
}

func (r *rows) Err() error {
	return r.rows.Err()
}

func (r *rows) Close() {
	r.rows.Close()
}

// asString renders a column value as a role name.
func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(v)
	}
}

// classifyConnectError annotates connection errors with their SQLSTATE so
// operators can tell credential rejections from other failures in logs.
func classifyConnectError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return oops.
			With("sqlstate", pgErr.Code).
			With("credential_error", isCredentialCode(pgErr.Code)).
			Wrap(err)
	}
	return oops.With("operation", "connect").Wrap(err)
}

// IsCredentialError reports whether err is the server refusing the
// credential itself, as opposed to a network or protocol failure.
func IsCredentialError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && isCredentialCode(pgErr.Code)
}

func isCredentialCode(code string) bool {
	return code == pgerrcode.InvalidPassword ||
		code == pgerrcode.InvalidAuthorizationSpecification
}

// Compile-time interface checks.
var (
	_ realm.ConnectorFactory = (*Connector)(nil)
	_ realm.Driver           = Driver{}
	_ realm.Conn             = (*Conn)(nil)
	_ realm.Rows             = (*rows)(nil)
)
