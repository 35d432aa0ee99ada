// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ConnRealm Contributors

// Package driver provides the named-driver facility used by direct mode: a
// process-global table of realm.Driver implementations keyed by name.
// Registration is idempotent and safe under concurrent first use.
package driver

import (
	"errors"
	"sync"

	"github.com/samber/oops"

	"github.com/alphapenguin/connrealm/internal/realm"
)

// ErrNotRegistered is returned when no driver is registered under a name.
var ErrNotRegistered = errors.New("driver not registered")

// Table holds named drivers. The zero value is not usable; create one with
// NewTable or use the process-global table via Register and Global.
type Table struct {
	mu      sync.RWMutex
	drivers map[string]realm.Driver
}

// NewTable creates an empty driver table.
func NewTable() *Table {
	return &Table{drivers: make(map[string]realm.Driver)}
}

// Register makes a driver available under name, replacing any previous
// registration. Re-registering the same name is deliberately not an error so
// that concurrent first-use initialization stays idempotent.
func (t *Table) Register(name string, d realm.Driver) {
	if name == "" || d == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.drivers[name] = d
}

// Lookup returns the driver registered under name.
func (t *Table) Lookup(name string) (realm.Driver, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	d, ok := t.drivers[name]
	if !ok {
		return nil, oops.With("driver_name", name).Wrap(ErrNotRegistered)
	}
	return d, nil
}

// Names returns the registered driver names, for diagnostics.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.drivers))
	for name := range t.drivers {
		names = append(names, name)
	}
	return names
}

// globalTable is the process-wide driver table used by default.
var globalTable = NewTable()

// Global returns the process-wide driver table.
func Global() *Table {
	return globalTable
}

// Register registers a driver on the process-wide table.
func Register(name string, d realm.Driver) {
	globalTable.Register(name, d)
}

// Compile-time interface check.
var _ realm.Drivers = (*Table)(nil)
