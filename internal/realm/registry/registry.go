// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ConnRealm Contributors

// Package registry provides a name-to-connection-factory registry with a
// process-wide global scope and a caller-local scope, the analog of the
// naming directory a host container would populate at startup.
package registry

import (
	"errors"
	"sync"

	"github.com/samber/oops"

	"github.com/alphapenguin/connrealm/internal/realm"
)

// ErrNotBound is returned when a name has no factory bound in the requested
// scope.
var ErrNotBound = errors.New("not bound")

// Bindings maps resource names to connection factories. The zero value is
// not usable; create one with New. Safe for concurrent use.
type Bindings struct {
	mu     sync.RWMutex
	global map[string]realm.ConnectorFactory
	local  map[string]realm.ConnectorFactory
}

// New creates an empty registry.
func New() *Bindings {
	return &Bindings{
		global: make(map[string]realm.ConnectorFactory),
		local:  make(map[string]realm.ConnectorFactory),
	}
}

// Bind registers a factory under name in the global scope, replacing any
// previous binding.
func (b *Bindings) Bind(name string, factory realm.ConnectorFactory) error {
	return b.bind(name, factory, realm.ScopeGlobal)
}

// BindLocal registers a factory under name in the caller-local scope,
// replacing any previous binding.
func (b *Bindings) BindLocal(name string, factory realm.ConnectorFactory) error {
	return b.bind(name, factory, realm.ScopeLocal)
}

func (b *Bindings) bind(name string, factory realm.ConnectorFactory, scope realm.Scope) error {
	if name == "" {
		return oops.Errorf("binding name cannot be empty")
	}
	if factory == nil {
		return oops.With("name", name).Errorf("cannot bind a nil factory")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if scope == realm.ScopeLocal {
		b.local[name] = factory
	} else {
		b.global[name] = factory
	}
	return nil
}

// Unbind removes a name from the given scope. Unbinding an absent name is
// not an error.
func (b *Bindings) Unbind(name string, scope realm.Scope) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if scope == realm.ScopeLocal {
		delete(b.local, name)
	} else {
		delete(b.global, name)
	}
}

// Lookup resolves name in the requested scope. Scopes are disjoint: a
// global binding is not visible through the local scope and vice versa.
func (b *Bindings) Lookup(name string, scope realm.Scope) (realm.ConnectorFactory, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	table := b.global
	if scope == realm.ScopeLocal {
		table = b.local
	}

	factory, ok := table[name]
	if !ok {
		return nil, oops.
			With("name", name).
			With("scope", scope.String()).
			Wrap(ErrNotBound)
	}
	return factory, nil
}

// Compile-time interface check.
var _ realm.Registry = (*Bindings)(nil)
