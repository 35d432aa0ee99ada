// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ConnRealm Contributors

package realm

import "slices"

// Principal is the identity produced by a successful authentication attempt.
type Principal struct {
	// Username is the name the store accepted, exactly as supplied.
	Username string

	// Password is the plaintext credential that was used to authenticate.
	// It is carried only because some host identity representations require
	// it (e.g. for credential pass-through); hosts that do not need it
	// should blank it immediately after construction.
	Password string

	// Roles is the ordered list of role names returned by the role query.
	// Order of appearance is preserved and duplicates are not removed.
	// Empty when no role query is configured.
	Roles []string
}

// NewPrincipal builds a Principal, copying roles so later mutation of the
// input slice cannot alter the identity.
func NewPrincipal(username, password string, roles []string) *Principal {
	p := &Principal{
		Username: username,
		Password: password,
		Roles:    make([]string, len(roles)),
	}
	copy(p.Roles, roles)
	return p
}

// HasRole reports whether the principal carries the named role.
func (p *Principal) HasRole(name string) bool {
	return slices.Contains(p.Roles, name)
}
