// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ConnRealm Contributors

package realm

import "github.com/samber/oops"

// Mode is the connection acquisition strategy selected by a Config.
type Mode int

const (
	// ModeNone means neither acquisition strategy is configured.
	ModeNone Mode = iota
	// ModeFactory resolves a named ConnectorFactory from a Registry.
	ModeFactory
	// ModeDirect opens a connection through a named Driver by address.
	ModeDirect
)

// String returns the mode name for logging.
func (m Mode) String() string {
	switch m {
	case ModeFactory:
		return "factory"
	case ModeDirect:
		return "direct"
	default:
		return "none"
	}
}

// Config holds the realm settings. It is immutable once the Realm is
// constructed; concurrent Authenticate calls share it read-only.
type Config struct {
	// ResourceName names a ConnectorFactory bound in the Registry.
	// When set, factory mode is used even if direct-mode fields are also set.
	ResourceName string

	// DriverName names a registered Driver for direct mode.
	DriverName string

	// ConnectionAddress is the connection target for direct mode.
	// It should not embed credentials; those are supplied per attempt.
	ConnectionAddress string

	// RoleQuery is an optional query taking exactly one parameter (the
	// username) whose first result column yields role names.
	RoleQuery string

	// UseLocalScope selects the caller-local registry scope instead of the
	// process-wide global scope when resolving ResourceName.
	UseLocalScope bool
}

// Mode selects the acquisition strategy. ResourceName takes precedence over
// the direct-mode fields when both are configured.
func (c Config) Mode() Mode {
	if c.ResourceName != "" {
		return ModeFactory
	}
	if c.ConnectionAddress != "" {
		return ModeDirect
	}
	return ModeNone
}

// Validate reports configuration mistakes an operator must fix. A Realm can
// still be constructed with an invalid Config; every Authenticate call then
// fails deterministically with a configuration error.
func (c Config) Validate() error {
	switch c.Mode() {
	case ModeNone:
		return oops.Code(CodeNotConfigured).
			Errorf("neither resource_name nor connection_address is configured")
	case ModeDirect:
		if c.DriverName == "" {
			return oops.Code(CodeNotConfigured).
				With("connection_address", c.ConnectionAddress).
				Errorf("connection_address is set but driver_name is empty")
		}
	case ModeFactory:
		if c.UseLocalScope && c.ResourceName == "" {
			return oops.Code(CodeNotConfigured).
				Errorf("use_local_scope requires resource_name")
		}
	}
	return nil
}
