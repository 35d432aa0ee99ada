// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ConnRealm Contributors

package postgres

import "github.com/alphapenguin/connrealm/internal/realm/driver"

// Register installs the postgres driver on the process-global driver table.
// Safe to call repeatedly and from concurrent first use.
func Register() {
	driver.Register(DriverName, Driver{})
}
