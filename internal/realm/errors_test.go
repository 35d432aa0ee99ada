// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ConnRealm Contributors

package realm_test

import (
	"errors"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"

	"github.com/alphapenguin/connrealm/internal/realm"
)

func TestErrorPredicates(t *testing.T) {
	notConfigured := oops.Code(realm.CodeNotConfigured).Errorf("x")
	driverMissing := oops.Code(realm.CodeDriverNotFound).Errorf("x")
	lookupFailed := oops.Code(realm.CodeLookupFailed).Errorf("x")
	rejected := oops.Code(realm.CodeAuthRejected).Errorf("x")
	roleQuery := oops.Code(realm.CodeRoleQueryFailed).Errorf("x")
	plain := errors.New("x")

	assert.True(t, realm.IsConfigurationError(notConfigured))
	assert.True(t, realm.IsConfigurationError(driverMissing))
	assert.False(t, realm.IsConfigurationError(rejected))
	assert.False(t, realm.IsConfigurationError(plain))
	assert.False(t, realm.IsConfigurationError(nil))

	assert.True(t, realm.IsLookupError(lookupFailed))
	assert.False(t, realm.IsLookupError(rejected))

	assert.True(t, realm.IsAuthenticationRejected(rejected))
	assert.False(t, realm.IsAuthenticationRejected(roleQuery))

	assert.True(t, realm.IsRoleQueryError(roleQuery))
	assert.False(t, realm.IsRoleQueryError(lookupFailed))
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil is ok", nil, "ok"},
		{"not configured", oops.Code(realm.CodeNotConfigured).Errorf("x"), "not_configured"},
		{"driver not found", oops.Code(realm.CodeDriverNotFound).Errorf("x"), "driver_not_found"},
		{"lookup failed", oops.Code(realm.CodeLookupFailed).Errorf("x"), "lookup_failed"},
		{"rejected", oops.Code(realm.CodeAuthRejected).Errorf("x"), "rejected"},
		{"role query failed", oops.Code(realm.CodeRoleQueryFailed).Errorf("x"), "role_query_failed"},
		{"plain error", errors.New("x"), "error"},
		{"uncoded oops error", oops.Errorf("x"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, realm.Outcome(tt.err))
		})
	}
}
