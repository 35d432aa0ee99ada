// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ConnRealm Contributors

package realm

import "github.com/samber/oops"

// Error codes carried by every failed Authenticate call. Hosts that need to
// distinguish failure classes should use the Is* predicates rather than
// matching codes directly.
const (
	// CodeNotConfigured: no acquisition mode is resolvable from the Config.
	CodeNotConfigured = "REALM_NOT_CONFIGURED"

	// CodeDriverNotFound: direct mode names a driver that is not registered.
	CodeDriverNotFound = "REALM_DRIVER_NOT_FOUND"

	// CodeLookupFailed: the registry or the named factory could not be
	// resolved.
	CodeLookupFailed = "REALM_LOOKUP_FAILED"

	// CodeAuthRejected: the backing store refused the credential while the
	// connection was being established.
	CodeAuthRejected = "REALM_AUTH_REJECTED"

	// CodeRoleQueryFailed: the store authenticated the credential but the
	// role query failed; the whole attempt fails.
	CodeRoleQueryFailed = "REALM_ROLE_QUERY_FAILED"
)

// errorCode extracts the oops code from err, or "" for plain or uncoded
// errors. Code() hands back an untyped value, so the string has to be
// asserted out.
func errorCode(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, ok := oopsErr.Code().(string)
	if !ok {
		return ""
	}
	return code
}

// IsConfigurationError reports whether err indicates the realm itself is
// unusable as configured (operator mistake, not a bad login).
func IsConfigurationError(err error) bool {
	code := errorCode(err)
	return code == CodeNotConfigured || code == CodeDriverNotFound
}

// IsLookupError reports whether err indicates a registry resolution failure.
func IsLookupError(err error) bool {
	return errorCode(err) == CodeLookupFailed
}

// IsAuthenticationRejected reports whether err indicates the store refused
// the credential. This is the routine "wrong password" outcome.
func IsAuthenticationRejected(err error) bool {
	return errorCode(err) == CodeAuthRejected
}

// IsRoleQueryError reports whether err indicates a role query failure after
// a successful connection.
func IsRoleQueryError(err error) bool {
	return errorCode(err) == CodeRoleQueryFailed
}

// Outcome returns the metrics label for an Authenticate result.
// A nil error maps to "ok".
func Outcome(err error) string {
	switch errorCode(err) {
	case "":
		if err == nil {
			return "ok"
		}
		return "error"
	case CodeNotConfigured:
		return "not_configured"
	case CodeDriverNotFound:
		return "driver_not_found"
	case CodeLookupFailed:
		return "lookup_failed"
	case CodeAuthRejected:
		return "rejected"
	case CodeRoleQueryFailed:
		return "role_query_failed"
	default:
		return "error"
	}
}
