// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ConnRealm Contributors

package realm

import (
	"context"
	"log/slog"

	"github.com/samber/oops"

	"github.com/alphapenguin/connrealm/pkg/errutil"
)

// resolveRoles folds the role query's result into a Principal. With no role
// query configured the principal simply carries zero roles. A query failure
// fails the whole attempt: a store that authenticates but cannot authorize
// is treated as a full failure, never as an empty-role success.
func (r *Realm) resolveRoles(ctx context.Context, log *slog.Logger, conn Conn, username, password string) (*Principal, error) {
	if r.cfg.RoleQuery == "" {
		return NewPrincipal(username, password, nil), nil
	}

	rows, err := conn.Query(ctx, r.cfg.RoleQuery, username)
	if err != nil {
		qErr := oops.Code(CodeRoleQueryFailed).
			With("role_query", r.cfg.RoleQuery).
			Wrap(err)
		errutil.LogError(log, "role query execution failed", qErr)
		return nil, qErr
	}
	defer rows.Close()

	// Row order is preserved and duplicates are kept; only the first
	// column matters, extra columns are ignored by the Rows contract.
	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			sErr := oops.Code(CodeRoleQueryFailed).
				With("operation", "scan role row").
				Wrap(err)
			errutil.LogError(log, "role row scan failed", sErr)
			return nil, sErr
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		iErr := oops.Code(CodeRoleQueryFailed).
			With("operation", "iterate role rows").
			Wrap(err)
		errutil.LogError(log, "role result iteration failed", iErr)
		return nil, iErr
	}

	return NewPrincipal(username, password, roles), nil
}
