package middleware

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Role constants define the supported user roles.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

// RequireRole returns a huma operation middleware admitting only callers whose
// token role is one of roles. Attach it through Operation.Middlewares on
// routes served behind Auth.
//
// A missing role yields 401, a role outside the list 403. The handler and
// input parsing never run in either case.
func RequireRole(api huma.API, roles ...string) func(huma.Context, func(huma.Context)) {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(ctx huma.Context, next func(huma.Context)) {
		role, ok := RoleFromContext(ctx.Context())
		if !ok || role == "" {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "authentication required")
			return
		}
		if _, match := allowed[role]; !match {
			_ = huma.WriteErr(api, ctx, http.StatusForbidden, "insufficient permissions")
			return
		}
		next(ctx)
	}
}
