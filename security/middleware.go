package security

import (
	"fmt"
	"strings"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

const authUserKey = "authUser"

// AuthUser returns the authenticated user record stored by RequireAuth,
// or nil when the request is unauthenticated.
func AuthUser(e *core.RequestEvent) *core.Record {
	record, _ := e.Get(authUserKey).(*core.Record)
	return record
}

// RequireAuth validates the bearer token and loads the user record onto
// the request. Missing or invalid tokens end the request with 401.
func RequireAuth(app core.App, secret string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		header := e.Request.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return apis.NewUnauthorizedError("Missing token", nil)
		}

		claims, err := ParseToken(secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return apis.NewUnauthorizedError("Invalid token", nil)
		}

		user, err := app.FindRecordById("users", claims.UserID)
		if err != nil {
			return apis.NewUnauthorizedError("Invalid token", nil)
		}

		e.Set(authUserKey, user)
		return e.Next()
	}
}

// RequireRole ends the request with 403 unless the authenticated user
// holds one of the given roles. Must run after RequireAuth.
func RequireRole(roles ...string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		user := AuthUser(e)
		if user == nil {
			return apis.NewUnauthorizedError("Missing token", nil)
		}

		role := user.GetString("role")
		for _, allowed := range roles {
			if role == allowed {
				return e.Next()
			}
		}
		return apis.NewForbiddenError(fmt.Sprintf("Role %s cannot access this resource", role), nil)
	}
}
