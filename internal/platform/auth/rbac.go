package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Roles recognized across the practice. The admin role implicitly satisfies
// every role check.
const (
	RoleAdmin       = "admin"
	RoleDentist     = "dentist"
	RoleHygienist   = "hygienist"
	RoleAssistant   = "assistant"
	RoleSterileTech = "sterile_tech"
	RoleFrontDesk   = "front_desk"
	RoleBilling     = "billing"
)

// RequireRole returns middleware that checks if the user has at least one of the specified roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userRoles := RolesFromContext(c.Request().Context())
			for _, required := range roles {
				for _, has := range userRoles {
					if has == required || has == RoleAdmin {
						return next(c)
					}
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// HasRole reports whether the role list contains the given role, with admin
// satisfying any check.
func HasRole(userRoles []string, role string) bool {
	for _, has := range userRoles {
		if has == role || has == RoleAdmin {
			return true
		}
	}
	return false
}
