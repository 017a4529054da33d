package rbac

import (
	"log/slog"
	"net/http"

	"github.com/geepos/geepos/internal/platform/httpx"
	"github.com/geepos/geepos/internal/shared"
)

// Guard gates navigation. For every request it resolves to exactly one of
// three outcomes: not logged in, logged in but denied, or allowed. The check
// is a synchronous in-memory predicate re-evaluated from scratch each time.
type Guard struct {
	Service *Service
	Logger  *slog.Logger
}

// Require returns middleware protecting a route group registered under the
// given canonical path key.
func (g Guard) Require(path string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := shared.UserFromContext(r.Context())
			if user == nil {
				httpx.JSON(w, http.StatusUnauthorized, httpx.Envelope{
					"result_code": "401",
					"message":     "login required",
					"redirect":    "/login",
				})
				return
			}
			role := ParseRole(user.Status)
			if !g.Service.HasPermission(role, path) {
				if g.Logger != nil {
					g.Logger.Warn("access denied",
						slog.String("path", path),
						slog.String("status", user.Status),
						slog.Int64("emp_id", user.EmpID))
				}
				httpx.JSON(w, http.StatusForbidden, httpx.Envelope{
					"result_code": "403",
					"message":     "access denied",
					"path":        path,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSubmenu returns middleware for in-page sections keyed by sub-menu
// name rather than route path.
func (g Guard) RequireSubmenu(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := shared.UserFromContext(r.Context())
			if user == nil {
				httpx.JSON(w, http.StatusUnauthorized, httpx.Envelope{
					"result_code": "401",
					"message":     "login required",
					"redirect":    "/login",
				})
				return
			}
			if !g.Service.HasSubmenuPermission(ParseRole(user.Status), key) {
				httpx.JSON(w, http.StatusForbidden, httpx.Envelope{
					"result_code": "403",
					"message":     "access denied",
					"submenu":     key,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
