package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/geepos/geepos/internal/platform/httpx"
	"github.com/geepos/geepos/internal/shared"
)

// PermissionsHandler exposes the session role's allowed sets so the client
// can filter its menus.
type PermissionsHandler struct {
	logger  *slog.Logger
	service *Service
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger, service *Service) *PermissionsHandler {
	return &PermissionsHandler{logger: logger, service: service}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Get("/", h.listPermissions)
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	user := shared.UserFromContext(r.Context())
	if user == nil {
		httpx.OKFields(w, httpx.Envelope{
			"permissions": []string{},
			"submenus":    []string{},
		})
		return
	}
	role := ParseRole(user.Status)
	httpx.OKFields(w, httpx.Envelope{
		"status":      user.Status,
		"permissions": h.service.Permissions(role),
		"submenus":    h.service.SubmenuPermissions(role),
	})
}
