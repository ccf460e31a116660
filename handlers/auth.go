package handlers

import (
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"raffle-system/config"
)

// requireAdmin rejects requests unless the authenticated user's email is on
// the admin allow-list.
func requireAdmin(e *core.RequestEvent, cfg *config.Config) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Authentication required", nil)
	}
	if !cfg.IsAdmin(e.Auth.Email()) {
		return apis.NewUnauthorizedError("Admin access required", nil)
	}
	return nil
}
