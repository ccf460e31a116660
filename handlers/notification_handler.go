package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"raffle-system/config"
	"raffle-system/internal/status"
	"raffle-system/services"
)

type NotificationHandler struct {
	notifier  *services.NotificationService
	templates *services.TemplateService
	config    *config.Config
}

func NewNotificationHandler(notifier *services.NotificationService, templates *services.TemplateService, cfg *config.Config) *NotificationHandler {
	return &NotificationHandler{
		notifier:  notifier,
		templates: templates,
		config:    cfg,
	}
}

// SendNotification - Send a templated email to one or more recipients
func (h *NotificationHandler) SendNotification(e *core.RequestEvent) error {
	if err := requireAdmin(e, h.config); err != nil {
		return err
	}

	var req services.SendRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Template == "" || len(req.Recipients) == 0 {
		return apis.NewBadRequestError("Template and recipients are required", nil)
	}

	report, err := h.notifier.SendNotification(e.Request.Context(), req)
	if err != nil {
		if errors.Is(err, status.ErrTemplateNotFound) {
			return apis.NewNotFoundError("Template not found", err)
		}
		return apis.NewBadRequestError("Failed to send notification", err)
	}

	code := http.StatusOK
	if report.Failed > 0 {
		// Partial success still returns the report; 207 flags it.
		code = http.StatusMultiStatus
	}
	return e.JSON(code, report)
}

// ListTemplates - The static template catalog
func (h *NotificationHandler) ListTemplates(e *core.RequestEvent) error {
	if err := requireAdmin(e, h.config); err != nil {
		return err
	}
	return e.JSON(http.StatusOK, h.templates.ListTemplates())
}

// GetEmailLogs - Recent send outcomes, newest first
func (h *NotificationHandler) GetEmailLogs(e *core.RequestEvent) error {
	if err := requireAdmin(e, h.config); err != nil {
		return err
	}

	limit := 50
	if raw := e.Request.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	entries, err := h.notifier.Logs(e.Request.Context(), limit)
	if err != nil {
		return apis.NewBadRequestError("Failed to load email logs", err)
	}
	return e.JSON(http.StatusOK, map[string]any{
		"count": len(entries),
		"logs":  entries,
	})
}
