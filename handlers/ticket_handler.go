package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"raffle-system/config"
	"raffle-system/internal/status"
	"raffle-system/services"
)

type TicketHandler struct {
	ticketService *services.TicketService
	config        *config.Config
}

func NewTicketHandler(ticketService *services.TicketService, cfg *config.Config) *TicketHandler {
	return &TicketHandler{
		ticketService: ticketService,
		config:        cfg,
	}
}

// CreateTicket - Register a new ticket sale
func (h *TicketHandler) CreateTicket(e *core.RequestEvent) error {
	if err := requireAdmin(e, h.config); err != nil {
		return err
	}

	var req services.CreateTicketRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.SellerEmail == "" {
		req.SellerEmail = e.Auth.Email()
	}

	ticket, err := h.ticketService.CreateTicket(e.Request.Context(), req)
	if err != nil {
		if errors.Is(err, status.ErrMissingFields) {
			return apis.NewBadRequestError("Name, email, payment method and seller are required", err)
		}
		return apis.NewBadRequestError("Failed to create ticket", err)
	}

	return e.JSON(http.StatusCreated, map[string]any{
		"message": "Ticket created",
		"ticket":  ticket,
	})
}

// GetDashboard - Sales and attendance overview
func (h *TicketHandler) GetDashboard(e *core.RequestEvent) error {
	if err := requireAdmin(e, h.config); err != nil {
		return err
	}

	stats, err := h.ticketService.Dashboard(e.Request.Context())
	if err != nil {
		return apis.NewBadRequestError("Failed to load dashboard", err)
	}
	return e.JSON(http.StatusOK, stats)
}

// ExportTickets - Download all tickets as CSV
func (h *TicketHandler) ExportTickets(e *core.RequestEvent) error {
	if err := requireAdmin(e, h.config); err != nil {
		return err
	}

	data, err := h.ticketService.ExportCSV(e.Request.Context())
	if err != nil {
		return apis.NewBadRequestError("Failed to export tickets", err)
	}

	filename := "raffle-tickets-" + time.Now().Format("2006-01-02") + ".csv"
	e.Response.Header().Set("Content-Disposition", "attachment; filename="+filename)
	return e.Blob(http.StatusOK, "text/csv", data)
}
