package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"raffle-system/config"
	"raffle-system/internal/status"
	"raffle-system/services"
)

type AttendanceHandler struct {
	ticketService *services.TicketService
	config        *config.Config
}

func NewAttendanceHandler(ticketService *services.TicketService, cfg *config.Config) *AttendanceHandler {
	return &AttendanceHandler{
		ticketService: ticketService,
		config:        cfg,
	}
}

// MarkAttendance - Check a ticket holder in at the event
func (h *AttendanceHandler) MarkAttendance(e *core.RequestEvent) error {
	if err := requireAdmin(e, h.config); err != nil {
		return err
	}

	var req struct {
		TicketNumber string `json:"ticket_number"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.TicketNumber == "" {
		return apis.NewBadRequestError("Ticket number is required", nil)
	}

	result, err := h.ticketService.MarkAttendance(e.Request.Context(), req.TicketNumber)
	if err != nil {
		switch {
		case errors.Is(err, status.ErrTicketNotFound):
			return apis.NewNotFoundError("Ticket not found", err)
		case errors.Is(err, status.ErrPaymentNotVerified):
			return apis.NewBadRequestError("Payment not verified for this ticket", err)
		default:
			return apis.NewBadRequestError("Failed to mark attendance", err)
		}
	}

	return e.JSON(http.StatusOK, result)
}

// GetAttendanceStats - Attendance counters for the event screen
func (h *AttendanceHandler) GetAttendanceStats(e *core.RequestEvent) error {
	if err := requireAdmin(e, h.config); err != nil {
		return err
	}

	stats, err := h.ticketService.AttendanceStats(e.Request.Context())
	if err != nil {
		return apis.NewBadRequestError("Failed to load attendance stats", err)
	}
	return e.JSON(http.StatusOK, stats)
}
