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

type PaymentHandler struct {
	ticketService *services.TicketService
	notifier      *services.NotificationService
	config        *config.Config
}

func NewPaymentHandler(ticketService *services.TicketService, notifier *services.NotificationService, cfg *config.Config) *PaymentHandler {
	return &PaymentHandler{
		ticketService: ticketService,
		notifier:      notifier,
		config:        cfg,
	}
}

// VerifyPayment - Confirm or reject an EFT payment
func (h *PaymentHandler) VerifyPayment(e *core.RequestEvent) error {
	if err := requireAdmin(e, h.config); err != nil {
		return err
	}

	var req struct {
		TicketNumber  string `json:"ticket_number"`
		PaymentStatus string `json:"payment_status"`
		Notes         string `json:"notes"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.TicketNumber == "" || req.PaymentStatus == "" {
		return apis.NewBadRequestError("Ticket number and payment status are required", nil)
	}

	ticket, err := h.ticketService.VerifyPayment(e.Request.Context(), req.TicketNumber, req.PaymentStatus, req.Notes)
	if err != nil {
		if errors.Is(err, status.ErrTicketNotFound) {
			return apis.NewNotFoundError("Ticket not found", err)
		}
		return apis.NewBadRequestError("Failed to verify payment", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message": "Payment status updated",
		"ticket":  ticket,
	})
}

// SendPaymentReminder - Nudge a pending EFT buyer
func (h *PaymentHandler) SendPaymentReminder(e *core.RequestEvent) error {
	if err := requireAdmin(e, h.config); err != nil {
		return err
	}

	var req struct {
		TicketNumber string            `json:"ticket_number"`
		BankDetails  map[string]string `json:"bank_details"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	ticket, err := h.ticketService.GetTicket(e.Request.Context(), req.TicketNumber)
	if err != nil {
		return apis.NewNotFoundError("Ticket not found", err)
	}

	if err := h.notifier.SendPaymentReminder(e.Request.Context(), *ticket, req.BankDetails); err != nil {
		return apis.NewBadRequestError("Failed to send reminder", err)
	}

	return e.JSON(http.StatusOK, map[string]any{"message": "Reminder sent"})
}
