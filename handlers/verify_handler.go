package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"

	"raffle-system/config"
	"raffle-system/services"
)

type VerifyHandler struct {
	ticketService *services.TicketService
	tokenService  *services.TokenService
	redis         *redis.Client
	config        *config.Config
}

func NewVerifyHandler(ticketService *services.TicketService, tokenService *services.TokenService, redisClient *redis.Client, cfg *config.Config) *VerifyHandler {
	return &VerifyHandler{
		ticketService: ticketService,
		tokenService:  tokenService,
		redis:         redisClient,
		config:        cfg,
	}
}

// VerifyTicket - Validate a scanned QR token and cross-check the store
func (h *VerifyHandler) VerifyTicket(e *core.RequestEvent) error {
	if err := requireAdmin(e, h.config); err != nil {
		return err
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Token == "" {
		return apis.NewBadRequestError("Token is required", nil)
	}

	verification := h.ticketService.VerifyToken(e.Request.Context(), req.Token)
	return e.JSON(http.StatusOK, verification)
}

// GetQRCode - Render the QR code PNG for an existing ticket
func (h *VerifyHandler) GetQRCode(e *core.RequestEvent) error {
	if err := requireAdmin(e, h.config); err != nil {
		return err
	}

	ticketNumber := e.Request.URL.Query().Get("ticket_number")
	if ticketNumber == "" {
		return apis.NewBadRequestError("Ticket number is required", nil)
	}

	size := 256
	if raw := e.Request.URL.Query().Get("size"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 64 && parsed <= 1024 {
			size = parsed
		}
	}

	ticket, err := h.ticketService.GetTicket(e.Request.Context(), ticketNumber)
	if err != nil {
		return apis.NewNotFoundError("Ticket not found", err)
	}

	png, err := h.tokenService.QRCodePNG(h.ticketService.TokenForTicket(ticket), size)
	if err != nil {
		return apis.NewBadRequestError("Failed to render QR code", err)
	}

	return e.Blob(http.StatusOK, "image/png", png)
}

// PublicVerify - Unauthenticated ticket lookup by number or email
func (h *VerifyHandler) PublicVerify(e *core.RequestEvent) error {
	identifier := e.Request.URL.Query().Get("identifier")
	if identifier == "" {
		return apis.NewBadRequestError("Identifier is required", nil)
	}

	// Per-IP rate limit; this endpoint has no auth.
	if err := h.checkRateLimit(e); err != nil {
		return err
	}

	result, err := h.ticketService.PublicVerify(e.Request.Context(), identifier)
	if err != nil {
		return apis.NewBadRequestError("Failed to verify ticket", err)
	}
	return e.JSON(http.StatusOK, result)
}

func (h *VerifyHandler) checkRateLimit(e *core.RequestEvent) error {
	ctx := e.Request.Context()
	key := "ratelimit:public-verify:" + e.RealIP()

	count, err := h.redis.Incr(ctx, key).Result()
	if err != nil {
		// Redis trouble should not take the endpoint down.
		return nil
	}
	if count == 1 {
		h.redis.Expire(ctx, key, time.Minute)
	}
	if count > 20 {
		return apis.NewTooManyRequestsError("Too many verification attempts, try again later", nil)
	}
	return nil
}
