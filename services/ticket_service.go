package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"raffle-system/config"
	"raffle-system/internal/status"
	"raffle-system/internal/store"
	"raffle-system/models"
	"raffle-system/monitoring"
)

const (
	dashboardCacheKey = "dashboard:stats"
	pendingCountKey   = "tickets:pending_count"
	adminChannel      = "raffle-admin"
)

type TicketService struct {
	Redis    *redis.Client
	store    store.TicketStore
	tokens   *TokenService
	notifier *NotificationService
	pubnub   *pubnub.PubNub
	monitor  *monitoring.Monitor
	config   *config.Config
}

func NewTicketService(
	ticketStore store.TicketStore,
	tokens *TokenService,
	notifier *NotificationService,
	redisClient *redis.Client,
	pn *pubnub.PubNub,
	monitor *monitoring.Monitor,
	cfg *config.Config,
) *TicketService {
	return &TicketService{
		Redis:    redisClient,
		store:    ticketStore,
		tokens:   tokens,
		notifier: notifier,
		pubnub:   pn,
		monitor:  monitor,
		config:   cfg,
	}
}

type CreateTicketRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	PaymentMethod string `json:"payment_method"`
	Seller        string `json:"seller"`
	SellerEmail   string `json:"seller_email"`
}

// CreateTicket allocates the next sequential ticket number, stores the row
// and fires the confirmation email in the background.
func (s *TicketService) CreateTicket(ctx context.Context, req CreateTicketRequest) (*models.Ticket, error) {
	if req.Name == "" || req.Email == "" || req.PaymentMethod == "" || req.Seller == "" {
		return nil, status.ErrMissingFields
	}

	seq, err := s.store.NextSequence(ctx, s.config.TicketPrefix)
	if err != nil {
		return nil, err
	}

	ticket := models.Ticket{
		Timestamp:     time.Now().UTC(),
		Name:          req.Name,
		Email:         req.Email,
		PaymentMethod: req.PaymentMethod,
		Seller:        req.Seller,
		TicketNumber:  fmt.Sprintf("%s-%04d", s.config.TicketPrefix, seq),
		PaymentStatus: models.DerivePaymentStatus(req.PaymentMethod),
	}

	if err := s.store.Append(ctx, ticket); err != nil {
		return nil, err
	}

	s.invalidateDashboard(ctx)
	s.monitor.TrackTicketSold(ticket.PaymentMethod, ticket.Seller)

	if s.pubnub != nil {
		s.pubnub.Publish().
			Channel(adminChannel).
			Message(map[string]any{
				"type":          "ticket_created",
				"ticket_number": ticket.TicketNumber,
				"seller":        ticket.Seller,
				"status":        ticket.PaymentStatus,
			}).
			Execute()
	}

	// Confirmation email must not block the sale.
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.notifier.SendTicketConfirmation(sendCtx, ticket, req.SellerEmail); err != nil {
			log.Printf("Failed to send confirmation for %s: %v", ticket.TicketNumber, err)
		}
	}()

	return &ticket, nil
}

// VerifyPayment sets a ticket's payment status to VERIFIED or REJECTED.
// Re-verification is allowed; the latest decision wins.
func (s *TicketService) VerifyPayment(ctx context.Context, ticketNumber, paymentStatus, notes string) (*models.Ticket, error) {
	if paymentStatus != models.PaymentVerified && paymentStatus != models.PaymentRejected {
		return nil, fmt.Errorf("invalid payment status %q", paymentStatus)
	}

	ticket, err := s.store.FindByTicketNumber(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		"payment_status":     paymentStatus,
		"verification_notes": notes,
	}
	if err := s.store.UpdateFields(ctx, ticketNumber, fields); err != nil {
		return nil, err
	}

	ticket.PaymentStatus = paymentStatus
	ticket.VerificationNotes = notes
	s.invalidateDashboard(ctx)

	return ticket, nil
}

type AttendanceResult struct {
	Ticket           *models.Ticket `json:"ticket"`
	AlreadyCheckedIn bool           `json:"already_checked_in"`
	InProgress       bool           `json:"in_progress,omitempty"`
	Message          string         `json:"message"`
}

// MarkAttendance checks a ticket holder in. Only tickets with verified
// payment may enter. Checking in twice is not an error: the second call
// reports the original check-in time untouched.
func (s *TicketService) MarkAttendance(ctx context.Context, ticketNumber string) (*AttendanceResult, error) {
	ticket, err := s.store.FindByTicketNumber(ctx, ticketNumber)
	if err != nil {
		s.monitor.TrackCheckIn("not_found")
		return nil, err
	}

	if ticket.PaymentStatus != models.PaymentVerified {
		s.monitor.TrackCheckIn("payment_not_verified")
		return nil, status.ErrPaymentNotVerified
	}

	if ticket.Attended {
		s.monitor.TrackCheckIn("already_checked_in")
		return &AttendanceResult{
			Ticket:           ticket,
			AlreadyCheckedIn: true,
			Message:          fmt.Sprintf("Ticket %s already checked in", ticketNumber),
		}, nil
	}

	// Short lock so two gate scans of the same ticket cannot race. Losing the
	// lock only means another scan holds it; its write may still fail, so the
	// loser is told to rescan rather than that the ticket is checked in.
	lockKey := "checkin:lock:" + ticketNumber
	locked, err := s.Redis.SetNX(ctx, lockKey, "1", 10*time.Second).Result()
	if err == nil && !locked {
		s.monitor.TrackCheckIn("in_progress")
		return &AttendanceResult{
			Ticket:     ticket,
			InProgress: true,
			Message:    fmt.Sprintf("Check-in for ticket %s is already in progress, rescan in a moment", ticketNumber),
		}, nil
	}

	now := time.Now().UTC()
	fields := map[string]any{
		"attended":    true,
		"attended_at": now,
	}
	if err := s.store.UpdateFields(ctx, ticketNumber, fields); err != nil {
		return nil, err
	}

	ticket.Attended = true
	ticket.AttendedAt = &now
	s.invalidateDashboard(ctx)
	s.monitor.TrackCheckIn("checked_in")

	if s.pubnub != nil {
		s.pubnub.Publish().
			Channel(adminChannel).
			Message(map[string]any{
				"type":          "ticket_checked_in",
				"ticket_number": ticket.TicketNumber,
				"name":          ticket.Name,
			}).
			Execute()
	}

	return &AttendanceResult{
		Ticket:  ticket,
		Message: fmt.Sprintf("Ticket %s checked in", ticketNumber),
	}, nil
}

// GetTicket looks up a single ticket by its number.
func (s *TicketService) GetTicket(ctx context.Context, ticketNumber string) (*models.Ticket, error) {
	return s.store.FindByTicketNumber(ctx, ticketNumber)
}

func (s *TicketService) AttendanceStats(ctx context.Context) (*models.AttendanceStats, error) {
	tickets, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.AttendanceStats{TotalTickets: len(tickets)}
	for _, t := range tickets {
		if t.Attended {
			stats.AttendedCount++
		}
	}
	stats.AbsentCount = stats.TotalTickets - stats.AttendedCount
	return stats, nil
}

// Dashboard aggregates sales stats, cached in Redis for a short TTL.
func (s *TicketService) Dashboard(ctx context.Context) (*models.TicketStats, error) {
	if cached, err := s.Redis.Get(ctx, dashboardCacheKey).Result(); err == nil {
		var stats models.TicketStats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return &stats, nil
		}
	}

	tickets, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := s.computeStats(tickets)

	if data, err := json.Marshal(stats); err == nil {
		s.Redis.Set(ctx, dashboardCacheKey, data, s.config.DashboardCacheTTL)
	}
	s.Redis.Set(ctx, pendingCountKey, stats.PendingCount, 0)

	return stats, nil
}

func (s *TicketService) computeStats(tickets []models.Ticket) *models.TicketStats {
	price, err := decimal.NewFromString(s.config.TicketPrice)
	if err != nil {
		price = decimal.Zero
	}

	stats := &models.TicketStats{
		TotalTickets:    len(tickets),
		TicketsBySeller: make(map[string]int),
	}

	for _, t := range tickets {
		switch t.PaymentStatus {
		case models.PaymentVerified:
			stats.VerifiedCount++
		case models.PaymentPending:
			stats.PendingCount++
		}
		if t.Attended {
			stats.AttendedCount++
		}
		stats.TicketsBySeller[t.Seller]++
	}

	// Revenue counts collected money only, not pending EFTs.
	stats.TotalAmount = price.Mul(decimal.NewFromInt(int64(stats.VerifiedCount))).StringFixed(2)

	sorted := make([]models.Ticket, len(tickets))
	copy(sorted, tickets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp.After(sorted[j].Timestamp) })
	if len(sorted) > 10 {
		sorted = sorted[:10]
	}
	stats.RecentEntries = sorted

	return stats
}

// ExportCSV renders all tickets in the canonical column order.
func (s *TicketService) ExportCSV(ctx context.Context) ([]byte, error) {
	tickets, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	sort.Slice(tickets, func(i, j int) bool { return tickets[i].Timestamp.Before(tickets[j].Timestamp) })

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"Timestamp", "Name", "Email", "Payment Method", "Seller",
		"Ticket Number", "Payment Status", "Verification Notes", "Attended", "Attended At",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, t := range tickets {
		attendedAt := ""
		if t.AttendedAt != nil {
			attendedAt = t.AttendedAt.Format(time.RFC3339)
		}
		row := []string{
			t.Timestamp.Format(time.RFC3339),
			t.Name,
			t.Email,
			t.PaymentMethod,
			t.Seller,
			t.TicketNumber,
			t.PaymentStatus,
			t.VerificationNotes,
			strconv.FormatBool(t.Attended),
			attendedAt,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type TokenVerification struct {
	Result VerifyResult   `json:"result"`
	Ticket *models.Ticket `json:"ticket,omitempty"`
}

// VerifyToken validates a QR token and cross-checks it against the store so
// the admin screen can show payment and attendance state alongside validity.
func (s *TicketService) VerifyToken(ctx context.Context, encoded string) *TokenVerification {
	result := s.tokens.Verify(encoded)
	if result.Valid {
		s.monitor.TrackVerification("valid")
	} else {
		s.monitor.TrackVerification(string(result.Reason))
	}

	verification := &TokenVerification{Result: result}
	if result.Claims == nil {
		return verification
	}

	ticket, err := s.store.FindByTicketNumber(ctx, result.Claims.TicketNumber)
	if err == nil {
		verification.Ticket = ticket
	}
	return verification
}

type PublicVerifyResult struct {
	Found         bool   `json:"found"`
	TicketNumber  string `json:"ticket_number,omitempty"`
	Name          string `json:"name,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`
	Attended      bool   `json:"attended"`
}

// PublicVerify looks a ticket up by number or buyer email. Response is
// deliberately sparse: this endpoint is unauthenticated.
func (s *TicketService) PublicVerify(ctx context.Context, identifier string) (*PublicVerifyResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, status.ErrMissingFields
	}

	ticket, err := s.store.FindByTicketNumber(ctx, identifier)
	if err != nil && strings.Contains(identifier, "@") {
		tickets, listErr := s.store.GetAll(ctx)
		if listErr != nil {
			return nil, listErr
		}
		for i := range tickets {
			if strings.EqualFold(tickets[i].Email, identifier) {
				ticket = &tickets[i]
				err = nil
				break
			}
		}
	}
	if err != nil || ticket == nil {
		return &PublicVerifyResult{Found: false}, nil
	}

	return &PublicVerifyResult{
		Found:         true,
		TicketNumber:  ticket.TicketNumber,
		Name:          ticket.Name,
		PaymentStatus: ticket.PaymentStatus,
		Attended:      ticket.Attended,
	}, nil
}

// TokenForTicket builds the QR claims for an existing ticket.
func (s *TicketService) TokenForTicket(ticket *models.Ticket) models.TokenClaims {
	return models.TokenClaims{
		TicketNumber: ticket.TicketNumber,
		BuyerName:    ticket.Name,
		BuyerEmail:   ticket.Email,
		SellerName:   ticket.Seller,
		Timestamp:    ticket.Timestamp.Format(time.RFC3339),
	}
}

func (s *TicketService) invalidateDashboard(ctx context.Context) {
	if err := s.Redis.Del(ctx, dashboardCacheKey).Err(); err != nil {
		log.Printf("Failed to invalidate dashboard cache: %v", err)
	}
}
