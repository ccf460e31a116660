package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"raffle-system/config"
	"raffle-system/internal/mail"
	"raffle-system/models"
	"raffle-system/monitoring"
	"raffle-system/utils"
)

const (
	emailLogKey    = "email:log"
	emailLogMaxLen = 500
)

type NotificationService struct {
	Redis     *redis.Client
	templates *TemplateService
	mailer    mail.Mailer
	breaker   *utils.CircuitBreaker
	monitor   *monitoring.Monitor
	config    *config.Config
}

func NewNotificationService(
	templates *TemplateService,
	mailer mail.Mailer,
	redisClient *redis.Client,
	monitor *monitoring.Monitor,
	cfg *config.Config,
) *NotificationService {
	return &NotificationService{
		Redis:     redisClient,
		templates: templates,
		mailer:    mailer,
		breaker:   utils.NewCircuitBreaker("mail"),
		monitor:   monitor,
		config:    cfg,
	}
}

type Recipient struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	TicketNumber string `json:"ticket_number,omitempty"`
}

type SendRequest struct {
	Template   string            `json:"template"`
	Recipients []Recipient       `json:"recipients"`
	Variables  map[string]string `json:"variables"`
}

type SendReport struct {
	BatchID string   `json:"batch_id"`
	Total   int      `json:"total"`
	Sent    int      `json:"sent"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

type EmailLogEntry struct {
	BatchID   string    `json:"batch_id"`
	Template  string    `json:"template"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Status    string    `json:"status"` // sent, failed
	Error     string    `json:"error,omitempty"`
	SentAt    time.Time `json:"sent_at"`
}

// SendNotification renders and sends a template to every recipient. Each
// recipient is independent: one bounce never aborts the batch, failures are
// reported per recipient in the returned report.
func (s *NotificationService) SendNotification(ctx context.Context, req SendRequest) (*SendReport, error) {
	// Fail fast on an unknown template before touching any recipient.
	if _, err := s.templates.GetTemplate(req.Template); err != nil {
		return nil, err
	}

	batchID, err := utils.GenerateCode(8)
	if err != nil {
		batchID = fmt.Sprintf("%d", time.Now().UnixNano())
	}

	report := &SendReport{BatchID: batchID, Total: len(req.Recipients)}

	for _, recipient := range req.Recipients {
		if recipient.Email == "" {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("missing email for recipient %q", recipient.Name))
			continue
		}

		rendered, renderErr := s.templates.Render(req.Template, s.personalize(req.Variables, recipient))
		if renderErr != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", recipient.Email, renderErr))
			continue
		}

		if sendErr := s.deliver(ctx, recipient, rendered); sendErr != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", recipient.Email, sendErr))
			s.monitor.TrackEmailSent(req.Template, "failed")
			s.logSend(ctx, EmailLogEntry{
				BatchID:   batchID,
				Template:  req.Template,
				Recipient: recipient.Email,
				Subject:   rendered.Subject,
				Status:    "failed",
				Error:     sendErr.Error(),
				SentAt:    time.Now().UTC(),
			})
			continue
		}

		report.Sent++
		s.monitor.TrackEmailSent(req.Template, "sent")
		s.logSend(ctx, EmailLogEntry{
			BatchID:   batchID,
			Template:  req.Template,
			Recipient: recipient.Email,
			Subject:   rendered.Subject,
			Status:    "sent",
			SentAt:    time.Now().UTC(),
		})
	}

	return report, nil
}

// personalize overlays recipient-specific values on the shared variables
// without overriding anything the caller supplied explicitly.
func (s *NotificationService) personalize(shared map[string]string, recipient Recipient) map[string]string {
	vars := make(map[string]string, len(shared)+4)
	for key, value := range shared {
		vars[key] = value
	}

	for _, key := range []string{"recipientName", "buyerName", "winnerName"} {
		if vars[key] == "" {
			vars[key] = recipient.Name
		}
	}
	if recipient.TicketNumber != "" {
		vars["ticketNumber"] = recipient.TicketNumber
	}

	return vars
}

func (s *NotificationService) deliver(ctx context.Context, recipient Recipient, rendered *RenderedNotification) error {
	start := time.Now()
	_, err := s.breaker.Execute(ctx, func() (interface{}, error) {
		return s.mailer.Send(ctx, mail.Message{
			To:          []mail.Contact{{Name: recipient.Name, Email: recipient.Email}},
			Subject:     rendered.Subject,
			HTMLContent: rendered.Content,
			TextContent: htmlToText(rendered.Content),
		})
	})
	s.monitor.TrackEmailDuration(string(s.mailer.GetProvider()), time.Since(start))
	return err
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// htmlToText strips markup so every send carries a plain-text alternative.
func htmlToText(html string) string {
	return strings.Join(strings.Fields(htmlTagPattern.ReplaceAllString(html, " ")), " ")
}

func (s *NotificationService) logSend(ctx context.Context, entry EmailLogEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	pipe := s.Redis.Pipeline()
	pipe.LPush(ctx, emailLogKey, data)
	pipe.LTrim(ctx, emailLogKey, 0, emailLogMaxLen-1)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("Failed to record email log entry: %v", err)
	}
}

// Logs returns the most recent email log entries, newest first.
func (s *NotificationService) Logs(ctx context.Context, limit int) ([]EmailLogEntry, error) {
	if limit <= 0 || limit > emailLogMaxLen {
		limit = 50
	}

	raw, err := s.Redis.LRange(ctx, emailLogKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read email log: %w", err)
	}

	entries := make([]EmailLogEntry, 0, len(raw))
	for _, item := range raw {
		var entry EmailLogEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// SendTicketConfirmation sends the purchase confirmation for a new ticket.
func (s *NotificationService) SendTicketConfirmation(ctx context.Context, ticket models.Ticket, sellerEmail string) error {
	vars := map[string]string{
		"buyerName":     ticket.Name,
		"ticketNumber":  ticket.TicketNumber,
		"purchaseDate":  ticket.Timestamp.Format("2 January 2006"),
		"paymentMethod": ticket.PaymentMethod,
		"sellerName":    ticket.Seller,
		"sellerEmail":   sellerEmail,
		"ticketPrice":   s.config.TicketPrice,
		"drawDate":      s.config.DrawDate,
	}
	if ticket.PaymentStatus == models.PaymentPending {
		vars["eftPayment"] = "true"
	}

	report, err := s.SendNotification(ctx, SendRequest{
		Template:   "ticket_confirmation",
		Recipients: []Recipient{{Name: ticket.Name, Email: ticket.Email, TicketNumber: ticket.TicketNumber}},
		Variables:  vars,
	})
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		return fmt.Errorf("confirmation not delivered: %v", report.Errors)
	}
	return nil
}

// SendPaymentReminder nudges a pending EFT buyer. Banking details come from
// the caller so they never live in code.
func (s *NotificationService) SendPaymentReminder(ctx context.Context, ticket models.Ticket, bankDetails map[string]string) error {
	vars := map[string]string{
		"buyerName":    ticket.Name,
		"ticketNumber": ticket.TicketNumber,
		"purchaseDate": ticket.Timestamp.Format("2 January 2006"),
		"sellerName":   ticket.Seller,
		"ticketPrice":  s.config.TicketPrice,
		"drawDate":     s.config.DrawDate,
		"reference":    ticket.TicketNumber,
	}
	for key, value := range bankDetails {
		vars[key] = value
	}

	report, err := s.SendNotification(ctx, SendRequest{
		Template:   "payment_reminder",
		Recipients: []Recipient{{Name: ticket.Name, Email: ticket.Email, TicketNumber: ticket.TicketNumber}},
		Variables:  vars,
	})
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		return fmt.Errorf("reminder not delivered: %v", report.Errors)
	}
	return nil
}
