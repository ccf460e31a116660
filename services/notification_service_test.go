package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raffle-system/internal/mail"
	"raffle-system/internal/status"
	"raffle-system/models"
	"raffle-system/monitoring"
)

// fakeMailer records sends and can fail selected addresses.
type fakeMailer struct {
	mu      sync.Mutex
	sent    []mail.Message
	failFor map[string]bool
}

func (f *fakeMailer) GetProvider() mail.Provider {
	return mail.Provider("fake")
}

func (f *fakeMailer) Send(ctx context.Context, msg mail.Message) (*mail.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, to := range msg.To {
		if f.failFor[to.Email] {
			return nil, errors.New("mailbox unavailable")
		}
	}
	f.sent = append(f.sent, msg)
	return &mail.SendResult{MessageID: "fake-id", Provider: "fake"}, nil
}

func (f *fakeMailer) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestNotificationService(mailer *fakeMailer) (*NotificationService, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	return NewNotificationService(NewTemplateService(), mailer, db, monitoring.NewMonitor(db), testConfig()), mock
}

func TestNotificationService_SendNotification(t *testing.T) {
	mailer := &fakeMailer{}
	svc, _ := newTestNotificationService(mailer)

	report, err := svc.SendNotification(context.Background(), SendRequest{
		Template: "winner_announcement",
		Recipients: []Recipient{
			{Name: "Jane Doe", Email: "jane@example.com", TicketNumber: "IEEE-UJ-0001"},
		},
		Variables: map[string]string{
			"prizeName":    "MacBook Air",
			"drawDate":     "15 October 2026",
			"totalTickets": "500",
			"contactEmail": "raffle@ieee-uj.org",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 0, report.Failed)
	assert.NotEmpty(t, report.BatchID)

	require.Equal(t, 1, mailer.sentCount())
	msg := mailer.sent[0]
	assert.Equal(t, "jane@example.com", msg.To[0].Email)
	// Recipient overlay filled winnerName and ticketNumber
	assert.Contains(t, msg.HTMLContent, "Dear Jane Doe,")
	assert.Contains(t, msg.HTMLContent, "IEEE-UJ-0001")

	// Plain-text alternative derived from the HTML body
	assert.NotEmpty(t, msg.TextContent)
	assert.NotContains(t, msg.TextContent, "<")
	assert.Contains(t, msg.TextContent, "Dear Jane Doe,")
	assert.Contains(t, msg.TextContent, "IEEE-UJ-0001")
}

func TestHTMLToText(t *testing.T) {
	text := htmlToText("<div style=\"color: red\">\n  <p>Hi <strong>Jane</strong>,</p>\n  <p>See you soon.</p>\n</div>")
	assert.Equal(t, "Hi Jane , See you soon.", text)
}

func TestNotificationService_UnknownTemplate(t *testing.T) {
	svc, _ := newTestNotificationService(&fakeMailer{})

	_, err := svc.SendNotification(context.Background(), SendRequest{
		Template:   "nope",
		Recipients: []Recipient{{Name: "Jane", Email: "jane@example.com"}},
	})
	assert.ErrorIs(t, err, status.ErrTemplateNotFound)
}

func TestNotificationService_PartialFailure(t *testing.T) {
	mailer := &fakeMailer{failFor: map[string]bool{"bounce@example.com": true}}
	svc, _ := newTestNotificationService(mailer)

	report, err := svc.SendNotification(context.Background(), SendRequest{
		Template: "bulk_update",
		Recipients: []Recipient{
			{Name: "Jane Doe", Email: "jane@example.com"},
			{Name: "Bouncy", Email: "bounce@example.com"},
			{Name: "No Email"},
			{Name: "John Doe", Email: "john@example.com"},
		},
		Variables: map[string]string{
			"updateTitle":   "Draw moved",
			"updateContent": "The draw now happens a week later.",
			"drawDate":      "22 October 2026",
			"totalTickets":  "500",
			"prizeName":     "MacBook Air",
		},
	})
	require.NoError(t, err)

	// One bounce and one missing address never block the rest
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, 2, report.Failed)
	assert.Len(t, report.Errors, 2)
	assert.Equal(t, 2, mailer.sentCount())
}

func TestNotificationService_PersonalizeDoesNotOverride(t *testing.T) {
	svc, _ := newTestNotificationService(&fakeMailer{})

	vars := svc.personalize(map[string]string{"winnerName": "Explicit Winner"}, Recipient{
		Name:         "Jane Doe",
		TicketNumber: "IEEE-UJ-0002",
	})

	// Caller-supplied values win; blanks fall back to the recipient
	assert.Equal(t, "Explicit Winner", vars["winnerName"])
	assert.Equal(t, "Jane Doe", vars["recipientName"])
	assert.Equal(t, "Jane Doe", vars["buyerName"])
	assert.Equal(t, "IEEE-UJ-0002", vars["ticketNumber"])
}

func TestNotificationService_SendTicketConfirmation_EFT(t *testing.T) {
	mailer := &fakeMailer{}
	svc, _ := newTestNotificationService(mailer)

	ticket := models.Ticket{
		Timestamp:     time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		Name:          "Jane Doe",
		Email:         "jane@example.com",
		PaymentMethod: "EFT",
		Seller:        "Seller A",
		TicketNumber:  "IEEE-UJ-0001",
		PaymentStatus: models.PaymentPending,
	}

	err := svc.SendTicketConfirmation(context.Background(), ticket, "seller@example.com")
	require.NoError(t, err)

	require.Equal(t, 1, mailer.sentCount())
	msg := mailer.sent[0]
	assert.Contains(t, msg.Subject, "IEEE-UJ-0001")
	// Pending EFT payments get the banking block
	assert.Contains(t, msg.HTMLContent, "Payment still pending")
}

func TestNotificationService_SendTicketConfirmation_Cash(t *testing.T) {
	mailer := &fakeMailer{}
	svc, _ := newTestNotificationService(mailer)

	ticket := models.Ticket{
		Timestamp:     time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		Name:          "Jane Doe",
		Email:         "jane@example.com",
		PaymentMethod: "Cash",
		Seller:        "Seller A",
		TicketNumber:  "IEEE-UJ-0001",
		PaymentStatus: models.PaymentVerified,
	}

	err := svc.SendTicketConfirmation(context.Background(), ticket, "seller@example.com")
	require.NoError(t, err)

	require.Equal(t, 1, mailer.sentCount())
	assert.NotContains(t, mailer.sent[0].HTMLContent, "Payment still pending")
}

func TestNotificationService_Logs(t *testing.T) {
	svc, mock := newTestNotificationService(&fakeMailer{})

	entry := EmailLogEntry{
		BatchID:   "ABCD1234",
		Template:  "winner_announcement",
		Recipient: "jane@example.com",
		Subject:   "You won",
		Status:    "sent",
		SentAt:    time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	}
	raw, err := json.Marshal(entry)
	require.NoError(t, err)

	mock.ExpectLRange(emailLogKey, 0, 49).SetVal([]string{string(raw), "not json"})

	entries, err := svc.Logs(context.Background(), 50)
	require.NoError(t, err)

	// Corrupt entries are skipped, not fatal
	require.Len(t, entries, 1)
	assert.Equal(t, entry, entries[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationService_LogsDefaultLimit(t *testing.T) {
	svc, mock := newTestNotificationService(&fakeMailer{})

	mock.ExpectLRange(emailLogKey, 0, 49).SetVal([]string{})

	_, err := svc.Logs(context.Background(), -5)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
