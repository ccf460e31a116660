package pbstore

import (
	"context"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"raffle-system/internal/status"
	"raffle-system/models"
)

const ticketsCollection = "tickets"

// Store persists tickets in the PocketBase tickets collection.
type Store struct {
	app core.App
}

func New(app core.App) *Store {
	return &Store{app: app}
}

func (s *Store) GetAll(ctx context.Context) ([]models.Ticket, error) {
	records, err := s.app.FindAllRecords(ticketsCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to load tickets: %w", err)
	}

	tickets := make([]models.Ticket, 0, len(records))
	for _, record := range records {
		tickets = append(tickets, recordToTicket(record))
	}
	return tickets, nil
}

func (s *Store) FindByTicketNumber(ctx context.Context, ticketNumber string) (*models.Ticket, error) {
	record, err := s.app.FindFirstRecordByFilter(
		ticketsCollection,
		"ticket_number = {:number}",
		dbx.Params{"number": ticketNumber},
	)
	if err != nil {
		return nil, status.ErrTicketNotFound
	}

	ticket := recordToTicket(record)
	return &ticket, nil
}

func (s *Store) Append(ctx context.Context, ticket models.Ticket) error {
	collection, err := s.app.FindCollectionByNameOrId(ticketsCollection)
	if err != nil {
		return fmt.Errorf("tickets collection not found: %w", err)
	}

	record := core.NewRecord(collection)
	record.Set("timestamp", ticket.Timestamp)
	record.Set("name", ticket.Name)
	record.Set("email", ticket.Email)
	record.Set("payment_method", ticket.PaymentMethod)
	record.Set("seller", ticket.Seller)
	record.Set("ticket_number", ticket.TicketNumber)
	record.Set("payment_status", ticket.PaymentStatus)
	record.Set("verification_notes", ticket.VerificationNotes)
	record.Set("attended", ticket.Attended)
	if ticket.AttendedAt != nil {
		record.Set("attended_at", *ticket.AttendedAt)
	}

	if err := s.app.Save(record); err != nil {
		return fmt.Errorf("failed to save ticket %s: %w", ticket.TicketNumber, err)
	}
	return nil
}

func (s *Store) UpdateFields(ctx context.Context, ticketNumber string, fields map[string]any) error {
	record, err := s.app.FindFirstRecordByFilter(
		ticketsCollection,
		"ticket_number = {:number}",
		dbx.Params{"number": ticketNumber},
	)
	if err != nil {
		return status.ErrTicketNotFound
	}

	for field, value := range fields {
		record.Set(field, value)
	}

	if err := s.app.Save(record); err != nil {
		return fmt.Errorf("failed to update ticket %s: %w", ticketNumber, err)
	}
	return nil
}

// NextSequence scans existing numbers under prefix so reissued sequences never
// collide, even after manual row edits.
func (s *Store) NextSequence(ctx context.Context, prefix string) (int, error) {
	var result struct {
		MaxSeq int `db:"max_seq"`
	}

	// substr is 1-based; skip "PREFIX-" to reach the numeric suffix.
	err := s.app.DB().NewQuery(
		"SELECT COALESCE(MAX(CAST(substr(ticket_number, {:start}) AS INTEGER)), 0) AS max_seq FROM tickets WHERE ticket_number LIKE {:pattern}",
	).Bind(dbx.Params{
		"start":   len(prefix) + 2,
		"pattern": prefix + "-%",
	}).One(&result)
	if err != nil {
		return 0, fmt.Errorf("failed to compute next ticket sequence: %w", err)
	}

	return result.MaxSeq + 1, nil
}

func recordToTicket(record *core.Record) models.Ticket {
	ticket := models.Ticket{
		Timestamp:         record.GetDateTime("timestamp").Time(),
		Name:              record.GetString("name"),
		Email:             record.GetString("email"),
		PaymentMethod:     record.GetString("payment_method"),
		Seller:            record.GetString("seller"),
		TicketNumber:      record.GetString("ticket_number"),
		PaymentStatus:     record.GetString("payment_status"),
		VerificationNotes: record.GetString("verification_notes"),
		Attended:          record.GetBool("attended"),
	}

	if attendedAt := record.GetDateTime("attended_at"); !attendedAt.IsZero() {
		t := attendedAt.Time()
		ticket.AttendedAt = &t
	}

	return ticket
}
