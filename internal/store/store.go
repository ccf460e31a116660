package store

import (
	"context"

	"raffle-system/models"
)

// TicketStore is the system of record for ticket rows. The backing
// collection is reachable only through this interface so the services stay
// storage-agnostic.
type TicketStore interface {
	GetAll(ctx context.Context) ([]models.Ticket, error)
	FindByTicketNumber(ctx context.Context, ticketNumber string) (*models.Ticket, error)
	Append(ctx context.Context, ticket models.Ticket) error
	UpdateFields(ctx context.Context, ticketNumber string, fields map[string]any) error
	// NextSequence returns the next numeric suffix for tickets under prefix.
	NextSequence(ctx context.Context, prefix string) (int, error)
}
