package models

import (
	"time"
)

// Payment statuses recorded against a ticket.
const (
	PaymentVerified = "VERIFIED"
	PaymentPending  = "PENDING"
	PaymentRejected = "REJECTED"
)

type Ticket struct {
	Timestamp         time.Time  `json:"timestamp"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	PaymentMethod     string     `json:"payment_method"` // Cash, EFT, free text
	Seller            string     `json:"seller"`
	TicketNumber      string     `json:"ticket_number"`
	PaymentStatus     string     `json:"payment_status"` // VERIFIED, PENDING, REJECTED
	VerificationNotes string     `json:"verification_notes,omitempty"`
	Attended          bool       `json:"attended"`
	AttendedAt        *time.Time `json:"attended_at,omitempty"`
}

// DerivePaymentStatus returns the default status for a new sale: cash is
// collected on the spot so it counts as verified, anything else waits for
// payment confirmation.
func DerivePaymentStatus(paymentMethod string) string {
	if paymentMethod == "Cash" {
		return PaymentVerified
	}
	return PaymentPending
}

type TicketStats struct {
	TotalTickets    int            `json:"total_tickets"`
	TotalAmount     string         `json:"total_amount"`
	VerifiedCount   int            `json:"verified_count"`
	PendingCount    int            `json:"pending_count"`
	AttendedCount   int            `json:"attended_count"`
	TicketsBySeller map[string]int `json:"tickets_by_seller"`
	RecentEntries   []Ticket       `json:"recent_entries"`
}

type AttendanceStats struct {
	TotalTickets  int `json:"total_tickets"`
	AttendedCount int `json:"attended_count"`
	AbsentCount   int `json:"absent_count"`
}

// TokenClaims is the signed subset of a ticket embedded in a QR code.
// Timestamp is the ticket creation time as an ISO string; it is part of the
// signed payload, not a parsed value.
type TokenClaims struct {
	TicketNumber string `json:"ticketNumber"`
	BuyerName    string `json:"buyerName"`
	BuyerEmail   string `json:"buyerEmail"`
	SellerName   string `json:"sellerName"`
	Timestamp    string `json:"timestamp"`
	EventID      string `json:"eventId,omitempty"`
}

// VerificationToken is the wire form: claims plus the hex-encoded HMAC.
type VerificationToken struct {
	TokenClaims
	Signature string `json:"signature"`
}
