package status

import "errors"

var (
	ErrTemplateNotFound   = errors.New("template: template not found")
	ErrTicketNotFound     = errors.New("ticket: ticket not found")
	ErrDuplicateTicket    = errors.New("ticket: ticket number already exists")
	ErrPaymentNotVerified = errors.New("attendance: payment not verified")
	ErrMissingFields      = errors.New("ticket: missing required fields")
	ErrProviderNotFound   = errors.New("mail: unknown mail provider")
	ErrSendFailed         = errors.New("mail: provider rejected message")
	ErrRateLimited        = errors.New("verify: too many attempts")
	ErrInvalidPasscode    = errors.New("scan: invalid passcode")
)
