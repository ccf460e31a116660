package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"raffle-system/internal/status"
	"raffle-system/models"
)

// VerifyReason discriminates why a token was rejected.
type VerifyReason string

const (
	ReasonMalformedToken    VerifyReason = "malformed_token"
	ReasonSignatureMismatch VerifyReason = "signature_mismatch"
	ReasonExpired           VerifyReason = "expired"
)

type VerifyResult struct {
	Valid  bool                `json:"valid"`
	Reason VerifyReason        `json:"reason,omitempty"`
	Claims *models.TokenClaims `json:"claims,omitempty"`
}

// TokenService signs and verifies the HMAC tokens embedded in ticket QR
// codes. Verification needs only the shared secret, so scan stations can
// validate tickets with no store access.
type TokenService struct {
	secret  []byte
	maxAge  time.Duration
	baseURL string
}

// NewTokenService builds a token service. maxAgeDays of 0 disables expiry.
func NewTokenService(secret, baseURL string, maxAgeDays int) *TokenService {
	return &TokenService{
		secret:  []byte(secret),
		maxAge:  time.Duration(maxAgeDays) * 24 * time.Hour,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Sign returns the base64 token blob for claims. Every claim except EventID
// is required: the signature binds all of them.
func (s *TokenService) Sign(claims models.TokenClaims) (string, error) {
	if claims.TicketNumber == "" || claims.BuyerName == "" || claims.BuyerEmail == "" ||
		claims.SellerName == "" || claims.Timestamp == "" {
		return "", status.ErrMissingFields
	}

	token := models.VerificationToken{
		TokenClaims: claims,
		Signature:   s.signature(claims),
	}

	payload, err := json.Marshal(token)
	if err != nil {
		return "", fmt.Errorf("failed to encode token: %w", err)
	}

	return base64.StdEncoding.EncodeToString(payload), nil
}

// Verify decodes and validates a token blob. Rejections carry a reason
// instead of an error: a bad token is an expected outcome, not a fault.
func (s *TokenService) Verify(encoded string) VerifyResult {
	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return VerifyResult{Valid: false, Reason: ReasonMalformedToken}
	}

	var token models.VerificationToken
	if err := json.Unmarshal(payload, &token); err != nil {
		return VerifyResult{Valid: false, Reason: ReasonMalformedToken}
	}

	if token.TicketNumber == "" || token.Signature == "" || token.Timestamp == "" {
		return VerifyResult{Valid: false, Reason: ReasonMalformedToken}
	}

	// Signature first: a garbled timestamp inside a signed payload is
	// tampering, not a malformed token.
	expected := s.signature(token.TokenClaims)
	if !hmac.Equal([]byte(expected), []byte(token.Signature)) {
		return VerifyResult{Valid: false, Reason: ReasonSignatureMismatch}
	}

	// Expiry applies only when the timestamp parses; an authentic token with
	// an unparseable timestamp simply has no age to enforce.
	if s.maxAge > 0 {
		if issuedAt, err := time.Parse(time.RFC3339, token.Timestamp); err == nil && time.Since(issuedAt) > s.maxAge {
			claims := token.TokenClaims
			return VerifyResult{Valid: false, Reason: ReasonExpired, Claims: &claims}
		}
	}

	claims := token.TokenClaims
	return VerifyResult{Valid: true, Claims: &claims}
}

// VerificationURL returns the link encoded into the QR code.
func (s *TokenService) VerificationURL(claims models.TokenClaims) (string, error) {
	token, err := s.Sign(claims)
	if err != nil {
		return "", err
	}
	return s.baseURL + "/" + url.QueryEscape(token), nil
}

// QRCodePNG renders the verification URL as a PNG image.
func (s *TokenService) QRCodePNG(claims models.TokenClaims, size int) ([]byte, error) {
	verifyURL, err := s.VerificationURL(claims)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(verifyURL, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}
	return png, nil
}

// QRCodeDataURL renders the QR PNG as a data URL for inline embedding.
func (s *TokenService) QRCodeDataURL(claims models.TokenClaims, size int) (string, error) {
	png, err := s.QRCodePNG(claims, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// signature computes the hex HMAC-SHA256 over the pipe-joined claim fields.
func (s *TokenService) signature(claims models.TokenClaims) string {
	payload := strings.Join([]string{
		claims.TicketNumber,
		claims.BuyerName,
		claims.BuyerEmail,
		claims.SellerName,
		claims.Timestamp,
		claims.EventID,
	}, "|")

	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
