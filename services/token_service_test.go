package services

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raffle-system/internal/status"
	"raffle-system/models"
)

func testClaims() models.TokenClaims {
	return models.TokenClaims{
		TicketNumber: "IEEE-UJ-0001",
		BuyerName:    "Jane Doe",
		BuyerEmail:   "jane@example.com",
		SellerName:   "Seller A",
		Timestamp:    "2025-01-01T10:00:00Z",
	}
}

func TestTokenService_SignVerifyRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", "http://localhost:8090/verify", 0)

	claims := testClaims()
	claims.Timestamp = time.Now().UTC().Format(time.RFC3339)

	token, err := svc.Sign(claims)
	require.NoError(t, err)

	result := svc.Verify(token)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Reason)
	require.NotNil(t, result.Claims)
	assert.Equal(t, claims, *result.Claims)
}

func TestTokenService_SignRequiresAllFields(t *testing.T) {
	svc := NewTokenService("test-secret", "http://localhost:8090/verify", 30)

	tests := []struct {
		name   string
		mutate func(*models.TokenClaims)
	}{
		{"ticket number", func(c *models.TokenClaims) { c.TicketNumber = "" }},
		{"buyer name", func(c *models.TokenClaims) { c.BuyerName = "" }},
		{"buyer email", func(c *models.TokenClaims) { c.BuyerEmail = "" }},
		{"seller", func(c *models.TokenClaims) { c.SellerName = "" }},
		{"timestamp", func(c *models.TokenClaims) { c.Timestamp = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := testClaims()
			tt.mutate(&claims)

			_, err := svc.Sign(claims)
			assert.ErrorIs(t, err, status.ErrMissingFields)
		})
	}

	// EventID stays optional
	_, err := svc.Sign(testClaims())
	assert.NoError(t, err)
}

func TestTokenService_SignIsDeterministic(t *testing.T) {
	svc := NewTokenService("test-secret", "http://localhost:8090/verify", 30)

	first, err := svc.Sign(testClaims())
	require.NoError(t, err)
	second, err := svc.Sign(testClaims())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestTokenService_TamperedSignature(t *testing.T) {
	svc := NewTokenService("test-secret", "http://localhost:8090/verify", 0)

	token, err := svc.Sign(testClaims())
	require.NoError(t, err)

	payload, err := base64.StdEncoding.DecodeString(token)
	require.NoError(t, err)

	var decoded models.VerificationToken
	require.NoError(t, json.Unmarshal(payload, &decoded))

	// Flip the last hex character of the signature
	sig := []byte(decoded.Signature)
	if sig[len(sig)-1] == 'a' {
		sig[len(sig)-1] = 'b'
	} else {
		sig[len(sig)-1] = 'a'
	}
	decoded.Signature = string(sig)

	tampered, err := json.Marshal(decoded)
	require.NoError(t, err)

	result := svc.Verify(base64.StdEncoding.EncodeToString(tampered))
	assert.False(t, result.Valid)
	assert.Equal(t, ReasonSignatureMismatch, result.Reason)
}

func TestTokenService_TamperedClaims(t *testing.T) {
	svc := NewTokenService("test-secret", "http://localhost:8090/verify", 0)

	tests := []struct {
		name   string
		mutate func(*models.VerificationToken)
	}{
		{"ticket number", func(tok *models.VerificationToken) { tok.TicketNumber = "IEEE-UJ-0002" }},
		{"buyer name", func(tok *models.VerificationToken) { tok.BuyerName = "John Doe" }},
		{"buyer email", func(tok *models.VerificationToken) { tok.BuyerEmail = "john@example.com" }},
		{"seller", func(tok *models.VerificationToken) { tok.SellerName = "Seller B" }},
		{"timestamp", func(tok *models.VerificationToken) { tok.Timestamp = "2025-06-01T10:00:00Z" }},
		{"timestamp made unparseable", func(tok *models.VerificationToken) { tok.Timestamp = "X025-01-01T10:00:00Z" }},
		{"event id", func(tok *models.VerificationToken) { tok.EventID = "other-event" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := svc.Sign(testClaims())
			require.NoError(t, err)

			payload, err := base64.StdEncoding.DecodeString(token)
			require.NoError(t, err)

			var decoded models.VerificationToken
			require.NoError(t, json.Unmarshal(payload, &decoded))

			tt.mutate(&decoded)

			tampered, err := json.Marshal(decoded)
			require.NoError(t, err)

			result := svc.Verify(base64.StdEncoding.EncodeToString(tampered))
			assert.False(t, result.Valid)
			assert.Equal(t, ReasonSignatureMismatch, result.Reason)
		})
	}
}

func TestTokenService_MalformedTokens(t *testing.T) {
	svc := NewTokenService("test-secret", "http://localhost:8090/verify", 30)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not base64", "!!!not-base64!!!"},
		{"not json", base64.StdEncoding.EncodeToString([]byte("plain text"))},
		{"missing signature", base64.StdEncoding.EncodeToString([]byte(`{"ticketNumber":"IEEE-UJ-0001","timestamp":"2025-01-01T10:00:00Z"}`))},
		{"missing ticket number", base64.StdEncoding.EncodeToString([]byte(`{"signature":"abc","timestamp":"2025-01-01T10:00:00Z"}`))},
		{"missing timestamp", base64.StdEncoding.EncodeToString([]byte(`{"ticketNumber":"IEEE-UJ-0001","signature":"abc"}`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := svc.Verify(tt.token)
			assert.False(t, result.Valid)
			assert.Equal(t, ReasonMalformedToken, result.Reason)
		})
	}
}

func TestTokenService_Expiry(t *testing.T) {
	svc := NewTokenService("test-secret", "http://localhost:8090/verify", 30)

	claims := testClaims()
	claims.Timestamp = time.Now().UTC().Add(-31 * 24 * time.Hour).Format(time.RFC3339)

	token, err := svc.Sign(claims)
	require.NoError(t, err)

	result := svc.Verify(token)
	assert.False(t, result.Valid)
	assert.Equal(t, ReasonExpired, result.Reason)
	// Expired tokens still expose their claims for the scan UI
	require.NotNil(t, result.Claims)
	assert.Equal(t, claims.TicketNumber, result.Claims.TicketNumber)
}

func TestTokenService_NonStandardTimestampRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", "http://localhost:8090/verify", 30)

	// Any non-empty timestamp string signs; one that does not parse carries
	// no age, so the expiry policy cannot reject it.
	claims := testClaims()
	claims.Timestamp = "2025-01-01"

	token, err := svc.Sign(claims)
	require.NoError(t, err)

	result := svc.Verify(token)
	assert.True(t, result.Valid)
	require.NotNil(t, result.Claims)
	assert.Equal(t, claims, *result.Claims)
}

func TestTokenService_ExpiryDisabled(t *testing.T) {
	svc := NewTokenService("test-secret", "http://localhost:8090/verify", 0)

	claims := testClaims()
	claims.Timestamp = time.Now().UTC().Add(-365 * 24 * time.Hour).Format(time.RFC3339)

	token, err := svc.Sign(claims)
	require.NoError(t, err)

	result := svc.Verify(token)
	assert.True(t, result.Valid)
}

func TestTokenService_WrongSecret(t *testing.T) {
	signer := NewTokenService("test-secret", "http://localhost:8090/verify", 0)
	verifier := NewTokenService("another-secret", "http://localhost:8090/verify", 0)

	token, err := signer.Sign(testClaims())
	require.NoError(t, err)

	result := verifier.Verify(token)
	assert.False(t, result.Valid)
	assert.Equal(t, ReasonSignatureMismatch, result.Reason)
}

func TestTokenService_VerificationURL(t *testing.T) {
	svc := NewTokenService("test-secret", "http://localhost:8090/verify/", 30)

	url, err := svc.VerificationURL(testClaims())
	require.NoError(t, err)

	assert.Contains(t, url, "http://localhost:8090/verify/")
	assert.NotContains(t, url, "//verify//")

	token, err := svc.Sign(testClaims())
	require.NoError(t, err)
	assert.Contains(t, url, "http://localhost:8090/verify/")
	assert.NotEmpty(t, token)
}

func TestTokenService_QRCodePNG(t *testing.T) {
	svc := NewTokenService("test-secret", "http://localhost:8090/verify", 30)

	png, err := svc.QRCodePNG(testClaims(), 256)
	require.NoError(t, err)
	require.NotEmpty(t, png)

	// PNG magic bytes
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])

	dataURL, err := svc.QRCodeDataURL(testClaims(), 256)
	require.NoError(t, err)
	assert.Contains(t, dataURL, "data:image/png;base64,")
}
