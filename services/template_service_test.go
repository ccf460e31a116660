package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raffle-system/internal/status"
)

func TestTemplateService_RenderSubstitution(t *testing.T) {
	svc := NewTemplateService()

	rendered, err := svc.Render("ticket_confirmation", map[string]string{
		"buyerName":     "Jane Doe",
		"ticketNumber":  "IEEE-UJ-0042",
		"purchaseDate":  "1 September 2026",
		"paymentMethod": "Cash",
		"sellerName":    "Seller A",
		"sellerEmail":   "seller@example.com",
		"ticketPrice":   "50",
		"drawDate":      "15 October 2026",
	})
	require.NoError(t, err)

	assert.Equal(t, "🎫 IEEE UJ Raffle Ticket Confirmation - IEEE-UJ-0042", rendered.Subject)
	assert.Contains(t, rendered.Content, "Hi Jane Doe,")
	assert.Contains(t, rendered.Content, "IEEE-UJ-0042")
	assert.Contains(t, rendered.Content, "R50")
	assert.NotContains(t, rendered.Content, "{{buyerName}}")
}

func TestTemplateService_UnknownTemplate(t *testing.T) {
	svc := NewTemplateService()

	_, err := svc.Render("does_not_exist", nil)
	assert.ErrorIs(t, err, status.ErrTemplateNotFound)
}

func TestTemplateService_MissingVariablesStayLiteral(t *testing.T) {
	svc := NewTemplateService()

	rendered, err := svc.Render("winner_announcement", map[string]string{
		"winnerName": "Jane Doe",
	})
	require.NoError(t, err)

	// Unsupplied placeholders degrade silently instead of erroring
	assert.Contains(t, rendered.Content, "Dear Jane Doe,")
	assert.Contains(t, rendered.Content, "{{ticketNumber}}")
	assert.Contains(t, rendered.Content, "{{prizeName}}")
}

func TestTemplateService_UnknownVariablesIgnored(t *testing.T) {
	svc := NewTemplateService()

	rendered, err := svc.Render("winner_announcement", map[string]string{
		"winnerName":  "Jane Doe",
		"notInAnyOne": "should be ignored",
	})
	require.NoError(t, err)
	assert.NotContains(t, rendered.Content, "should be ignored")
}

func TestTemplateService_ConditionalBlocks(t *testing.T) {
	svc := NewTemplateService()

	tests := []struct {
		name       string
		eftPayment string
		wantBlock  bool
	}{
		{"present and truthy", "true", true},
		{"any non-empty value", "yes", true},
		{"explicit false", "false", false},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := map[string]string{
				"buyerName":    "Jane Doe",
				"ticketNumber": "IEEE-UJ-0042",
				"ticketPrice":  "50",
			}
			if tt.eftPayment != "" {
				vars["eftPayment"] = tt.eftPayment
			}

			rendered, err := svc.Render("ticket_confirmation", vars)
			require.NoError(t, err)

			if tt.wantBlock {
				assert.Contains(t, rendered.Content, "Payment still pending")
			} else {
				assert.NotContains(t, rendered.Content, "Payment still pending")
				assert.NotContains(t, rendered.Content, "{{#if")
				assert.NotContains(t, rendered.Content, "{{/if}}")
			}
		})
	}
}

func TestTemplateService_ConditionalMarkersNeverLeak(t *testing.T) {
	svc := NewTemplateService()

	for _, tmpl := range svc.ListTemplates() {
		rendered, err := svc.Render(tmpl.ID, map[string]string{
			"eftPayment":     "true",
			"topSeller":      "true",
			"actionRequired": "true",
		})
		require.NoError(t, err)
		assert.NotContains(t, rendered.Content, "{{#if", "template %s leaks conditional markers", tmpl.ID)
		assert.NotContains(t, rendered.Content, "{{/if}}", "template %s leaks conditional markers", tmpl.ID)
	}
}

func TestTemplateService_RenderIsIdempotent(t *testing.T) {
	svc := NewTemplateService()

	vars := map[string]string{
		"winnerName":   "Jane Doe",
		"ticketNumber": "IEEE-UJ-0042",
		"prizeName":    "MacBook Air",
		"drawDate":     "15 October 2026",
		"totalTickets": "500",
		"contactEmail": "raffle@ieee-uj.org",
	}

	first, err := svc.Render("winner_announcement", vars)
	require.NoError(t, err)
	second, err := svc.Render("winner_announcement", vars)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestTemplateService_ListTemplates(t *testing.T) {
	svc := NewTemplateService()

	templates := svc.ListTemplates()
	require.Len(t, templates, 5)

	ids := make([]string, 0, len(templates))
	for _, tmpl := range templates {
		ids = append(ids, tmpl.ID)
	}
	assert.Equal(t, []string{
		"bulk_update", "payment_reminder", "seller_summary",
		"ticket_confirmation", "winner_announcement",
	}, ids)
}

func TestTemplateService_CatalogLintClean(t *testing.T) {
	svc := NewTemplateService()

	issues := svc.CheckTemplates()
	assert.Empty(t, issues, "shipped templates must declare exactly the variables they use: %+v", issues)
}

func TestTemplateService_CheckTemplatesFlagsDrift(t *testing.T) {
	svc := NewTemplateService()
	svc.templates["broken"] = NotificationTemplate{
		ID:        "broken",
		Subject:   "Hello {{name}}",
		Content:   "{{#if vip}}Welcome back{{/if}}",
		Variables: []string{"name", "unusedVar"},
	}

	issues := svc.CheckTemplates()
	require.NotEmpty(t, issues)

	found := map[string]string{}
	for _, issue := range issues {
		if issue.TemplateID == "broken" {
			found[issue.Variable] = issue.Problem
		}
	}
	assert.Equal(t, "undeclared", found["vip"])
	assert.Equal(t, "unused", found["unusedVar"])
}
