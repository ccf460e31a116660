package services

import (
	"regexp"
	"sort"
	"strings"

	"raffle-system/internal/status"
)

// NotificationTemplate is a static email template with {{var}} placeholders
// and single-variable {{#if name}}...{{/if}} blocks.
type NotificationTemplate struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Subject   string   `json:"subject"`
	Content   string   `json:"content"`
	Variables []string `json:"variables"`
}

type RenderedNotification struct {
	TemplateID string `json:"template_id"`
	Subject    string `json:"subject"`
	Content    string `json:"content"`
}

// LintIssue flags a drift between a template's declared variable list and the
// placeholders its subject or content actually uses.
type LintIssue struct {
	TemplateID string `json:"template_id"`
	Variable   string `json:"variable"`
	Problem    string `json:"problem"` // "undeclared" or "unused"
}

var (
	conditionalPattern = regexp.MustCompile(`(?s)\{\{#if\s+([^}]+)\}\}(.*?)\{\{/if\}\}`)
	placeholderPattern = regexp.MustCompile(`\{\{([a-zA-Z][a-zA-Z0-9_]*)\}\}`)
)

type TemplateService struct {
	templates map[string]NotificationTemplate
}

func NewTemplateService() *TemplateService {
	templates := make(map[string]NotificationTemplate, len(notificationTemplates))
	for _, tmpl := range notificationTemplates {
		templates[tmpl.ID] = tmpl
	}
	return &TemplateService{templates: templates}
}

// GetTemplate returns a template by id.
func (s *TemplateService) GetTemplate(templateID string) (*NotificationTemplate, error) {
	tmpl, ok := s.templates[templateID]
	if !ok {
		return nil, status.ErrTemplateNotFound
	}
	return &tmpl, nil
}

// ListTemplates returns the catalog sorted by id.
func (s *TemplateService) ListTemplates() []NotificationTemplate {
	list := make([]NotificationTemplate, 0, len(s.templates))
	for _, tmpl := range s.templates {
		list = append(list, tmpl)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// Render fills a template with variables. Missing variables degrade silently:
// their placeholders stay literal and their conditional blocks drop out. The
// only failure is an unknown template id.
func (s *TemplateService) Render(templateID string, variables map[string]string) (*RenderedNotification, error) {
	tmpl, ok := s.templates[templateID]
	if !ok {
		return nil, status.ErrTemplateNotFound
	}

	return &RenderedNotification{
		TemplateID: tmpl.ID,
		Subject:    substitute(tmpl.Subject, variables),
		Content:    substitute(tmpl.Content, variables),
	}, nil
}

func substitute(text string, variables map[string]string) string {
	// Variables first, conditionals second: a substituted value never
	// re-triggers placeholder expansion.
	for key, value := range variables {
		text = strings.ReplaceAll(text, "{{"+key+"}}", value)
	}

	return conditionalPattern.ReplaceAllStringFunc(text, func(match string) string {
		parts := conditionalPattern.FindStringSubmatch(match)
		value := variables[strings.TrimSpace(parts[1])]
		if value != "" && value != "false" {
			return parts[2]
		}
		return ""
	})
}

// CheckTemplates cross-checks every template's declared variables against the
// placeholders and conditional names in its subject and content.
func (s *TemplateService) CheckTemplates() []LintIssue {
	var issues []LintIssue

	for _, tmpl := range s.ListTemplates() {
		declared := make(map[string]bool, len(tmpl.Variables))
		for _, v := range tmpl.Variables {
			declared[v] = true
		}

		used := make(map[string]bool)
		for _, text := range []string{tmpl.Subject, tmpl.Content} {
			for _, match := range placeholderPattern.FindAllStringSubmatch(text, -1) {
				used[match[1]] = true
			}
			for _, match := range conditionalPattern.FindAllStringSubmatch(text, -1) {
				used[strings.TrimSpace(match[1])] = true
			}
		}

		for name := range used {
			if !declared[name] {
				issues = append(issues, LintIssue{TemplateID: tmpl.ID, Variable: name, Problem: "undeclared"})
			}
		}
		for _, name := range tmpl.Variables {
			if !used[name] {
				issues = append(issues, LintIssue{TemplateID: tmpl.ID, Variable: name, Problem: "unused"})
			}
		}
	}

	sort.Slice(issues, func(i, j int) bool {
		if issues[i].TemplateID != issues[j].TemplateID {
			return issues[i].TemplateID < issues[j].TemplateID
		}
		return issues[i].Variable < issues[j].Variable
	})
	return issues
}
