// Package notification delivers escalation decisions to care-team channels,
// with template rendering, in-memory storage, and retry logic for failed sends.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vigia/vigia/internal/risk"
)

// Channel represents the delivery channel used for an escalation notice.
type Channel string

const (
	ChannelPager Channel = "pager"
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

// Status values for a Notice.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// Notice is a single outbound escalation notice.
type Notice struct {
	ID         string               `json:"id"`
	Channel    Channel              `json:"channel"`
	Recipient  string               `json:"recipient"`
	Subject    string               `json:"subject,omitempty"`
	Body       string               `json:"body"`
	UserID     string               `json:"user_id"`
	Escalation risk.EscalationLevel `json:"escalation_level"`
	Status     string               `json:"status"`
	CreatedAt  time.Time            `json:"created_at"`
	SentAt     *time.Time           `json:"sent_at,omitempty"`
	Error      string               `json:"error,omitempty"`
}

// Sender delivers a notice body to a recipient over one channel.
type Sender interface {
	Send(ctx context.Context, channel Channel, recipient, subject, body string) error
}

// LogSender writes notices to the structured log instead of an external
// gateway. It is the default sender in development environments.
type LogSender struct {
	Log zerolog.Logger
}

// Send logs the notice and always succeeds.
func (s *LogSender) Send(_ context.Context, channel Channel, recipient, subject, body string) error {
	s.Log.Info().
		Str("channel", string(channel)).
		Str("recipient", recipient).
		Str("subject", subject).
		Str("body", body).
		Msg("escalation notice")
	return nil
}

// ---------------------------------------------------------------------------
// Templates
// ---------------------------------------------------------------------------

// Template defines a reusable notice template with {{key}} placeholders.
type Template struct {
	ID      string  `json:"id"`
	Subject string  `json:"subject"`
	Body    string  `json:"body"`
	Channel Channel `json:"channel"`
}

// TemplateEngine manages notice templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in templates
// pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      "emergency-dispatch",
			Subject: "EMERGENCY: user {{user_id}} requires immediate intervention",
			Body:    "User {{user_id}} triggered {{conditions}}. Composite risk score {{score}}. Act within {{minutes}} minutes.",
			Channel: ChannelPager,
		},
		{
			ID:      "urgent-teleconsult",
			Subject: "Urgent teleconsultation: user {{user_id}}",
			Body:    "User {{user_id}} requires nurse contact within {{minutes}} minutes. Composite risk score {{score}}. Reasons: {{reasons}}.",
			Channel: ChannelSMS,
		},
		{
			ID:      "physician-appointment",
			Subject: "Priority appointment needed: user {{user_id}}",
			Body:    "User {{user_id}} should see a physician within {{minutes}} minutes. Composite risk score {{score}}. Reasons: {{reasons}}.",
			Channel: ChannelEmail,
		},
		{
			ID:      "enhanced-monitoring",
			Subject: "Monitoring escalated: user {{user_id}}",
			Body:    "User {{user_id}} has been placed under enhanced monitoring. Composite risk score {{score}}. Reasons: {{reasons}}.",
			Channel: ChannelEmail,
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template by ID and performs {{key}} replacement using the
// supplied data map. Keys present in the template but absent from data are
// left as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (*Template, string, string, error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return nil, "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject := t.Subject
	body := t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return t, subject, body, nil
}

// templateFor maps an escalation level to its built-in template.
func templateFor(level risk.EscalationLevel) (string, bool) {
	switch level {
	case risk.EscalationImmediate:
		return "emergency-dispatch", true
	case risk.EscalationCritical:
		return "urgent-teleconsult", true
	case risk.EscalationHigh:
		return "physician-appointment", true
	case risk.EscalationMedium:
		return "enhanced-monitoring", true
	default:
		return "", false
	}
}

// ---------------------------------------------------------------------------
// Dispatcher
// ---------------------------------------------------------------------------

// Dispatcher renders and sends escalation notices, records delivery outcomes
// in-memory, and supports retrying failed notices.
type Dispatcher struct {
	sender    Sender
	templates *TemplateEngine
	recipient string

	mu      sync.RWMutex
	notices map[string]*Notice
}

// NewDispatcher constructs a Dispatcher. recipient is the care-team address
// all notices go to.
func NewDispatcher(sender Sender, tpl *TemplateEngine, recipient string) *Dispatcher {
	return &Dispatcher{
		sender:    sender,
		templates: tpl,
		recipient: recipient,
		notices:   make(map[string]*Notice),
	}
}

// DispatchDecision sends a notice for an escalation decision. Routine-level
// decisions produce no notice and return (nil, nil).
func (d *Dispatcher) DispatchDecision(ctx context.Context, assessment *risk.CompositeRiskAssessment, decision *risk.EscalationDecision) (*Notice, error) {
	templateID, ok := templateFor(decision.Level)
	if !ok {
		return nil, nil
	}

	data := map[string]string{
		"user_id": assessment.UserID.String(),
		"score":   fmt.Sprintf("%d", assessment.DisplayScore),
		"reasons": strings.Join(decision.Reasons, "; "),
	}
	if decision.TimeToActionMinutes != nil {
		data["minutes"] = fmt.Sprintf("%d", *decision.TimeToActionMinutes)
	}
	if len(assessment.EmergencyAlerts) > 0 {
		conditions := make([]string, 0, len(assessment.EmergencyAlerts))
		for _, a := range assessment.EmergencyAlerts {
			conditions = append(conditions, a.Condition)
		}
		data["conditions"] = strings.Join(conditions, ", ")
	}

	tpl, subject, body, err := d.templates.Render(templateID, data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	n := &Notice{
		ID:         uuid.New().String(),
		Channel:    tpl.Channel,
		Recipient:  d.recipient,
		Subject:    subject,
		Body:       body,
		UserID:     assessment.UserID.String(),
		Escalation: decision.Level,
		Status:     StatusPending,
		CreatedAt:  time.Now().UTC(),
	}

	sendErr := d.sender.Send(ctx, n.Channel, n.Recipient, n.Subject, n.Body)
	if sendErr != nil {
		n.Status = StatusFailed
		n.Error = sendErr.Error()
	} else {
		n.Status = StatusSent
		sentAt := time.Now().UTC()
		n.SentAt = &sentAt
	}

	d.mu.Lock()
	d.notices[n.ID] = n
	d.mu.Unlock()

	return n, sendErr
}

// Get retrieves a notice by ID.
func (d *Dispatcher) Get(id string) (*Notice, error) {
	d.mu.RLock()
	n, ok := d.notices[id]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("notice %q not found", id)
	}
	return n, nil
}

// ListByUser returns notices for a given user, up to limit.
func (d *Dispatcher) ListByUser(userID string, limit int) []*Notice {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var result []*Notice
	for _, n := range d.notices {
		if n.UserID == userID {
			result = append(result, n)
			if len(result) >= limit {
				break
			}
		}
	}
	return result
}

// Retry re-sends a failed notice. Returns an error if the notice is not in
// failed status.
func (d *Dispatcher) Retry(ctx context.Context, id string) error {
	d.mu.RLock()
	n, ok := d.notices[id]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("notice %q not found", id)
	}
	if n.Status != StatusFailed {
		return fmt.Errorf("notice %q is not in failed status (current: %s)", id, n.Status)
	}

	sendErr := d.sender.Send(ctx, n.Channel, n.Recipient, n.Subject, n.Body)

	d.mu.Lock()
	if sendErr != nil {
		n.Status = StatusFailed
		n.Error = sendErr.Error()
	} else {
		n.Status = StatusSent
		sentAt := time.Now().UTC()
		n.SentAt = &sentAt
		n.Error = ""
	}
	d.mu.Unlock()

	return sendErr
}

// Stats returns counts of notices grouped by status.
func (d *Dispatcher) Stats() map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := make(map[string]int)
	for _, n := range d.notices {
		stats[n.Status]++
	}
	return stats
}

// ---------------------------------------------------------------------------
// Test double
// ---------------------------------------------------------------------------

// SendCall records a single call to a MockSender.
type SendCall struct {
	Channel   Channel
	Recipient string
	Subject   string
	Body      string
}

// MockSender is a test double for Sender.
type MockSender struct {
	mu         sync.Mutex
	calls      []SendCall
	ShouldFail bool
	FailError  string
}

// Send records the call and optionally returns an error.
func (m *MockSender) Send(_ context.Context, channel Channel, recipient, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SendCall{Channel: channel, Recipient: recipient, Subject: subject, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded send calls.
func (m *MockSender) Calls() []SendCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SendCall, len(m.calls))
	copy(out, m.calls)
	return out
}
