package notify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Vadied/party-manager/internal/i18n"
	"github.com/Vadied/party-manager/internal/models"
)

// Message is one personalized email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Personalize renders subject and body for every participant of team, master
// first. Nothing is returned unless every copy renders.
func (r Renderer) Personalize(team models.Team, subject, body string) ([]Message, error) {
	errs := models.ValidationErrors{}
	if strings.TrimSpace(subject) == "" {
		errs.Add("subject", i18n.T("Subject is required"))
	}
	if strings.TrimSpace(body) == "" {
		errs.Add("body", i18n.T("Body is required"))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	participants := team.Participants()
	out := make([]Message, 0, len(participants))
	for _, p := range participants {
		if strings.TrimSpace(p.Email) == "" {
			return nil, fmt.Errorf("participant %s has no email address", p.ID)
		}
		out = append(out, Message{
			To:      p.Email,
			Subject: r.Render(subject, team, p),
			Body:    r.Render(body, team, p),
		})
	}
	return out, nil
}

// Preview renders the copy the first participant would receive.
func (r Renderer) Preview(team models.Team, subject, body string) (Message, error) {
	msgs, err := r.Personalize(team, subject, body)
	if err != nil {
		return Message{}, err
	}
	return msgs[0], nil
}

// RecordFunc stores delivered messages.
type RecordFunc func(ctx context.Context, emails []models.SentEmail) error

// Mailer simulates delivery: it waits Delay, logs every message and hands
// the batch to Record.
type Mailer struct {
	Renderer Renderer
	Delay    time.Duration
	Record   RecordFunc

	now func() time.Time
}

// NewMailer returns a Mailer.
func NewMailer(r Renderer, delay time.Duration, record RecordFunc) *Mailer {
	return &Mailer{Renderer: r, Delay: delay, Record: record, now: time.Now}
}

// Send delivers subject and body to every participant of team. It reports
// success only when all copies rendered and were recorded.
func (m *Mailer) Send(ctx context.Context, team models.Team, subject, body string) ([]models.SentEmail, error) {
	msgs, err := m.Renderer.Personalize(team, subject, body)
	if err != nil {
		return nil, err
	}

	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	now := time.Now
	if m.now != nil {
		now = m.now
	}
	sent := make([]models.SentEmail, 0, len(msgs))
	for _, msg := range msgs {
		log.Printf("Email sent to: %s\nSubject: %s\nBody:\n%s\n---", msg.To, msg.Subject, msg.Body)
		sent = append(sent, models.SentEmail{
			TeamID:    team.ID,
			Recipient: msg.To,
			Subject:   msg.Subject,
			Body:      msg.Body,
			CreatedAt: now(),
		})
	}

	if m.Record != nil {
		if err := m.Record(ctx, sent); err != nil {
			return nil, fmt.Errorf("record sent emails: %w", err)
		}
	}
	return sent, nil
}
