// Package mail sends transactional email.
//
//	mail.To("user@example.com").
//	    Subject("Activate your account").
//	    Template(activationHTML, data).
//	    Send(ctx)
//
// The package-level Sender is SMTP when MAIL_DRIVER=smtp and a logging
// sender otherwise. Tests install a Recorder with Fake.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"sync"

	"github.com/shashiranjanraj/dailyfresh/config"
	"github.com/shashiranjanraj/dailyfresh/pkg/logger"
)

// Envelope is a rendered message ready for delivery.
type Envelope struct {
	To      []string
	Subject string
	Body    string
	HTML    bool
}

type Sender interface {
	Send(ctx context.Context, e Envelope) error
}

var (
	senderMu sync.RWMutex
	sender   Sender
)

// Use replaces the package-level sender.
func Use(s Sender) {
	senderMu.Lock()
	sender = s
	senderMu.Unlock()
}

func current() Sender {
	senderMu.RLock()
	s := sender
	senderMu.RUnlock()
	if s != nil {
		return s
	}
	if strings.EqualFold(config.Get("MAIL_DRIVER", "log"), "smtp") {
		return NewSMTP(SMTPFromConfig())
	}
	return LogSender{}
}

// Message is a fluent builder for one email.
type Message struct {
	env Envelope
	err error
}

func To(addresses ...string) *Message {
	return &Message{env: Envelope{To: addresses, HTML: true}}
}

func (m *Message) Subject(s string) *Message {
	m.env.Subject = s
	return m
}

// Body sets an HTML body.
func (m *Message) Body(html string) *Message {
	m.env.Body = html
	m.env.HTML = true
	return m
}

func (m *Message) Text(text string) *Message {
	m.env.Body = text
	m.env.HTML = false
	return m
}

// Template renders src as an html/template with data. A render failure is
// reported by Send.
func (m *Message) Template(src string, data interface{}) *Message {
	tmpl, err := template.New("mail").Parse(src)
	if err != nil {
		m.err = fmt.Errorf("mail: parse template: %w", err)
		return m
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		m.err = fmt.Errorf("mail: render template: %w", err)
		return m
	}
	return m.Body(buf.String())
}

func (m *Message) Send(ctx context.Context) error {
	if m.err != nil {
		return m.err
	}
	if len(m.env.To) == 0 {
		return fmt.Errorf("mail: no recipients")
	}
	return current().Send(ctx, m.env)
}

// ─── Senders ─────────────────────────────────────────────────────────────────

// LogSender writes the envelope to the log instead of delivering it.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, e Envelope) error {
	logger.WithCtx(ctx).Info("mail: not delivered (log driver)",
		"to", strings.Join(e.To, ","), "subject", e.Subject, "body", e.Body)
	return nil
}

type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

func SMTPFromConfig() SMTP {
	return SMTP{
		Host:     config.Get("MAIL_HOST", "localhost"),
		Port:     config.Get("MAIL_PORT", "587"),
		Username: config.Get("MAIL_USERNAME", ""),
		Password: config.Get("MAIL_PASSWORD", ""),
		From:     config.Get("MAIL_FROM", "noreply@dailyfresh.local"),
		FromName: config.Get("MAIL_FROM_NAME", "dailyfresh"),
	}
}

type SMTPSender struct {
	cfg SMTP
}

func NewSMTP(cfg SMTP) *SMTPSender { return &SMTPSender{cfg: cfg} }

func (s *SMTPSender) Send(_ context.Context, e Envelope) error {
	cfg := s.cfg
	raw := buildRaw(fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From), e)
	addr := cfg.Host + ":" + cfg.Port

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	// 465 is implicit TLS; everything else negotiates STARTTLS.
	if cfg.Port == "465" {
		return sendTLS(addr, cfg.Host, auth, cfg.From, e.To, raw)
	}
	if err := smtp.SendMail(addr, auth, cfg.From, e.To, raw); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}

func sendTLS(addr, host string, auth smtp.Auth, from string, to []string, raw []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return fmt.Errorf("mail: tls dial: %w", err)
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("mail: smtp client: %w", err)
	}
	defer client.Quit()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("mail: auth: %w", err)
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func buildRaw(from string, e Envelope) []byte {
	contentType := "text/plain"
	if e.HTML {
		contentType = "text/html"
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(e.To, ", ") + "\r\n")
	b.WriteString("Subject: " + e.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s; charset=\"UTF-8\"\r\n\r\n", contentType)
	b.WriteString(e.Body)
	return []byte(b.String())
}

// ─── Testing ─────────────────────────────────────────────────────────────────

// Recorder keeps every envelope it is asked to send.
type Recorder struct {
	mu   sync.Mutex
	sent []Envelope
}

func (r *Recorder) Send(_ context.Context, e Envelope) error {
	r.mu.Lock()
	r.sent = append(r.sent, e)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Sent() []Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Envelope(nil), r.sent...)
}

// Fake installs a Recorder as the package sender until the test ends.
func Fake(t interface{ Cleanup(func()) }) *Recorder {
	rec := &Recorder{}
	senderMu.Lock()
	prev := sender
	sender = rec
	senderMu.Unlock()
	t.Cleanup(func() { Use(prev) })
	return rec
}
