// internal/notify/email.go
package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// SubjectPrefix tags every outgoing mail.
const SubjectPrefix = "[Session Keeper]"

// ErrRateLimited is returned when a mail is dropped by the limiter.
var ErrRateLimited = errors.New("notify: email rate limit reached, message dropped")

// SMTPConfig describes the mail relay and recipient.
type SMTPConfig struct {
	Server  string
	Port    int
	User    string
	Pass    string
	From    string
	To      string
	PerHour float64 // sustained mails per hour; <= 0 means 12
	Burst   int     // <= 0 means 3
}

type sendMailFunc func(ctx context.Context, host, addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailSink mails notifications. STARTTLS is used when the server offers it.
type EmailSink struct {
	cfg      SMTPConfig
	limiter  *rate.Limiter
	sendMail sendMailFunc
}

// NewEmailSink validates cfg and returns a rate-limited sink.
func NewEmailSink(cfg SMTPConfig) (*EmailSink, error) {
	if cfg.Server == "" || cfg.From == "" || cfg.To == "" {
		return nil, errors.New("notify: email requires server, from and to")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.PerHour <= 0 {
		cfg.PerHour = 12
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 3
	}

	return &EmailSink{
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Limit(cfg.PerHour/3600), cfg.Burst),
		sendMail: sendMail,
	}, nil
}

func (s *EmailSink) Name() string { return "email" }

func (s *EmailSink) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.limiter.Allow() {
		return ErrRateLimited
	}

	addr := net.JoinHostPort(s.cfg.Server, strconv.Itoa(s.cfg.Port))

	var auth smtp.Auth
	if s.cfg.User != "" && s.cfg.Pass != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Server)
	}

	if err := s.sendMail(ctx, s.cfg.Server, addr, auth, s.cfg.From, []string{s.cfg.To}, s.compose(m)); err != nil {
		return fmt.Errorf("notify: send mail to %s: %w", s.cfg.To, err)
	}
	return nil
}

func (s *EmailSink) compose(m Message) []byte {
	at := m.At
	if at.IsZero() {
		at = time.Now()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", s.cfg.To)
	fmt.Fprintf(&b, "Subject: %s %s\r\n", SubjectPrefix, m.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", at.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(m.Body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// sendMail is smtp.SendMail bound to ctx: the dial honours ctx, and the
// connection deadline follows the ctx deadline or cancellation, so a relay
// that never answers cannot hold the caller.
func sendMail(ctx context.Context, host, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	if dl, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(dl); err != nil {
			return err
		}
	}
	stop := context.AfterFunc(ctx, func() { conn.SetDeadline(time.Now()) })
	defer stop()

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if a != nil {
		if ok, _ := c.Extension("AUTH"); !ok {
			return errors.New("smtp: server doesn't support AUTH")
		}
		if err := c.Auth(a); err != nil {
			return err
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
