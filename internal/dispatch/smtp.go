package dispatch

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/rs/zerolog"

	"github.com/nhle/advisor-ai/internal/action"
	"github.com/nhle/advisor-ai/internal/model"
)

// SentArchiver keeps a copy of a sent message, e.g. in an IMAP Sent folder.
type SentArchiver interface {
	Archive(ctx context.Context, raw []byte) error
}

// SMTP sends the action as a plain-text email from the user's address.
type SMTP struct {
	cfg      model.MailConfig
	from     *mail.Address
	username string
	password string
	archiver SentArchiver
	log      zerolog.Logger
	now      func() time.Time
	dial     func(ctx context.Context) (*smtp.Client, error)
}

// NewSMTP creates an SMTP dispatcher sending as profile. archiver may be nil.
func NewSMTP(
	cfg model.MailConfig,
	profile model.UserProfile,
	password string,
	archiver SentArchiver,
	log zerolog.Logger,
) *SMTP {
	username := cfg.Username
	if username == "" {
		username = profile.Email
	}

	s := &SMTP{
		cfg:      cfg,
		from:     &mail.Address{Name: profile.Name, Address: profile.Email},
		username: username,
		password: password,
		archiver: archiver,
		log:      log.With().Str("component", "smtp").Logger(),
		now:      time.Now,
	}
	s.dial = s.connect
	return s
}

// Dispatch implements Dispatcher.
func (s *SMTP) Dispatch(ctx context.Context, act action.EmailAction) (Outcome, error) {
	if s.from.Address == "" {
		return Outcome{}, errors.New("smtp: profile email is required as sender")
	}

	to := recipients(act.Address)
	raw, messageID, err := BuildMessage(s.from, to, act, s.now())
	if err != nil {
		return Outcome{}, err
	}

	if s.cfg.DryRun {
		s.log.Info().Str("to", act.Address).Str("message_id", messageID).Int("bytes", len(raw)).Msg("dry run, not sending")
		return Outcome{
			Method: MethodSMTP,
			Detail: fmt.Sprintf("Dry run: email to %s was not sent", act.Address),
		}, nil
	}

	if err := s.send(ctx, to, raw); err != nil {
		return Outcome{}, err
	}
	s.log.Info().Str("to", act.Address).Str("message_id", messageID).Msg("email sent")

	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, raw); err != nil {
			s.log.Warn().Err(err).Str("message_id", messageID).Msg("saving sent copy failed")
		}
	}

	return Outcome{
		Method: MethodSMTP,
		Detail: fmt.Sprintf("Sent email to %s", act.Address),
	}, nil
}

func (s *SMTP) send(ctx context.Context, to []*mail.Address, raw []byte) error {
	c, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if s.password != "" {
		auth := sasl.NewPlainClient("", s.username, s.password)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp: auth failed: %w", err)
		}
	}

	if err := c.Mail(s.from.Address, nil); err != nil {
		return fmt.Errorf("smtp: MAIL FROM failed: %w", err)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt.Address, nil); err != nil {
			return fmt.Errorf("smtp: RCPT TO %q failed: %w", rcpt.Address, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp: DATA failed: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("smtp: writing message failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp: finalizing message failed: %w", err)
	}
	if err := c.Quit(); err != nil {
		return fmt.Errorf("smtp: QUIT failed: %w", err)
	}
	return nil
}

// connect dials the configured server with implicit TLS, or upgrades a
// plain connection with STARTTLS.
func (s *SMTP) connect(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(s.cfg.SMTPHost, strconv.Itoa(s.cfg.SMTPPort))
	tlsConfig := &tls.Config{ServerName: s.cfg.SMTPHost}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("smtp: dialing %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if !s.cfg.StartTLS {
		return smtp.NewClient(tls.Client(conn, tlsConfig)), nil
	}

	c := smtp.NewClient(conn)
	if err := c.StartTLS(tlsConfig); err != nil {
		c.Close()
		return nil, fmt.Errorf("smtp: STARTTLS with %s: %w", addr, err)
	}
	return c, nil
}

// recipients parses the action address, which may be a comma-separated
// list as produced by Gmail compose links.
func recipients(address string) []*mail.Address {
	list, err := mail.ParseAddressList(address)
	if err != nil || len(list) == 0 {
		return []*mail.Address{{Address: strings.TrimSpace(address)}}
	}
	return list
}

// BuildMessage renders act as an RFC 5322 plain-text message and returns
// it with its generated Message-ID.
func BuildMessage(from *mail.Address, to []*mail.Address, act action.EmailAction, date time.Time) ([]byte, string, error) {
	subject := strings.TrimSpace(act.Subject)
	if subject == "" {
		subject = "(no subject)"
	}

	var h mail.Header
	h.SetDate(date)
	h.SetAddressList("From", []*mail.Address{from})
	h.SetAddressList("To", to)
	h.SetSubject(subject)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	if err := h.GenerateMessageID(); err != nil {
		return nil, "", fmt.Errorf("generating message id: %w", err)
	}
	messageID, err := h.MessageID()
	if err != nil {
		return nil, "", fmt.Errorf("reading message id: %w", err)
	}

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, "", fmt.Errorf("creating message writer: %w", err)
	}
	if _, err := io.WriteString(w, normalizeBody(act.Body)); err != nil {
		return nil, "", fmt.Errorf("writing message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing message writer: %w", err)
	}

	return buf.Bytes(), messageID, nil
}

func normalizeBody(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\r", "\n")
	return strings.ReplaceAll(strings.TrimSpace(body), "\n", "\r\n") + "\r\n"
}
