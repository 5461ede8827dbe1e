package dispatch

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/rs/zerolog"

	"github.com/nhle/advisor-ai/internal/model"
)

// IMAPArchiver appends sent messages to a mailbox over IMAPS.
type IMAPArchiver struct {
	addr     string
	username string
	password string
	mailbox  string
	log      zerolog.Logger
}

// NewIMAPArchiver creates an archiver for cfg's IMAP server. The login
// defaults to the sender address when cfg.Username is empty.
func NewIMAPArchiver(cfg model.MailConfig, sender, password string, log zerolog.Logger) *IMAPArchiver {
	username := cfg.Username
	if username == "" {
		username = sender
	}
	mailbox := cfg.SentMailbox
	if mailbox == "" {
		mailbox = "Sent"
	}

	return &IMAPArchiver{
		addr:     net.JoinHostPort(cfg.IMAPHost, strconv.Itoa(cfg.IMAPPort)),
		username: username,
		password: password,
		mailbox:  mailbox,
		log:      log.With().Str("component", "imap").Logger(),
	}
}

// Archive implements SentArchiver.
func (a *IMAPArchiver) Archive(ctx context.Context, raw []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	client, err := imapclient.DialTLS(a.addr, nil)
	if err != nil {
		return fmt.Errorf("connecting to IMAP %s: %w", a.addr, err)
	}
	defer client.Close()

	if err := client.Login(a.username, a.password).Wait(); err != nil {
		return fmt.Errorf("IMAP login as %s: %w", a.username, err)
	}

	cmd := client.Append(a.mailbox, int64(len(raw)), &imap.AppendOptions{
		Flags: []imap.Flag{imap.FlagSeen},
		Time:  time.Now(),
	})
	if _, err := cmd.Write(raw); err != nil {
		return fmt.Errorf("writing message to %s: %w", a.mailbox, err)
	}
	if err := cmd.Close(); err != nil {
		return fmt.Errorf("closing append to %s: %w", a.mailbox, err)
	}
	if _, err := cmd.Wait(); err != nil {
		return fmt.Errorf("appending to %s: %w", a.mailbox, err)
	}

	if err := client.Logout().Wait(); err != nil {
		a.log.Debug().Err(err).Msg("IMAP logout")
	}

	a.log.Debug().Str("mailbox", a.mailbox).Int("bytes", len(raw)).Msg("sent copy saved")
	return nil
}
