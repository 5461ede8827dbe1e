// Package dispatch hands an extracted email action to something that can
// deliver it: the desktop mail client, Gmail in the browser, or SMTP.
package dispatch

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nhle/advisor-ai/internal/action"
	"github.com/nhle/advisor-ai/internal/model"
)

// Method names how an action was delivered.
type Method string

const (
	MethodComposer Method = "composer"
	MethodGmail    Method = "gmail"
	MethodSMTP     Method = "smtp"
	MethodManual   Method = "manual"
)

// ErrNoAddress is returned for an action without a recipient.
var ErrNoAddress = errors.New("email action has no address")

// Outcome reports what a dispatcher did, in words fit for the status bar.
type Outcome struct {
	Method Method
	Detail string
}

// Dispatcher delivers an email action.
type Dispatcher interface {
	Dispatch(ctx context.Context, act action.EmailAction) (Outcome, error)
}

// Chain tries each dispatcher in order and stops at the first success.
// When all of them fail the user is told to send the email by hand, so
// Chain itself only fails for an action without an address.
type Chain struct {
	dispatchers []Dispatcher
	log         zerolog.Logger
}

// NewChain builds a chain over the given dispatchers.
func NewChain(log zerolog.Logger, dispatchers ...Dispatcher) *Chain {
	return &Chain{
		dispatchers: dispatchers,
		log:         log.With().Str("component", "dispatch").Logger(),
	}
}

// Dispatch implements Dispatcher.
func (c *Chain) Dispatch(ctx context.Context, act action.EmailAction) (Outcome, error) {
	if strings.TrimSpace(act.Address) == "" {
		return Outcome{}, ErrNoAddress
	}

	for _, d := range c.dispatchers {
		out, err := d.Dispatch(ctx, act)
		if err == nil {
			c.log.Info().Str("method", string(out.Method)).Str("to", act.Address).Msg("email action dispatched")
			return out, nil
		}
		c.log.Warn().Err(err).Str("to", act.Address).Msg("dispatcher failed, trying next")
	}

	return Outcome{Method: MethodManual, Detail: act.ManualInstructions()}, nil
}

// New builds the dispatch chain selected by cfg.Method. SMTP falls back to
// the desktop composer; every chain ends in manual instructions.
func New(cfg model.MailConfig, profile model.UserProfile, password string, log zerolog.Logger) *Chain {
	opener := NewSystemOpener()

	switch cfg.Method {
	case model.MailMethodGmail:
		return NewChain(log, NewGmailWeb(opener))
	case model.MailMethodSMTP:
		var archiver SentArchiver
		if cfg.IMAPHost != "" {
			archiver = NewIMAPArchiver(cfg, profile.Email, password, log)
		}
		return NewChain(log, NewSMTP(cfg, profile, password, archiver, log), NewComposer(opener))
	default:
		return NewChain(log, NewComposer(opener))
	}
}
