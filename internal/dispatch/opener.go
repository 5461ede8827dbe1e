package dispatch

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/nhle/advisor-ai/internal/action"
)

// Opener hands a URL to the desktop.
type Opener interface {
	Open(ctx context.Context, rawURL string) error
}

// SystemOpener opens URLs with the platform's URL handler.
type SystemOpener struct {
	goos  string
	start func(name string, args ...string) error
}

// NewSystemOpener returns an opener for the running platform.
func NewSystemOpener() *SystemOpener {
	return &SystemOpener{goos: runtime.GOOS, start: startDetached}
}

// Open implements Opener. Only mailto, http and https URLs are opened.
func (o *SystemOpener) Open(ctx context.Context, rawURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !allowedURL(rawURL) {
		return fmt.Errorf("refusing to open URL with unsupported scheme: %s", rawURL)
	}

	name, args, err := openCommand(o.goos, rawURL)
	if err != nil {
		return err
	}
	if err := o.start(name, args...); err != nil {
		return fmt.Errorf("running %s: %w", name, err)
	}
	return nil
}

func openCommand(goos, rawURL string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{rawURL}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{rawURL}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform %s", goos)
	}
}

func allowedURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, prefix := range []string{"mailto:", "http://", "https://"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// startDetached launches the handler without waiting for it; the handler
// usually outlives the request that started it.
func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Composer opens the user's default mail client with a mailto: URL.
type Composer struct {
	opener Opener
}

// NewComposer creates a composer dispatcher.
func NewComposer(opener Opener) *Composer {
	return &Composer{opener: opener}
}

// Dispatch implements Dispatcher.
func (c *Composer) Dispatch(ctx context.Context, act action.EmailAction) (Outcome, error) {
	if err := c.opener.Open(ctx, act.MailtoURL()); err != nil {
		return Outcome{}, fmt.Errorf("opening mail client: %w", err)
	}
	return Outcome{
		Method: MethodComposer,
		Detail: fmt.Sprintf("Opened your mail app to write to %s", act.Address),
	}, nil
}

// GmailWeb opens Gmail's compose page in the browser.
type GmailWeb struct {
	opener Opener
}

// NewGmailWeb creates a Gmail compose dispatcher.
func NewGmailWeb(opener Opener) *GmailWeb {
	return &GmailWeb{opener: opener}
}

// Dispatch implements Dispatcher.
func (g *GmailWeb) Dispatch(ctx context.Context, act action.EmailAction) (Outcome, error) {
	if err := g.opener.Open(ctx, act.GmailComposeURL()); err != nil {
		return Outcome{}, fmt.Errorf("opening Gmail compose: %w", err)
	}
	return Outcome{
		Method: MethodGmail,
		Detail: fmt.Sprintf("Opened Gmail to write to %s", act.Address),
	}, nil
}
