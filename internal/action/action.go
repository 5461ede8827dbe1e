package action

import (
	"fmt"
	"net/url"
	"strings"
)

// Encoding identifies which embedded format produced an EmailAction.
type Encoding string

const (
	EncodingNone          Encoding = ""
	EncodingBracketEmail  Encoding = "bracket_email"
	EncodingBracketMailto Encoding = "bracket_mailto"
	EncodingAnchor        Encoding = "anchor"
	EncodingGmailURL      Encoding = "gmail_url"
)

// EmailAction is a request to email someone, extracted from an assistant
// message. Address is never empty for an action returned by Extract.
type EmailAction struct {
	Address string `json:"address"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Result is the display view of a message plus the action embedded in it.
type Result struct {
	// DisplayText is the message with every action-encoding artifact removed.
	DisplayText string `json:"display_text"`

	// Action is nil when the message carried no recognized action.
	Action *EmailAction `json:"action"`

	// Encoding names the format the action was found in.
	Encoding Encoding `json:"encoding,omitempty"`
}

// HasAction reports whether an action was extracted.
func (r Result) HasAction() bool {
	return r.Action != nil
}

// MailtoURL builds a mailto: URL for handing the action to a mail client.
// Empty subject and body are omitted.
func (a EmailAction) MailtoURL() string {
	var params []string
	if a.Subject != "" {
		params = append(params, "subject="+escapeComponent(a.Subject))
	}
	if a.Body != "" {
		params = append(params, "body="+escapeComponent(a.Body))
	}

	u := "mailto:" + a.Address
	if len(params) > 0 {
		u += "?" + strings.Join(params, "&")
	}
	return u
}

// GmailComposeURL builds a Gmail web compose URL for the action.
func (a EmailAction) GmailComposeURL() string {
	params := []string{"view=cm", "fs=1", "to=" + escapeComponent(a.Address)}
	if a.Subject != "" {
		params = append(params, "su="+escapeComponent(a.Subject))
	}
	if a.Body != "" {
		params = append(params, "body="+escapeComponent(a.Body))
	}
	return gmailComposeBase + "?" + strings.Join(params, "&")
}

// ManualInstructions is the text shown when no mail client can be opened.
func (a EmailAction) ManualInstructions() string {
	return fmt.Sprintf(
		"Please send an email manually to:\n\n%s\n\nSubject: %s",
		a.Address, a.Subject,
	)
}

const gmailComposeBase = "https://mail.google.com/mail/"

// escapeComponent percent-encodes s the way mail clients expect query
// components: spaces become %20 rather than '+'.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
