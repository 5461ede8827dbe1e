package action

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractWithoutActionReturnsContentUnchanged(t *testing.T) {
	inputs := []string{
		"",
		"Plain text with no action.",
		"  leading and trailing space  ",
		"Email me at adv@uni.edu",
		"[email:adv@uni.edu] lower-case tokens are not recognized",
		"[EMAIL:] has no address",
		"[MAILTO:adv@uni.edu:OnlySubject] is missing a body",
		`<a href="https://example.com">Example</a> is not a mail link`,
		"See https://example.com/page. for details",
		"https://mail.google.com/mail/?view=cm&su=NoRecipient",
		"https://mail.google.com/calendar/?to=adv@uni.edu",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			res := Extract(in)
			assert.Nil(t, res.Action)
			assert.False(t, res.HasAction())
			assert.Equal(t, EncodingNone, res.Encoding)
			assert.Equal(t, in, res.DisplayText)
		})
	}
}

func TestExtractBracketEmail(t *testing.T) {
	res := Extract("[EMAIL:adv@uni.edu] Reach out.")

	require.NotNil(t, res.Action)
	assert.Equal(t, EmailAction{Address: "adv@uni.edu"}, *res.Action)
	assert.Equal(t, "Reach out.", res.DisplayText)
	assert.Equal(t, EncodingBracketEmail, res.Encoding)
}

func TestExtractBracketEmailStripsEveryToken(t *testing.T) {
	res := Extract("[EMAIL:first@uni.edu] or [EMAIL:second@uni.edu]")

	require.NotNil(t, res.Action)
	assert.Equal(t, "first@uni.edu", res.Action.Address)
	assert.Equal(t, "or", res.DisplayText)
}

func TestExtractBracketEmailSkipsBlankToken(t *testing.T) {
	res := Extract("[EMAIL: ] then [EMAIL:adv@uni.edu]")

	require.NotNil(t, res.Action)
	assert.Equal(t, "adv@uni.edu", res.Action.Address)
	assert.Equal(t, "then", res.DisplayText)
}

func TestExtractBracketTokensLeaveSingleSpace(t *testing.T) {
	tests := map[string]struct {
		content string
		display string
	}{
		"mid sentence":    {"Text [EMAIL:a@b.edu] more", "Text more"},
		"padded token":    {"Text \t[EMAIL:a@b.edu]  more", "Text more"},
		"end of line":     {"Write to me [EMAIL:a@b.edu]\nThanks", "Write to me\nThanks"},
		"start of line":   {"Hi\n[EMAIL:a@b.edu] Thanks", "Hi\nThanks"},
		"adjacent tokens": {"Either [EMAIL:a@b.edu] [EMAIL:c@d.edu] works", "Either works"},
		"mailto token":    {"Ask [MAILTO:a@b.edu:Hi:Body] today", "Ask today"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			res := Extract(tt.content)
			require.NotNil(t, res.Action)
			assert.Equal(t, "a@b.edu", res.Action.Address)
			assert.Equal(t, tt.display, res.DisplayText)
		})
	}
}

func TestExtractBracketMailto(t *testing.T) {
	res := Extract("[MAILTO:adv@uni.edu:Question:Hi there:thanks]")

	require.NotNil(t, res.Action)
	assert.Equal(t, "adv@uni.edu", res.Action.Address)
	assert.Equal(t, "Question", res.Action.Subject)
	assert.Equal(t, "Hi there:thanks", res.Action.Body)
	assert.Equal(t, "", res.DisplayText)
	assert.Equal(t, EncodingBracketMailto, res.Encoding)
}

func TestExtractBracketMailtoKeepsSurroundingText(t *testing.T) {
	res := Extract("Need a signature?\n[MAILTO:adv@uni.edu:Override:Please approve]\n")

	require.NotNil(t, res.Action)
	assert.Equal(t, "Override", res.Action.Subject)
	assert.Equal(t, "Please approve", res.Action.Body)
	assert.Equal(t, "Need a signature?", res.DisplayText)
}

func TestExtractMalformedBracketFallsThrough(t *testing.T) {
	res := Extract("[MAILTO:adv@uni.edu:OnlySubject] https://mail.google.com/mail/?view=cm&to=x@y.edu")

	require.NotNil(t, res.Action)
	assert.Equal(t, "x@y.edu", res.Action.Address)
	assert.Equal(t, EncodingGmailURL, res.Encoding)
	assert.NotContains(t, res.DisplayText, "https://")
}

func TestExtractMailtoAnchor(t *testing.T) {
	res := Extract(`<a href="mailto:a@b.edu?subject=Hi%20There&body=Need%20help">Email</a> Click the button below.`)

	require.NotNil(t, res.Action)
	assert.Equal(t, EmailAction{Address: "a@b.edu", Subject: "Hi There", Body: "Need help"}, *res.Action)
	assert.Equal(t, EncodingAnchor, res.Encoding)
	assert.NotContains(t, res.DisplayText, "<a")
	assert.NotContains(t, res.DisplayText, "%20")
	assert.Equal(t, "Email Click the button below.", res.DisplayText)
}

func TestExtractMailtoAnchorVariants(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    EmailAction
		display string
	}{
		{
			name:    "upper-case tag",
			content: `<A HREF="mailto:adv@uni.edu">Write</A>`,
			want:    EmailAction{Address: "adv@uni.edu"},
			display: "Write",
		},
		{
			name:    "encoded address and mixed-case keys",
			content: `<a href="mailto:adv%40uni.edu?Subject=Drop%20deadline&BODY=When%3F" target="_blank">Ask</a>`,
			want:    EmailAction{Address: "adv@uni.edu", Subject: "Drop deadline", Body: "When?"},
			display: "Ask",
		},
		{
			name:    "entity-encoded ampersand in href",
			content: `<a href="mailto:adv@uni.edu?subject=Minor&amp;body=Hello">Email</a>`,
			want:    EmailAction{Address: "adv@uni.edu", Subject: "Minor", Body: "Hello"},
			display: "Email",
		},
		{
			name:    "link text is the url",
			content: `Write to <a href="mailto:adv@uni.edu">mailto:adv@uni.edu</a> today`,
			want:    EmailAction{Address: "adv@uni.edu"},
			display: "Write to today",
		},
		{
			name:    "first anchor with an address wins",
			content: `<a href="mailto:">none</a> <a href="mailto:one@uni.edu">one</a> <a href="mailto:two@uni.edu">two</a>`,
			want:    EmailAction{Address: "one@uni.edu"},
			display: "none one two",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Extract(tt.content)
			require.NotNil(t, res.Action)
			assert.Equal(t, tt.want, *res.Action)
			assert.Equal(t, tt.display, res.DisplayText)
		})
	}
}

func TestExtractGmailAnchor(t *testing.T) {
	content := `<p>Need help?</p><a href="https://mail.google.com/mail/?view=cm&amp;fs=1&amp;to=adv%40uni.edu&amp;su=Office%20hours&amp;body=Hello">Compose</a>`

	res := Extract(content)

	require.NotNil(t, res.Action)
	assert.Equal(t, EmailAction{Address: "adv@uni.edu", Subject: "Office hours", Body: "Hello"}, *res.Action)
	assert.Equal(t, EncodingAnchor, res.Encoding)
	assert.Equal(t, "Need help? Compose", res.DisplayText)
}

func TestExtractGmailAnchorSubjectFallback(t *testing.T) {
	res := Extract(`<a href="https://mail.google.com/mail/?view=cm&to=adv@uni.edu&subject=Tracks">mail</a>`)

	require.NotNil(t, res.Action)
	assert.Equal(t, "Tracks", res.Action.Subject)
}

func TestExtractAnchorDecodesEntities(t *testing.T) {
	content := `<p>Courses &amp; minors&nbsp;are &lt;3 &quot;fun&quot; &apos;really&apos;</p>` +
		`<a href="mailto:a@b.edu">mail</a>`

	res := Extract(content)

	require.NotNil(t, res.Action)
	assert.Equal(t, `Courses & minors are <3 "fun" 'really' mail`, res.DisplayText)
}

func TestExtractAnchorStripsMarkupRevealedByEntities(t *testing.T) {
	res := Extract(`<a href="mailto:a@b.edu">Email</a> Example: &lt;a href=&quot;mailto:x@y.edu&quot;&gt;x&lt;/a&gt;`)

	require.NotNil(t, res.Action)
	assert.Equal(t, "a@b.edu", res.Action.Address)
	assert.Equal(t, "Email Example: x", res.DisplayText)
	assert.Nil(t, Extract(res.DisplayText).Action)
}

func TestExtractAnchorKeepsAngleBracketsInProse(t *testing.T) {
	res := Extract(`<a href="mailto:a@b.edu">Email</a> if 3 &lt; credits &gt; 1`)

	require.NotNil(t, res.Action)
	assert.Equal(t, "Email if 3 < credits > 1", res.DisplayText)
}

func TestExtractAnchorNarrowsToAdvisoryText(t *testing.T) {
	content := `Hi.<br>More at https://example.com/catalog.<br><a href="mailto:a@b.edu">Email</a> Click the button below.`

	res := Extract(content)

	require.NotNil(t, res.Action)
	assert.Equal(t, "Hi. More at Email Click the button below.", res.DisplayText)
}

func TestExtractBareGmailURL(t *testing.T) {
	res := Extract("Visit https://mail.google.com/mail/?view=cm&fs=1&to=x@y.edu&su=Hello for help")

	require.NotNil(t, res.Action)
	assert.Equal(t, "x@y.edu", res.Action.Address)
	assert.Equal(t, "Hello", res.Action.Subject)
	assert.Equal(t, "", res.Action.Body)
	assert.Equal(t, EncodingGmailURL, res.Encoding)
	assert.NotContains(t, res.DisplayText, "mail.google.com")
	assert.Equal(t, "Visit for help", res.DisplayText)
}

func TestExtractBareGmailURLVariants(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    EmailAction
		display string
	}{
		{
			name:    "account path and trailing period",
			content: "Draft: https://mail.google.com/mail/u/0/?view=cm&to=adv%40uni.edu&subject=Help.",
			want:    EmailAction{Address: "adv@uni.edu", Subject: "Help"},
			display: "Draft:",
		},
		{
			name:    "first url without recipient is skipped",
			content: "https://mail.google.com/mail/?view=cm&su=None and https://mail.google.com/mail/?view=cm&to=b@uni.edu",
			want:    EmailAction{Address: "b@uni.edu"},
			display: "and",
		},
		{
			name:    "values decoded exactly once",
			content: "https://mail.google.com/mail/?to=adv%2540uni.edu&su=C++%20basics&body=100%",
			want:    EmailAction{Address: "adv%40uni.edu", Subject: "C++ basics", Body: "100%"},
			display: "",
		},
		{
			name:    "other anchors lose their markup",
			content: `See <a href="https://example.com">site</a> or https://mail.google.com/mail/?view=cm&to=a@b.edu`,
			want:    EmailAction{Address: "a@b.edu"},
			display: "See site or",
		},
		{
			name:    "markdown link keeps its label",
			content: "Use [Email](https://mail.google.com/mail/?view=cm&to=a@b.edu&su=Hi) today",
			want:    EmailAction{Address: "a@b.edu", Subject: "Hi"},
			display: "Use Email today",
		},
		{
			name:    "url ends at markup",
			content: "<p>https://mail.google.com/mail/?view=cm&to=a@b.edu</p>",
			want:    EmailAction{Address: "a@b.edu"},
			display: "",
		},
		{
			name:    "first occurrence of a repeated key wins",
			content: "https://mail.google.com/mail/?to=one@uni.edu&to=two@uni.edu#inbox",
			want:    EmailAction{Address: "one@uni.edu"},
			display: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Extract(tt.content)
			require.NotNil(t, res.Action)
			assert.Equal(t, tt.want, *res.Action)
			assert.Equal(t, tt.display, res.DisplayText)
		})
	}
}

func TestExtractNarrowsToAdvisoryParagraphs(t *testing.T) {
	content := "The data science minor needs five courses.\n\n" +
		"https://mail.google.com/mail/?view=cm&fs=1&to=adv@uni.edu&su=Minor\n\n" +
		"Click the button below to contact your advisor.\n\n" +
		"Good luck!"

	res := Extract(content)

	require.NotNil(t, res.Action)
	assert.Equal(t, "Click the button below to contact your advisor.", res.DisplayText)
}

func TestExtractKeepsEveryAdvisoryParagraph(t *testing.T) {
	content := "Intro text.\r\n\r\n" +
		"Tap the button  below for the form.\r\n\r\n" +
		"Or contact your advisor https://mail.google.com/mail/?to=adv@uni.edu directly."

	res := Extract(content)

	require.NotNil(t, res.Action)
	assert.Equal(t, "Tap the button below for the form.\n\nOr contact your advisor directly.", res.DisplayText)
}

func TestExtractPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		address  string
		encoding Encoding
	}{
		{
			name:     "simple bracket beats everything",
			content:  `[MAILTO:b@uni.edu:S:B] [EMAIL:a@uni.edu] <a href="mailto:c@uni.edu">c</a>`,
			address:  "a@uni.edu",
			encoding: EncodingBracketEmail,
		},
		{
			name:     "full bracket beats anchor",
			content:  `<a href="mailto:c@uni.edu">c</a> [MAILTO:b@uni.edu:S:B]`,
			address:  "b@uni.edu",
			encoding: EncodingBracketMailto,
		},
		{
			name:     "anchor beats bare url",
			content:  `https://mail.google.com/mail/?to=d@uni.edu <a href="mailto:c@uni.edu">c</a>`,
			address:  "c@uni.edu",
			encoding: EncodingAnchor,
		},
		{
			name:     "mailto anchor beats gmail anchor",
			content:  `<a href="https://mail.google.com/mail/?to=d@uni.edu">g</a> <a href="mailto:c@uni.edu">c</a>`,
			address:  "c@uni.edu",
			encoding: EncodingAnchor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Extract(tt.content)
			require.NotNil(t, res.Action)
			assert.Equal(t, tt.address, res.Action.Address)
			assert.Equal(t, tt.encoding, res.Encoding)
		})
	}
}

func TestExtractIsIdempotentOnDisplayText(t *testing.T) {
	inputs := []string{
		"[EMAIL:adv@uni.edu] Reach out.",
		"[MAILTO:adv@uni.edu:Question:Hi there:thanks]",
		`<a href="mailto:a@b.edu?subject=Hi%20There&body=Need%20help">Email</a> Click the button below.`,
		`<a href="https://mail.google.com/mail/?view=cm&amp;to=adv%40uni.edu">Compose</a> &amp; more`,
		"Visit https://mail.google.com/mail/?view=cm&fs=1&to=x@y.edu&su=Hello for help",
		`<a href="mailto:a@b.edu">Email</a> Example: &lt;a href=&quot;mailto:x@y.edu&quot;&gt;x&lt;/a&gt;`,
		`See <a href="https://example.com">site</a> or https://mail.google.com/mail/?view=cm&to=a@b.edu`,
		"[Email](https://mail.google.com/mail/?view=cm&to=a@b.edu&su=Hi)",
		"Text [EMAIL:a@b.edu] more",
		"Nothing to see here.",
	}

	for _, in := range inputs {
		first := Extract(in)
		second := Extract(first.DisplayText)

		assert.Nil(t, second.Action, in)
		assert.Equal(t, first.DisplayText, second.DisplayText, in)
	}
}

func TestExtractIsDeterministicAcrossGoroutines(t *testing.T) {
	content := `<a href="mailto:a@b.edu?subject=Hi%20There&body=Need%20help">Email</a> Click the button below.`
	want := Extract(content)

	var wg sync.WaitGroup
	results := make([]Result, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Extract(content)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestEmailActionURLs(t *testing.T) {
	a := EmailAction{Address: "a@b.edu", Subject: "Hi There", Body: "Need help"}

	assert.Equal(t, "mailto:a@b.edu?subject=Hi%20There&body=Need%20help", a.MailtoURL())
	assert.Equal(t, "mailto:a@b.edu", EmailAction{Address: "a@b.edu"}.MailtoURL())
	assert.Equal(t,
		"https://mail.google.com/mail/?view=cm&fs=1&to=a%40b.edu&su=Hi%20There&body=Need%20help",
		a.GmailComposeURL(),
	)
}

func TestGmailComposeURLRoundTrips(t *testing.T) {
	a := EmailAction{Address: "adv@uni.edu", Subject: "Q&A: tracks", Body: "50% done?"}

	res := Extract(a.GmailComposeURL())

	require.NotNil(t, res.Action)
	assert.Equal(t, a, *res.Action)
	assert.Equal(t, "", res.DisplayText)
}

func TestManualInstructions(t *testing.T) {
	a := EmailAction{Address: "adv@uni.edu", Subject: "Override"}

	assert.Equal(t, "Please send an email manually to:\n\nadv@uni.edu\n\nSubject: Override", a.ManualInstructions())
}
