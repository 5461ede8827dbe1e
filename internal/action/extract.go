package action

import (
	"html"
	"net/url"
	"regexp"
	"strings"
)

var (
	// Bracket tokens are literal and case-sensitive.
	bracketEmailPattern  = regexp.MustCompile(`\[EMAIL:([^\]]*)\]`)
	bracketMailtoPattern = regexp.MustCompile(`\[MAILTO:([^\]]*)\]`)

	mailtoAnchorPattern = regexp.MustCompile(`(?i)<a\s+href="mailto:([^"]*)"[^>]*>`)
	gmailAnchorPattern  = regexp.MustCompile(`(?i)<a\s+href="(https://mail\.google\.com[^"]*)"[^>]*>`)

	gmailComposePattern = regexp.MustCompile(`(?i)^https?://mail\.google\.com/mail/(?:u/\d+/)?\?`)
	urlPattern          = regexp.MustCompile(`(?i)https?://[^\s"<>]+`)
	markdownLinkPattern = regexp.MustCompile(`(?i)\[([^\]\n]*)\]\((https?://[^\s"<>)]*)\)`)

	tagPattern = regexp.MustCompile(`<[^>]*>`)

	// elementPattern only matches text shaped like an element, so a lone
	// "<" or "a < b > c" in prose survives.
	elementPattern     = regexp.MustCompile(`</?[A-Za-z][^<>]*>`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
	inlineSpacePattern = regexp.MustCompile(`[ \t]+`)
	paragraphPattern   = regexp.MustCompile(`\n[ \t]*\n\s*`)
)

// entityReplacer decodes the entities assistant HTML actually carries.
// &amp; is listed last so "&amp;lt;" decodes to "&lt;" and not "<".
var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

// advisoryPhrases mark text telling the reader to use the action button.
var advisoryPhrases = []string{
	"click the button below",
	"tap the button below",
	"click below",
	"use the button below",
	"contact academic advisor",
	"contact your advisor",
}

// matcher tries one encoding class. ok is false when the class is absent
// or malformed, in which case the next class is tried.
type matcher func(content string) (res Result, ok bool)

// matchers run in precedence order; the first hit wins.
var matchers = []matcher{
	matchBracketEmail,
	matchBracketMailto,
	matchAnchor,
	matchGmailURL,
}

// Extract scans an assistant message for an embedded email action and
// returns the text to display along with the action, if any. A message
// without a recognized encoding is returned unchanged.
//
// Extract is pure and safe for concurrent use.
func Extract(content string) Result {
	for _, match := range matchers {
		if res, ok := match(content); ok {
			return res
		}
	}
	return Result{DisplayText: content}
}

func matchBracketEmail(content string) (Result, bool) {
	for _, m := range bracketEmailPattern.FindAllStringSubmatch(content, -1) {
		address := strings.TrimSpace(m[1])
		if address == "" {
			continue
		}
		return Result{
			DisplayText: removeTokens(content, bracketEmailPattern),
			Action:      &EmailAction{Address: address},
			Encoding:    EncodingBracketEmail,
		}, true
	}
	return Result{}, false
}

func matchBracketMailto(content string) (Result, bool) {
	for _, m := range bracketMailtoPattern.FindAllStringSubmatch(content, -1) {
		fields := strings.Split(m[1], ":")
		if len(fields) < 3 {
			continue
		}
		address := strings.TrimSpace(fields[0])
		if address == "" {
			continue
		}
		return Result{
			DisplayText: removeTokens(content, bracketMailtoPattern),
			Action: &EmailAction{
				Address: address,
				Subject: strings.TrimSpace(fields[1]),
				Body:    strings.TrimSpace(strings.Join(fields[2:], ":")),
			},
			Encoding: EncodingBracketMailto,
		}, true
	}
	return Result{}, false
}

func matchAnchor(content string) (Result, bool) {
	act, href, ok := mailtoAnchorAction(content)
	if !ok {
		act, href, ok = gmailAnchorAction(content)
	}
	if !ok {
		return Result{}, false
	}

	text := cleanMarkup(content)
	if strings.Contains(text, href) {
		text = collapseSpace(strings.ReplaceAll(text, href, " "))
	}

	return Result{
		DisplayText: narrowToAdvisory(text),
		Action:      &act,
		Encoding:    EncodingAnchor,
	}, true
}

// mailtoAnchorAction returns the action of the first mailto anchor that has
// an address, together with the anchor's decoded href.
func mailtoAnchorAction(content string) (EmailAction, string, bool) {
	for _, m := range mailtoAnchorPattern.FindAllStringSubmatch(content, -1) {
		target := html.UnescapeString(m[1])
		rawAddress, rawQuery, _ := strings.Cut(target, "?")

		address := strings.TrimSpace(decodeComponent(rawAddress))
		if address == "" {
			continue
		}

		q := parseQuery(rawQuery)
		return EmailAction{
			Address: address,
			Subject: q.get("subject"),
			Body:    q.get("body"),
		}, "mailto:" + target, true
	}
	return EmailAction{}, "", false
}

func gmailAnchorAction(content string) (EmailAction, string, bool) {
	for _, m := range gmailAnchorPattern.FindAllStringSubmatch(content, -1) {
		href := html.UnescapeString(m[1])
		if act, ok := gmailAction(href); ok {
			return act, href, true
		}
	}
	return EmailAction{}, "", false
}

func matchGmailURL(content string) (Result, bool) {
	for _, u := range urlPattern.FindAllString(content, -1) {
		if !gmailComposePattern.MatchString(u) {
			continue
		}
		act, ok := gmailAction(trimTrailingPunctuation(u))
		if !ok {
			continue
		}
		return Result{
			DisplayText: narrowToAdvisory(plainText(content)),
			Action:      &act,
			Encoding:    EncodingGmailURL,
		}, true
	}
	return Result{}, false
}

// gmailAction reads to, su (or subject) and body from a Gmail compose URL.
func gmailAction(rawURL string) (EmailAction, bool) {
	_, rawQuery, ok := strings.Cut(rawURL, "?")
	if !ok {
		return EmailAction{}, false
	}
	rawQuery, _, _ = strings.Cut(rawQuery, "#")

	q := parseQuery(rawQuery)
	address := strings.TrimSpace(q.get("to"))
	if address == "" {
		return EmailAction{}, false
	}

	subject := q.get("su")
	if subject == "" {
		subject = q.get("subject")
	}

	return EmailAction{
		Address: address,
		Subject: subject,
		Body:    q.get("body"),
	}, true
}

// queryValues holds the first value seen for each lower-cased key.
type queryValues map[string]string

func (q queryValues) get(key string) string {
	return q[key]
}

// parseQuery splits an URL-encoded query leniently: a malformed escape
// leaves that component as written instead of dropping it.
func parseQuery(raw string) queryValues {
	q := queryValues{}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key = strings.ToLower(decodeComponent(key))
		if _, seen := q[key]; seen {
			continue
		}
		q[key] = decodeComponent(value)
	}
	return q
}

// decodeComponent percent-decodes s exactly once. '+' is left alone so
// text that was never encoded comes back unchanged.
func decodeComponent(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

// cleanMarkup turns assistant HTML into a single line of plain text.
// Elements that only appear once entities are decoded are stripped too, so
// the result never carries markup.
func cleanMarkup(content string) string {
	text := tagPattern.ReplaceAllString(content, " ")
	text = entityReplacer.Replace(text)
	text = elementPattern.ReplaceAllString(text, " ")
	return collapseSpace(text)
}

// plainText drops links and stray markup from a message while keeping its
// line structure. Markdown links keep their label.
func plainText(content string) string {
	text := markdownLinkPattern.ReplaceAllString(content, "$1")
	text = removeTokens(text, elementPattern)
	return removeURLs(text)
}

func collapseSpace(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

func removeURLs(s string) string {
	return removeTokens(s, urlPattern)
}

// removeTokens cuts every match of re out of s along with the spaces and
// tabs around it. Words on either side of a cut are left one space apart;
// line breaks are kept.
func removeTokens(s string, re *regexp.Regexp) string {
	var b strings.Builder
	last := 0
	for _, loc := range re.FindAllStringIndex(s, -1) {
		start, end := loc[0], loc[1]
		for start > last && isInlineSpace(s[start-1]) {
			start--
		}
		for end < len(s) && isInlineSpace(s[end]) {
			end++
		}

		b.WriteString(s[last:start])
		out := b.String()
		if out != "" && !isSpace(out[len(out)-1]) && end < len(s) && !isLineBreak(s[end]) {
			b.WriteByte(' ')
		}
		last = end
	}
	b.WriteString(s[last:])
	return strings.TrimSpace(b.String())
}

func isInlineSpace(c byte) bool { return c == ' ' || c == '\t' }

func isLineBreak(c byte) bool { return c == '\n' || c == '\r' }

func isSpace(c byte) bool { return isInlineSpace(c) || isLineBreak(c) }

// narrowToAdvisory keeps only the paragraphs that tell the reader to use
// the action button. Text without such a paragraph is returned as is.
func narrowToAdvisory(text string) string {
	if !hasAdvisoryPhrase(text) {
		return text
	}

	normalized := strings.ReplaceAll(removeURLs(text), "\r\n", "\n")

	var kept []string
	for _, p := range paragraphPattern.Split(normalized, -1) {
		p = tidyParagraph(p)
		if p != "" && hasAdvisoryPhrase(p) {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return text
	}
	return strings.Join(kept, "\n\n")
}

func hasAdvisoryPhrase(s string) bool {
	lower := strings.ToLower(s)
	for _, phrase := range advisoryPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func tidyParagraph(p string) string {
	lines := strings.Split(p, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(inlineSpacePattern.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func trimTrailingPunctuation(u string) string {
	return strings.TrimRight(u, `.,;:!?)]}'"`)
}
