package msgfmt

import (
	"regexp"

	"go4.org/bytereplacer"
	"golang.org/x/net/html/atom"
)

var htmlEscaper = bytereplacer.New(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML entity-encodes &, <, >, " and ' so that s can be placed
// in element content or inside a quoted attribute value.
func EscapeHTML(s string) string {
	if s == "" {
		return s
	}
	return string(htmlEscaper.Replace([]byte(s)))
}

// urlPattern stops at any Unicode space and never matches a closing
// parenthesis, so "(see http://x.com)" leaves the ")" outside the link.
var urlPattern = regexp.MustCompile(`https?://[^\s\v\p{Z}\x{FEFF})]+`)

// Linkify wraps every http or https URL in escaped in an anchor
// that opens in a new browsing context without leaking the opener or referrer.
// The URL itself is used as the link text.
//
// escaped must already be HTML-escaped: Linkify only adds markup
// around substrings of its input and never unescapes anything.
func Linkify(escaped string) string {
	return string(appendLinkified(nil, escaped))
}

func appendLinkified(dst []byte, escaped string) []byte {
	last := 0
	for _, loc := range urlPattern.FindAllStringIndex(escaped, -1) {
		dst = append(dst, escaped[last:loc[0]]...)
		dst = appendAnchor(dst, escaped[loc[0]:loc[1]])
		last = loc[1]
	}
	return append(dst, escaped[last:]...)
}

func appendAnchor(dst []byte, url string) []byte {
	dst = append(dst, '<')
	dst = append(dst, atom.A.String()...)
	dst = append(dst, ` href="`...)
	dst = append(dst, url...)
	dst = append(dst, `" target="_blank" rel="noopener noreferrer">`...)
	dst = append(dst, url...)
	dst = append(dst, "</"...)
	dst = append(dst, atom.A.String()...)
	return append(dst, '>')
}

var (
	boldPattern   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern = regexp.MustCompile(`\*(.*?)\*`)
)

// StripEmphasis removes Markdown emphasis markers:
// "**X**" becomes "X", then "*X*" becomes "X".
// Markers never pair across a line break.
func StripEmphasis(s string) string {
	s = boldPattern.ReplaceAllString(s, "$1")
	return italicPattern.ReplaceAllString(s, "$1")
}
