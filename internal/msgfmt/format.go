// Package msgfmt converts loosely structured chat text, as produced by
// language models, into a safe HTML fragment.
//
// It understands a narrow subset of Markdown-like conventions:
// headers written with leading '#' characters or a trailing ':',
// numbered items ("1." or "1)"), bullet items ("-", "*" or "•"),
// bold and italic asterisks, and bare http(s) URLs.
// Bullets that follow a numbered item are nested inside it.
//
// Formatting happens in two passes. Input is escaped, normalized and split
// into lines, each line is classified, and a small state machine builds a
// tree of [Block] values. The tree is then rendered to HTML.
// All content is escaped before any markup is added.
package msgfmt

import (
	"fmt"
	"regexp"

	"github.com/rs/zerolog"
)

// Sender identifies the author of a chat message.
type Sender string

const (
	User Sender = "user"
	Bot  Sender = "bot"
)

var (
	headerGluePattern = regexp.MustCompile(`:` + spaceClass + `*(\d+\.)`)
	lineBreakPattern  = regexp.MustCompile(`\r?\n`)
)

// SplitLines escapes text and splits it into raw lines.
// Emphasis markers are stripped from bot text, and a numbered marker
// glued to a preceding colon ("Steps: 1. Cleanse") is moved to its own line.
func SplitLines(sender Sender, text string) []string {
	escaped := EscapeHTML(text)
	if sender == Bot {
		escaped = StripEmphasis(escaped)
	}
	escaped = headerGluePattern.ReplaceAllString(escaped, ":\n$1")
	return lineBreakPattern.Split(escaped, -1)
}

// Parse converts text into a block tree.
func Parse(sender Sender, text string) []*Block {
	raw := SplitLines(sender, text)
	lines := make([]Line, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, ClassifyLine(l))
	}
	return BuildBlocks(lines)
}

// A Formatter renders chat messages as HTML.
// A Formatter is safe for concurrent use.
type Formatter struct {
	// Logger receives diagnostics about malformed input.
	Logger zerolog.Logger
}

// New returns a Formatter that reports diagnostics to logger.
func New(logger zerolog.Logger) *Formatter {
	return &Formatter{Logger: logger}
}

// Format renders text written by sender.
func (f *Formatter) Format(sender Sender, text string) string {
	return RenderHTML(Parse(sender, text))
}

// FormatValue renders v written by sender.
// Strings are formatted as by Format. Any other value, nil included, is
// converted to its fmt.Sprint display string and escaped without any
// block parsing.
func (f *Formatter) FormatValue(sender Sender, v any) string {
	if s, ok := v.(string); ok {
		return f.Format(sender, s)
	}
	f.Logger.Warn().
		Str("sender", string(sender)).
		Str("type", fmt.Sprintf("%T", v)).
		Msg("formatting non-string message text")
	return EscapeHTML(fmt.Sprint(v))
}

var defaultFormatter = New(zerolog.Nop())

// Format renders text written by sender with a default Formatter.
func Format(sender Sender, text string) string {
	return defaultFormatter.Format(sender, text)
}

// FormatText renders text without stripping emphasis markers.
func FormatText(text string) string {
	return defaultFormatter.Format(User, text)
}
