package msgfmt

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// LineKind is the classification of one input line.
type LineKind uint8

const (
	// ParagraphLine is any line that is not one of the other kinds.
	ParagraphLine LineKind = iota
	// HeaderLine starts with 1 to 6 '#' characters,
	// or ends with ':' without looking like a list item.
	HeaderLine
	// NumberedLine starts with digits, '.' or ')', and whitespace.
	NumberedLine
	// BulletLine starts with '•', '-' or '*' followed by whitespace.
	BulletLine
	// BlankLine is empty after trimming.
	BlankLine
)

func (k LineKind) String() string {
	switch k {
	case ParagraphLine:
		return "ParagraphLine"
	case HeaderLine:
		return "HeaderLine"
	case NumberedLine:
		return "NumberedLine"
	case BulletLine:
		return "BulletLine"
	case BlankLine:
		return "BlankLine"
	default:
		return "LineKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Line is a classified input line.
// Text is the line content with its structural markers removed.
type Line struct {
	Kind LineKind
	Text string
}

// spaceClass matches a single whitespace character, including Unicode
// separators such as U+00A0 and the byte order mark. RE2's \s is ASCII only.
const spaceClass = `[\s\v\p{Z}\x{FEFF}]`

var (
	atxHeaderPattern      = regexp.MustCompile(`^#{1,6}` + spaceClass + `*(.*)`)
	listLikePattern       = regexp.MustCompile(`^(?:\d+[.)]|[-*•])`)
	numberedPattern       = regexp.MustCompile(`^\d+[.)]` + spaceClass + `+`)
	repeatedMarkerPattern = regexp.MustCompile(`^(?:\d+[.)]` + spaceClass + `*)+`)
	bulletPattern         = regexp.MustCompile(`^[•\-*]` + spaceClass + `+`)
)

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}

// ClassifyLine trims raw and classifies it.
// Kinds are tested in priority order: header, numbered item, bullet item,
// blank, and finally paragraph.
func ClassifyLine(raw string) Line {
	line := trimSpace(raw)

	if m := atxHeaderPattern.FindStringSubmatch(line); m != nil {
		return Line{Kind: HeaderLine, Text: trimSpace(m[1])}
	}
	if strings.HasSuffix(line, ":") && !listLikePattern.MatchString(line) {
		return Line{Kind: HeaderLine, Text: trimSpace(strings.TrimSuffix(line, ":"))}
	}
	if loc := numberedPattern.FindStringIndex(line); loc != nil {
		// "1. 1. Title" collapses to "Title".
		item := repeatedMarkerPattern.ReplaceAllString(line[loc[1]:], "")
		return Line{Kind: NumberedLine, Text: item}
	}
	if loc := bulletPattern.FindStringIndex(line); loc != nil {
		return Line{Kind: BulletLine, Text: line[loc[1]:]}
	}
	if line == "" {
		return Line{Kind: BlankLine}
	}
	return Line{Kind: ParagraphLine, Text: line}
}
