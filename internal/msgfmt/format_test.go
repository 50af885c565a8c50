package msgfmt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func link(url string) string {
	return `<a href="` + url + `" target="_blank" rel="noopener noreferrer">` + url + `</a>`
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		sender Sender
		input  string
		want   string
	}{
		{
			name:  "PlainParagraph",
			input: "Just a sentence.",
			want:  "<p>Just a sentence.</p>",
		},
		{
			name:  "NestedBullets",
			input: "1. Step one\n- sub a\n- sub b\n2. Step two",
			want:  "<ol><li>Step one<ul><li>sub a</li><li>sub b</li></ul></li><li>Step two</li></ol>",
		},
		{
			name:  "HeaderGluedToList",
			input: "Morning: 1. Cleanse\n2. Moisturize",
			want:  "<p><strong>Morning</strong></p><ol><li>Cleanse</li><li>Moisturize</li></ol>",
		},
		{
			name:  "BlankLineKeepsOrderedList",
			input: "1. First\n\n2. Second",
			want:  "<ol><li>First</li><li>Second</li></ol>",
		},
		{
			name:  "LinkTrailingParen",
			input: "See http://example.com/page) for more",
			want:  "<p>See " + link("http://example.com/page") + ") for more</p>",
		},
		{
			name:  "ScriptEscaped",
			input: "<script>alert('x')</script>",
			want:  "<p>&lt;script&gt;alert(&#39;x&#39;)&lt;/script&gt;</p>",
		},
		{
			name:  "ATXHeaderThenBullets",
			input: "### Evening routine\n- Remove makeup\n- Apply serum",
			want:  "<p><strong>Evening routine</strong></p><ul><li>Remove makeup</li><li>Apply serum</li></ul>",
		},
		{
			name:  "BulletsThenNumbers",
			input: "- a\n1. b",
			want:  "<ul><li>a</li></ul><ol><li>b</li></ol>",
		},
		{
			name:  "RepeatedMarkers",
			input: "1. 1. Title",
			want:  "<ol><li>Title</li></ol>",
		},
		{
			name:  "ParenMarkers",
			input: "1) First\n2) Second",
			want:  "<ol><li>First</li><li>Second</li></ol>",
		},
		{
			name:  "BulletStyles",
			input: "• one\n* two\n- three",
			want:  "<ul><li>one</li><li>two</li><li>three</li></ul>",
		},
		{
			name:  "NestedListEndsAtNextItem",
			input: "1. a\n- x\n2. b\n3. c",
			want:  "<ol><li>a<ul><li>x</li></ul></li><li>b</li><li>c</li></ol>",
		},
		{
			name:  "BlankLineEndsNesting",
			input: "1. a\n- x\n\n- y",
			want:  "<ol><li>a<ul><li>x</li></ul><ul><li>y</li></ul></li></ol>",
		},
		{
			name:  "SpacerAfterClosedList",
			input: "- a\n\nText",
			want:  "<ul><li>a</li></ul><p></p><p>Text</p>",
		},
		{
			name:  "TrailingBlankLines",
			input: "1. a\n\n",
			want:  "<ol><li>a</li></ol><p></p><p></p>",
		},
		{
			name:  "SpacerBetweenParagraphs",
			input: "Text\n\nMore",
			want:  "<p>Text</p><p></p><p>More</p>",
		},
		{
			name:  "ParagraphClosesList",
			input: "1. a\nThanks!",
			want:  "<ol><li>a</li></ol><p>Thanks!</p>",
		},
		{
			name:  "HeaderClosesList",
			input: "1. a\nNotes:\n- b",
			want:  "<ol><li>a</li></ol><p><strong>Notes</strong></p><ul><li>b</li></ul>",
		},
		{
			name:  "ListItemEndingInColon",
			input: "1) Steps:",
			want:  "<ol><li>Steps:</li></ol>",
		},
		{
			name:  "CRLF",
			input: "Line\r\nNext",
			want:  "<p>Line</p><p>Next</p>",
		},
		{
			name:  "Empty",
			input: "",
			want:  "<p></p>",
		},
		{
			name:  "IndentedLines",
			input: "   1. a\n   - b",
			want:  "<ol><li>a<ul><li>b</li></ul></li></ol>",
		},
		{
			name:  "LoneDash",
			input: "-",
			want:  "<p>-</p>",
		},
		{
			name:   "NoBreakSpaceAfterMarkers",
			sender: Bot,
			input:  "1.\u00a0Cleanse\n-\u00a0gently\n2.\u00a0Tone",
			want:   "<ol><li>Cleanse<ul><li>gently</li></ul></li><li>Tone</li></ol>",
		},
		{
			name:   "NoBreakSpaceEndsLink",
			sender: Bot,
			input:  "See http://x.test\u00a0now",
			want:   "<p>See " + link("http://x.test") + "\u00a0now</p>",
		},
		{
			name:  "UnicodeSpacesTrimmed",
			input: "\u3000# Title\u00a0\n\u2003Routine:\u00a01.\u2009Cleanse",
			want:  "<p><strong>Title</strong></p><p><strong>Routine</strong></p><ol><li>Cleanse</li></ol>",
		},
		{
			name:  "LinkInListItem",
			input: "1. Visit https://www.loreal.com/en today",
			want:  "<ol><li>Visit " + link("https://www.loreal.com/en") + " today</li></ol>",
		},
		{
			name:  "NestedUnderLinkedItem",
			input: "1. See https://x.test\n- sub",
			want:  "<ol><li>See " + link("https://x.test") + "<ul><li>sub</li></ul></li></ol>",
		},
		{
			name:  "LinkInHeader",
			input: "## Shop at https://shop.test",
			want:  "<p><strong>Shop at " + link("https://shop.test") + "</strong></p>",
		},
		{
			name:  "LinkQueryEscaped",
			input: "Go to https://x.test/?a=1&b=2 now",
			want:  "<p>Go to " + link("https://x.test/?a=1&amp;b=2") + " now</p>",
		},
		{
			name:   "BotEmphasisStripped",
			sender: Bot,
			input:  "**Tip:** use a *gentle* cleanser",
			want:   "<p>Tip: use a gentle cleanser</p>",
		},
		{
			name:   "BotBoldHeader",
			sender: Bot,
			input:  "**Morning Routine:**\n1. Cleanse",
			want:   "<p><strong>Morning Routine</strong></p><ol><li>Cleanse</li></ol>",
		},
		{
			name:   "BotBulletsSurviveEmphasisStripping",
			sender: Bot,
			input:  "* one\n* two",
			want:   "<ul><li>one</li><li>two</li></ul>",
		},
		{
			name:   "UserKeepsAsterisks",
			sender: User,
			input:  "**bold**",
			want:   "<p>**bold**</p>",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sender := test.sender
			if sender == "" {
				sender = User
			}
			got := Format(sender, test.input)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Format(%s, %q) (-want +got):\n%s", sender, test.input, diff)
			}
		})
	}
}

func TestFormatNeverEmitsRawScript(t *testing.T) {
	t.Parallel()
	inputs := []string{
		"<script>alert(1)</script>",
		"1. <script>x</script>\n- <script>y</script>",
		"# <script>",
		"<script>:",
		"see http://x.test/<script>",
	}
	for _, input := range inputs {
		for _, sender := range []Sender{User, Bot} {
			got := Format(sender, input)
			if strings.Contains(strings.ToLower(got), "<script") {
				t.Errorf("Format(%s, %q) = %q; contains unescaped <script", sender, input, got)
			}
		}
	}
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	var logBuf bytes.Buffer
	f := New(zerolog.New(&logBuf))

	if got, want := f.FormatValue(Bot, "**hi**"), "<p>hi</p>"; got != want {
		t.Errorf("FormatValue(string) = %q; want %q", got, want)
	}
	if logBuf.Len() != 0 {
		t.Errorf("string input logged a diagnostic: %s", logBuf.String())
	}

	if got, want := f.FormatValue(Bot, 42), "42"; got != want {
		t.Errorf("FormatValue(42) = %q; want %q", got, want)
	}
	if !strings.Contains(logBuf.String(), "non-string") {
		t.Errorf("expected a non-string diagnostic, got %q", logBuf.String())
	}

	// Non-string values bypass block parsing and emphasis stripping.
	if got, want := f.FormatValue(Bot, []string{"1. <b>", "*x*"}), "[1. &lt;b&gt; *x*]"; got != want {
		t.Errorf("FormatValue(slice) = %q; want %q", got, want)
	}
	if got, want := f.FormatValue(User, nil), "&lt;nil&gt;"; got != want {
		t.Errorf("FormatValue(nil) = %q; want %q", got, want)
	}
}

func TestFormatText(t *testing.T) {
	t.Parallel()
	if got, want := FormatText("*keep*"), "<p>*keep*</p>"; got != want {
		t.Errorf("FormatText = %q; want %q", got, want)
	}
}
