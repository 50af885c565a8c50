package msgfmt

import "testing"

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"plain", "plain"},
		{`<a href="x">Tom & 'Jerry'</a>`, "&lt;a href=&quot;x&quot;&gt;Tom &amp; &#39;Jerry&#39;&lt;/a&gt;"},
		{"&amp;", "&amp;amp;"},
		{"crème • brûlée", "crème • brûlée"},
	}
	for _, test := range tests {
		if got := EscapeHTML(test.input); got != test.want {
			t.Errorf("EscapeHTML(%q) = %q; want %q", test.input, got, test.want)
		}
	}
}

func TestLinkify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"no links here", "no links here"},
		{"http://a.test", link("http://a.test")},
		{"(see https://a.test/x)", "(see " + link("https://a.test/x") + ")"},
		{"https://a.test/x)) done", link("https://a.test/x") + ")) done"},
		{"one https://a.test two http://b.test", "one " + link("https://a.test") + " two " + link("http://b.test")},
		{"ftp://a.test", "ftp://a.test"},
		{"https://", "https://"},
		{"http://a.test\u00a0b", link("http://a.test") + "\u00a0b"},
		{"https://a.test/\u2028next", link("https://a.test/") + "\u2028next"},
	}
	for _, test := range tests {
		if got := Linkify(test.input); got != test.want {
			t.Errorf("Linkify(%q) = %q; want %q", test.input, got, test.want)
		}
	}
}

func TestStripEmphasis(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"**bold**", "bold"},
		{"*italic*", "italic"},
		{"**a** and **b**", "a and b"},
		{"***both***", "both"},
		{"2 * 3", "2 * 3"},
		{"* line one\n* line two", "* line one\n* line two"},
	}
	for _, test := range tests {
		if got := StripEmphasis(test.input); got != test.want {
			t.Errorf("StripEmphasis(%q) = %q; want %q", test.input, got, test.want)
		}
	}
}
