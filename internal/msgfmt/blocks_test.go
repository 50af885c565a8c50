package msgfmt

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseBlockTree(t *testing.T) {
	input := "Routine:\n1. Cleanse\n- gently\n\n2. Tone\n\nEnjoy!"
	want := []*Block{
		{Kind: HeaderBlock, Text: "Routine"},
		{Kind: OrderedListBlock, Items: []*ListItem{
			{Text: "Cleanse", Sublists: [][]string{{"gently"}}},
			{Text: "Tone"},
		}},
		{Kind: SpacerBlock},
		{Kind: ParagraphBlock, Text: "Enjoy!"},
	}
	got := Parse(User, input)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse(%q) (-want +got):\n%s", input, diff)
	}
}

func TestBuildBlocksStateInvariants(t *testing.T) {
	lines := []Line{
		{Kind: BulletLine, Text: "a"},
		{Kind: NumberedLine, Text: "b"},
		{Kind: BulletLine, Text: "c"},
		{Kind: BlankLine},
		{Kind: BulletLine, Text: "d"},
		{Kind: NumberedLine, Text: "e"},
		{Kind: HeaderLine, Text: "f"},
		{Kind: BulletLine, Text: "g"},
		{Kind: ParagraphLine, Text: "h"},
	}
	b := new(blockBuilder)
	for _, line := range lines {
		b.addLine(line)
		if b.orderedListOpen && b.unorderedListOpen {
			t.Fatalf("after %v: both ordered and unordered lists open", line)
		}
		if b.nestedListOpen && !b.orderedListOpen {
			t.Fatalf("after %v: nested list open without an ordered list", line)
		}
	}
	b.finish()
	if b.orderedListOpen || b.unorderedListOpen || b.nestedListOpen {
		t.Errorf("lists still open after finish: ordered=%t unordered=%t nested=%t",
			b.orderedListOpen, b.unorderedListOpen, b.nestedListOpen)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	b := new(blockBuilder)
	b.closeNested()
	b.closeAll()
	b.closeAll()
	if len(b.blocks) != 0 {
		t.Fatalf("closing with nothing open produced %d blocks", len(b.blocks))
	}

	b.addLine(Line{Kind: NumberedLine, Text: "a"})
	b.addLine(Line{Kind: BulletLine, Text: "x"})
	b.addLine(Line{Kind: BlankLine})
	b.closeAll()
	before := RenderHTML(b.blocks)
	b.closeNested()
	b.closeAll()
	b.closeAll()
	if after := RenderHTML(b.blocks); after != before {
		t.Errorf("repeated close changed output: %q -> %q", before, after)
	}
	if want := "<ol><li>a<ul><li>x</li></ul></li></ol><p></p>"; before != want {
		t.Errorf("output = %q; want %q", before, want)
	}
}
