package msgfmt

// BlockKind identifies the type of a rendered block.
type BlockKind uint8

const (
	ParagraphBlock BlockKind = iota
	HeaderBlock
	// SpacerBlock is an empty paragraph produced by a blank line.
	SpacerBlock
	OrderedListBlock
	UnorderedListBlock
)

// A Block is a top-level structural unit of a formatted message.
//
// Text holds escaped inline content for paragraphs and headers.
// Items holds the entries of ordered and unordered lists.
// Linkification happens when the block is rendered.
type Block struct {
	Kind  BlockKind
	Text  string
	Items []*ListItem
}

// A ListItem is one entry of a list.
// Sublists holds the unordered lists nested inside an ordered-list item,
// in order of appearance; each sublist is a slice of escaped item texts.
type ListItem struct {
	Text     string
	Sublists [][]string
}

// blockBuilder is the line state machine.
// At most one of orderedListOpen and unorderedListOpen is set,
// and nestedListOpen implies orderedListOpen.
type blockBuilder struct {
	blocks []*Block

	orderedListOpen   bool
	unorderedListOpen bool
	nestedListOpen    bool

	// pendingSpacers counts blank lines seen while a top-level list is open.
	// They are emitted after the list if it closes next
	// and discarded if the list continues: a <p> is not a valid child
	// of <ol> or <ul>, so a blank line between items renders nothing.
	pendingSpacers int
}

func (b *blockBuilder) emit(block *Block) {
	b.blocks = append(b.blocks, block)
}

// openList returns the list block that is currently open.
// It must only be called while a top-level list is open.
func (b *blockBuilder) openList() *Block {
	return b.blocks[len(b.blocks)-1]
}

func (b *blockBuilder) closeNested() {
	b.nestedListOpen = false
}

func (b *blockBuilder) closeOrdered() {
	if !b.orderedListOpen {
		return
	}
	b.closeNested()
	b.orderedListOpen = false
	b.flushSpacers()
}

func (b *blockBuilder) closeUnordered() {
	if !b.unorderedListOpen {
		return
	}
	b.unorderedListOpen = false
	b.flushSpacers()
}

func (b *blockBuilder) closeAll() {
	b.closeNested()
	b.closeOrdered()
	b.closeUnordered()
}

func (b *blockBuilder) flushSpacers() {
	for ; b.pendingSpacers > 0; b.pendingSpacers-- {
		b.emit(&Block{Kind: SpacerBlock})
	}
}

func (b *blockBuilder) addLine(line Line) {
	switch line.Kind {
	case HeaderLine:
		b.closeAll()
		b.emit(&Block{Kind: HeaderBlock, Text: line.Text})
	case NumberedLine:
		b.closeUnordered()
		if !b.orderedListOpen {
			b.emit(&Block{Kind: OrderedListBlock})
			b.orderedListOpen = true
		} else {
			// A nested list belongs to the previous item only.
			b.closeNested()
		}
		b.pendingSpacers = 0
		list := b.openList()
		list.Items = append(list.Items, &ListItem{Text: line.Text})
	case BulletLine:
		b.pendingSpacers = 0
		if b.orderedListOpen {
			list := b.openList()
			item := list.Items[len(list.Items)-1]
			if !b.nestedListOpen {
				item.Sublists = append(item.Sublists, nil)
				b.nestedListOpen = true
			}
			last := len(item.Sublists) - 1
			item.Sublists[last] = append(item.Sublists[last], line.Text)
			return
		}
		if !b.unorderedListOpen {
			b.closeOrdered()
			b.emit(&Block{Kind: UnorderedListBlock})
			b.unorderedListOpen = true
		}
		list := b.openList()
		list.Items = append(list.Items, &ListItem{Text: line.Text})
	case BlankLine:
		b.closeNested()
		if b.orderedListOpen || b.unorderedListOpen {
			b.pendingSpacers++
			return
		}
		b.emit(&Block{Kind: SpacerBlock})
	default:
		b.closeAll()
		b.emit(&Block{Kind: ParagraphBlock, Text: line.Text})
	}
}

func (b *blockBuilder) finish() []*Block {
	b.closeAll()
	return b.blocks
}

// BuildBlocks runs the list state machine over classified lines
// and returns the resulting block tree.
// Every list opened along the way is closed before BuildBlocks returns.
func BuildBlocks(lines []Line) []*Block {
	b := new(blockBuilder)
	for _, line := range lines {
		b.addLine(line)
	}
	return b.finish()
}
