package msgfmt

import "golang.org/x/net/html/atom"

// AppendHTML appends the rendered HTML of blocks to dst
// and returns the resulting byte slice.
func AppendHTML(dst []byte, blocks []*Block) []byte {
	r := &renderState{dst: dst}
	for _, b := range blocks {
		r.block(b)
	}
	return r.dst
}

// RenderHTML renders blocks as an HTML fragment.
func RenderHTML(blocks []*Block) string {
	return string(AppendHTML(nil, blocks))
}

type renderState struct {
	dst []byte
}

func (r *renderState) openTag(name atom.Atom) {
	r.dst = append(r.dst, '<')
	r.dst = append(r.dst, name.String()...)
	r.dst = append(r.dst, '>')
}

func (r *renderState) closeTag(name atom.Atom) {
	r.dst = append(r.dst, "</"...)
	r.dst = append(r.dst, name.String()...)
	r.dst = append(r.dst, '>')
}

func (r *renderState) inline(text string) {
	r.dst = appendLinkified(r.dst, text)
}

func (r *renderState) block(b *Block) {
	switch b.Kind {
	case HeaderBlock:
		r.openTag(atom.P)
		r.openTag(atom.Strong)
		r.inline(b.Text)
		r.closeTag(atom.Strong)
		r.closeTag(atom.P)
	case SpacerBlock:
		r.openTag(atom.P)
		r.closeTag(atom.P)
	case OrderedListBlock:
		r.list(atom.Ol, b.Items)
	case UnorderedListBlock:
		r.list(atom.Ul, b.Items)
	default:
		r.openTag(atom.P)
		r.inline(b.Text)
		r.closeTag(atom.P)
	}
}

func (r *renderState) list(tag atom.Atom, items []*ListItem) {
	r.openTag(tag)
	for _, item := range items {
		r.openTag(atom.Li)
		r.inline(item.Text)
		for _, sublist := range item.Sublists {
			r.openTag(atom.Ul)
			for _, text := range sublist {
				r.openTag(atom.Li)
				r.inline(text)
				r.closeTag(atom.Li)
			}
			r.closeTag(atom.Ul)
		}
		r.closeTag(atom.Li)
	}
	r.closeTag(tag)
}
