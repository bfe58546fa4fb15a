package mdast

// NewToken creates a detached token of the given kind with its raw text.
func NewToken(kind BlockKind, raw string) *Token {
	return &Token{Kind: kind, Raw: raw}
}

// AppendChild appends a child token to a parent.
// It maintains the parent/child/sibling relationships correctly.
func AppendChild(parent, child *Token) {
	if parent == nil || child == nil {
		return
	}

	if child.Parent != nil {
		RemoveChild(child.Parent, child)
	}

	child.Parent = parent
	child.Prev = parent.LastChild
	child.Next = nil

	if parent.LastChild != nil {
		parent.LastChild.Next = child
	} else {
		parent.FirstChild = child
	}

	parent.LastChild = child
}

// RemoveChild removes a child from its parent.
func RemoveChild(parent, child *Token) {
	if parent == nil || child == nil || child.Parent != parent {
		return
	}

	if child.Prev != nil {
		child.Prev.Next = child.Next
	} else {
		parent.FirstChild = child.Next
	}

	if child.Next != nil {
		child.Next.Prev = child.Prev
	} else {
		parent.LastChild = child.Prev
	}

	child.Parent = nil
	child.Prev = nil
	child.Next = nil
}

// Link chains a top-level token slice into sibling order without a parent.
func Link(tokens []*Token) {
	for i, tok := range tokens {
		tok.Prev, tok.Next = nil, nil
		if i > 0 {
			tok.Prev = tokens[i-1]
			tokens[i-1].Next = tok
		}
	}
}
