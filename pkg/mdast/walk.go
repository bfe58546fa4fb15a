package mdast

// WalkFunc is the function signature for Walk callbacks.
// Return a non-nil error to stop the walk.
type WalkFunc func(t *Token) error

// Walk performs a pre-order traversal of every token tree in the stream.
// If walkFunc returns a non-nil error, the walk stops immediately and
// returns that error.
func Walk(tokens []*Token, walkFunc WalkFunc) error {
	for _, tok := range tokens {
		if err := walkTree(tok, walkFunc); err != nil {
			return err
		}
	}
	return nil
}

func walkTree(root *Token, walkFunc WalkFunc) error {
	if root == nil {
		return nil
	}

	if err := walkFunc(root); err != nil {
		return err
	}

	for child := root.FirstChild; child != nil; child = child.Next {
		if err := walkTree(child, walkFunc); err != nil {
			return err
		}
	}

	return nil
}

// FindAll returns all tokens matching the predicate in document order.
func FindAll(tokens []*Token, predicate func(t *Token) bool) []*Token {
	var result []*Token

	//nolint:errcheck,revive // Walk only returns nil errors in this usage
	Walk(tokens, func(tok *Token) error {
		if predicate(tok) {
			result = append(result, tok)
		}
		return nil
	})

	return result
}

// FindByKind returns all tokens of the specified kind.
func FindByKind(tokens []*Token, kind BlockKind) []*Token {
	return FindAll(tokens, func(t *Token) bool {
		return t.Kind == kind
	})
}
