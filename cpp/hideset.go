package cpp

// Hideset is a linked list of macro names whose expansion is forbidden at a
// token.  Duplicates are permitted; only membership matters.  This is the
// list-shaped set from Prosser's macro-expansion algorithm.
type Hideset struct {
	Next *Hideset
	Name string
}

func newHideset(name string) *Hideset {
	return &Hideset{Name: name}
}

func (hs *Hideset) contains(name string) bool {
	for h := hs; h != nil; h = h.Next {
		if h.Name == name {
			return true
		}
	}
	return false
}

// hidesetUnion clones hs1 and appends hs2 to the clone's tail.  hs2 is shared,
// not copied, so unions stay cheap on the expansion hot path.
func hidesetUnion(hs1, hs2 *Hideset) *Hideset {
	head := Hideset{}
	tail := &head
	for h := hs1; h != nil; h = h.Next {
		tail.Next = newHideset(h.Name)
		tail = tail.Next
	}
	tail.Next = hs2
	return head.Next
}

// hidesetIntersection keeps the names of a that also occur in b.
func hidesetIntersection(a, b *Hideset) *Hideset {
	head := Hideset{}
	tail := &head
	for h := a; h != nil; h = h.Next {
		if b.contains(h.Name) {
			tail.Next = newHideset(h.Name)
			tail = tail.Next
		}
	}
	return head.Next
}

// addHideset clones the token list and unions hs into each clone's hideset.
func addHideset(tok *Token, hs *Hideset) *Token {
	head := Token{}
	tail := &head
	for t := tok; t != nil; t = t.Next {
		c := t.clone()
		c.Hideset = hidesetUnion(c.Hideset, hs)
		tail.Next = c
		tail = tail.Next
	}
	return head.Next
}
