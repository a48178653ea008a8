package cpp

import "strings"

// Expand runs the macro-expansion pass over tok and returns the new list
// head.  Directives are not interpreted here; see Preprocess for the full
// pipeline.  Scanning resumes inside every substitution, so macro calls
// formed by expansion are themselves expanded, bounded by hidesets.
func (p *Preprocessor) Expand(tok *Token) *Token {
	head := Token{Next: tok}
	prev := &head

	for {
		cur := prev.Next
		if cur == nil {
			break
		}
		if cur.Kind != TokenIdent {
			prev = cur
			continue
		}

		// A token may not re-expand the macro that produced it.
		if cur.Hideset.contains(cur.Loc) {
			prev = cur
			continue
		}

		if fn, ok := p.builtins[cur.Loc]; ok {
			t := fn(p, cur)
			t.Origin = cur
			t.AtBOL = cur.AtBOL
			t.HasSpace = cur.HasSpace
			t.Next = cur.Next
			prev.Next = t
			prev = t
			continue
		}

		m := p.LookupMacro(cur.Loc)
		if m == nil {
			prev = cur
			continue
		}

		if !m.IsFunctionLike() {
			p.expandObjectLike(prev, cur, m)
			continue
		}

		// A function-like macro name not followed by "(" is an ordinary
		// identifier.
		if cur.Next == nil || !cur.Next.isPunct("(") {
			prev = cur
			continue
		}
		p.expandFunctionLike(prev, cur, m)
	}
	return head.Next
}

// expandObjectLike splices the retokenized macro body in place of cur.  prev
// is left pointing before the body so the rescan starts at its first token.
func (p *Preprocessor) expandObjectLike(prev, cur *Token, m *Macro) {
	body := TokenizeString(m.Body)
	body = addHideset(body, hidesetUnion(cur.Hideset, newHideset(cur.Loc)))
	body = stripEOF(body)

	if body == nil {
		prev.Next = cur.Next
		return
	}
	for t := body; t != nil; t = t.Next {
		t.Origin = cur
	}
	body.AtBOL = cur.AtBOL
	body.HasSpace = cur.HasSpace
	listTail(body).Next = cur.Next
	prev.Next = body
}

// expandFunctionLike parses the argument list after cur, substitutes the
// body, and splices the result over cur..")" without advancing prev.
func (p *Preprocessor) expandFunctionLike(prev, cur *Token, m *Macro) {
	args, rest := readMacroArgs(cur.Next.Next)

	out := p.substituteBody(m, cur.Loc, args)
	out = addHideset(out, hidesetUnion(cur.Hideset, newHideset(cur.Loc)))
	out = stripEOF(out)

	if out == nil {
		prev.Next = rest
		return
	}
	for t := out; t != nil; t = t.Next {
		t.Origin = cur
	}
	out.AtBOL = cur.AtBOL
	out.HasSpace = cur.HasSpace
	listTail(out).Next = rest
	prev.Next = out
}

// readMacroArgs parses comma-separated arguments starting at the token after
// "(".  Nested parentheses group; each argument list is terminated by a fresh
// EOF token.  Returns the arguments and the token after ")".
func readMacroArgs(tok *Token) ([]*Token, *Token) {
	var args []*Token
	level := 0
	argHead := Token{}
	argTail := &argHead

	finish := func() {
		argTail.Next = newEOF()
		args = append(args, argHead.Next)
		argHead.Next = nil
		argTail = &argHead
	}

	for tok != nil && tok.Kind != TokenEOF {
		if level == 0 && (tok.isPunct(",") || tok.isPunct(")")) {
			finish()
			if tok.isPunct(")") {
				return args, tok.Next
			}
			tok = tok.Next
			continue
		}
		if tok.isPunct("(") {
			level++
		} else if tok.isPunct(")") {
			level--
		}
		argTail.Next = tok.clone()
		argTail = argTail.Next
		tok = tok.Next
	}

	// Unterminated call: treat what we have as the final argument.
	finish()
	return args, tok
}

// argFor maps a parameter name to its argument list.  Missing trailing
// arguments are empty lists.
func argFor(m *Macro, args []*Token, name string) (*Token, bool) {
	for i, pname := range m.Params {
		if pname != name {
			continue
		}
		if i < len(args) {
			return args[i], true
		}
		return newEOF(), true
	}
	return nil, false
}

// substituteBody retokenizes the macro body and applies parameter
// substitution, stringize, and paste.  The result ends with a fresh EOF.
func (p *Preprocessor) substituteBody(m *Macro, name string, args []*Token) *Token {
	body := TokenizeString(m.Body)
	out := Token{}
	tail := &out

	appendList := func(tok *Token) {
		for t := tok; t != nil && t.Kind != TokenEOF; t = t.Next {
			tail.Next = t.clone()
			tail = tail.Next
		}
	}

	bt := body
	for bt != nil && bt.Kind != TokenEOF {
		// "#" param: stringize the argument.
		if bt.isPunct("#") && bt.Next != nil && bt.Next.Kind == TokenIdent {
			if arg, ok := argFor(m, args, bt.Next.Loc); ok {
				tail.Next = stringizeToken(arg)
				tail = tail.Next
				bt = bt.Next.Next
				continue
			}
		}

		// L ## R: paste the textual forms and rescan the result.
		if (bt.Kind == TokenIdent || bt.Kind == TokenPunct) &&
			bt.Next != nil && bt.Next.isPunct("##") && bt.Next.Next != nil {
			rhs := bt.Next.Next
			lhsTok := bt
			if arg, ok := argFor(m, args, bt.Loc); ok && bt.Kind == TokenIdent {
				lhsTok = arg
			}
			rhsTok := rhs
			if arg, ok := argFor(m, args, rhs.Loc); ok && rhs.Kind == TokenIdent {
				rhsTok = arg
			}
			pasted := pasteTokens(lhsTok, rhsTok)
			pasted = addHideset(pasted, newHideset(name))
			pasted = p.Expand(pasted)
			appendList(pasted)
			bt = rhs.Next
			continue
		}

		// Plain parameter: clone its argument list.
		if bt.Kind == TokenIdent {
			if arg, ok := argFor(m, args, bt.Loc); ok {
				appendList(arg)
				bt = bt.Next
				continue
			}
		}

		tail.Next = bt.clone()
		tail = tail.Next
		bt = bt.Next
	}

	tail.Next = newEOF()
	return out.Next
}

// stringizeToken renders an argument token list as a single string literal,
// with one space wherever the argument carried whitespace.
func stringizeToken(arg *Token) *Token {
	s := joinTokens(arg)
	quoted := "\"" + strings.ReplaceAll(strings.ReplaceAll(s, "\\", "\\\\"), "\"", "\\\"") + "\""
	return &Token{Kind: TokenStr, Loc: quoted, StrLit: s}
}

// pasteTokens concatenates the textual forms of the first tokens of lhs and
// rhs and retokenizes the result.
func pasteTokens(lhs, rhs *Token) *Token {
	var l, r string
	if lhs != nil && lhs.Kind != TokenEOF {
		l = lhs.Loc
	}
	if rhs != nil && rhs.Kind != TokenEOF {
		r = rhs.Loc
	}
	return TokenizeString(l + r)
}

// stripEOF detaches the trailing EOF from a list, returning nil for an empty
// list.
func stripEOF(tok *Token) *Token {
	if tok == nil || tok.Kind == TokenEOF {
		return nil
	}
	t := tok
	for t.Next != nil && t.Next.Kind != TokenEOF {
		t = t.Next
	}
	t.Next = nil
	return tok
}
