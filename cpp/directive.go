package cpp

import (
	"strings"
)

// Preprocess runs the full pipeline on a token list: directive handling with
// macro expansion, pp-number conversion, and #line delta application.  The
// returned list is terminated by a single EOF token.
func (p *Preprocessor) Preprocess(tok *Token) *Token {
	tok = normalizeDirectives(tok)
	tok = p.processDirectives(tok)
	ConvertPPTokens(tok)
	for t := tok; t != nil && t.Kind != TokenEOF; t = t.Next {
		t.LineNo += t.LineDelta
	}
	return tok
}

// normalizeDirectives splits BOL tokens whose text glues "#" to more
// characters (e.g. "#ifdefined") into a "#" punct followed by the
// retokenization of the remainder, so the directive walk only ever sees a
// lone "#" opener.
func normalizeDirectives(tok *Token) *Token {
	head := Token{}
	tail := &head

	for t := tok; t != nil && t.Kind != TokenEOF; t = t.Next {
		if t.AtBOL && strings.HasPrefix(t.Loc, "#") && len(t.Loc) > 1 {
			hash := &Token{
				Kind:     TokenPunct,
				Loc:      "#",
				File:     t.File,
				Filename: t.Filename,
				LineNo:   t.LineNo,
				AtBOL:    true,
			}
			tail.Next = hash
			tail = hash
			for r := TokenizeString(t.Loc[1:]); r != nil && r.Kind != TokenEOF; r = r.Next {
				c := r.clone()
				c.AtBOL = false
				c.File = t.File
				c.Filename = t.Filename
				c.LineNo = t.LineNo
				tail.Next = c
				tail = tail.Next
			}
			continue
		}
		tail.Next = t.clone()
		tail = tail.Next
	}
	tail.Next = newEOF()
	return head.Next
}

// condIncl tracks one open #if/#ifdef/#ifndef region.
type condIncl struct {
	included bool // some branch of this region has been taken
	inElse   bool
}

func (p *Preprocessor) processDirectives(tok *Token) *Token {
	out := Token{}
	tail := &out
	var conds []condIncl

	cur := tok
	for cur != nil && cur.Kind != TokenEOF {
		if !cur.isHash() {
			cur = p.expandSegment(&tail, cur)
			continue
		}

		line, next := collectLine(cur)
		name, rest := splitDirective(line)

		switch name {
		case "define":
			p.handleDefine(rest)
			cur = next

		case "undef":
			if f := strings.Fields(rest); len(f) > 0 {
				p.UndefMacro(f[0])
			}
			cur = next

		case "include":
			cur = p.handleInclude(cur, next, false)

		case "include_next":
			cur = p.handleInclude(cur, next, true)

		case "ifdef":
			taken := false
			if f := strings.Fields(rest); len(f) > 0 {
				taken = p.LookupMacro(f[0]) != nil
			}
			conds = append(conds, condIncl{included: taken})
			if taken {
				cur = next
			} else {
				cur = skipCondIncl(next)
			}

		case "ifndef":
			taken := true
			if f := strings.Fields(rest); len(f) > 0 {
				taken = p.LookupMacro(f[0]) == nil
			}
			conds = append(conds, condIncl{included: taken})
			if taken {
				cur = next
			} else {
				cur = skipCondIncl(next)
			}

		case "if":
			taken := p.evalConstExpr(rest)
			conds = append(conds, condIncl{included: taken})
			if taken {
				cur = next
			} else {
				cur = skipCondIncl(next)
			}

		case "elif":
			if len(conds) == 0 {
				p.sink.Errorf(cur, "stray #elif")
				cur = next
				break
			}
			top := &conds[len(conds)-1]
			if top.inElse {
				p.sink.Errorf(cur, "#elif after #else")
			}
			if !top.included && p.evalConstExpr(rest) {
				top.included = true
				cur = next
			} else {
				cur = skipCondIncl(next)
			}

		case "else":
			if len(conds) == 0 {
				p.sink.Errorf(cur, "stray #else")
				cur = next
				break
			}
			top := &conds[len(conds)-1]
			top.inElse = true
			if top.included {
				cur = skipCondIncl(next)
			} else {
				top.included = true
				cur = next
			}

		case "endif":
			if len(conds) == 0 {
				p.sink.Errorf(cur, "stray #endif")
			} else {
				conds = conds[:len(conds)-1]
			}
			cur = next

		default:
			// Unknown directives are skipped, line and all.
			cur = next
		}
	}

	tail.Next = newEOF()
	return out.Next
}

// expandSegment macro-expands the run of ordinary tokens starting at cur (up
// to the next directive opener or EOF), appends the result to the output
// tail, and returns where the walk should resume.
func (p *Preprocessor) expandSegment(tail **Token, cur *Token) *Token {
	end := cur
	for end != nil && end.Kind != TokenEOF && !end.isHash() {
		end = end.Next
	}

	seg := Token{}
	st := &seg
	for t := cur; t != end; t = t.Next {
		st.Next = t.clone()
		st = st.Next
	}
	st.Next = newEOF()

	for t := p.Expand(seg.Next); t != nil && t.Kind != TokenEOF; t = t.Next {
		(*tail).Next = t.clone()
		*tail = (*tail).Next
	}
	return end
}

// collectLine joins the directive line starting at the "#" token into text
// and returns the first token of the following line.
func collectLine(start *Token) (string, *Token) {
	var sb strings.Builder
	t := start
	first := true
	for t != nil && t.Kind != TokenEOF {
		if t.AtBOL && !first {
			break
		}
		if !first && t.HasSpace {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Loc)
		first = false
		t = t.Next
	}
	return sb.String(), t
}

// splitDirective extracts the directive name (letters after "#") and the
// remainder of the line.
func splitDirective(line string) (string, string) {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, "#")
	s = strings.TrimLeft(s, " \t")
	i := 0
	for i < len(s) && (s[i] >= 'a' && s[i] <= 'z' || s[i] >= 'A' && s[i] <= 'Z' || s[i] == '_') {
		i++
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// handleDefine parses "NAME body" or "NAME(p1,...,pn) body" and registers
// the macro.  A "(" glued to the name makes it function-like.
func (p *Preprocessor) handleDefine(rest string) {
	if rest == "" {
		return
	}
	nameLen := readIdent(rest, 0)
	if nameLen == 0 {
		return
	}
	name := rest[:nameLen]

	if nameLen < len(rest) && rest[nameLen] == '(' {
		close := strings.IndexByte(rest[nameLen:], ')')
		if close < 0 {
			return
		}
		paramsText := rest[nameLen+1 : nameLen+close]
		var params []string
		for _, part := range strings.Split(paramsText, ",") {
			if part = strings.TrimSpace(part); part != "" {
				params = append(params, part)
			}
		}
		body := strings.TrimSpace(rest[nameLen+close+1:])
		p.DefineFunctionMacro(name, params, body)
		return
	}
	p.DefineMacro(name, strings.TrimSpace(rest[nameLen:]))
}

// skipCondIncl advances past a failed conditional branch.  It stops at the
// "#" opening the matching #elif/#else/#endif (so the dispatcher sees it),
// tracking nested conditionals on the way.  Returns EOF if the region is
// unterminated.
func skipCondIncl(tok *Token) *Token {
	depth := 0
	for tok != nil && tok.Kind != TokenEOF {
		if !tok.isHash() {
			tok = tok.Next
			continue
		}
		line, next := collectLine(tok)
		name, _ := splitDirective(line)
		switch name {
		case "if", "ifdef", "ifndef":
			depth++
		case "endif":
			if depth == 0 {
				return tok
			}
			depth--
		case "elif", "else":
			if depth == 0 {
				return tok
			}
		}
		tok = next
	}
	return tok
}

// detectIncludeGuard recognizes the "#ifndef NAME" / "#define NAME" idiom at
// the head of a tokenized file and returns the guard macro name.
func detectIncludeGuard(tok *Token) (string, bool) {
	if tok == nil || !tok.isHash() || !tok.isPunct("#") {
		return "", false
	}
	t := tok.Next
	if t == nil || !t.isIdent("ifndef") {
		return "", false
	}
	t = t.Next
	if t == nil || t.Kind != TokenIdent {
		return "", false
	}
	name := t.Loc

	for t = t.Next; t != nil && t.Kind != TokenEOF; t = t.Next {
		if !t.isHash() || !t.isPunct("#") {
			continue
		}
		if d := t.Next; d != nil && d.isIdent("define") {
			if id := d.Next; id != nil && id.isIdent(name) {
				return name, true
			}
		}
	}
	return "", false
}

// hasPragmaOnce scans a tokenized file for a "#pragma once" directive line.
func hasPragmaOnce(tok *Token) bool {
	for t := tok; t != nil && t.Kind != TokenEOF; t = t.Next {
		if !t.isHash() || !t.isPunct("#") {
			continue
		}
		if pr := t.Next; pr != nil && pr.isIdent("pragma") {
			if once := pr.Next; once != nil && once.isIdent("once") {
				return true
			}
		}
	}
	return false
}
