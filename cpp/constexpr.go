package cpp

import "errors"

// evalConstExpr evaluates a #if controlling expression.  The text is
// tokenized, "defined" operators are resolved against the macro table before
// any expansion happens (so defined(M) asks about M, not M's body), the rest
// is macro-expanded, any surviving identifier becomes 0, pp-numbers are
// converted, and the resulting token list is evaluated with the usual C
// operator grammar.  Any parse failure makes the condition false.
func (p *Preprocessor) evalConstExpr(expr string) bool {
	if expr == "" {
		return false
	}
	tok := p.resolveDefined(TokenizeString(expr))
	tok = p.Expand(tok)

	for t := tok; t != nil && t.Kind != TokenEOF; t = t.Next {
		if t.Kind == TokenIdent {
			t.Kind = TokenNum
			t.Val = 0
			t.Loc = "0"
		}
	}
	ConvertPPTokens(tok)

	ev := exprEval{tok: tok}
	v := ev.conditional()
	if ev.err != nil || (ev.tok != nil && ev.tok.Kind != TokenEOF) {
		return false
	}
	return v != 0
}

// resolveDefined rewrites "defined NAME" and "defined(NAME)" into NUM 1/0,
// splicing out the consumed tokens.
func (p *Preprocessor) resolveDefined(tok *Token) *Token {
	for cur := tok; cur != nil && cur.Kind != TokenEOF; cur = cur.Next {
		if !cur.isIdent("defined") || cur.Next == nil {
			continue
		}
		nt := cur.Next

		var name string
		var after *Token
		if nt.isPunct("(") && nt.Next != nil && nt.Next.Kind == TokenIdent {
			name = nt.Next.Loc
			after = nt.Next.Next
			if after != nil && after.isPunct(")") {
				after = after.Next
			}
		} else if nt.Kind == TokenIdent {
			name = nt.Loc
			after = nt.Next
		} else {
			continue
		}

		cur.Kind = TokenNum
		if p.LookupMacro(name) != nil {
			cur.Val = 1
			cur.Loc = "1"
		} else {
			cur.Val = 0
			cur.Loc = "0"
		}
		cur.Next = after
	}
	return tok
}

// exprEval is a recursive-descent evaluator over NUM tokens.  Floats that
// survived pp-number conversion participate as their truncated integer
// value, matching the integer-only #if arithmetic.
type exprEval struct {
	tok *Token
	err error
}

var errBadExpr = errors.New("bad #if expression")

func (e *exprEval) fail() int64 {
	if e.err == nil {
		e.err = errBadExpr
	}
	return 0
}

func (e *exprEval) consume(op string) bool {
	if e.err == nil && e.tok != nil && e.tok.isPunct(op) {
		e.tok = e.tok.Next
		return true
	}
	return false
}

func (e *exprEval) conditional() int64 {
	cond := e.logicalOr()
	if !e.consume("?") {
		return cond
	}
	then := e.conditional()
	if !e.consume(":") {
		return e.fail()
	}
	els := e.conditional()
	if cond != 0 {
		return then
	}
	return els
}

func (e *exprEval) logicalOr() int64 {
	v := e.logicalAnd()
	for e.consume("||") {
		rhs := e.logicalAnd()
		if v != 0 || rhs != 0 {
			v = 1
		} else {
			v = 0
		}
	}
	return v
}

func (e *exprEval) logicalAnd() int64 {
	v := e.bitOr()
	for e.consume("&&") {
		rhs := e.bitOr()
		if v != 0 && rhs != 0 {
			v = 1
		} else {
			v = 0
		}
	}
	return v
}

func (e *exprEval) bitOr() int64 {
	v := e.bitXor()
	for e.err == nil && e.tok != nil && e.tok.isPunct("|") {
		e.tok = e.tok.Next
		v |= e.bitXor()
	}
	return v
}

func (e *exprEval) bitXor() int64 {
	v := e.bitAnd()
	for e.consume("^") {
		v ^= e.bitAnd()
	}
	return v
}

func (e *exprEval) bitAnd() int64 {
	v := e.equality()
	for e.err == nil && e.tok != nil && e.tok.isPunct("&") {
		e.tok = e.tok.Next
		v &= e.equality()
	}
	return v
}

func (e *exprEval) equality() int64 {
	v := e.relational()
	for {
		switch {
		case e.consume("=="):
			v = b2i(v == e.relational())
		case e.consume("!="):
			v = b2i(v != e.relational())
		default:
			return v
		}
	}
}

func (e *exprEval) relational() int64 {
	v := e.shift()
	for {
		switch {
		case e.consume("<="):
			v = b2i(v <= e.shift())
		case e.consume(">="):
			v = b2i(v >= e.shift())
		case e.consume("<"):
			v = b2i(v < e.shift())
		case e.consume(">"):
			v = b2i(v > e.shift())
		default:
			return v
		}
	}
}

func (e *exprEval) shift() int64 {
	v := e.additive()
	for {
		switch {
		case e.consume("<<"):
			v <<= uint64(e.additive()) & 63
		case e.consume(">>"):
			v >>= uint64(e.additive()) & 63
		default:
			return v
		}
	}
}

func (e *exprEval) additive() int64 {
	v := e.multiplicative()
	for {
		switch {
		case e.consume("+"):
			v += e.multiplicative()
		case e.consume("-"):
			v -= e.multiplicative()
		default:
			return v
		}
	}
}

func (e *exprEval) multiplicative() int64 {
	v := e.unary()
	for {
		switch {
		case e.consume("*"):
			v *= e.unary()
		case e.consume("/"):
			if rhs := e.unary(); rhs != 0 {
				v /= rhs
			} else {
				v = e.fail()
			}
		case e.consume("%"):
			if rhs := e.unary(); rhs != 0 {
				v %= rhs
			} else {
				v = e.fail()
			}
		default:
			return v
		}
	}
}

func (e *exprEval) unary() int64 {
	switch {
	case e.consume("!"):
		return b2i(e.unary() == 0)
	case e.consume("~"):
		return ^e.unary()
	case e.consume("-"):
		return -e.unary()
	case e.consume("+"):
		return e.unary()
	}
	return e.primary()
}

func (e *exprEval) primary() int64 {
	if e.err != nil || e.tok == nil {
		return e.fail()
	}
	if e.consume("(") {
		v := e.conditional()
		if !e.consume(")") {
			return e.fail()
		}
		return v
	}
	if e.tok.Kind == TokenNum {
		v := e.tok.Val
		if v == 0 && e.tok.FVal != 0 {
			v = int64(e.tok.FVal)
		}
		e.tok = e.tok.Next
		return v
	}
	return e.fail()
}

func b2i(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
