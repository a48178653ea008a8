package cpp

import (
	"os"
	"strconv"
)

// Dynamic builtin macros are not stored as body text; the expander
// materializes a fresh token from the template token that referenced them.
type builtinFn func(p *Preprocessor, tmpl *Token) *Token

func (p *Preprocessor) registerBuiltins() {
	p.builtins = map[string]builtinFn{
		"__FILE__":      fileMacro,
		"__LINE__":      lineMacro,
		"__COUNTER__":   counterMacro,
		"__TIMESTAMP__": timestampMacro,
		"__BASE_FILE__": baseFileMacro,
	}
}

// originBottom walks the origin chain to the token that came from source
// text, which carries the position __FILE__ and __LINE__ must report.
func originBottom(tok *Token) *Token {
	for tok.Origin != nil {
		tok = tok.Origin
	}
	return tok
}

func newStrToken(s string) *Token {
	return &Token{Kind: TokenStr, Loc: strconv.Quote(s), StrLit: s}
}

func newNumToken(v int64) *Token {
	return &Token{Kind: TokenNum, Loc: strconv.FormatInt(v, 10), Val: v}
}

func fileMacro(p *Preprocessor, tmpl *Token) *Token {
	t := originBottom(tmpl)
	if t.File != nil {
		return newStrToken(t.File.displayOrName())
	}
	return newStrToken("")
}

func lineMacro(p *Preprocessor, tmpl *Token) *Token {
	t := originBottom(tmpl)
	return newNumToken(int64(t.LineNo + t.LineDelta))
}

func counterMacro(p *Preprocessor, tmpl *Token) *Token {
	return newNumToken(p.counter.Add(1) - 1)
}

func timestampMacro(p *Preprocessor, tmpl *Token) *Token {
	t := originBottom(tmpl)
	if t.File == nil || t.File.Name == "" {
		return newStrToken("")
	}
	info, err := os.Stat(t.File.Name)
	if err != nil {
		return newStrToken("")
	}
	return newStrToken(info.ModTime().Format("Mon Jan 02 15:04:05 2006"))
}

func baseFileMacro(p *Preprocessor, tmpl *Token) *Token {
	return newStrToken(p.baseFile)
}
