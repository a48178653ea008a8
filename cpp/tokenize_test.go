package cpp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func locs(tok *Token) []string {
	var out []string
	for t := tok; t != nil && t.Kind != TokenEOF; t = t.Next {
		out = append(out, t.Loc)
	}
	return out
}

func kinds(tok *Token) []TokenKind {
	var out []TokenKind
	for t := tok; t != nil && t.Kind != TokenEOF; t = t.Next {
		out = append(out, t.Kind)
	}
	return out
}

func TestTokenize_Basic(t *testing.T) {
	tok := TokenizeString("int x = 42;")
	assert.Equal(t, []string{"int", "x", "=", "42", ";"}, locs(tok))
	assert.Equal(t, []TokenKind{TokenKeyword, TokenIdent, TokenPunct, TokenPPNum, TokenPunct}, kinds(tok))
}

func TestTokenize_EndsWithSingleEOF(t *testing.T) {
	for _, src := range []string{"", "a b c", "// only a comment\n"} {
		tok := TokenizeString(src)
		n := 0
		for cur := tok; cur != nil; cur = cur.Next {
			if cur.Kind == TokenEOF {
				n++
				assert.Nil(t, cur.Next)
			}
		}
		assert.Equal(t, 1, n, "src=%q", src)
	}
}

func TestTokenize_BOLAndSpace(t *testing.T) {
	tok := TokenizeString("a b\nc")
	require.Len(t, locs(tok), 3)

	a := tok
	b := a.Next
	c := b.Next
	assert.True(t, a.AtBOL)
	assert.False(t, a.HasSpace)
	assert.False(t, b.AtBOL)
	assert.True(t, b.HasSpace)
	assert.True(t, c.AtBOL)
	assert.Equal(t, 1, a.LineNo)
	assert.Equal(t, 2, c.LineNo)
}

func TestTokenize_CommentsAreSpace(t *testing.T) {
	tok := TokenizeString("a/* gap */b // tail\nc")
	assert.Equal(t, []string{"a", "b", "c"}, locs(tok))
	assert.True(t, tok.Next.HasSpace)
	assert.True(t, tok.Next.Next.AtBOL)
}

func TestTokenize_StringEscapes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"simple", `"hello"`, "hello"},
		{"newline", `"a\nb"`, "a\nb"},
		{"tab and quote", `"a\t\"b\""`, "a\t\"b\""},
		{"octal", `"\101\102"`, "AB"},
		{"hex", `"\x41\x42"`, "AB"},
		{"nul", `"\0"`, "\x00"},
		{"bell backspace", `"\a\b"`, "\a\b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := TokenizeString(tt.src)
			require.Equal(t, TokenStr, tok.Kind)
			assert.Equal(t, tt.want, tok.StrLit)
		})
	}
}

func TestTokenize_CharLiterals(t *testing.T) {
	tok := TokenizeString(`'a' '\n' '\\'`)
	require.Len(t, locs(tok), 3)
	assert.Equal(t, int64('a'), tok.Val)
	assert.Equal(t, int64('\n'), tok.Next.Val)
	assert.Equal(t, int64('\\'), tok.Next.Next.Val)
	assert.Equal(t, TokenNum, tok.Kind)
}

func TestTokenize_Punctuators(t *testing.T) {
	tok := TokenizeString("a<<=b##c&&d")
	assert.Equal(t, []string{"a", "<<=", "b", "##", "c", "&&", "d"}, locs(tok))
}

func TestNormalizeSource(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"crlf", "a\r\nb\rc", "a\nb\nc"},
		{"continuation", "ab\\\ncd\n", "abcd\n\n"},
		{"trailing continuation", "ab\\\n", "ab\n"},
		{"universal 4", `\u0041`, "A"},
		{"universal 8", `\U00000042`, "B"},
		{"bad universal passes through", `\uZZ`, `\uZZ`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSource(tt.src))
		})
	}
}

func TestNormalize_ContinuationKeepsLineNumbers(t *testing.T) {
	// The spliced line counts as one logical line; the removed newline is
	// re-emitted afterwards so following tokens keep their numbering.
	tok := TokenizeString(NormalizeSource("a\\\nb\nc\n"))
	assert.Equal(t, []string{"a", "b", "c"}, locs(tok))
	assert.Equal(t, 1, tok.LineNo)
	assert.Equal(t, 1, tok.Next.LineNo)
	assert.Equal(t, 3, tok.Next.Next.LineNo)
}

func TestConvertPPTokens(t *testing.T) {
	tests := []struct {
		name string
		src  string
		val  int64
		fval float64
	}{
		{"decimal", "42", 42, 0},
		{"hex", "0x2a", 42, 0},
		{"binary", "0b101", 5, 0},
		{"octal", "0755", 493, 0},
		{"suffix", "42L", 42, 0},
		{"unsigned suffix", "7u", 7, 0},
		{"float", "1.5", 0, 1.5},
		{"float suffix", "2.5f", 0, 2.5},
		{"exponent", "1e3", 0, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := TokenizeString(tt.src)
			require.Equal(t, TokenPPNum, tok.Kind)
			ConvertPPTokens(tok)
			require.Equal(t, TokenNum, tok.Kind)
			assert.Equal(t, tt.val, tok.Val)
			assert.Equal(t, tt.fval, tok.FVal)
		})
	}
}
