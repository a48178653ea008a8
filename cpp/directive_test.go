package cpp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func preprocessText(p *Preprocessor, src string) []string {
	return locs(p.Preprocess(TokenizeString(src)))
}

func TestDirective_Define(t *testing.T) {
	p := New()
	out := preprocessText(p, "#define X 1 + 2\nX;\n")
	assert.Equal(t, []string{"1", "+", "2", ";"}, out)
}

func TestDirective_DefineFunctionLike(t *testing.T) {
	p := New()
	out := preprocessText(p, "#define ADD(a, b) a + b\nADD(1, 2);\n")
	assert.Equal(t, []string{"1", "+", "2", ";"}, out)
}

func TestDirective_DefineObjectLikeWithParenBody(t *testing.T) {
	p := New()
	// A space before "(" makes the macro object-like.
	out := preprocessText(p, "#define P (1)\nP;\n")
	assert.Equal(t, []string{"(", "1", ")", ";"}, out)
}

func TestDirective_Undef(t *testing.T) {
	p := New()
	out := preprocessText(p, "#define X 1\n#undef X\nX;\n")
	assert.Equal(t, []string{"X", ";"}, out)
}

func TestDirective_Ifdef(t *testing.T) {
	p := New()
	p.DefineMacro("M", "1")
	assert.Equal(t, []string{"yes"}, preprocessText(p, "#ifdef M\nyes\n#else\nno\n#endif\n"))
	assert.Equal(t, []string{"no"}, preprocessText(p, "#ifdef UNDEF\nyes\n#else\nno\n#endif\n"))
}

func TestDirective_Ifndef(t *testing.T) {
	p := New()
	p.DefineMacro("M", "1")
	assert.Equal(t, []string{"no"}, preprocessText(p, "#ifndef M\nyes\n#else\nno\n#endif\n"))
	assert.Equal(t, []string{"yes"}, preprocessText(p, "#ifndef UNDEF\nyes\n#else\nno\n#endif\n"))
}

func TestDirective_IfDefined(t *testing.T) {
	p := New()
	p.DefineMacro("M", "1")
	out := preprocessText(p, "#if defined(M)\nX\n#endif\n")
	assert.Equal(t, []string{"X"}, out)

	out = preprocessText(p, "#if defined N\nY\n#endif\n")
	assert.Empty(t, out)

	out = preprocessText(p, "#if defined(UNDEF)\nZ\n#else\nW\n#endif\n")
	assert.Equal(t, []string{"W"}, out)
	assert.NotContains(t, out, "Z")
}

func TestDirective_IfExpression(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"nonzero literal", "#if 1\nA\n#endif\n", []string{"A"}},
		{"zero literal", "#if 0\nA\n#endif\n", nil},
		{"arithmetic", "#if 1 + 2 * 3 == 7\nA\n#endif\n", []string{"A"}},
		{"comparison", "#if 3 < 2\nA\n#else\nB\n#endif\n", []string{"B"}},
		{"logical", "#if 1 && 0\nA\n#else\nB\n#endif\n", []string{"B"}},
		{"ternary", "#if 0 ? 1 : 2\nA\n#endif\n", []string{"A"}},
		{"unknown ident is zero", "#if FOO\nA\n#else\nB\n#endif\n", []string{"B"}},
		{"not operator", "#if !0\nA\n#endif\n", []string{"A"}},
		{"bitwise", "#if (5 & 3) == 1\nA\n#endif\n", []string{"A"}},
		{"shift", "#if 1 << 4 == 16\nA\n#endif\n", []string{"A"}},
		{"garbage is false", "#if +\nA\n#else\nB\n#endif\n", []string{"B"}},
		{"empty is false", "#if\nA\n#else\nB\n#endif\n", []string{"B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New()
			assert.Equal(t, tt.want, preprocessText(p, tt.src))
		})
	}
}

func TestDirective_IfExpandsMacros(t *testing.T) {
	p := New()
	p.DefineMacro("LIMIT", "10")
	out := preprocessText(p, "#if LIMIT > 5\nbig\n#endif\n")
	assert.Equal(t, []string{"big"}, out)
}

func TestDirective_Elif(t *testing.T) {
	p := New()
	src := "#if 0\nA\n#elif 1\nB\n#elif 1\nC\n#else\nD\n#endif\n"
	assert.Equal(t, []string{"B"}, preprocessText(p, src))

	src = "#if 0\nA\n#elif 0\nB\n#else\nC\n#endif\n"
	assert.Equal(t, []string{"C"}, preprocessText(p, src))
}

func TestDirective_ElseAfterTakenBranchSkips(t *testing.T) {
	p := New()
	src := "#if 1\nA\n#else\nB\n#endif\n"
	assert.Equal(t, []string{"A"}, preprocessText(p, src))
}

func TestDirective_NestedConditionals(t *testing.T) {
	p := New()
	src := "#if 0\n#if 1\nX\n#endif\nY\n#else\nZ\n#endif\n"
	assert.Equal(t, []string{"Z"}, preprocessText(p, src))

	src = "#if 1\n#if 0\nX\n#else\nY\n#endif\n#endif\n"
	assert.Equal(t, []string{"Y"}, preprocessText(p, src))
}

func TestDirective_GluedDirectiveName(t *testing.T) {
	// A "#define" token splits into "#" "define" — the normalization pass
	// makes glued forms behave like spaced ones.
	p := New()
	p.DefineMacro("M", "1")
	name := &Token{Kind: TokenIdent, Loc: "GLUED", HasSpace: true}
	body := &Token{Kind: TokenPPNum, Loc: "7", HasSpace: true, Next: TokenizeString("GLUED\n")}
	name.Next = body
	hash := &Token{Kind: TokenPunct, Loc: "#define", AtBOL: true, Next: name}
	out := p.Preprocess(hash)
	assert.Equal(t, []string{"7"}, locs(out))
}

func TestDirective_UnknownIsSkipped(t *testing.T) {
	p := New()
	out := preprocessText(p, "#pragma GCC poison foo\nkeep\n")
	assert.Equal(t, []string{"keep"}, out)
}

func TestDirective_LineDeltaApplied(t *testing.T) {
	p := New()
	tok := TokenizeString("a\nb\n")
	for t2 := tok; t2 != nil && t2.Kind != TokenEOF; t2 = t2.Next {
		t2.LineDelta = 10
	}
	out := p.Preprocess(tok)
	require.NotNil(t, out)
	assert.Equal(t, 11, out.LineNo)
	assert.Equal(t, 12, out.Next.LineNo)
}

func TestDirective_PPNumConversionAtEnd(t *testing.T) {
	p := New()
	out := p.Preprocess(TokenizeString("0x10 2.5\n"))
	require.Equal(t, TokenNum, out.Kind)
	assert.Equal(t, int64(16), out.Val)
	require.Equal(t, TokenNum, out.Next.Kind)
	assert.Equal(t, 2.5, out.Next.FVal)
}

func TestDirective_StrayBranchesReported(t *testing.T) {
	sink := &CollectSink{}
	p := New()
	p.SetSink(sink)
	out := preprocessText(p, "#endif\n#else\nx\n")
	assert.Equal(t, []string{"x"}, out)
	assert.Len(t, sink.Diags, 2)
}
