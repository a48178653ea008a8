package lang

// The syntax registry centralizes keywords, type names, and builtin
// signatures so the lexer, parser, and type checker agree on one table.

// BuiltinSig describes a builtin function.
type BuiltinSig struct {
	Name        string
	Params      int
	ReturnsVoid bool
}

// Registry holds the language's keyword, type, and builtin tables.
type Registry struct {
	keywords map[string]TokenKind
	types    map[string]Type
	builtins map[string]BuiltinSig
}

// DefaultRegistry returns the stock Hyperlight syntax tables.
func DefaultRegistry() *Registry {
	r := &Registry{
		keywords: map[string]TokenKind{
			"let":    TokLet,
			"fn":     TokFn,
			"return": TokReturn,
			"if":     TokIf,
			"else":   TokElse,
			"while":  TokWhile,
			"true":   TokTrue,
			"false":  TokFalse,
		},
		types: map[string]Type{
			"int":   TypeInt,
			"uint":  TypeUInt,
			"float": TypeFloat,
			"bool":  TypeBool,
		},
		builtins: map[string]BuiltinSig{
			"print": {Name: "print", Params: 1, ReturnsVoid: true},
		},
	}
	return r
}

// Keyword looks up an identifier's keyword kind.
func (r *Registry) Keyword(s string) (TokenKind, bool) {
	k, ok := r.keywords[s]
	return k, ok
}

// TypeNamed resolves a type name.
func (r *Registry) TypeNamed(s string) (Type, bool) {
	t, ok := r.types[s]
	return t, ok
}

// Builtin returns a builtin's signature.
func (r *Registry) Builtin(name string) (BuiltinSig, bool) {
	b, ok := r.builtins[name]
	return b, ok
}
