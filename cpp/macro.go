package cpp

import (
	"sync"
	"sync/atomic"
)

// Macro is one entry in the macro table.  Params is nil for object-like
// macros and non-nil (possibly empty) for function-like ones.  The body is
// kept as raw text and retokenized at each use.
type Macro struct {
	Body   string
	Params []string
}

// IsFunctionLike reports whether the macro takes an argument list.
func (m *Macro) IsFunctionLike() bool {
	return m.Params != nil
}

// Preprocessor owns the macro table, the include bookkeeping, and the
// expansion state for one driver.  The registries are mutex-guarded so a
// driver may be shared, but translation units are processed one at a time.
type Preprocessor struct {
	mu            sync.Mutex
	macros        Map[*Macro]
	pragmaOnce    Map[bool]
	includeGuards Map[string]

	counter  atomic.Int64
	baseFile string

	resolver *IncludeResolver
	sink     ErrorSink
	builtins map[string]builtinFn
}

// New returns a preprocessor with the dynamic builtin macros registered and
// diagnostics going to slog.
func New() *Preprocessor {
	p := &Preprocessor{
		resolver: NewIncludeResolver(),
		sink:     LogSink{},
	}
	p.registerBuiltins()
	return p
}

// SetSink redirects diagnostics.
func (p *Preprocessor) SetSink(sink ErrorSink) {
	p.sink = sink
}

// SetBaseFile records the driver's initial source file for __BASE_FILE__.
func (p *Preprocessor) SetBaseFile(name string) {
	p.baseFile = name
}

// Resolver exposes the include resolver so drivers can add search paths.
func (p *Preprocessor) Resolver() *IncludeResolver {
	return p.resolver
}

// DefineMacro registers an object-like macro.
func (p *Preprocessor) DefineMacro(name, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.macros.Put(name, &Macro{Body: body})
}

// DefineFunctionMacro registers a function-like macro with ordered parameter
// names.
func (p *Preprocessor) DefineFunctionMacro(name string, params []string, body string) {
	if params == nil {
		params = []string{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.macros.Put(name, &Macro{Body: body, Params: params})
}

// UndefMacro removes name from the macro table.
func (p *Preprocessor) UndefMacro(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.macros.Delete(name)
}

// LookupMacro returns the macro registered under name, or nil.
func (p *Preprocessor) LookupMacro(name string) *Macro {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.macros.Get(name)
	if !ok {
		return nil
	}
	return m
}

func (p *Preprocessor) pragmaOnceSeen(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.pragmaOnce.Get(path)
	return ok
}

func (p *Preprocessor) markPragmaOnce(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pragmaOnce.Put(path, true)
}

func (p *Preprocessor) includeGuard(path string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.includeGuards.Get(path)
}

func (p *Preprocessor) recordIncludeGuard(path, guard string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.includeGuards.Put(path, guard)
}
