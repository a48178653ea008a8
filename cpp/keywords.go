package cpp

import "sync"

var keywordsOnce sync.Once
var keywords Map[struct{}]

func initKeywords() {
	kws := []string{
		"return", "if", "else", "for", "while", "int", "sizeof", "char",
		"struct", "union", "short", "long", "void", "typedef", "_Bool",
		"enum", "static", "goto", "break", "continue", "switch", "case",
		"default", "extern", "_Alignof", "_Alignas", "do", "signed",
		"unsigned", "const", "volatile", "auto", "register", "restrict",
		"__restrict", "__restrict__", "_Noreturn", "float", "double",
		"typeof", "asm", "_Thread_local", "__thread", "_Atomic",
		"__attribute__",
	}
	for _, k := range kws {
		keywords.Put(k, struct{}{})
	}
}

func isKeyword(s string) bool {
	keywordsOnce.Do(initKeywords)
	_, ok := keywords.Get(s)
	return ok
}
