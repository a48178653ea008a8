package cpp

import (
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Tokenize scans file.Contents into a token list terminated by a single EOF
// token.  Comments are stripped; AtBOL and HasSpace are tracked so the
// directive pass and the stringize operator can reconstruct line structure.
func Tokenize(file *File) *Token {
	s := file.Contents
	head := Token{}
	tail := &head

	lineNo := 1
	atBOL := true
	hasSpace := false

	emit := func(tok *Token) {
		tok.File = file
		if tok.Filename == "" {
			tok.Filename = file.displayOrName()
		}
		tok.LineNo = lineNo
		tok.LineDelta = file.LineDelta
		tok.AtBOL = atBOL
		tok.HasSpace = hasSpace
		atBOL = false
		hasSpace = false
		tail.Next = tok
		tail = tok
	}

	i := 0
	for i < len(s) {
		c := s[i]

		if c == '\n' {
			lineNo++
			atBOL = true
			hasSpace = false
			i++
			continue
		}
		if c == ' ' || c == '\t' || c == '\r' || c == '\v' || c == '\f' {
			hasSpace = true
			i++
			continue
		}

		// Line and block comments count as whitespace.
		if strings.HasPrefix(s[i:], "//") {
			for i < len(s) && s[i] != '\n' {
				i++
			}
			hasSpace = true
			continue
		}
		if strings.HasPrefix(s[i:], "/*") {
			j := strings.Index(s[i+2:], "*/")
			if j < 0 {
				// unterminated block comment: swallow the rest
				lineNo += strings.Count(s[i:], "\n")
				i = len(s)
			} else {
				lineNo += strings.Count(s[i:i+2+j+2], "\n")
				i += 2 + j + 2
			}
			hasSpace = true
			continue
		}

		if n := readIdent(s, i); n > 0 {
			text := *Intern(s[i : i+n])
			kind := TokenIdent
			if isKeyword(text) {
				kind = TokenKeyword
			}
			emit(&Token{Kind: kind, Loc: text})
			i += n
			continue
		}

		if n := readPPNumber(s, i); n > 0 {
			emit(&Token{Kind: TokenPPNum, Loc: s[i : i+n]})
			i += n
			continue
		}

		if c == '"' {
			lit, contents, n := readStringLiteral(s, i)
			emit(&Token{Kind: TokenStr, Loc: lit, StrLit: *Intern(contents)})
			i += n
			continue
		}

		if c == '\'' {
			lit, val, n := readCharLiteral(s, i)
			emit(&Token{Kind: TokenNum, Loc: lit, Val: val})
			i += n
			continue
		}

		if n := readPunct(s, i); n > 0 {
			emit(&Token{Kind: TokenPunct, Loc: s[i : i+n]})
			i += n
			continue
		}

		// Unknown byte: pass it through as a single-byte punct.
		emit(&Token{Kind: TokenPunct, Loc: s[i : i+1]})
		i++
	}

	emit(newEOF())
	return head.Next
}

// TokenizeString tokenizes loose text (macro bodies, pasted fragments).
func TokenizeString(src string) *Token {
	return Tokenize(&File{Contents: NormalizeSource(src)})
}

// TokenizeFile reads, decodes, normalizes and tokenizes path.  Returns nil if
// the file cannot be read.
func TokenizeFile(path string) *Token {
	contents, err := ReadSource(path)
	if err != nil {
		return nil
	}
	return Tokenize(&File{
		Name:        path,
		Contents:    NormalizeSource(contents),
		DisplayName: path,
	})
}

// ReadSource loads path as UTF-8 text.  A UTF-8 or UTF-16 byte-order mark is
// honored and stripped, so headers saved by Windows tooling tokenize cleanly.
func ReadSource(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// NormalizeSource applies the pre-tokenization source transforms: newline
// canonicalization, backslash-newline removal (newline count preserved), and
// \uXXXX / \UXXXXXXXX escape decoding.
func NormalizeSource(s string) string {
	s = canonicalizeNewlines(s)
	s = removeBackslashNewlines(s)
	return convertUniversalChars(s)
}

func canonicalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// removeBackslashNewlines splices continuation lines.  Each removed newline
// is deferred and re-emitted at the next real newline so logical line numbers
// downstream stay in sync with the original file.
func removeBackslashNewlines(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	pending := 0
	for i := 0; i < len(s); {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == '\n' {
			i += 2
			pending++
			continue
		}
		if s[i] == '\n' {
			sb.WriteByte('\n')
			for ; pending > 0; pending-- {
				sb.WriteByte('\n')
			}
			i++
			continue
		}
		sb.WriteByte(s[i])
		i++
	}
	for ; pending > 0; pending-- {
		sb.WriteByte('\n')
	}
	return sb.String()
}

func convertUniversalChars(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == 'u' || s[i+1] == 'U') {
			need := 4
			if s[i+1] == 'U' {
				need = 8
			}
			if code, ok := readHex(s, i+2, need); ok && utf8.ValidRune(rune(code)) {
				sb.WriteRune(rune(code))
				i += 2 + need
				continue
			}
		}
		sb.WriteByte(s[i])
		i++
	}
	return sb.String()
}

func readHex(s string, i, n int) (uint32, bool) {
	if i+n > len(s) {
		return 0, false
	}
	var c uint32
	for _, b := range []byte(s[i : i+n]) {
		v := hexDigit(b)
		if v < 0 {
			return 0, false
		}
		c = c<<4 | uint32(v)
	}
	return c, true
}

func hexDigit(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10
	}
	return -1
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentContinue(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func readIdent(s string, i int) int {
	if i >= len(s) || !isIdentStart(s[i]) {
		return 0
	}
	j := i + 1
	for j < len(s) && isIdentContinue(s[j]) {
		j++
	}
	return j - i
}

// readPPNumber scans a pp-number: any digit-leading lexeme including base
// prefixes, digits, suffix letters, dots, and signed exponents.  Refinement
// into an integer or float happens in the conversion pass.
func readPPNumber(s string, i int) int {
	if i >= len(s) || s[i] < '0' || s[i] > '9' {
		return 0
	}
	j := i + 1
	for j < len(s) {
		b := s[j]
		if (b == 'e' || b == 'E' || b == 'p' || b == 'P') &&
			j+1 < len(s) && (s[j+1] == '+' || s[j+1] == '-') {
			j += 2
			continue
		}
		if isIdentContinue(b) || b == '.' {
			j++
			continue
		}
		break
	}
	return j - i
}

var puncts = []string{
	"<<=", ">>=", "...", "==", "!=", "<=", ">=", "->", "+=",
	"-=", "*=", "/=", "++", "--", "%=", "&=", "|=", "^=",
	"&&", "||", "<<", ">>", "##",
}

func readPunct(s string, i int) int {
	rem := s[i:]
	for _, p := range puncts {
		if strings.HasPrefix(rem, p) {
			return len(p)
		}
	}
	b := s[i]
	if (b >= 33 && b <= 47) || (b >= 58 && b <= 64) || (b >= 91 && b <= 96) || (b >= 123 && b <= 126) {
		return 1
	}
	return 0
}

// readStringLiteral consumes a double-quoted literal starting at s[i].
// Returns the raw text, the decoded contents, and the bytes consumed.
func readStringLiteral(s string, i int) (string, string, int) {
	var sb strings.Builder
	j := i + 1
	for j < len(s) && s[j] != '"' {
		if s[j] == '\n' {
			break // unterminated; best effort
		}
		if s[j] == '\\' {
			r, n := decodeEscape(s, j+1)
			sb.WriteRune(r)
			j += 1 + n
			continue
		}
		sb.WriteByte(s[j])
		j++
	}
	if j < len(s) && s[j] == '"' {
		j++
	}
	return s[i:j], sb.String(), j - i
}

// readCharLiteral consumes a single-quoted literal and yields its value.
func readCharLiteral(s string, i int) (string, int64, int) {
	j := i + 1
	var val int64
	if j < len(s) && s[j] == '\\' {
		r, n := decodeEscape(s, j+1)
		val = int64(r)
		j += 1 + n
	} else if j < len(s) {
		val = int64(s[j])
		j++
	}
	for j < len(s) && s[j] != '\'' && s[j] != '\n' {
		j++
	}
	if j < len(s) && s[j] == '\'' {
		j++
	}
	return s[i:j], val, j - i
}

// decodeEscape interprets the escape body starting at s[i] (the byte after
// the backslash).  Returns the decoded rune and bytes consumed.
func decodeEscape(s string, i int) (rune, int) {
	if i >= len(s) {
		return '\\', 0
	}
	c := s[i]

	// Octal: up to three digits.
	if c >= '0' && c <= '7' {
		v := int(c - '0')
		n := 1
		for n < 3 && i+n < len(s) && s[i+n] >= '0' && s[i+n] <= '7' {
			v = v<<3 | int(s[i+n]-'0')
			n++
		}
		return rune(v), n
	}

	// Hex: \x followed by any number of hex digits.
	if c == 'x' {
		v := 0
		n := 1
		for i+n < len(s) && hexDigit(s[i+n]) >= 0 {
			v = v<<4 | hexDigit(s[i+n])
			n++
		}
		return rune(v), n
	}

	switch c {
	case 'n':
		return '\n', 1
	case 'r':
		return '\r', 1
	case 't':
		return '\t', 1
	case 'a':
		return 7, 1
	case 'b':
		return 8, 1
	case 'v':
		return 11, 1
	case 'f':
		return 12, 1
	case 'e':
		return 27, 1
	}
	return rune(c), 1
}

func (f *File) displayOrName() string {
	if f.DisplayName != "" {
		return f.DisplayName
	}
	return f.Name
}
