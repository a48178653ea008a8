package cpp

import (
	"os"
	"path/filepath"
	"strings"
)

// IncludeResolver enumerates candidate filesystem paths for an include name
// in a fixed search order: the including file's directory, the repo-local
// include directory, then the system directories.  Only paths that exist are
// returned, canonicalized.
type IncludeResolver struct {
	// LocalDir is the repository-local header directory.
	LocalDir string
	// SystemDirs are searched last, in order.
	SystemDirs []string
}

func NewIncludeResolver() *IncludeResolver {
	return &IncludeResolver{
		LocalDir:   "include",
		SystemDirs: []string{"/usr/include", "/usr/local/include"},
	}
}

func canonical(path string) (string, bool) {
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, true
	}
	return abs, true
}

// Candidates returns all existing candidate paths for name.  includingFile
// is the path of the file containing the directive ("" if unknown); its
// directory leads the search for quoted includes and is skipped for angle
// includes.
func (r *IncludeResolver) Candidates(name, includingFile string, angled bool) []string {
	var out []string
	if !angled && includingFile != "" {
		if c, ok := canonical(filepath.Join(filepath.Dir(includingFile), name)); ok {
			out = append(out, c)
		}
	}
	if c, ok := canonical(filepath.Join(r.LocalDir, name)); ok {
		out = append(out, c)
	}
	for _, dir := range r.SystemDirs {
		if c, ok := canonical(filepath.Join(dir, name)); ok {
			out = append(out, c)
		}
	}
	return out
}

// Resolve returns the first candidate for name, or "" if none exists.
func (r *IncludeResolver) Resolve(name, includingFile string, angled bool) string {
	if cs := r.Candidates(name, includingFile, angled); len(cs) > 0 {
		return cs[0]
	}
	return ""
}

// ResolveNext implements #include_next: the candidate immediately after the
// one whose canonical path equals the including file.  If the including file
// is not in the list, the first candidate is returned.
func (r *IncludeResolver) ResolveNext(name, includingFile string) string {
	cands := r.Candidates(name, "", false)
	if len(cands) == 0 {
		return ""
	}
	inc, ok := canonical(includingFile)
	if !ok {
		return cands[0]
	}
	for i, c := range cands {
		if c == inc {
			if i+1 < len(cands) {
				return cands[i+1]
			}
			return ""
		}
	}
	return cands[0]
}

// handleInclude processes one #include / #include_next directive.  cur is
// the "#" token; next is the first token after the directive line.  On
// success the included file's tokens are spliced before next and the walk
// resumes at the splice head so nested directives are processed.  Any
// failure degrades to a no-op.
func (p *Preprocessor) handleInclude(cur, next *Token, isNext bool) *Token {
	name, angled, ok := p.readIncludeFilename(cur)
	if !ok {
		return next
	}

	includingFile := ""
	if cur.File != nil {
		includingFile = cur.File.Name
	}

	var path string
	if isNext {
		path = p.resolver.ResolveNext(name, includingFile)
	} else {
		path = p.resolver.Resolve(name, includingFile, angled)
	}
	if path == "" {
		// Last resort: the raw name relative to the working directory.
		if c, ok := canonical(name); ok {
			path = c
		} else {
			return next
		}
	}

	return p.includeFile(path, next)
}

// includeFile tokenizes path and splices its tokens before rest, honoring
// #pragma once and detected include guards.
func (p *Preprocessor) includeFile(path string, rest *Token) *Token {
	if p.pragmaOnceSeen(path) {
		return rest
	}
	if guard, ok := p.includeGuard(path); ok && p.LookupMacro(guard) != nil {
		return rest
	}

	toks := TokenizeFile(path)
	if toks == nil {
		return rest
	}
	if guard, ok := detectIncludeGuard(toks); ok {
		p.recordIncludeGuard(path, guard)
	}
	if hasPragmaOnce(toks) {
		p.markPragmaOnce(path)
	}

	spliced := cloneList(toks)
	if spliced.Kind == TokenEOF {
		return rest
	}
	t := spliced
	for t.Next.Kind != TokenEOF {
		t = t.Next
	}
	t.Next = rest
	return spliced
}

// readIncludeFilename extracts the include argument from the directive line.
// The line is retokenized and macro-expanded first, so computed includes
// work.  A string token yields its contents; a <...> sequence yields the
// concatenated text between the brackets.
func (p *Preprocessor) readIncludeFilename(cur *Token) (string, bool, bool) {
	line, _ := collectLine(cur)
	expanded := p.Expand(TokenizeString(line))

	for t := expanded; t != nil && t.Kind != TokenEOF; t = t.Next {
		if t.Kind != TokenIdent || (t.Loc != "include" && t.Loc != "include_next") {
			continue
		}
		ft := t.Next
		if ft == nil {
			break
		}
		if ft.Kind == TokenStr {
			return strings.Trim(ft.Loc, "\""), false, true
		}
		if ft.isPunct("<") {
			var sb strings.Builder
			for q := ft.Next; q != nil && q.Kind != TokenEOF && !q.isPunct(">"); q = q.Next {
				sb.WriteString(q.Loc)
			}
			return sb.String(), true, true
		}
	}
	return "", false, false
}
