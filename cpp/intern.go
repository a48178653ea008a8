package cpp

import "sync"

// The intern pool deduplicates identifier text and string-literal contents.
// Interned handles for equal strings are pointer-equal, which makes name
// comparison a pointer compare for callers that keep the handle.

var (
	internMu  sync.Mutex
	internMap Map[*string]
)

// Intern returns the canonical shared handle for s.
func Intern(s string) *string {
	internMu.Lock()
	defer internMu.Unlock()
	if h, ok := internMap.Get(s); ok {
		return h
	}
	owned := s
	internMap.Put(owned, &owned)
	return &owned
}
