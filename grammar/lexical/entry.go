package lexical

import (
	"fmt"
)

// LexEntry declares a lexical kind. A kind with Ignore set is matched but never emitted as a token.
type LexEntry struct {
	Kind    string
	Pattern string
	Ignore  bool
}

// LexSpec lists lexical kinds in declaration order. An earlier entry wins when two entries match
// the same string.
type LexSpec struct {
	Entries []*LexEntry
}

func (s *LexSpec) Validate() error {
	if len(s.Entries) <= 0 {
		return fmt.Errorf("the lexical specification must have at least one entry")
	}
	ks := map[string]struct{}{}
	for i, e := range s.Entries {
		if e.Kind == "" {
			return fmt.Errorf("entry #%v has no kind name", i+1)
		}
		if _, exist := ks[e.Kind]; exist {
			return fmt.Errorf("kinds `%v` are duplicates", e.Kind)
		}
		ks[e.Kind] = struct{}{}
	}
	return nil
}
