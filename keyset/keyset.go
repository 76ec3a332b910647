package keyset

import (
	"sort"
	"strings"
)

// Set is a deduplicated collection of foreign keys stored inside a single
// CSV cell. The serialized form is comma-joined, sorted ascending, with empty
// entries filtered out; an empty set serializes to the empty string, never a
// placeholder token.
type Set struct {
	members map[string]struct{}
}

// Parse splits a delimited cell value into a Set. Entries are trimmed,
// empties dropped, duplicates collapsed.
func Parse(cell string) Set {
	s := Set{members: make(map[string]struct{})}
	for _, part := range strings.Split(cell, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		s.members[part] = struct{}{}
	}
	return s
}

// New builds a Set from individual keys, applying the same trim/drop rules
// as Parse
func New(keys ...string) Set {
	s := Set{members: make(map[string]struct{})}
	s.Add(keys...)
	return s
}

// String serializes the set: sorted ascending, comma-joined
func (s Set) String() string {
	if len(s.members) == 0 {
		return ""
	}
	out := make([]string, 0, len(s.members))
	for k := range s.members {
		out = append(out, k)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

// Add unions keys into the set and returns the number of genuinely new
// members (never negative). Blank keys are ignored.
func (s *Set) Add(keys ...string) int {
	if s.members == nil {
		s.members = make(map[string]struct{})
	}
	before := len(s.members)
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		s.members[k] = struct{}{}
	}
	return len(s.members) - before
}

// Remove subtracts keys from the set and returns the number of members
// actually removed
func (s *Set) Remove(keys ...string) int {
	before := len(s.members)
	for _, k := range keys {
		k = strings.TrimSpace(k)
		delete(s.members, k)
	}
	return before - len(s.members)
}

// Contains reports whether key is a member
func (s Set) Contains(key string) bool {
	_, ok := s.members[key]
	return ok
}

// Len returns the member count
func (s Set) Len() int {
	return len(s.members)
}

// Values returns the members sorted ascending
func (s Set) Values() []string {
	out := make([]string, 0, len(s.members))
	for k := range s.members {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
