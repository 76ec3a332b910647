package keyset

import "testing"

func TestParseAndSerialize(t *testing.T) {
	s := Parse("E2, E1,,E3 ,E1")
	if s.Len() != 3 {
		t.Fatalf("Expected 3 members, got %d", s.Len())
	}
	if got := s.String(); got != "E1,E2,E3" {
		t.Errorf("Expected sorted unique serialization, got %q", got)
	}
}

func TestParseEmptyCell(t *testing.T) {
	s := Parse("")
	if s.Len() != 0 {
		t.Errorf("Empty cell should parse to empty set, got %d members", s.Len())
	}
	if s.String() != "" {
		t.Errorf("Empty set should serialize to empty string, got %q", s.String())
	}
}

func TestAddReturnsNewCount(t *testing.T) {
	s := Parse("E1,E2")

	added := s.Add("E2", "E3", "E4")
	if added != 2 {
		t.Errorf("Expected 2 new members, got %d", added)
	}

	// Second identical add is a no-op
	added = s.Add("E2", "E3", "E4")
	if added != 0 {
		t.Errorf("Expected 0 new members on repeat, got %d", added)
	}

	if got := s.String(); got != "E1,E2,E3,E4" {
		t.Errorf("Unexpected serialization: %q", got)
	}
}

func TestAddIgnoresBlanks(t *testing.T) {
	s := New()
	if added := s.Add("", "  ", "E1"); added != 1 {
		t.Errorf("Expected blanks ignored, got %d additions", added)
	}
}

func TestRemoveReturnsRemovedCount(t *testing.T) {
	s := Parse("E1,E2,E3")

	removed := s.Remove("E2", "E9")
	if removed != 1 {
		t.Errorf("Expected 1 removal, got %d", removed)
	}
	if got := s.String(); got != "E1,E3" {
		t.Errorf("Unexpected serialization after removal: %q", got)
	}

	// Removing the same key again has no effect
	if removed := s.Remove("E2"); removed != 0 {
		t.Errorf("Expected 0 removals on repeat, got %d", removed)
	}
}

func TestContains(t *testing.T) {
	s := Parse("E1,E2")
	if !s.Contains("E1") {
		t.Error("Expected E1 to be a member")
	}
	if s.Contains("E9") {
		t.Error("Did not expect E9 to be a member")
	}
}

func TestRoundTrip(t *testing.T) {
	original := "A1,B2,C3"
	if got := Parse(original).String(); got != original {
		t.Errorf("Round trip changed value: %q -> %q", original, got)
	}
}
