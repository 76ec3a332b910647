package resolver

import (
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"tracker/schema"
	"tracker/store"
)

// Resolution is the outcome of validating a batch of free-form identifiers
// against the employee table.
//
// Keys always contains every distinct token seen, resolved to a StandardID
// where an email lookup succeeded. Unresolved flags the subset that matched
// no employee record; those tokens are still processed downstream (the system
// allows participation records for people not yet in the employee table) but
// every occurrence is logged for later reconciliation.
type Resolution struct {
	Keys       []string
	Unresolved []string
}

// Resolver validates identifier batches against the employee table
type Resolver struct {
	log *zap.Logger
}

// New creates a Resolver
func New(log *zap.Logger) *Resolver {
	return &Resolver{log: log}
}

// Resolve splits raw input on newlines and commas, trims whitespace, drops
// empties, and resolves each token against the employee table. Tokens
// containing '@' are looked up by email; all other tokens are treated as
// candidate StandardIDs. Both output lists are deduplicated preserving
// first-seen order.
func (r *Resolver) Resolve(raw string, employees *store.Table) Resolution {
	emailToID := make(map[string]string, len(employees.Rows))
	idSet := make(map[string]struct{}, len(employees.Rows))
	for _, row := range employees.Rows {
		if email := row[schema.ColEmail]; email != "" {
			key := normalizeIdentifier(email)
			if _, exists := emailToID[key]; !exists {
				emailToID[key] = row[schema.ColStandardID]
			}
		}
		if id := row[schema.ColStandardID]; id != "" {
			idSet[id] = struct{}{}
		}
	}

	var res Resolution
	seenKeys := make(map[string]struct{})
	seenUnresolved := make(map[string]struct{})

	emit := func(key string) {
		if _, dup := seenKeys[key]; dup {
			return
		}
		seenKeys[key] = struct{}{}
		res.Keys = append(res.Keys, key)
	}
	flag := func(token string) {
		if _, dup := seenUnresolved[token]; dup {
			return
		}
		seenUnresolved[token] = struct{}{}
		res.Unresolved = append(res.Unresolved, token)
	}

	for _, token := range splitTokens(raw) {
		if strings.Contains(token, "@") {
			if id, ok := emailToID[normalizeIdentifier(token)]; ok {
				emit(id)
				continue
			}
			// Unknown email: process the raw token as a first-class key
			emit(token)
			flag(token)
			r.log.Warn("unresolved email", zap.String("identifier", token))
			continue
		}

		emit(token)
		if _, known := idSet[token]; !known {
			flag(token)
			r.log.Warn("unresolved identifier", zap.String("identifier", token))
		}
	}

	return res
}

// splitTokens breaks raw input on newlines and commas, trimming whitespace
// and dropping empties
func splitTokens(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// normalizeIdentifier lowercases and strips diacritics so that pasted email
// addresses match the employee table regardless of casing or accent marks
func normalizeIdentifier(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}
