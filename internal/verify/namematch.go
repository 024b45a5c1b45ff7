package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"veridoc/internal/extract"
	"veridoc/internal/port"
)

// NormalizeNameTokens decomposes a name with Unicode NFKD, drops the
// combining marks the decomposition splits off (so "García" keeps one token),
// lowercases it, replaces anything outside a–z with spaces, and splits into
// tokens.
func NormalizeNameTokens(name string) []string {
	decomposed := strings.ToLower(norm.NFKD.String(name))
	cleaned := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return ' '
	}, decomposed)
	return strings.Fields(cleaned)
}

func tokenSet(name string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range NormalizeNameTokens(name) {
		set[t] = true
	}
	return set
}

// NameMatcher decides whether two extracted names refer to the same person.
type NameMatcher interface {
	Match(ctx context.Context, a, b string) bool
}

// ExactTokenSetMatcher matches names whose normalized token sets are
// non-empty and equal; token order and duplicates are irrelevant.
type ExactTokenSetMatcher struct{}

func (ExactTokenSetMatcher) Match(_ context.Context, a, b string) bool {
	sa, sb := tokenSet(a), tokenSet(b)
	if len(sa) == 0 || len(sb) == 0 || len(sa) != len(sb) {
		return false
	}
	for t := range sa {
		if !sb[t] {
			return false
		}
	}
	return true
}

// ModelAssistedMatcher escalates to a text-only model call when the exact
// token-set comparison fails, to tolerate OCR noise and token reordering.
// Any gateway or parse failure keeps the rule-based result.
type ModelAssistedMatcher struct {
	gateway port.ModelGateway
	exact   ExactTokenSetMatcher
}

// NewModelAssistedMatcher creates a ModelAssistedMatcher over a gateway.
func NewModelAssistedMatcher(gw port.ModelGateway) *ModelAssistedMatcher {
	return &ModelAssistedMatcher{gateway: gw}
}

func (m *ModelAssistedMatcher) Match(ctx context.Context, a, b string) bool {
	if m.exact.Match(ctx, a, b) {
		return true
	}

	prompt := fmt.Sprintf(
		"You are verifying if two ID records refer to the same person based ONLY on name.\n"+
			"Return ONLY JSON: {\"same_person\": true|false}.\n\n"+
			"Passport name: %s\nLicense name: %s\n"+
			"Consider minor OCR differences, diacritics, and order of tokens equivalent.",
		a, b,
	)

	text, err := m.gateway.InferText(ctx, prompt)
	if err != nil {
		log.Printf("verify.ModelAssistedMatcher: gateway call failed, keeping rule-based result: %v", err)
		return false
	}

	obj, err := extract.ParseObject(text)
	if err != nil {
		log.Printf("verify.ModelAssistedMatcher: %v", err)
		return false
	}

	raw, err := json.Marshal(obj)
	if err != nil {
		return false
	}
	var verdict struct {
		SamePerson *bool `json:"same_person"`
	}
	if err := json.Unmarshal(raw, &verdict); err != nil || verdict.SamePerson == nil {
		return false
	}
	return *verdict.SamePerson
}
