package market

import "strings"

// DefaultNegationPhrases flag French listings for land that is not serviced yet.
var DefaultNegationPhrases = []string{
	"non viabilisé",
	"pas viabilisé",
	"à viabiliser",
	"viabilisation à prévoir",
	"viabilisation est à prévoir",
	"pas encore viabilisé",
	"reste à viabiliser",
	"viabilisation du terrain est à prévoir",
	"viabilisation du terrain à prévoir",
}

// NegationFilter matches listing descriptions against lowercase phrases.
type NegationFilter struct {
	phrases []string
}

func NewNegationFilter(phrases []string) *NegationFilter {
	lowered := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			lowered = append(lowered, p)
		}
	}
	return &NegationFilter{phrases: lowered}
}

// Excludes reports whether the description says the parcel is not serviced.
func (f *NegationFilter) Excludes(description string) bool {
	desc := strings.ToLower(description)
	for _, p := range f.phrases {
		if strings.Contains(desc, p) {
			return true
		}
	}
	return false
}
