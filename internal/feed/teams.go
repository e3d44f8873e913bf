package feed

import "strings"

// Alias maps a source spelling onto the canonical team name.
type Alias struct {
	From string
	To   string
}

// DefaultAliases covers the common long-form Premier League names. Order matters:
// the first alias contained in a name wins.
var DefaultAliases = []Alias{
	{"Tottenham Hotspur", "Spurs"},
	{"Tottenham", "Spurs"},
	{"Manchester United", "Man Utd"},
	{"Man United", "Man Utd"},
	{"Manchester City", "Man City"},
	{"West Ham United", "West Ham"},
	{"Wolverhampton Wanderers", "Wolves"},
	{"Leicester City", "Leicester"},
	{"Brighton and Hove Albion", "Brighton"},
	{"Brighton & Hove Albion", "Brighton"},
	{"Newcastle United", "Newcastle"},
	{"Nottingham Forest", "Nott'm Forest"},
	{"Ipswich Town", "Ipswich"},
	{"Leeds United", "Leeds"},
}

// Normalizer standardises team names so every source agrees on identifiers.
type Normalizer struct {
	aliases []Alias
	exact   map[string]string
}

// NewNormalizer builds a normalizer; nil aliases uses DefaultAliases.
func NewNormalizer(aliases []Alias) *Normalizer {
	if aliases == nil {
		aliases = DefaultAliases
	}
	exact := make(map[string]string, len(aliases))
	for _, a := range aliases {
		exact[strings.ToLower(a.From)] = a.To
	}
	return &Normalizer{aliases: aliases, exact: exact}
}

// Normalize returns the canonical name for raw. Exact alias matches win over substring matches;
// canonical names pass through unchanged.
func (n *Normalizer) Normalize(raw string) string {
	name := strings.Join(strings.Fields(raw), " ")
	if n == nil || name == "" {
		return name
	}
	if to, ok := n.exact[strings.ToLower(name)]; ok {
		return to
	}
	for _, a := range n.aliases {
		if strings.Contains(name, a.From) {
			return a.To
		}
	}
	return name
}
