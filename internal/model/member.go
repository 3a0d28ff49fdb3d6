package model

import "fmt"

// AlcoholPortion is a member's preferred serving size.
type AlcoholPortion string

const (
	PortionSingle AlcoholPortion = "single"
	PortionDouble AlcoholPortion = "double"
	PortionNone   AlcoholPortion = "none"
)

// ParseAlcoholPortion parses a stored portion; empty means single.
func ParseAlcoholPortion(s string) (AlcoholPortion, error) {
	switch AlcoholPortion(s) {
	case "":
		return PortionSingle, nil
	case PortionSingle, PortionDouble, PortionNone:
		return AlcoholPortion(s), nil
	}
	return "", fmt.Errorf("unknown alcohol portion %q", s)
}

// UnknownAlias is used in transaction IDs when a member has no alias.
const UnknownAlias = "XX"

// Member is one person sharing the pot.
type Member struct {
	ID               int
	Name             string
	Alias            string   // 2-letter code used in transaction IDs
	Bizum            string   // alternate payee name seen in bank descriptions
	FavoriteProducts []string // product ids
	AlcoholPortion   AlcoholPortion
	PINHash          string // bcrypt hash, empty if login is disabled
}

// MatchNames returns the non-empty names a bank description may carry for
// this member.
func (m Member) MatchNames() []string {
	var names []string
	for _, n := range []string{m.Name, m.Bizum} {
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}

// TransactionAlias returns the alias to embed in transaction IDs.
func (m Member) TransactionAlias() string {
	if m.Alias == "" {
		return UnknownAlias
	}
	return m.Alias
}
