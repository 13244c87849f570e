package chain

import (
	"strings"
	"unicode"

	"github.com/davidbz/porco/internal/domain"
)

// ResolveLocale returns the explicit locale when valid, otherwise detects
// the locale from the query text: any CJK ideograph yields zh, else en.
func ResolveLocale(explicit, query string) string {
	switch explicit {
	case domain.LocaleEN, domain.LocaleZH:
		return explicit
	}

	for _, r := range query {
		if unicode.Is(unicode.Han, r) {
			return domain.LocaleZH
		}
	}

	return domain.LocaleEN
}

// normalizeQuery canonicalizes a query for cache keying.
func normalizeQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}
