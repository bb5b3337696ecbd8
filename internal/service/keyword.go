package service

import (
	"strings"
	"unicode"

	"distrust-bot/internal/domain"
)

// ParseActionKeyword busca "trust" o "distrust" como palabra completa, sin distinguir
// mayúsculas. Si aparecen las dos, gana la primera del texto.
func ParseActionKeyword(content string) (domain.Action, bool) {
	words := strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		switch domain.Action(w) {
		case domain.ActionTrust:
			return domain.ActionTrust, true
		case domain.ActionDistrust:
			return domain.ActionDistrust, true
		}
	}
	return "", false
}
