// Package pathway resolves a negotiation pathway identifier to the
// interview mode the party receives.
package pathway

import (
	"strings"

	"contractpilot/internal/model"
)

// Recognised identifier prefixes. Identifiers are compared lower-cased
// with underscores and spaces treated as hyphens.
var (
	tenderingPrefixes    = []string{"tendering", "tender-", "competitive-tender", "rfp-"}
	relationshipPrefixes = []string{"relationship", "relationship-management", "rm-"}
)

// ResolveMode maps a pathway identifier to a mode. It is total: an empty
// or unrecognised identifier yields model.ModeFull.
func ResolveMode(pathwayID string) model.Mode {
	id := canonical(pathwayID)
	if id == "" {
		return model.ModeFull
	}
	if hasAnyPrefix(id, tenderingPrefixes) {
		return model.ModeFastTrack
	}
	if hasAnyPrefix(id, relationshipPrefixes) {
		return model.ModeAbbreviated
	}
	return model.ModeFull
}

func canonical(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	return strings.NewReplacer("_", "-", " ", "-").Replace(id)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
