package util

import "regexp"

var uuidRegex = regexp.MustCompile(`^[a-fA-F0-9]{8}-[a-fA-F0-9]{4}-[a-fA-F0-9]{4}-[a-fA-F0-9]{4}-[a-fA-F0-9]{12}$`)

// IsValidUUID reports whether s has the canonical 8-4-4-4-12 form.
func IsValidUUID(s string) bool {
	return uuidRegex.MatchString(s)
}

const abbreviatedUUIDPrefixLength = 8

// AbbreviateUUID shortens a UUID cell to its first block. Other values are
// returned unchanged.
func AbbreviateUUID(id string) string {
	if !IsValidUUID(id) {
		return id
	}
	return id[:abbreviatedUUIDPrefixLength] + "…"
}
