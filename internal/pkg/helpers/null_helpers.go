package helpers

import "strings"

// NullableString trims s and returns nil for an empty result, so blank form
// fields are stored as NULL.
func NullableString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// StringPtr returns a pointer to s, or nil when s is empty
func StringPtr(s string) *string {
	return NullableString(&s)
}

// DerefString returns the pointed-to value or ""
func DerefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NullableID maps non-positive ids to nil.
func NullableID(id *int64) *int64 {
	if id == nil || *id <= 0 {
		return nil
	}
	return id
}
