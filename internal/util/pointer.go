package util

// BoolValueOr returns the dereferenced bool or the provided fallback when the pointer is nil.
func BoolValueOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
