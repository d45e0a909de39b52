package utils

import "regexp"

const MAX_URL_SAFE_LEN = 256

var urlSafePattern = regexp.MustCompile(`^[a-zA-Z0-9-_]+$`)

// IsURLSafe checks if a string value can be safely used as a part of an URL or
// as a file name component (org and project IDs).
func IsURLSafe(value string) bool {
	if value == "" || len(value) > MAX_URL_SAFE_LEN {
		return false
	}
	return urlSafePattern.MatchString(value)
}
