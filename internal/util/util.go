// Package util provides small helpers shared across packages.
package util

import "strings"

// HasPrefixes returns true if the string s has any given prefix.
func HasPrefixes(src string, prefixes ...string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(src, prefix) {
			return true
		}
	}
	return false
}
