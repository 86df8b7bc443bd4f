// utils/names.go - Tester name list handling
package utils

import "strings"

// SplitNames breaks a comma-separated tester list into trimmed names,
// dropping empty entries.
func SplitNames(list string) []string {
	parts := strings.Split(list, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			names = append(names, p)
		}
	}
	return names
}

// NameListContains reports whether name appears in the comma-separated list,
// trimmed and case-insensitive.
func NameListContains(list, name string) bool {
	name = strings.TrimSpace(name)
	for _, n := range SplitNames(list) {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// SameName compares two employee names trimmed and case-insensitively.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
