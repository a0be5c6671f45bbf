package core

import (
	"strings"

	"github.com/google/uuid"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// NewID returns a random identifier with the given prefix, e.g. NewID("c") for comments.
func NewID(prefix string) string {
	return prefix + uuid.New().String()
}

// ContainsString reports whether s is in list.
func ContainsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// ToggleString removes s from list when present and appends it otherwise.
// the returned slice never aliases list and never contains s twice.
func ToggleString(list []string, s string) (res []string, added bool) {
	res = make([]string, 0, len(list)+1)
	for _, item := range list {
		if item == s {
			continue
		}
		res = append(res, item)
	}
	if len(res) == len(list) {
		res = append(res, s)
		return res, true
	}
	return res, false
}
