package editor

import (
	"strconv"
	"strings"
)

// UniqueName returns base when it is free, otherwise base with its trailing
// number replaced by the lowest free counter: "Code" becomes "Code1", "Code1"
// becomes "Code2".
func UniqueName(base string, taken func(name string) bool) string {
	if !taken(base) {
		return base
	}

	stem := strings.TrimRightFunc(base, func(r rune) bool { return r >= '0' && r <= '9' })
	if stem == "" {
		stem = base
	}

	for i := 1; ; i++ {
		candidate := stem + strconv.Itoa(i)
		if !taken(candidate) {
			return candidate
		}
	}
}
