package domain

import (
	"regexp"
	"strings"
)

// codePattern accepts a single additive code with optional INS/E marker and suffix,
// e.g. "211", "INS 0211", "E150a", "150(a)", "471 (i)"
var codePattern = regexp.MustCompile(`(?i)^(?:(?:INS|E)[\s\p{Pd}\p{Zs}.:]{0,2})?(\d{1,5})\s*(?:\.?([a-z])|\(\s*([a-z]|[ivx]{1,4})\s*\))?$`)

// NormalizeCode converts a code as written by a person into the canonical lookup form:
// marker stripped, leading zeros removed and suffix lowercased ("INS 0150(A)" -> "150a").
func NormalizeCode(s string) (string, bool) {
	m := codePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}

	suffix := m[2]
	if suffix == "" {
		suffix = m[3]
	}

	return CanonicalCode(m[1], suffix)
}

// CanonicalCode joins a numeric core and an optional suffix into a normalized code
func CanonicalCode(digits, suffix string) (string, bool) {
	core := strings.TrimLeft(digits, "0")
	if core == "" || len(core) > 4 {
		return "", false
	}
	return core + strings.ToLower(suffix), true
}

// CodeCore returns the numeric part of a normalized code ("150a" -> "150")
func CodeCore(code string) string {
	end := 0
	for end < len(code) && code[end] >= '0' && code[end] <= '9' {
		end++
	}
	return code[:end]
}
