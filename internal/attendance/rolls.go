package attendance

import "strings"

// ResolveRoll maps free-form student input onto an enrolled identity id.
// Students type "roll 07" or just "7" where the enrollment bucket says
// "ROLL07", so matching goes through stages of decreasing strictness:
// normalized exact, digits-only (when unambiguous), prefix in either
// direction (when unambiguous), then the literal input as a last resort.
// ok reports whether an enrolled identity was matched.
func ResolveRoll(input string, enrolled []string) (string, bool) {
	norm := normalizeRoll(input)
	if norm == "" {
		return input, false
	}

	for _, id := range enrolled {
		if normalizeRoll(id) == norm {
			return id, true
		}
	}

	// The digits-only stage is for students who type just their number;
	// alphanumeric input skips it so "21BCE" cannot hijack ROLL21.
	if d := digitsOnly(norm); d != "" && allDigits(norm) {
		if id, ok := uniqueMatch(enrolled, func(id string) bool {
			return digitsOnly(normalizeRoll(id)) == d
		}); ok {
			return id, true
		}
	}

	if id, ok := uniqueMatch(enrolled, func(id string) bool {
		n := normalizeRoll(id)
		return strings.HasPrefix(n, norm) || strings.HasPrefix(norm, n)
	}); ok {
		return id, true
	}

	return input, false
}

// uniqueMatch returns the only enrolled id satisfying pred; ambiguity
// counts as no match.
func uniqueMatch(enrolled []string, pred func(string) bool) (string, bool) {
	found := ""
	for _, id := range enrolled {
		if pred(id) {
			if found != "" {
				return "", false
			}
			found = id
		}
	}
	return found, found != ""
}

// normalizeRoll uppercases and strips everything but letters and digits.
func normalizeRoll(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	// Trim leading zeros so "07" and "7" agree; an all-zero roll
	// collapses to "0" rather than vanishing.
	d := strings.TrimLeft(b.String(), "0")
	if d == "" && b.Len() > 0 {
		return "0"
	}
	return d
}
