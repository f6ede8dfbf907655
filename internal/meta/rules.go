package meta

// Applies reports whether a library with the given rules is used on osName.
//
// Rules are walked in order. A rule naming osName decides immediately. Only a
// rule without an os object updates the running default; any other os object,
// including one that constrains just the arch, is skipped. When no rule names
// osName the last default wins, or true when there was none.
func Applies(rules []Rule, osName string) bool {
	if len(rules) == 0 {
		return true
	}

	var (
		fallback    bool
		hasFallback bool
	)
	for _, rule := range rules {
		if rule.OS != nil {
			if rule.OS.Name != "" && rule.OS.Name == osName {
				return rule.Action == Allow
			}
			continue
		}
		fallback = rule.Action == Allow
		hasFallback = true
	}

	if hasFallback {
		return fallback
	}
	return true
}
