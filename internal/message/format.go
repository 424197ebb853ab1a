package message

import "strings"

// Format composes "[TICKET:]TYPE: message". Empty ticket and type leave message untouched.
func Format(ticket, commitType, message string) string {
	var parts []string
	for _, p := range []string{ticket, commitType} {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			parts = append(parts, p)
		}
	}

	if len(parts) == 0 {
		return message
	}
	return strings.Join(parts, ":") + ": " + message
}
