// Package crossref recognizes ticket numbers in user input and free text.
package crossref

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// numberPattern matches ticket numbers (e.g., TKT-0042, tkt-7).
var numberPattern = regexp.MustCompile(`(?i)\bTKT-(\d+)\b`)

// shortPattern matches the shorthand forms accepted on the command line:
// "42" or "#42".
var shortPattern = regexp.MustCompile(`^#?(\d+)$`)

// Format renders n as a canonical ticket number.
func Format(n int) string {
	return fmt.Sprintf("TKT-%04d", n)
}

// Normalize converts a ticket reference to its canonical number. It
// accepts "TKT-0042", "tkt-42", "#42" and "42". The second result is
// false when ref is not a ticket number, e.g. a raw id.
func Normalize(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if m := shortPattern.FindStringSubmatch(ref); m != nil {
		return fromDigits(m[1])
	}
	if m := numberPattern.FindStringSubmatch(ref); m != nil && len(m[0]) == len(ref) {
		return fromDigits(m[1])
	}
	return "", false
}

func fromDigits(digits string) (string, bool) {
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return "", false
	}
	return Format(n), true
}

// Extract returns the canonical ticket numbers mentioned in text,
// deduplicated, in order of first occurrence.
func Extract(text string) []string {
	matches := numberPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var result []string
	for _, m := range matches {
		number, ok := fromDigits(m[1])
		if !ok || seen[number] {
			continue
		}
		seen[number] = true
		result = append(result, number)
	}
	return result
}

// Related returns the ticket numbers mentioned in text other than self.
func Related(self, text string) []string {
	var out []string
	for _, number := range Extract(text) {
		if !strings.EqualFold(number, self) {
			out = append(out, number)
		}
	}
	return out
}
