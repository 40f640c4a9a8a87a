// Package extract pulls BDNS announcement codes out of free-form model output.
package extract

import "regexp"

// A code is a run of at least five digits, optionally preceded by the
// literal "BDNS" marker and separators, e.g. "BDNS: 123456" or "123456".
var codePattern = regexp.MustCompile(`(?i)(?:BDNS)?[:\s]*([0-9]{5,})`)

// Codes returns every BDNS code mentioned in text, digits only, in order
// of first occurrence. Repeated mentions collapse to one entry.
func Codes(text string) []string {
	matches := codePattern.FindAllStringSubmatch(text, -1)

	codes := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		code := m[1]
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes
}
