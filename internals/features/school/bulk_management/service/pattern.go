// file: internals/features/school/bulk_management/service/pattern.go
package service

import (
	"regexp"
	"strings"
)

// TranslatePattern mengubah pola wildcard menjadi regex yang di-anchor:
//   - '*' → '.*' (deretan karakter apa pun)
//   - karakter lain literal (termasuk '.'), di-escape
//   - case-insensitive
//
// Contoh: "CSE.2021*" → (?i)^CSE\.2021.*$
func TranslatePattern(pattern string) (*regexp.Regexp, error) {
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.Compile("(?i)^" + strings.Join(parts, ".*") + "$")
}
