// Package slug turns display strings into URL-safe course identifiers and
// tracks which identifiers a run has already issued or seen.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback is returned for inputs with no ASCII letters or digits.
const Fallback = "untitled"

var (
	separatorRuns    = regexp.MustCompile(`_{2,}`)
	machineGenerated = regexp.MustCompile(`^[a-f0-9]{32}$`)
)

// Slugify reduces s to ASCII letters, digits and single underscores.
// Accented letters fold to their base letter; every other rune becomes a
// separator. The result never starts or ends with an underscore and is
// never empty.
func Slugify(s string) string {
	folded := fold(s)

	var sb strings.Builder
	sb.Grow(len(folded))
	for _, r := range folded {
		if isASCIIAlnum(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}

	out := separatorRuns.ReplaceAllString(sb.String(), "_")
	out = strings.Trim(out, "_")
	if out == "" {
		return Fallback
	}
	return out
}

// IsMachineGenerated reports whether s looks like an authoring-tool
// identifier: exactly 32 lowercase hexadecimal characters.
func IsMachineGenerated(s string) bool {
	return machineGenerated.MatchString(s)
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
