package schema

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Prepare runs s through mr's RFC 4518 prep pipeline: Transcode → Map →
// Normalize → Prohibit → Insignificant. The stored value and the
// assertion value both pass through the same pipeline before a matching
// rule's Match/Order compares them.
func Prepare(mr MatchingRule, s string) (string, error) {
	for _, step := range mr.Prep {
		var err error
		s, err = step(s)
		if err != nil {
			return "", err
		}
	}
	return s, nil
}

// stepTranscode is a no-op here: Go strings are already UTF-8, and the
// wire octets LDAP carries for string syntaxes are UTF-8 per RFC 4517.
func stepTranscode(s string) (string, error) { return s, nil }

// stepCaseFoldMap implements RFC 4518's Map step for case-insensitive
// matching rules: case folding plus mapping of control characters to
// nothing and non-breaking space to space.
var caseFolder = cases.Fold()

func stepCaseFoldMap(s string) (string, error) {
	s = caseFolder.String(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == ' ':
			b.WriteRune(' ')
		case unicode.IsControl(r):
			// mapped to nothing
		default:
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// stepMapOnly applies the control-character/NBSP mapping without case
// folding, for case-sensitive matching rules that still need it.
func stepMapOnly(s string) (string, error) {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == ' ':
			b.WriteRune(' ')
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// stepNormalizeNFKC implements the Normalize step: Unicode NFKC.
func stepNormalizeNFKC(s string) (string, error) {
	return norm.NFKC.String(s), nil
}

// stepProhibit rejects code points RFC 4518 section 2.6 prohibits
// outright. The only code point checked here is the replacement
// character U+FFFD; C0/C1 control characters are not checked, since
// every pipeline that runs this step removes them in its Map step.
func stepProhibit(s string) (string, error) {
	for _, r := range s {
		if r == '�' {
			return "", &InvalidCodePointError{Rune: r}
		}
	}
	return s, nil
}

// stepInsignificantSpaces implements the Insignificant Character
// Handling step for the "space" rule: leading/trailing space trimmed,
// interior runs of whitespace collapsed to one space.
func stepInsignificantSpaces(s string) (string, error) {
	fields := strings.Fields(s)
	return strings.Join(fields, " "), nil
}

// stepInsignificantNumeric collapses all spaces for numeric-string
// syntaxes, where whitespace carries no meaning at all.
func stepInsignificantNumeric(s string) (string, error) {
	return strings.Join(strings.Fields(s), ""), nil
}

// InvalidCodePointError reports a value prohibited by RFC 4518 2.6.
type InvalidCodePointError struct{ Rune rune }

func (e *InvalidCodePointError) Error() string {
	return "schema: prohibited code point in value"
}

// CaseIgnorePipeline is the prep pipeline for caseIgnore* rules.
var CaseIgnorePipeline = []PrepStep{stepTranscode, stepCaseFoldMap, stepNormalizeNFKC, stepProhibit, stepInsignificantSpaces}

// CaseExactPipeline is the prep pipeline for caseExact* rules.
var CaseExactPipeline = []PrepStep{stepTranscode, stepMapOnly, stepNormalizeNFKC, stepProhibit, stepInsignificantSpaces}

// NumericStringPipeline is the prep pipeline for numericString* rules.
var NumericStringPipeline = []PrepStep{stepTranscode, stepMapOnly, stepNormalizeNFKC, stepProhibit, stepInsignificantNumeric}

// OctetStringPipeline does no character-level preparation at all.
var OctetStringPipeline = []PrepStep{stepTranscode}
