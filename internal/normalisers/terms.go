package normalisers

import "regexp"

// geishaVariants collapses the many spellings of the geisha varietal so
// that retrieval treats them as one term.
var geishaVariants = regexp.MustCompile(`(?i)藝妓咖啡|Geisha咖啡|藝妓|藝伎|瑰夏|藝技|藝姬|Geisha`)

// CanonicalTerm is the canonical spelling variants collapse to.
const CanonicalTerm = "藝妓"

// CanonicalizeTerms rewrites known domain term variants to their
// canonical spelling.
func CanonicalizeTerms(s string) string {
	if s == "" {
		return ""
	}
	return geishaVariants.ReplaceAllString(s, CanonicalTerm)
}
