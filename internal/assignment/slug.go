package assignment

import "strings"

// CategorySlug derives a URL-safe slug from a category name, e.g.
// "Women's Wear" -> "womens-wear". Apostrophes are dropped, any run of other
// non-alphanumeric characters collapses to a single hyphen, and leading or
// trailing hyphens are trimmed.
func CategorySlug(category string) string {
	s := strings.ToLower(category)
	s = strings.ReplaceAll(s, "'", "")

	var b strings.Builder
	lastHyphen := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
