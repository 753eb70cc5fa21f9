package util

import "sort"

// MakeTextList creates a grammatically-correct textual listing of the given
// items, such as "a, b, and c" or "a and b", using conj ("and"/"or") as the
// final-item joiner.
func MakeTextList(items []string, conj string) string {
	if len(items) == 0 {
		return ""
	}
	if len(items) == 1 {
		return items[0]
	}
	if len(items) == 2 {
		return items[0] + " " + conj + " " + items[1]
	}

	result := ""
	for i := 0; i < len(items)-1; i++ {
		result += items[i] + ", "
	}
	result += conj + " " + items[len(items)-1]
	return result
}

// OrderedKeys returns the keys of the given map sorted ascending. It is used
// wherever map-iteration order must be made deterministic for display or for
// reproducible table construction (e.g. walking a grammar's rule table in a
// stable order).
func OrderedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ArticleFor returns the English indefinite article ("a" or "an") that
// should precede the given noun, optionally capitalized. It special-cases
// the handful of consonant-sounding vowel-initial words ("user", "one") that
// a naive first-letter check gets wrong, matching the set the parser driver
// actually needs when describing expected-token names.
func ArticleFor(noun string, capital bool) string {
	article := "a"

	if len(noun) > 0 {
		switch noun[0] {
		case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
			article = "an"
		}
	}

	switch {
	case len(noun) >= 4 && (noun[:4] == "uni-" || noun[:4] == "univ" || noun[:4] == "use-" || noun[:4] == "user"):
		article = "a"
	case len(noun) >= 3 && noun[:3] == "one":
		article = "a"
	}

	if capital {
		return string(article[0]-'a'+'A') + article[1:]
	}
	return article
}
