package textnorm

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// wordRegexp matches word runs the way the catalog tokenizer always
// has: letters, digits and underscore, unicode-aware.
var wordRegexp = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// stopWords are high-frequency Spanish function words that carry no
// search signal in product descriptions.
var stopWords = map[string]struct{}{
	"de": {}, "la": {}, "el": {}, "en": {}, "con": {},
	"para": {}, "por": {}, "un": {}, "una": {}, "y": {},
	"o": {}, "del": {}, "las": {}, "los": {},
}

// ExtractKeywords tokenizes a product description into search keywords.
// The description is normalized first, then split into word runs; stop
// words and tokens shorter than three runes are dropped. Each surviving
// token is paired with its naive singular/plural variant so "tornillo"
// and "tornillos" both hit, and the union is returned sorted and
// deduplicated. The result is never nil: a description with no
// surviving tokens yields an empty set that marshals as an empty
// array, not null.
func ExtractKeywords(description string) []string {
	words := wordRegexp.FindAllString(Normalize(description), -1)

	seen := make(map[string]struct{}, len(words)*2)
	for _, w := range words {
		if utf8.RuneCountInString(w) <= 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		seen[w] = struct{}{}
		if strings.HasSuffix(w, "s") && utf8.RuneCountInString(w) > 3 {
			seen[w[:len(w)-1]] = struct{}{}
		} else {
			seen[w+"s"] = struct{}{}
		}
	}

	keywords := make([]string, 0, len(seen))
	for w := range seen {
		keywords = append(keywords, w)
	}
	sort.Strings(keywords)
	return keywords
}
