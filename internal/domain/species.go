package domain

import (
	"regexp"
	"strings"
)

// recognizedSpecies is the fixed allow-list for table display, matching the
// species the upstream scrapers are trained to extract.
var recognizedSpecies = map[string]struct{}{
	"elk":               {},
	"deer":              {},
	"mule deer":         {},
	"white-tailed deer": {},
	"bear":              {},
	"black bear":        {},
	"moose":             {},
	"mountain lion":     {},
	"bighorn sheep":     {},
	"mountain goat":     {},
	"pronghorn":         {},
	"turkey":            {},
	"duck":              {},
	"goose":             {},
	"other":             {},
}

// parentheticalRe strips qualifiers the scrapers append, e.g.
// "elk (cervus canadensis)" -> "elk".
var parentheticalRe = regexp.MustCompile(`\s*\([^)]*\)`)

// CleanSpeciesName normalizes a raw species string for matching: underscores
// become spaces, parenthetical text is removed, and the result is trimmed
// and lower-cased. "Mountain_Lion (adult)" -> "mountain lion".
func CleanSpeciesName(species string) string {
	s := strings.ReplaceAll(species, "_", " ")
	s = parentheticalRe.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToLower(s)
}

// IsRecognizedSpecies reports whether the species, after cleanup, is in the
// allow-list.
func IsRecognizedSpecies(species string) bool {
	_, ok := recognizedSpecies[CleanSpeciesName(species)]
	return ok
}

// DisplaySpeciesName formats a recognized species for table display in
// title case: "mountain_lion" -> "Mountain Lion".
func DisplaySpeciesName(species string) string {
	cleaned := CleanSpeciesName(species)
	if cleaned == "" {
		return ""
	}

	words := strings.Split(cleaned, " ")
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

// titleWord upper-cases the first letter of each hyphen-separated segment,
// so "white-tailed" becomes "White-Tailed".
func titleWord(w string) string {
	segments := strings.Split(w, "-")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		segments[i] = strings.ToUpper(seg[:1]) + seg[1:]
	}
	return strings.Join(segments, "-")
}
