package domain

import "strings"

// DedupeTextPrefixLen is how many characters of the trimmed free text
// participate in the dedupe key. Keying on a prefix tolerates transcription
// differences deep in long posts; the exact cutoff is policy, not a
// correctness requirement, and is kept here as a single tunable.
const DedupeTextPrefixLen = 100

// DedupeKey derives the grouping key for a sighting: two records with equal
// keys are considered the same real-world report. Pure function of record
// content.
func DedupeKey(s Sighting) string {
	parts := []string{
		strings.ToLower(strings.TrimSpace(s.Species)),
		s.SightingDate,
		strings.ToLower(strings.TrimSpace(s.SourceType)),
		textPrefix(s.RawText),
		strings.TrimSpace(s.LocationName),
	}
	return strings.Join(parts, "|")
}

// textPrefix returns the first DedupeTextPrefixLen characters of the text,
// trimmed. The cut is taken before trimming to mirror how the scrapers
// truncate, then surrounding whitespace is dropped.
func textPrefix(text string) string {
	runes := []rune(text)
	if len(runes) > DedupeTextPrefixLen {
		runes = runes[:DedupeTextPrefixLen]
	}
	return strings.TrimSpace(string(runes))
}

// Deduplicate collapses near-identical reports of the same sighting into one
// representative each. Output order follows the first appearance of each
// group's key in the input, so overall relative order is preserved. The
// result is deterministic for any input ordering of ties.
func Deduplicate(records []Sighting) []Sighting {
	if len(records) == 0 {
		return []Sighting{}
	}

	groups := make(map[string][]Sighting)
	keyOrder := make([]string, 0, len(records))

	for _, rec := range records {
		key := DedupeKey(rec)
		if _, seen := groups[key]; !seen {
			keyOrder = append(keyOrder, key)
		}
		groups[key] = append(groups[key], rec)
	}

	out := make([]Sighting, 0, len(keyOrder))
	for _, key := range keyOrder {
		out = append(out, selectRepresentative(groups[key]))
	}
	return out
}

// selectRepresentative folds a duplicate group left to right, preferring a
// resolved point over none, then a GMU over none, then the earlier record.
// The strict left fold keeps ties stable regardless of group internals.
func selectRepresentative(group []Sighting) Sighting {
	best := group[0]
	for _, candidate := range group[1:] {
		best = preferSighting(best, candidate)
	}
	return best
}

func preferSighting(prev, current Sighting) Sighting {
	prevHasPoint := prev.Point != nil
	currentHasPoint := current.Point != nil
	if currentHasPoint && !prevHasPoint {
		return current
	}
	if prevHasPoint && !currentHasPoint {
		return prev
	}

	if current.GMUUnit != nil && prev.GMUUnit == nil {
		return current
	}

	// Keep the first-encountered record.
	return prev
}

// DuplicateStats summarizes how much a batch collapsed under deduplication.
type DuplicateStats struct {
	Total           int
	Unique          int
	Duplicates      int
	DuplicateGroups int
}

// GetDuplicateStats counts duplicate groups and surplus copies without
// selecting representatives. Used for diagnostics and metrics.
func GetDuplicateStats(records []Sighting) DuplicateStats {
	counts := make(map[string]int)
	for _, rec := range records {
		counts[DedupeKey(rec)]++
	}

	stats := DuplicateStats{Total: len(records)}
	for _, n := range counts {
		if n > 1 {
			stats.DuplicateGroups++
			stats.Duplicates += n - 1
		}
	}
	stats.Unique = stats.Total - stats.Duplicates
	return stats
}
