package matching

import (
	"fmt"
	"strings"

	"jobmatch/internal/keyword"
)

const (
	DefaultMinScore          = 2
	DefaultNotesKeywordLimit = 5
)

// Profile is what a claimant brings to a match: the union of CV keywords and
// explicit search keywords, plus an optional location filter.
type Profile struct {
	Keywords       keyword.Set
	TargetLocation string
}

type Result struct {
	Score           int
	CommonKeywords  []string
	LocationApplied bool
}

// LocationAllows reports whether a job at jobLocation passes the profile's
// location filter. An empty target allows every job; an empty job location
// never satisfies a non-empty target.
func (p Profile) LocationAllows(jobLocation string) bool {
	target := strings.TrimSpace(p.TargetLocation)
	if target == "" {
		return true
	}
	return strings.Contains(strings.ToLower(jobLocation), strings.ToLower(target))
}

// Calculate scores job keywords against the profile. The score is the number
// of shared keywords; CommonKeywords is sorted.
func Calculate(p Profile, jobKeywords keyword.Set) Result {
	common := p.Keywords.Intersect(jobKeywords)
	return Result{
		Score:           len(common),
		CommonKeywords:  common.Sorted(),
		LocationApplied: strings.TrimSpace(p.TargetLocation) != "",
	}
}

// Notes renders the advisor note stored with a match.
func Notes(r Result, keywordLimit int, targetLocation string) string {
	shown := r.CommonKeywords
	if keywordLimit > 0 && len(shown) > keywordLimit {
		shown = shown[:keywordLimit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Automatic match. Score: %d. Common keywords: %s...", r.Score, strings.Join(shown, ", "))
	if r.LocationApplied {
		fmt.Fprintf(&b, " Location matched: '%s'.", strings.TrimSpace(targetLocation))
	}
	return b.String()
}
