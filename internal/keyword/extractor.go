package keyword

import (
	"sort"
	"strings"
	"unicode"
)

const DefaultMinLength = 3

// Set is an unordered collection of keywords.
type Set map[string]struct{}

func (s Set) Has(w string) bool {
	_, ok := s[w]
	return ok
}

// Union returns a new set holding the keywords of both sets.
func (s Set) Union(o Set) Set {
	out := make(Set, len(s)+len(o))
	for w := range s {
		out[w] = struct{}{}
	}
	for w := range o {
		out[w] = struct{}{}
	}
	return out
}

// Intersect returns the keywords present in both sets.
func (s Set) Intersect(o Set) Set {
	small, large := s, o
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(Set)
	for w := range small {
		if large.Has(w) {
			out[w] = struct{}{}
		}
	}
	return out
}

// Sorted returns the keywords in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

type Options struct {
	// MinLength drops shorter tokens. Zero means DefaultMinLength.
	MinLength int
	// StopWords replaces the built-in list when non-nil.
	StopWords []string
	// ExtraStopWords are added on top of the active list.
	ExtraStopWords []string
}

// Extractor turns free text into a keyword set. It is immutable after
// construction and safe for concurrent use.
type Extractor struct {
	minLength int
	stop      map[string]struct{}
}

func NewExtractor(opts Options) *Extractor {
	minLen := opts.MinLength
	if minLen <= 0 {
		minLen = DefaultMinLength
	}
	words := opts.StopWords
	if words == nil {
		words = defaultStopWords
	}
	stop := make(map[string]struct{}, len(words)+len(opts.ExtraStopWords))
	for _, w := range words {
		stop[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	for _, w := range opts.ExtraStopWords {
		stop[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return &Extractor{minLength: minLen, stop: stop}
}

var defaultExtractor = NewExtractor(Options{})

// Extract uses the default options.
func Extract(text string) Set {
	return defaultExtractor.Extract(text)
}

// Extract lowercases text, turns punctuation into spaces, splits on
// whitespace and drops short tokens and stop words.
func (e *Extractor) Extract(text string) Set {
	out := make(Set)
	if text == "" {
		return out
	}
	fields := strings.FieldsFunc(strings.ToLower(text), isSeparator)
	for _, w := range fields {
		if len([]rune(w)) < e.minLength {
			continue
		}
		if _, ok := e.stop[w]; ok {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// SplitList parses a comma separated keyword list: entries are trimmed,
// lowercased and empty ones dropped. No stop-word filtering is applied.
func SplitList(s string) Set {
	out := make(Set)
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		out[part] = struct{}{}
	}
	return out
}
