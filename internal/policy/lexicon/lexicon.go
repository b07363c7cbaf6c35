// Package lexicon compiles configurable word lists into regular expressions
// shared by the policy scorers.
package lexicon

import (
	"regexp"
	"sort"
	"strings"
)

var whitespace = regexp.MustCompile(`\s+`)

// Never matches no input. It stands in for a pattern built from an empty list.
var Never = regexp.MustCompile(`$.^`)

// Alternatives joins phrases into a regex alternation. Phrases are lowercased,
// deduplicated and ordered longest first so that "set up" wins over "set".
// Inner whitespace matches any run of whitespace.
func Alternatives(phrases []string) string {
	cleaned := Clean(phrases)
	sort.SliceStable(cleaned, func(i, j int) bool {
		return len(cleaned[i]) > len(cleaned[j])
	})

	quoted := make([]string, 0, len(cleaned))
	for _, phrase := range cleaned {
		quoted = append(quoted, whitespace.ReplaceAllString(regexp.QuoteMeta(phrase), `\s+`))
	}
	return strings.Join(quoted, "|")
}

// Clean lowercases, trims and deduplicates phrases, dropping empty entries.
func Clean(phrases []string) []string {
	cleaned := make([]string, 0, len(phrases))
	seen := make(map[string]struct{}, len(phrases))
	for _, phrase := range phrases {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		if phrase == "" {
			continue
		}
		if _, ok := seen[phrase]; ok {
			continue
		}
		seen[phrase] = struct{}{}
		cleaned = append(cleaned, phrase)
	}
	return cleaned
}

// Pattern wraps the alternation of phrases between prefix and suffix.
func Pattern(prefix, suffix string, phrases []string) (*regexp.Regexp, error) {
	alternatives := Alternatives(phrases)
	if alternatives == "" {
		return Never, nil
	}
	return regexp.Compile(prefix + alternatives + suffix)
}

// Words matches any of the given words on word boundaries, tolerating common
// inflections ("tests", "refactoring", "fixed"). The bare word is captured in
// group 1.
func Words(words []string) (*regexp.Regexp, error) {
	return Pattern(`\b(`, `)(?:s|es|d|ed|ing)?\b`, words)
}

// Distinct returns the distinct captured words matched by a Words pattern, in
// order of first appearance.
func Distinct(re *regexp.Regexp, text string) []string {
	matches := re.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	out := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, match := range matches {
		word := whitespace.ReplaceAllString(match[1], " ")
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		out = append(out, word)
	}
	return out
}

// Set builds a lookup set from a word list.
func Set(words []string) map[string]struct{} {
	cleaned := Clean(words)
	set := make(map[string]struct{}, len(cleaned))
	for _, word := range cleaned {
		set[word] = struct{}{}
	}
	return set
}
