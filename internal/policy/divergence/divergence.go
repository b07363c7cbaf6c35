// Package divergence fingerprints task descriptions and measures topic drift
// between the active task and a new prompt.
package divergence

import (
	"math"
	"strings"
	"unicode"

	"github.com/bnema/gatekeeper/internal/policy/lexicon"
)

type Band string

const (
	BandNone  Band = "none"
	BandLog   Band = "log"
	BandBlock Band = "block"
)

type Config struct {
	StopWords    []string `mapstructure:"stop_words"`
	GenericWords []string `mapstructure:"generic_words"`
	MaxKeywords  int      `mapstructure:"max_keywords"`
	MinLength    int      `mapstructure:"min_length"`
	Floor        float64  `mapstructure:"floor"`
	LogAbove     float64  `mapstructure:"log_above"`
	BlockAbove   float64  `mapstructure:"block_above"`
}

func DefaultConfig() Config {
	return Config{
		StopWords: []string{
			"a", "an", "as", "at", "be", "by", "do", "if", "in", "is", "it", "me", "my",
			"no", "of", "on", "or", "so", "to", "up", "us", "we",
			"the", "and", "for", "are", "but", "not", "you", "all", "can", "had",
			"her", "was", "one", "our", "out", "has", "its", "let", "may", "who",
			"did", "get", "him", "his", "how", "new", "now", "old", "see", "way",
			"too", "use", "she", "that", "with", "have", "this", "will", "your",
			"from", "they", "been", "each", "which", "their", "there", "about",
			"would", "like", "just", "over", "such", "also", "into", "than", "them",
			"then", "some", "what", "when", "were", "other", "could", "after",
			"should", "please", "lets", "let's", "need", "want", "any",
			"task", "i'd", "i'm", "we're",
		},
		GenericWords: []string{
			"add", "build", "change", "code", "create", "delete", "feature", "file",
			"files", "fix", "implement", "make", "modify", "refactor", "remove",
			"support", "update", "write", "work", "improve",
		},
		MaxKeywords: 12,
		MinLength:   2,
		Floor:       50,
		LogAbove:    40,
		BlockAbove:  60,
	}
}

type Scorer struct {
	cfg     Config
	stop    map[string]struct{}
	generic map[string]struct{}
}

var defaultScorer = NewScorer(DefaultConfig())

// Fingerprint extracts keywords with the default configuration.
func Fingerprint(text string) []string {
	return defaultScorer.Fingerprint(text)
}

// Score measures drift with the default configuration.
func Score(old []string, text string) float64 {
	return defaultScorer.Score(old, text)
}

func NewScorer(cfg Config) *Scorer {
	defaults := DefaultConfig()
	if cfg.MaxKeywords <= 0 {
		cfg.MaxKeywords = defaults.MaxKeywords
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = defaults.MinLength
	}
	return &Scorer{
		cfg:     cfg,
		stop:    lexicon.Set(cfg.StopWords),
		generic: lexicon.Set(cfg.GenericWords),
	}
}

// Fingerprint lowercases the text, drops stop words, splits hyphenated words,
// keeps tokens of at least MinLength characters and returns at most
// MaxKeywords distinct keywords in order of appearance.
func (s *Scorer) Fingerprint(text string) []string {
	keywords := []string{}
	seen := map[string]struct{}{}

	for _, field := range strings.Fields(strings.ToLower(text)) {
		field = strings.Trim(field, ".,;:!?\"'()[]{}`*")
		if field == "" {
			continue
		}
		if _, ok := s.stop[field]; ok {
			continue
		}
		for _, part := range strings.Split(field, "-") {
			token := strings.TrimFunc(part, func(r rune) bool {
				return !unicode.IsLetter(r) && !unicode.IsDigit(r)
			})
			if len(token) < s.cfg.MinLength {
				continue
			}
			if _, ok := s.stop[token]; ok {
				continue
			}
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			keywords = append(keywords, token)
			if len(keywords) == s.cfg.MaxKeywords {
				return keywords
			}
		}
	}

	return keywords
}

// Score returns 0..100: 0 for the same topic, 100 for no shared keywords.
func (s *Scorer) Score(old []string, text string) float64 {
	return s.Compare(old, s.Fingerprint(text))
}

// Compare scores two keyword sets by overlap against the smaller set. Generic
// action words are ignored unless dropping them empties a side.
func (s *Scorer) Compare(a, b []string) float64 {
	setA, setB := toSet(a), toSet(b)
	switch {
	case len(setA) == 0 && len(setB) == 0:
		return 0
	case len(setA) == 0 || len(setB) == 0:
		return s.cfg.Floor
	}

	specificA, specificB := s.withoutGeneric(setA), s.withoutGeneric(setB)
	if len(specificA) > 0 && len(specificB) > 0 {
		setA, setB = specificA, specificB
	}

	shared := 0
	for word := range setA {
		if _, ok := setB[word]; ok {
			shared++
		}
	}

	smaller := min(len(setA), len(setB))
	score := 100 * (1 - float64(shared)/float64(smaller))
	return math.Round(score*100) / 100
}

func (s *Scorer) Band(score float64) Band {
	switch {
	case score > s.cfg.BlockAbove:
		return BandBlock
	case score > s.cfg.LogAbove:
		return BandLog
	default:
		return BandNone
	}
}

// Specific returns the keywords that are not generic action words.
func (s *Scorer) Specific(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if _, ok := s.generic[keyword]; !ok {
			out = append(out, keyword)
		}
	}
	return out
}

func (s *Scorer) withoutGeneric(set map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(set))
	for word := range set {
		if _, ok := s.generic[word]; !ok {
			out[word] = struct{}{}
		}
	}
	return out
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		if word != "" {
			set[word] = struct{}{}
		}
	}
	return set
}
