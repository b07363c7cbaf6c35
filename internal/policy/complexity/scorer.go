// Package complexity estimates how broad a requested change is and whether it
// could be split across concurrent sub-agents.
package complexity

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/bnema/gatekeeper/internal/policy/lexicon"
)

// Dimensions are the normalized [0,1] inputs to the weighted total.
type Dimensions struct {
	Domains    float64 `json:"domains"`
	Files      float64 `json:"files"`
	Size       float64 `json:"size"`
	Parallel   float64 `json:"parallel"`
	Difficulty float64 `json:"difficulty"`
}

type Score struct {
	Total                float64    `json:"total"`
	DomainCount          int        `json:"domain_count"`
	Domains              []string   `json:"domains"`
	SequentialDependency bool       `json:"sequential_dependency"`
	VerbClass            string     `json:"verb_class,omitempty"`
	FileEstimate         int        `json:"file_estimate"`
	SizeEstimate         int        `json:"size_estimate"`
	Dimensions           Dimensions `json:"dimensions"`
}

type domainMatcher struct {
	name string
	re   *regexp.Regexp
}

type verbMatcher struct {
	class VerbClass
	re    *regexp.Regexp
}

type Scorer struct {
	cfg Config

	domains    []domainMatcher
	classes    []verbMatcher
	breadth    *regexp.Regexp
	scope      *regexp.Regexp
	changes    *regexp.Regexp
	sequential []*regexp.Regexp
}

var defaultScorer = MustNewScorer(DefaultConfig())

// Compute scores text with the default configuration.
func Compute(text string) Score {
	return defaultScorer.Score(text)
}

func MustNewScorer(cfg Config) *Scorer {
	s, err := NewScorer(cfg)
	if err != nil {
		panic(err)
	}
	return s
}

func NewScorer(cfg Config) (*Scorer, error) {
	if len(cfg.Domains) == 0 {
		return nil, fmt.Errorf("complexity: at least one domain is required")
	}
	if cfg.Files.Cap <= 0 {
		return nil, fmt.Errorf("complexity: file cap must be positive, got %d", cfg.Files.Cap)
	}
	if cfg.SizeCeiling <= 0 {
		return nil, fmt.Errorf("complexity: size ceiling must be positive, got %d", cfg.SizeCeiling)
	}

	s := &Scorer{cfg: cfg}

	for _, d := range cfg.Domains {
		re, err := lexicon.Words(d.Keywords)
		if err != nil {
			return nil, fmt.Errorf("compile domain %q: %w", d.Name, err)
		}
		s.domains = append(s.domains, domainMatcher{name: d.Name, re: re})
	}

	var allVerbs []string
	for _, class := range cfg.VerbClasses {
		re, err := lexicon.Words(class.Words)
		if err != nil {
			return nil, fmt.Errorf("compile verb class %q: %w", class.Name, err)
		}
		s.classes = append(s.classes, verbMatcher{class: class, re: re})
		allVerbs = append(allVerbs, class.Words...)
	}

	var err error
	if s.changes, err = lexicon.Words(allVerbs); err != nil {
		return nil, fmt.Errorf("compile change verbs: %w", err)
	}
	if s.breadth, err = lexicon.Words(cfg.Files.BreadthWords); err != nil {
		return nil, fmt.Errorf("compile breadth words: %w", err)
	}
	if s.scope, err = lexicon.Words(cfg.Files.ScopeWords); err != nil {
		return nil, fmt.Errorf("compile scope words: %w", err)
	}

	for _, pattern := range cfg.SequentialPatterns {
		re, err := regexp.Compile(`(?i)` + pattern)
		if err != nil {
			return nil, fmt.Errorf("compile sequential pattern %q: %w", pattern, err)
		}
		s.sequential = append(s.sequential, re)
	}

	return s, nil
}

func (s *Scorer) Score(text string) Score {
	normalized := strings.ToLower(strings.TrimSpace(text))

	out := Score{Domains: []string{}}
	for _, d := range s.domains {
		if d.re.MatchString(normalized) {
			out.Domains = append(out.Domains, d.name)
		}
	}
	out.DomainCount = len(out.Domains)
	out.SequentialDependency = s.HasSequentialDependency(normalized)

	class, lines, difficulty := s.verbClass(normalized)
	out.VerbClass = class
	out.SizeEstimate = lines
	out.FileEstimate = s.fileEstimate(normalized)

	out.Dimensions = Dimensions{
		Domains:    float64(out.DomainCount) / float64(len(s.domains)),
		Files:      float64(out.FileEstimate) / float64(s.cfg.Files.Cap),
		Size:       math.Min(float64(lines)/float64(s.cfg.SizeCeiling), 1),
		Parallel:   s.parallelizability(out.DomainCount, out.SequentialDependency),
		Difficulty: difficulty,
	}

	w := s.cfg.Weights
	total := w.Domains*out.Dimensions.Domains +
		w.Files*out.Dimensions.Files +
		w.Size*out.Dimensions.Size +
		w.Parallel*out.Dimensions.Parallel +
		w.Difficulty*out.Dimensions.Difficulty
	out.Total = round2(total * 100)

	return out
}

// HasSequentialDependency reports ordering language such as "first X then Y".
func (s *Scorer) HasSequentialDependency(text string) bool {
	for _, re := range s.sequential {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func (s *Scorer) verbClass(text string) (string, int, float64) {
	name, lines, difficulty := "", s.cfg.BaselineLines, s.cfg.BaselineDifficulty
	for _, m := range s.classes {
		if !m.re.MatchString(text) {
			continue
		}
		// Classes are ordered lightest first, so later matches only raise the estimate.
		name = m.class.Name
		lines = max(lines, m.class.Lines)
		difficulty = math.Max(difficulty, m.class.Difficulty)
	}
	return name, lines, difficulty
}

func (s *Scorer) fileEstimate(text string) int {
	f := s.cfg.Files
	estimate := f.Base
	estimate += f.BreadthStep * len(lexicon.Distinct(s.breadth, text))
	estimate += f.ChangeVerbStep * len(lexicon.Distinct(s.changes, text))
	estimate += f.ScopeStep * len(lexicon.Distinct(s.scope, text))
	return min(estimate, f.Cap)
}

func (s *Scorer) parallelizability(domains int, sequential bool) float64 {
	switch {
	case sequential:
		return 0
	case domains >= 3:
		return s.cfg.ParallelWide
	case domains == 2:
		return s.cfg.ParallelPair
	default:
		return 0
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
