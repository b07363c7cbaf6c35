// Package dispatch decides whether a scored request runs sequentially, in
// parallel sub-agents, or needs the user to choose.
package dispatch

import (
	"fmt"
	"time"

	"github.com/bnema/gatekeeper/internal/domain"
	"github.com/bnema/gatekeeper/internal/policy/complexity"
)

type Config struct {
	ParallelScore   float64       `mapstructure:"parallel_score"`
	ParallelDomains int           `mapstructure:"parallel_domains"`
	AskScore        float64       `mapstructure:"ask_score"`
	AskDomains      int           `mapstructure:"ask_domains"`
	PreferenceTTL   time.Duration `mapstructure:"-"`
}

func DefaultConfig() Config {
	return Config{
		ParallelScore:   50,
		ParallelDomains: 3,
		AskScore:        20,
		AskDomains:      2,
		PreferenceTTL:   time.Hour,
	}
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.PreferenceTTL <= 0 {
		cfg.PreferenceTTL = DefaultConfig().PreferenceTTL
	}
	return &Engine{cfg: cfg}
}

// Decide applies the dispatch rules in order. Sequential-dependency language
// always wins; an active preference is honored without asking; otherwise the
// score and domain count pick the action.
func (e *Engine) Decide(score complexity.Score, pref domain.DispatchPreference, now time.Time) domain.DispatchDecision {
	decision := domain.DispatchDecision{
		Score:       score.Total,
		Domains:     score.Domains,
		DomainCount: score.DomainCount,
		Sequential:  score.SequentialDependency,
	}

	if score.SequentialDependency {
		decision.Action = domain.DispatchSequential
		decision.Reason = "request describes ordered steps"
		return decision
	}

	if pref.Active(now) {
		decision.Mode = pref.Mode
		decision.ExpiresAt = pref.ExpiresAt
		switch pref.Mode {
		case domain.ModeDirect:
			decision.Action = domain.DispatchSequential
			decision.Reason = "session preference: handle directly"
			return decision
		case domain.ModeParallel:
			decision.Action = domain.DispatchAutoParallel
			decision.Reason = "session preference: dispatch parallel sub-agents"
			return decision
		case domain.ModeAuto:
			if e.wide(score) {
				decision.Action = domain.DispatchAutoParallel
				decision.Reason = fmt.Sprintf("session preference auto: score %.2f across %d domains", score.Total, score.DomainCount)
				return decision
			}
			decision.Action = domain.DispatchSequential
			decision.Reason = fmt.Sprintf("session preference auto: score %.2f below parallel threshold", score.Total)
			return decision
		}
	}

	switch {
	case e.wide(score):
		decision.Action = domain.DispatchAutoParallel
		decision.Reason = fmt.Sprintf("score %.2f across %d domains", score.Total, score.DomainCount)
	case score.Total >= e.cfg.AskScore && score.DomainCount >= e.cfg.AskDomains:
		decision.Action = domain.DispatchAsk
		decision.Reason = fmt.Sprintf("score %.2f across %d domains, parallel dispatch is optional", score.Total, score.DomainCount)
	default:
		decision.Action = domain.DispatchSequential
		decision.Reason = fmt.Sprintf("score %.2f across %d domains", score.Total, score.DomainCount)
	}
	return decision
}

// Remember builds the preference stored after the user answers the dispatch question.
func (e *Engine) Remember(mode domain.DispatchMode, now time.Time) domain.DispatchPreference {
	return domain.DispatchPreference{
		Mode:       mode,
		CapturedAt: now,
		ExpiresAt:  now.Add(e.cfg.PreferenceTTL),
	}
}

func (e *Engine) PreferenceTTL() time.Duration {
	return e.cfg.PreferenceTTL
}

func (e *Engine) wide(score complexity.Score) bool {
	return score.Total >= e.cfg.ParallelScore && score.DomainCount >= e.cfg.ParallelDomains
}

// Options are the three answers offered by the dispatch question.
func Options() []domain.QuestionOption {
	return []domain.QuestionOption{
		{ID: "A", Label: "Handle sequentially", Description: "one agent works through the request"},
		{ID: "B", Label: "Dispatch parallel sub-agents", Description: "split the work by domain"},
		{ID: "C", Label: "Auto-decide for this session", Description: "use the score from now on without asking"},
	}
}

// ModeForOption maps a dispatch answer letter to the preference it stores.
func ModeForOption(id string) (domain.DispatchMode, bool) {
	switch id {
	case "A":
		return domain.ModeDirect, true
	case "B":
		return domain.ModeParallel, true
	case "C":
		return domain.ModeAuto, true
	default:
		return "", false
	}
}
