package domain

import (
	"fmt"
	"strings"
	"time"
)

type DispatchAction string

const (
	DispatchSequential   DispatchAction = "sequential"
	DispatchAsk          DispatchAction = "ask"
	DispatchAutoParallel DispatchAction = "auto-parallel"
)

// DispatchMode is the session preference captured from an answer to the dispatch question.
type DispatchMode string

const (
	ModeDirect   DispatchMode = "direct"
	ModeParallel DispatchMode = "parallel"
	ModeAuto     DispatchMode = "auto"
)

func (m DispatchMode) Valid() bool {
	switch m {
	case ModeDirect, ModeParallel, ModeAuto:
		return true
	default:
		return false
	}
}

func ParseDispatchMode(raw string) (DispatchMode, error) {
	mode := DispatchMode(strings.ToLower(strings.TrimSpace(raw)))
	if !mode.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, raw)
	}
	return mode, nil
}

type DispatchPreference struct {
	Mode       DispatchMode `toml:"mode"`
	CapturedAt time.Time    `toml:"captured_at"`
	ExpiresAt  time.Time    `toml:"expires_at"`
}

func (p DispatchPreference) Active(now time.Time) bool {
	if !p.Mode.Valid() {
		return false
	}
	if p.ExpiresAt.IsZero() {
		return true
	}
	return now.Before(p.ExpiresAt)
}

type DispatchDecision struct {
	Score       float64        `json:"score"`
	Domains     []string       `json:"domains"`
	DomainCount int            `json:"domain_count"`
	Sequential  bool           `json:"sequential"`
	Action      DispatchAction `json:"action"`
	Reason      string         `json:"reason"`
	Mode        DispatchMode   `json:"mode,omitempty"`
	ExpiresAt   time.Time      `json:"expires_at,omitempty"`
}
