package domain

import (
	"fmt"
	"time"
)

type Stage string

const (
	StageInitial           Stage = "initial"
	StageSpecFolder        Stage = "spec_folder"
	StageSpecFolderConfirm Stage = "spec_folder_confirm"
	StageMemoryLoad        Stage = "memory_load"
	StageTaskChange        Stage = "task_change"
	StageDispatch          Stage = "dispatch"
	StageComplete          Stage = "complete"
)

var transitions = map[Stage][]Stage{
	StageInitial:           {StageSpecFolder, StageSpecFolderConfirm, StageTaskChange, StageDispatch},
	StageSpecFolder:        {StageMemoryLoad, StageComplete},
	StageSpecFolderConfirm: {StageMemoryLoad, StageSpecFolder, StageComplete},
	StageMemoryLoad:        {StageComplete},
	StageTaskChange:        {StageSpecFolder, StageComplete},
	StageDispatch:          {StageComplete},
	StageComplete:          {StageInitial},
}

func (s Stage) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Open reports whether a flow in this stage is waiting on an answer.
func (s Stage) Open() bool {
	return s.Valid() && s != StageInitial && s != StageComplete
}

func CanTransition(from, to Stage) bool {
	if from == "" {
		from = StageInitial
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Candidate is one selectable item attached to a flow: a folder or a snapshot.
type Candidate struct {
	ID     string `toml:"id"`
	Label  string `toml:"label"`
	Ref    string `toml:"ref,omitempty"`
	Detail string `toml:"detail,omitempty"`
}

// QuestionFlow is the persisted state of one open mandatory question.
// Continues marks a flow that resumes the current task rather than starting one.
type QuestionFlow struct {
	Stage         Stage       `toml:"stage"`
	QuestionID    string      `toml:"question_id"`
	Target        string      `toml:"target,omitempty"`
	Detected      string      `toml:"detected,omitempty"`
	Candidates    []Candidate `toml:"candidates,omitempty"`
	LastChoice    string      `toml:"last_choice,omitempty"`
	PendingPrompt string      `toml:"pending_prompt,omitempty"`
	Listing       bool        `toml:"listing,omitempty"`
	Continues     bool        `toml:"continues,omitempty"`
	OpenedAt      time.Time   `toml:"opened_at"`
}

func (f QuestionFlow) Open() bool {
	return f.Stage.Open()
}

// Advance moves the flow to the next stage, rejecting edges outside the transition table.
func (f *QuestionFlow) Advance(to Stage) error {
	from := f.Stage
	if from == "" {
		from = StageInitial
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	f.Stage = to
	return nil
}

func (f QuestionFlow) Candidate(id string) (Candidate, bool) {
	for _, candidate := range f.Candidates {
		if candidate.ID == id {
			return candidate, true
		}
	}
	return Candidate{}, false
}
