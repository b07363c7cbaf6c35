package application

import "github.com/bnema/gatekeeper/internal/domain"

type Decision string

const (
	DecisionAllow Decision = "allow"
	DecisionBlock Decision = "block"
)

// GateResult is the gate's answer to one prompt. Question is set only when
// the prompt is blocked on a mandatory question.
type GateResult struct {
	Decision          Decision
	Reason            string
	AdditionalContext string
	Intent            domain.Intent
	Question          *domain.MandatoryQuestion
	Dispatch          *domain.DispatchDecision
}

func (r GateResult) Blocked() bool {
	return r.Decision == DecisionBlock
}

// SessionStatus is everything the gate remembers about one session.
type SessionStatus struct {
	Session      domain.SessionID
	ActiveFolder *domain.FolderMarker
	Confirmation *domain.ConfirmationMarker
	Fingerprint  *domain.TaskFingerprint
	Flow         *domain.QuestionFlow
	Preference   *domain.DispatchPreference
}
