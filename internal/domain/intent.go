package domain

type Intent string

const (
	IntentNone         Intent = "none"
	IntentExplain      Intent = "explain"
	IntentQuestion     Intent = "question"
	IntentModification Intent = "modification"
	IntentTaskSwitch   Intent = "task_switch"
	IntentOverride     Intent = "override"
)

// Gated reports whether the intent requires the confirmation flow.
func (i Intent) Gated() bool {
	return i == IntentModification
}

type Classification struct {
	Intent Intent
	Detail string
	Rule   string
}
