package domain

type QuestionOption struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// MandatoryQuestion is the structured payload of a blocking question.
type MandatoryQuestion struct {
	QuestionID string            `json:"questionId"`
	Stage      Stage             `json:"stage"`
	Prompt     string            `json:"prompt"`
	Options    []QuestionOption  `json:"options"`
	Context    map[string]string `json:"context,omitempty"`
}

func (q MandatoryQuestion) HasOption(id string) bool {
	for _, option := range q.Options {
		if option.ID == id {
			return true
		}
	}
	return false
}
