package question

import (
	"strings"
	"testing"

	"github.com/bnema/gatekeeper/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		question domain.MandatoryQuestion
		contains []string
		absent   []string
	}{
		{
			name: "folder question with context",
			question: domain.MandatoryQuestion{
				QuestionID: "q-1",
				Stage:      domain.StageSpecFolder,
				Prompt:     "Where should this work be documented?",
				Options: []domain.QuestionOption{
					{ID: "A", Label: "Use 002-search", Description: "most recently active"},
					{ID: "B", Label: "Create new folder 003-password-reset"},
					{ID: "D", Label: "Skip documentation"},
				},
				Context: map[string]string{
					"request":  "implement password reset",
					"detected": "/work/specs/002-search",
				},
			},
			contains: []string{
				"Mandatory question",
				"Where should this work be documented?",
				"  A) Use 002-search",
				"most recently active",
				"  B) Create new folder 003-password-reset",
				"Detected: /work/specs/002-search",
				"Request: implement password reset",
				"Reply with one of the letters above.",
			},
		},
		{
			name: "numbered snapshot listing",
			question: domain.MandatoryQuestion{
				Stage:  domain.StageMemoryLoad,
				Prompt: "Which snapshot should be loaded? Answer with its number.",
				Options: []domain.QuestionOption{
					{ID: "1", Label: "Schema"},
					{ID: "2", Label: "Rollout"},
					{ID: "D", Label: "Skip"},
				},
			},
			contains: []string{"  1) Schema", "  2) Rollout", "Reply with a number, or D to skip."},
			absent:   []string{"Detected:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := Render(tt.question)
			for _, want := range tt.contains {
				assert.Contains(t, output, want)
			}
			for _, unwanted := range tt.absent {
				assert.NotContains(t, output, unwanted)
			}
		})
	}
}

func TestRenderOrdersContextKeys(t *testing.T) {
	output := Render(domain.MandatoryQuestion{
		Prompt: "Keep working in this folder?",
		Context: map[string]string{
			"request": "r",
			"folder":  "f",
		},
	})

	assert.Less(t, strings.Index(output, "Folder: f"), strings.Index(output, "Request: r"))
}
