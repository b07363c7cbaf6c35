package application

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/bnema/gatekeeper/internal/domain"
)

// QuestionFor renders the mandatory question shown for an open flow.
func QuestionFor(flow domain.QuestionFlow) domain.MandatoryQuestion {
	question := domain.MandatoryQuestion{
		QuestionID: flow.QuestionID,
		Stage:      flow.Stage,
		Prompt:     questionPrompt(flow),
		Options:    make([]domain.QuestionOption, 0, len(flow.Candidates)),
		Context:    map[string]string{},
	}

	for _, candidate := range flow.Candidates {
		question.Options = append(question.Options, domain.QuestionOption{
			ID:          candidate.ID,
			Label:       candidate.Label,
			Description: candidate.Detail,
		})
	}

	if flow.Target != "" {
		question.Context["folder"] = flow.Target
	}
	if flow.Detected != "" {
		question.Context["detected"] = flow.Detected
	}
	if flow.PendingPrompt != "" {
		question.Context["request"] = flow.PendingPrompt
	}
	if len(question.Context) == 0 {
		question.Context = nil
	}

	return question
}

func questionPrompt(flow domain.QuestionFlow) string {
	switch flow.Stage {
	case domain.StageSpecFolder:
		return "This request changes files. Which work-tracking folder should it be documented in?"
	case domain.StageSpecFolderConfirm:
		return fmt.Sprintf("Continue documenting this work in %s?", folderLabel(flow.Target))
	case domain.StageMemoryLoad:
		if flow.Listing {
			return fmt.Sprintf("Which snapshot of %s should be loaded? Answer with its number.", folderLabel(flow.Target))
		}
		return fmt.Sprintf("%s has saved context snapshots. Load any before starting?", folderLabel(flow.Target))
	case domain.StageTaskChange:
		if flow.Target == "" {
			return "This request looks unrelated to the current task. How should it be tracked?"
		}
		return fmt.Sprintf("This request looks unrelated to the current task in %s. How should it be tracked?", folderLabel(flow.Target))
	case domain.StageDispatch:
		if flow.Detected == "" {
			return "How should this request be handled?"
		}
		return fmt.Sprintf("This request spans %s. How should it be handled?", flow.Detected)
	default:
		return "Answer the pending question to continue."
	}
}

func folderLabel(path string) string {
	if path == "" {
		return "the current folder"
	}
	return filepath.Base(path)
}

func specFolderConfirmCandidates(folder string) []domain.Candidate {
	return []domain.Candidate{
		{ID: "A", Label: "Keep " + folderLabel(folder), Ref: folder},
		{ID: "B", Label: "Choose a different or new folder"},
		{ID: "D", Label: "Skip documentation for this session"},
	}
}

func taskChangeCandidates(folder string) []domain.Candidate {
	keep := "Continue the current task"
	if folder != "" {
		keep = "Continue in " + folderLabel(folder)
	}

	return []domain.Candidate{
		{ID: "A", Label: keep, Ref: folder},
		{ID: "B", Label: "Start a new folder for this task"},
		{ID: "C", Label: "Switch to another existing folder"},
	}
}

func memoryCandidates(several int) []domain.Candidate {
	return []domain.Candidate{
		{ID: "A", Label: "Load the most recent snapshot"},
		{ID: "B", Label: fmt.Sprintf("Load the %d most recent snapshots", several)},
		{ID: "C", Label: "List all snapshots and choose"},
		{ID: "D", Label: "Skip loading context"},
	}
}

func snapshotListCandidates(snapshots []domain.Snapshot) []domain.Candidate {
	candidates := make([]domain.Candidate, 0, len(snapshots)+1)
	for i, snapshot := range snapshots {
		label := snapshot.Title
		if label == "" {
			label = snapshot.ID
		}
		detail := ""
		if !snapshot.CreatedAt.IsZero() {
			detail = snapshot.CreatedAt.UTC().Format("2006-01-02 15:04")
		}
		candidates = append(candidates, domain.Candidate{
			ID:     strconv.Itoa(i + 1),
			Label:  label,
			Ref:    snapshot.ID,
			Detail: detail,
		})
	}

	return append(candidates, domain.Candidate{ID: "D", Label: "Skip loading context"})
}

func dispatchCandidates(options []domain.QuestionOption) []domain.Candidate {
	candidates := make([]domain.Candidate, 0, len(options))
	for _, option := range options {
		candidates = append(candidates, domain.Candidate{ID: option.ID, Label: option.Label, Detail: option.Description})
	}
	return candidates
}
