package application

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bnema/gatekeeper/internal/domain"
	"go.uber.org/zap"
)

// folderQuery describes which spec_folder options to offer.
type folderQuery struct {
	prompt       string
	exclude      string
	existingOnly bool
}

// folderCandidates builds the spec_folder options. Options that do not apply
// are left out; "skip" is always offered. The second return value is the
// detected folder behind option A.
func (s *GateService) folderCandidates(ctx context.Context, query folderQuery) ([]domain.Candidate, string) {
	folders, err := s.folders.List(ctx)
	if err != nil {
		s.logger.Warn("list work-tracking folders", zap.Error(err))
		folders = nil
	}
	folders = withoutFolder(folders, query.exclude)

	keywords := s.divergence.Fingerprint(query.prompt)
	detected, reason := s.detectFolder(folders, query.prompt)

	candidates := []domain.Candidate{}
	if detected != nil {
		candidates = append(candidates, domain.Candidate{
			ID:     "A",
			Label:  "Reuse " + detected.Name,
			Ref:    detected.Path,
			Detail: reason,
		})
	}

	if !query.existingOnly {
		if next, err := s.newFolderPath(ctx, query.prompt); err != nil {
			s.logger.Warn("compute next folder number", zap.Error(err))
		} else {
			candidates = append(candidates, domain.Candidate{
				ID:    "B",
				Label: "Create new folder " + filepath.Base(next),
				Ref:   next,
			})
		}
	}

	related := s.relatedFolders(folders, keywords, detected, query.existingOnly)
	switch {
	case len(related) == 1:
		candidates = append(candidates, folderCandidate("C", related[0]))
	case len(related) > 1:
		for i, folder := range related {
			candidates = append(candidates, folderCandidate(fmt.Sprintf("C%d", i+1), folder))
		}
	}

	candidates = append(candidates, domain.Candidate{ID: "D", Label: "Skip documentation for this task"})

	detectedPath := ""
	if detected != nil {
		detectedPath = detected.Path
	}
	return candidates, detectedPath
}

// detectFolder picks the folder named in the prompt, else the most recently
// active folder inside the recency window.
func (s *GateService) detectFolder(folders []domain.Folder, prompt string) (*domain.Folder, string) {
	lower := strings.ToLower(prompt)
	for i := range folders {
		if strings.Contains(lower, strings.ToLower(folders[i].Name)) {
			return &folders[i], "named in the request"
		}
	}

	now := s.clock.Now()
	var recent *domain.Folder
	for i := range folders {
		folder := &folders[i]
		if folder.ModifiedAt.IsZero() || now.Sub(folder.ModifiedAt) > s.cfg.RecencyWindow {
			continue
		}
		if recent == nil || folder.ModifiedAt.After(recent.ModifiedAt) {
			recent = folder
		}
	}
	if recent != nil {
		return recent, "most recently active"
	}

	return nil, ""
}

// relatedFolders ranks folders by keyword overlap with the request. When only
// existing folders may be chosen every folder is offered, most relevant first.
func (s *GateService) relatedFolders(folders []domain.Folder, keywords []string, detected *domain.Folder, all bool) []domain.Folder {
	type ranked struct {
		folder domain.Folder
		hits   int
	}

	rankedFolders := make([]ranked, 0, len(folders))
	for _, folder := range folders {
		if detected != nil && folder.Path == detected.Path {
			continue
		}
		hits := s.divergence.Relevance(keywords, folder.Name)
		if hits == 0 && !all {
			continue
		}
		rankedFolders = append(rankedFolders, ranked{folder: folder, hits: hits})
	}

	sort.SliceStable(rankedFolders, func(i, j int) bool {
		if rankedFolders[i].hits != rankedFolders[j].hits {
			return rankedFolders[i].hits > rankedFolders[j].hits
		}
		return rankedFolders[i].folder.ModifiedAt.After(rankedFolders[j].folder.ModifiedAt)
	})

	limit := s.cfg.RelatedLimit
	if all {
		limit = s.cfg.ListLimit
	}
	if limit > 0 && len(rankedFolders) > limit {
		rankedFolders = rankedFolders[:limit]
	}

	related := make([]domain.Folder, 0, len(rankedFolders))
	for _, r := range rankedFolders {
		related = append(related, r.folder)
	}
	return related
}

func (s *GateService) newFolderPath(ctx context.Context, prompt string) (string, error) {
	next, err := s.folders.NextNumber(ctx)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.folders.Root(), domain.FolderName(next, s.divergence.Slug(prompt))), nil
}

// createFolder creates the folder chosen with option B. If another session
// took the number in the meantime a fresh number is used.
func (s *GateService) createFolder(ctx context.Context, path string, prompt string) (string, error) {
	exists, err := s.folders.Exists(ctx, path)
	if err != nil {
		return "", fmt.Errorf("check new folder: %w", err)
	}
	if exists || path == "" {
		if path, err = s.newFolderPath(ctx, prompt); err != nil {
			return "", fmt.Errorf("compute next folder number: %w", err)
		}
	}

	if err := s.folders.Ensure(ctx, path); err != nil {
		return "", fmt.Errorf("create work-tracking folder: %w", err)
	}

	return path, nil
}

func folderCandidate(id string, folder domain.Folder) domain.Candidate {
	return domain.Candidate{ID: id, Label: "Attach to " + folder.Name, Ref: folder.Path, Detail: "related by keywords"}
}

func withoutFolder(folders []domain.Folder, path string) []domain.Folder {
	if path == "" {
		return folders
	}

	kept := make([]domain.Folder, 0, len(folders))
	for _, folder := range folders {
		if filepath.Clean(folder.Path) == filepath.Clean(path) {
			continue
		}
		kept = append(kept, folder)
	}
	return kept
}
