package status

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/gatekeeper/internal/application"
	"github.com/bnema/gatekeeper/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Now time.Time
	// FlowTTL is how long an unanswered question survives.
	FlowTTL time.Duration
}

func renderView(status application.SessionStatus, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Gatekeeper Session"),
		s.header.Render(fmt.Sprintf("session: %s", status.Session)),
	}

	sections := []string{
		folderSection(status, opts, s),
		taskSection(status.Fingerprint, opts, s),
		questionSection(status.Flow, opts, s),
		preferenceSection(status.Preference, opts, s),
	}
	for _, section := range sections {
		lines = append(lines, s.section.Render(section))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func folderSection(status application.SessionStatus, opts RenderOptions, s styles) string {
	parts := []string{s.heading.Render("Work-tracking folder")}

	switch {
	case status.Confirmation != nil && status.Confirmation.Skipped:
		parts = append(parts,
			s.detail.Render("documentation skipped for this session"),
			s.muted.Render("confirmed "+formatAge(status.Confirmation.ConfirmedAt, opts.Now)),
		)
	case status.ActiveFolder != nil:
		parts = append(parts, keyValue("folder:", filepath.Base(status.ActiveFolder.Path), s))
		parts = append(parts, s.muted.Render(status.ActiveFolder.Path))
		if status.Confirmation != nil && status.Confirmation.Path == status.ActiveFolder.Path {
			parts = append(parts, s.detail.Render("confirmed "+formatAge(status.Confirmation.ConfirmedAt, opts.Now)))
		} else {
			parts = append(parts, s.warning.Render("[unconfirmed]"))
		}
	default:
		parts = append(parts, s.empty.Render("No folder selected."))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func taskSection(fingerprint *domain.TaskFingerprint, opts RenderOptions, s styles) string {
	parts := []string{s.heading.Render("Task")}
	if fingerprint == nil || len(fingerprint.Keywords) == 0 {
		parts = append(parts, s.empty.Render("No task fingerprint."))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	parts = append(parts,
		keyValue("keywords:", strings.Join(fingerprint.Keywords, ", "), s),
		s.muted.Render("recorded "+formatAge(fingerprint.CreatedAt, opts.Now)),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func questionSection(flow *domain.QuestionFlow, opts RenderOptions, s styles) string {
	parts := []string{s.heading.Render("Pending question")}
	if flow == nil {
		parts = append(parts, s.empty.Render("None."))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	ids := make([]string, 0, len(flow.Candidates))
	for _, candidate := range flow.Candidates {
		ids = append(ids, candidate.ID)
	}

	parts = append(parts,
		keyValue("stage:", string(flow.Stage), s),
		keyValue("options:", strings.Join(ids, " "), s),
	)
	if flow.PendingPrompt != "" {
		parts = append(parts, keyValue("request:", truncate(flow.PendingPrompt, 60), s))
	}
	if opts.FlowTTL > 0 && !flow.OpenedAt.IsZero() {
		parts = append(parts, s.muted.Render(formatExpiry(flow.OpenedAt.Add(opts.FlowTTL), opts.Now)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func preferenceSection(preference *domain.DispatchPreference, opts RenderOptions, s styles) string {
	parts := []string{s.heading.Render("Dispatch preference")}
	if preference == nil {
		parts = append(parts, s.empty.Render("None, complex prompts will ask."))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	line := keyValue("mode:", string(preference.Mode), s)
	if !opts.Now.IsZero() {
		total := preference.ExpiresAt.Sub(preference.CapturedAt)
		left := preference.ExpiresAt.Sub(opts.Now)
		line = lipgloss.JoinHorizontal(lipgloss.Top, line, " ", renderProgressBar(remainingPercent(left, total), 24, s))
	}
	parts = append(parts, line, s.muted.Render(formatExpiry(preference.ExpiresAt, opts.Now)))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func keyValue(key, value string, s styles) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, s.key.Render(key), " ", s.detail.Render(value))
}

func remainingPercent(left, total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	return clampPercent(100 * left.Seconds() / total.Seconds())
}

func renderProgressBar(leftPercent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(leftPercent) / 100))
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func formatAge(at, now time.Time) string {
	if at.IsZero() {
		return "at an unknown time"
	}
	if now.IsZero() || at.After(now) {
		return "at " + at.Format("15:04 on 02 Jan")
	}
	return plural(now.Sub(at)) + " ago"
}

func formatExpiry(expiresAt, now time.Time) string {
	if now.IsZero() {
		return "expires at " + expiresAt.Format("15:04 on 02 Jan")
	}
	if !expiresAt.After(now) {
		return "expired"
	}
	return fmt.Sprintf("expires in %s (%s)", plural(expiresAt.Sub(now)), expiresAt.Format("15:04"))
}

func plural(d time.Duration) string {
	unit, n := "minute", int(math.Ceil(d.Minutes()))
	switch {
	case d >= 24*time.Hour:
		unit, n = "day", int(math.Floor(d.Hours()/24))
	case d >= time.Hour:
		unit, n = "hour", int(math.Floor(d.Hours()))
	}
	if n < 1 {
		n = 1
	}
	if n != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s", n, unit)
}

func truncate(text string, max int) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max-3]) + "..."
}
