package divergence

import "strings"

const (
	maxSlugLen   = 50
	maxSlugWords = 5
	fallbackSlug = "unnamed-task"
)

// Slug names a new work-tracking folder after the specific keywords of a
// request: "implement password reset" becomes "password-reset".
func (s *Scorer) Slug(text string) string {
	keywords := s.Specific(s.Fingerprint(text))
	if len(keywords) == 0 {
		keywords = s.Fingerprint(text)
	}
	if len(keywords) > maxSlugWords {
		keywords = keywords[:maxSlugWords]
	}
	return Slugify(strings.Join(keywords, " "))
}

// Slugify converts free text to a lowercase, hyphen-separated name of at most
// 50 characters.
func Slugify(text string) string {
	var b strings.Builder
	prevHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			prevHyphen = false
		case r == ' ' || r == '_' || r == '-' || r == '/' || r == '.':
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return fallbackSlug
	}
	if len(slug) <= maxSlugLen {
		return slug
	}

	truncated := slug[:maxSlugLen]
	if cut := strings.LastIndex(truncated, "-"); cut > maxSlugLen/2 {
		truncated = truncated[:cut]
	}
	return strings.TrimRight(truncated, "-")
}

// Relevance counts how many of the keywords appear in a folder name. Folder
// names are split on hyphens the same way prompts are.
func (s *Scorer) Relevance(keywords []string, folderName string) int {
	nameWords := toSet(s.Fingerprint(strings.ReplaceAll(folderName, "_", "-")))
	hits := 0
	for _, keyword := range s.Specific(keywords) {
		if _, ok := nameWords[keyword]; ok {
			hits++
		}
	}
	return hits
}
