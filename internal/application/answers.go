package application

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/bnema/gatekeeper/internal/domain"
	"github.com/bnema/gatekeeper/internal/policy/lexicon"
)

// answerHint maps a keyword found in a free-form answer to an option id.
type answerHint struct {
	option string
	words  []string
}

// Hints are tried in order, so narrower hints come first ("skip" before "new").
var stageHints = map[domain.Stage][]answerHint{
	domain.StageSpecFolder: {
		{option: "D", words: []string{"skip", "no folder", "no docs", "undocumented", "without", "none"}},
		{option: "C", words: []string{"related", "attach"}},
		{option: "B", words: []string{"new", "create", "fresh"}},
		{option: "A", words: []string{"reuse", "existing", "same", "current", "detected", "yes"}},
	},
	domain.StageSpecFolderConfirm: {
		{option: "D", words: []string{"skip", "no docs", "undocumented", "without"}},
		{option: "B", words: []string{"different", "another", "new", "change", "other"}},
		{option: "A", words: []string{"keep", "same", "continue", "yes", "confirm"}},
	},
	domain.StageMemoryLoad: {
		{option: "D", words: []string{"skip", "none", "no", "nothing"}},
		{option: "C", words: []string{"list", "all", "choose", "show"}},
		{option: "A", words: []string{"latest", "most recent", "last one", "newest", "last"}},
		{option: "B", words: []string{"several", "recent", "few", "multiple"}},
	},
	domain.StageTaskChange: {
		{option: "C", words: []string{"switch", "existing", "other", "different"}},
		{option: "B", words: []string{"new", "fresh", "start"}},
		{option: "A", words: []string{"continue", "keep", "same", "current"}},
	},
	domain.StageDispatch: {
		{option: "C", words: []string{"auto", "automatic", "decide"}},
		{option: "B", words: []string{"parallel", "sub-agents", "subagents", "sub-agent", "subagent", "split"}},
		{option: "A", words: []string{"sequential", "sequentially", "direct", "directly", "single", "one agent", "myself"}},
	},
}

var (
	bareLetter   = regexp.MustCompile(`^\(?([a-z])(\d{0,2})\)?[.):,]?$`)
	leadLetter   = regexp.MustCompile(`^\(?([a-z])(\d{0,2})(?:\)|[.:,-])\s`)
	optionPhrase = regexp.MustCompile(`\b(?:option|choice|answer)\s*:?\s*\(?([a-z])(\d{0,2})\)?(?:$|[\s.,!)])`)
	bareNumber   = regexp.MustCompile(`^#?(\d{1,3})[.)]?$`)
)

// ParseAnswer reads the chosen option id from an answer to the flow's
// question: an explicit letter ("B", "b)", "C2"), "option X" phrasing, a
// number when the question lists numbered items, or a stage keyword.
func ParseAnswer(flow domain.QuestionFlow, answer string) (string, bool) {
	text := strings.ToLower(strings.TrimSpace(answer))
	text = strings.Trim(text, "\"'`*")
	if text == "" {
		return "", false
	}

	valid := map[string]struct{}{}
	for _, candidate := range flow.Candidates {
		valid[candidate.ID] = struct{}{}
	}
	pick := func(id string) (string, bool) {
		_, ok := valid[id]
		return id, ok
	}

	if match := bareNumber.FindStringSubmatch(text); match != nil {
		n, _ := strconv.Atoi(match[1])
		if flow.Listing {
			return pick(strconv.Itoa(n))
		}
		if id, ok := pick("C" + strconv.Itoa(n)); ok {
			return id, true
		}
	}

	for _, re := range []*regexp.Regexp{bareLetter, leadLetter, optionPhrase} {
		if match := re.FindStringSubmatch(text); match != nil {
			if id, ok := pick(strings.ToUpper(match[1]) + match[2]); ok {
				return id, true
			}
		}
	}

	for _, hint := range stageHints[flow.Stage] {
		re, err := lexicon.Pattern(`\b(?:`, `)\b`, hint.words)
		if err != nil || !re.MatchString(text) {
			continue
		}
		if id, ok := pick(hint.option); ok {
			return id, true
		}
		// "C" stands for the first of several related folders.
		if id, ok := pick(hint.option + "1"); ok {
			return id, true
		}
	}

	return "", false
}
