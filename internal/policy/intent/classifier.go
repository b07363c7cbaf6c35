// Package intent classifies raw prompt text into the intent that decides
// whether the gate has to ask anything before the agent may act.
//
// Classification is a single loop over an ordered rule table. The first rule
// whose matcher fires decides the intent, so earlier, narrower rules shadow
// later, broader ones.
package intent

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bnema/gatekeeper/internal/domain"
	"github.com/bnema/gatekeeper/internal/policy/lexicon"
)

// Rule tags, in evaluation order.
const (
	TagOverride           = "override"
	TagExplain            = "explain"
	TagAnalysis           = "analysis"
	TagModificationLead   = "modification-leading"
	TagModificationAsk    = "modification-request"
	TagModificationInline = "modification-inline"
	TagQuestion           = "question"
	TagTaskSwitch         = "task-switch"
)

// Matcher reports whether a rule applies to normalized prompt text and which
// keyword or phrase triggered it.
type Matcher func(text string) (bool, string)

type Rule struct {
	Tag    string
	Match  Matcher
	Result domain.Intent
}

type Classifier struct {
	rules []Rule

	interrogatives map[string]struct{}
	taskSwitch     *regexp.Regexp
}

var defaultClassifier = MustNewClassifier(DefaultConfig())

// Classify runs the default rule table.
func Classify(text string) domain.Classification {
	return defaultClassifier.Classify(text)
}

// HasTaskSwitch reports an explicit task-switch phrase using the default rules,
// even when another rule wins classification.
func HasTaskSwitch(text string) bool {
	return defaultClassifier.HasTaskSwitch(text)
}

func MustNewClassifier(cfg Config) *Classifier {
	c, err := NewClassifier(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

func NewClassifier(cfg Config) (*Classifier, error) {
	override, err := lexicon.Pattern(`^(?:`, `)\b`, cfg.OverridePhrases)
	if err != nil {
		return nil, fmt.Errorf("compile override phrases: %w", err)
	}
	explain, err := lexicon.Pattern(`\b(?:`, `)\b`, cfg.ExplainPhrases)
	if err != nil {
		return nil, fmt.Errorf("compile explain phrases: %w", err)
	}
	analysis, err := analysisPattern(cfg.AnalysisVerbs, cfg.DefectNouns)
	if err != nil {
		return nil, fmt.Errorf("compile analysis phrases: %w", err)
	}
	verbs, err := lexicon.Pattern(`\b(?:`, `)\b`, cfg.ModificationVerbs)
	if err != nil {
		return nil, fmt.Errorf("compile modification verbs: %w", err)
	}
	leading, err := lexicon.Pattern(`^(?:`, `)\b`, cfg.ModificationVerbs)
	if err != nil {
		return nil, fmt.Errorf("compile leading verbs: %w", err)
	}
	request, err := requestPattern(cfg.ModificationVerbs)
	if err != nil {
		return nil, fmt.Errorf("compile request phrases: %w", err)
	}
	polite, err := lexicon.Pattern(`^(?:`, `)\b[\s,]*`, cfg.PolitePrefixes)
	if err != nil {
		return nil, fmt.Errorf("compile polite prefixes: %w", err)
	}
	taskSwitch, err := lexicon.Pattern(`\b(?:`, `)\b`, cfg.TaskSwitchPhrases)
	if err != nil {
		return nil, fmt.Errorf("compile task switch phrases: %w", err)
	}

	c := &Classifier{
		interrogatives: lexicon.Set(cfg.Interrogatives),
		taskSwitch:     taskSwitch,
	}

	c.rules = []Rule{
		{Tag: TagOverride, Match: regexMatcher(override), Result: domain.IntentOverride},
		{Tag: TagExplain, Match: regexMatcher(explain), Result: domain.IntentExplain},
		{Tag: TagAnalysis, Match: regexMatcher(analysis), Result: domain.IntentModification},
		{Tag: TagModificationLead, Match: func(text string) (bool, string) {
			return regexMatcher(leading)(stripPrefixes(polite, text))
		}, Result: domain.IntentModification},
		{Tag: TagModificationAsk, Match: func(text string) (bool, string) {
			match := request.FindStringSubmatch(text)
			if match == nil {
				return false, ""
			}
			for _, group := range match[1:] {
				if group != "" {
					return true, group
				}
			}
			return true, strings.TrimSpace(match[0])
		}, Result: domain.IntentModification},
		{Tag: TagModificationInline, Match: func(text string) (bool, string) {
			if c.leadingInterrogative(text) {
				return false, ""
			}
			return regexMatcher(verbs)(text)
		}, Result: domain.IntentModification},
		{Tag: TagQuestion, Match: func(text string) (bool, string) {
			if c.leadingInterrogative(text) {
				return true, firstWord(text)
			}
			if strings.HasSuffix(text, "?") {
				return true, "?"
			}
			return false, ""
		}, Result: domain.IntentQuestion},
		{Tag: TagTaskSwitch, Match: func(text string) (bool, string) {
			if c.questionForm(text) {
				return false, ""
			}
			return regexMatcher(taskSwitch)(text)
		}, Result: domain.IntentTaskSwitch},
	}

	return c, nil
}

// Rules returns the rule table in evaluation order.
func (c *Classifier) Rules() []Rule {
	rules := make([]Rule, len(c.rules))
	copy(rules, c.rules)
	return rules
}

func (c *Classifier) Classify(text string) domain.Classification {
	normalized := Normalize(text)
	if normalized == "" {
		return domain.Classification{Intent: domain.IntentNone}
	}

	for _, rule := range c.rules {
		if ok, detail := rule.Match(normalized); ok {
			return domain.Classification{Intent: rule.Result, Detail: detail, Rule: rule.Tag}
		}
	}

	return domain.Classification{Intent: domain.IntentNone}
}

func (c *Classifier) HasTaskSwitch(text string) bool {
	normalized := Normalize(text)
	if normalized == "" {
		return false
	}
	return c.taskSwitch.MatchString(normalized)
}

func (c *Classifier) leadingInterrogative(text string) bool {
	_, ok := c.interrogatives[firstWord(text)]
	return ok
}

func (c *Classifier) questionForm(text string) bool {
	return c.leadingInterrogative(text) || strings.HasSuffix(text, "?")
}

var whitespace = regexp.MustCompile(`\s+`)

// Normalize lowercases the text, collapses whitespace and trims leading punctuation.
func Normalize(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	lowered = whitespace.ReplaceAllString(lowered, " ")
	lowered = strings.TrimLeft(lowered, " \t\"'`*-#>:.,;!")
	return strings.TrimRight(lowered, " \t")
}

func firstWord(text string) string {
	word, _, _ := strings.Cut(text, " ")
	return strings.Trim(word, ",.;:!?\"'()")
}

func stripPrefixes(polite *regexp.Regexp, text string) string {
	for i := 0; i < 4; i++ {
		loc := polite.FindStringIndex(text)
		if loc == nil || loc[1] == 0 {
			return text
		}
		text = text[loc[1]:]
	}
	return text
}

func regexMatcher(re *regexp.Regexp) Matcher {
	return func(text string) (bool, string) {
		match := re.FindString(text)
		if match == "" {
			return false, ""
		}
		return true, strings.TrimSpace(match)
	}
}

func analysisPattern(verbs, nouns []string) (*regexp.Regexp, error) {
	verbAlt := lexicon.Alternatives(verbs)
	nounAlt := lexicon.Alternatives(nouns)
	if verbAlt == "" || nounAlt == "" {
		return lexicon.Never, nil
	}
	return regexp.Compile(`\b(?:` + verbAlt + `)\b.{0,40}?\b(?:` + nounAlt + `)s?\b`)
}

func requestPattern(verbs []string) (*regexp.Regexp, error) {
	verbAlt := lexicon.Alternatives(verbs)
	if verbAlt == "" {
		return lexicon.Never, nil
	}
	forms := []string{
		`\b(?:can|could|would|will) you (?:please )?(` + verbAlt + `)\b`,
		`\b(?:can|could|should|shall|may) (?:we|i) (?:please |just )?(` + verbAlt + `)\b`,
		`\bi(?: want| need| would like|'d like) (?:you )?to (` + verbAlt + `)\b`,
		`\b(?:we|you) (?:need|should|must|have) to (` + verbAlt + `)\b`,
		`\bhelp me (` + verbAlt + `)\b`,
	}
	return regexp.Compile(strings.Join(forms, "|"))
}
