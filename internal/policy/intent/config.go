package intent

// Config holds the replaceable word lists behind each rule group.
type Config struct {
	OverridePhrases   []string `mapstructure:"override_phrases"`
	ExplainPhrases    []string `mapstructure:"explain_phrases"`
	AnalysisVerbs     []string `mapstructure:"analysis_verbs"`
	DefectNouns       []string `mapstructure:"defect_nouns"`
	ModificationVerbs []string `mapstructure:"modification_verbs"`
	PolitePrefixes    []string `mapstructure:"polite_prefixes"`
	Interrogatives    []string `mapstructure:"interrogatives"`
	TaskSwitchPhrases []string `mapstructure:"task_switch_phrases"`
}

func DefaultConfig() Config {
	return Config{
		OverridePhrases: []string{
			"never mind", "nevermind", "forget it", "cancel that", "cancel the question",
			"stop asking", "revoke preference", "reset preference", "reset dispatch",
			"ask me again", "skip the question",
		},
		ExplainPhrases: []string{
			"help me understand", "explain how", "explain what", "explain why", "explain the",
			"explain this", "can you explain", "walk me through", "tell me about",
			"describe how", "what is the purpose of", "i want to understand",
		},
		AnalysisVerbs: []string{
			"analyze", "analyse", "investigate", "diagnose", "debug", "look into",
			"troubleshoot", "figure out",
		},
		DefectNouns: []string{
			"bug", "error", "issue", "failure", "crash", "exception", "problem",
			"regression", "leak", "panic",
		},
		ModificationVerbs: []string{
			"create", "add", "build", "implement", "fix", "refactor", "update", "modify",
			"change", "write", "delete", "remove", "rename", "migrate", "rewrite", "edit",
			"replace", "configure", "install", "deploy", "optimize", "improve", "extend",
			"integrate", "move", "convert", "upgrade", "setup", "set up", "make",
			"generate", "patch", "repair", "restructure", "redesign", "port",
		},
		PolitePrefixes: []string{
			"please", "pls", "ok", "okay", "now", "let's", "lets", "go ahead and",
			"then", "also", "and", "so", "hey", "quickly",
		},
		Interrogatives: []string{
			"what", "why", "how", "when", "where", "who", "whom", "whose", "which",
			"is", "are", "am", "was", "were", "does", "do", "did", "can", "could",
			"should", "would", "will", "has", "have", "may",
		},
		TaskSwitchPhrases: []string{
			"new task", "different task", "different feature", "another task",
			"start fresh", "start over", "switch to", "something else", "moving on",
			"change of plans", "unrelated", "switch gears",
		},
	}
}
