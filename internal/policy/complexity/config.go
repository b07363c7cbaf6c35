package complexity

type Weights struct {
	Domains    float64 `mapstructure:"domains"`
	Files      float64 `mapstructure:"files"`
	Size       float64 `mapstructure:"size"`
	Parallel   float64 `mapstructure:"parallel"`
	Difficulty float64 `mapstructure:"difficulty"`
}

func (w Weights) Sum() float64 {
	return w.Domains + w.Files + w.Size + w.Parallel + w.Difficulty
}

// Domain is one functional area detected by keyword.
type Domain struct {
	Name     string   `mapstructure:"name"`
	Keywords []string `mapstructure:"keywords"`
}

// VerbClass ranks the kind of change requested. Classes are listed from the
// lightest to the heaviest; the heaviest class present in a prompt wins.
type VerbClass struct {
	Name       string   `mapstructure:"name"`
	Words      []string `mapstructure:"words"`
	Lines      int      `mapstructure:"lines"`
	Difficulty float64  `mapstructure:"difficulty"`
}

type FileEstimate struct {
	Base           int      `mapstructure:"base"`
	Cap            int      `mapstructure:"cap"`
	BreadthWords   []string `mapstructure:"breadth_words"`
	BreadthStep    int      `mapstructure:"breadth_step"`
	ChangeVerbStep int      `mapstructure:"change_verb_step"`
	ScopeWords     []string `mapstructure:"scope_words"`
	ScopeStep      int      `mapstructure:"scope_step"`
}

type Config struct {
	Weights            Weights      `mapstructure:"weights"`
	Domains            []Domain     `mapstructure:"domains"`
	Files              FileEstimate `mapstructure:"files"`
	VerbClasses        []VerbClass  `mapstructure:"verb_classes"`
	BaselineLines      int          `mapstructure:"baseline_lines"`
	BaselineDifficulty float64      `mapstructure:"baseline_difficulty"`
	SizeCeiling        int          `mapstructure:"size_ceiling"`
	ParallelWide       float64      `mapstructure:"parallel_wide"`
	ParallelPair       float64      `mapstructure:"parallel_pair"`
	SequentialPatterns []string     `mapstructure:"sequential_patterns"`
}

func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Domains:    0.35,
			Files:      0.25,
			Size:       0.15,
			Parallel:   0.20,
			Difficulty: 0.05,
		},
		Domains: []Domain{
			{Name: "implementation", Keywords: []string{
				"implement", "build", "create", "add", "refactor", "feature", "function",
				"endpoint", "api", "component", "handler", "module", "code", "write", "rewrite",
			}},
			{Name: "analysis", Keywords: []string{
				"analyze", "analyse", "investigate", "debug", "profile", "performance",
				"logging", "log", "metric", "tracing", "telemetry", "monitoring", "audit",
			}},
			{Name: "documentation", Keywords: []string{
				"document", "docs", "documentation", "readme", "changelog", "guide",
				"docstring", "comment", "tutorial",
			}},
			{Name: "version-control", Keywords: []string{
				"git", "commit", "branch", "merge", "rebase", "pull request", "cherry-pick",
				"release", "tag",
			}},
			{Name: "testing", Keywords: []string{
				"test", "unit test", "integration test", "e2e", "coverage", "mock",
				"fixture", "benchmark", "assertion",
			}},
			{Name: "operations", Keywords: []string{
				"deploy", "deployment", "pipeline", "ci", "docker", "kubernetes", "infra",
				"infrastructure", "notification", "alerting", "cron", "queue", "database",
				"migration",
			}},
		},
		Files: FileEstimate{
			Base: 1,
			Cap:  20,
			BreadthWords: []string{
				"all", "every", "across", "entire", "whole", "throughout", "everywhere",
			},
			BreadthStep:    5,
			ChangeVerbStep: 2,
			ScopeWords: []string{
				"system", "architecture", "codebase", "pipeline", "module", "service",
				"project", "app", "application", "repository",
			},
			ScopeStep: 3,
		},
		VerbClasses: []VerbClass{
			{Name: "fix", Lines: 50, Difficulty: 0.2, Words: []string{
				"fix", "patch", "repair", "tweak", "adjust", "correct", "bump",
			}},
			{Name: "implement", Lines: 200, Difficulty: 0.5, Words: []string{
				"implement", "add", "create", "build", "write", "make", "extend",
				"integrate", "update", "set up", "setup", "generate",
			}},
			{Name: "refactor", Lines: 400, Difficulty: 0.7, Words: []string{
				"refactor", "restructure", "reorganize", "clean up", "cleanup", "optimize",
				"rename", "extract", "consolidate", "split",
			}},
			{Name: "architecture", Lines: 800, Difficulty: 1.0, Words: []string{
				"architect", "architecture", "redesign", "rewrite", "migrate", "migration",
				"overhaul", "rearchitect", "port",
			}},
		},
		BaselineLines:      30,
		BaselineDifficulty: 0.1,
		SizeCeiling:        1000,
		ParallelWide:       1.0,
		ParallelPair:       0.6,
		SequentialPatterns: []string{
			`\bfirst\b.+\bthen\b`,
			`\bafter\b.+\b(?:completes?|completed|is done|are done|finish(?:es|ed)?|is merged|passes)\b`,
			`,\s*then\b`,
			`\bonce\b.+\b(?:done|finished|complete|completed|merged|passes)\b`,
			`\bstep[- ]by[- ]step\b`,
			`\bdepends? on\b`,
			`\bbefore (?:we|you) (?:can )?start\b`,
		},
	}
}
