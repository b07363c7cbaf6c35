// Package config loads gatekeeper.toml, GATEKEEPER_* environment variables
// and built-in defaults into one validated Config.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/gatekeeper/internal/policy/complexity"
	"github.com/bnema/gatekeeper/internal/policy/dispatch"
	"github.com/bnema/gatekeeper/internal/policy/divergence"
	"github.com/bnema/gatekeeper/internal/policy/intent"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const (
	configName = "gatekeeper"
	configType = "toml"
	envPrefix  = "GATEKEEPER"

	// ProjectDirName holds the project config file and, by default, session state.
	ProjectDirName = ".gatekeeper"
	logFileName    = "gate.log"
)

type Config struct {
	State      StateConfig       `mapstructure:"state"`
	Folders    FoldersConfig     `mapstructure:"folders"`
	Memory     MemoryConfig      `mapstructure:"memory"`
	Log        LogConfig         `mapstructure:"log"`
	Gate       GateConfig        `mapstructure:"gate"`
	TTL        TTLConfig         `mapstructure:"ttl"`
	Dispatch   dispatch.Config   `mapstructure:"dispatch"`
	Divergence divergence.Config `mapstructure:"divergence"`
	Complexity complexity.Config `mapstructure:"complexity"`
	Intent     intent.Config     `mapstructure:"intent"`

	// Source is the config file that was read, empty when none was found.
	Source string `mapstructure:"-"`
}

type StateConfig struct {
	Root         string `mapstructure:"root"`
	FallbackRoot string `mapstructure:"fallback_root"`
	// Ephemeral keeps state in memory for the lifetime of one process.
	Ephemeral bool `mapstructure:"ephemeral"`
}

type FoldersConfig struct {
	Root string `mapstructure:"root"`
}

type MemoryConfig struct {
	DBPath string `mapstructure:"db_path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type GateConfig struct {
	Timeout          time.Duration `mapstructure:"timeout"`
	RecencyWindow    time.Duration `mapstructure:"recency_window"`
	RelatedLimit     int           `mapstructure:"related_limit"`
	SeveralSnapshots int           `mapstructure:"several_snapshots"`
	ListLimit        int           `mapstructure:"list_limit"`
}

// TTLConfig bounds session entries. Confirm is kept shorter than Session so a
// folder is reconfirmed once the confirmation lapses.
type TTLConfig struct {
	Session    time.Duration `mapstructure:"session"`
	Confirm    time.Duration `mapstructure:"confirm"`
	Flow       time.Duration `mapstructure:"flow"`
	Preference time.Duration `mapstructure:"preference"`
}

// Load reads configuration for the project rooted at projectDir. The
// project's .gatekeeper/gatekeeper.toml wins over
// $HOME/.config/gatekeeper/gatekeeper.toml; environment variables win over both.
func Load(v *viper.Viper, projectDir string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	if projectDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("resolve working directory: %w", err)
		}
		projectDir = wd
	}
	projectDir, err := filepath.Abs(projectDir)
	if err != nil {
		return Config{}, fmt.Errorf("resolve project directory: %w", err)
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(filepath.Join(projectDir, ProjectDirName))
	if homeDir, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(homeDir, ".config", configName))
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Source = v.ConfigFileUsed()
	cfg.Dispatch.PreferenceTTL = cfg.TTL.Preference
	cfg.resolvePaths(projectDir)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	dispatchDefaults := dispatch.DefaultConfig()
	divergenceDefaults := divergence.DefaultConfig()
	complexityDefaults := complexity.DefaultConfig()
	intentDefaults := intent.DefaultConfig()

	v.SetDefault("state.root", filepath.Join(ProjectDirName, "state"))
	v.SetDefault("state.fallback_root", filepath.Join(os.TempDir(), "gatekeeper-state"))
	v.SetDefault("state.ephemeral", false)
	v.SetDefault("folders.root", "specs")
	v.SetDefault("memory.db_path", filepath.Join(ProjectDirName, "memory.db"))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")

	v.SetDefault("gate.timeout", 2*time.Second)
	v.SetDefault("gate.recency_window", 2*time.Hour)
	v.SetDefault("gate.related_limit", 3)
	v.SetDefault("gate.several_snapshots", 3)
	v.SetDefault("gate.list_limit", 9)

	v.SetDefault("ttl.session", 24*time.Hour)
	v.SetDefault("ttl.confirm", 4*time.Hour)
	v.SetDefault("ttl.flow", 30*time.Minute)
	v.SetDefault("ttl.preference", dispatchDefaults.PreferenceTTL)

	v.SetDefault("dispatch.parallel_score", dispatchDefaults.ParallelScore)
	v.SetDefault("dispatch.parallel_domains", dispatchDefaults.ParallelDomains)
	v.SetDefault("dispatch.ask_score", dispatchDefaults.AskScore)
	v.SetDefault("dispatch.ask_domains", dispatchDefaults.AskDomains)

	v.SetDefault("divergence.stop_words", divergenceDefaults.StopWords)
	v.SetDefault("divergence.generic_words", divergenceDefaults.GenericWords)
	v.SetDefault("divergence.max_keywords", divergenceDefaults.MaxKeywords)
	v.SetDefault("divergence.min_length", divergenceDefaults.MinLength)
	v.SetDefault("divergence.floor", divergenceDefaults.Floor)
	v.SetDefault("divergence.log_above", divergenceDefaults.LogAbove)
	v.SetDefault("divergence.block_above", divergenceDefaults.BlockAbove)

	v.SetDefault("complexity.weights.domains", complexityDefaults.Weights.Domains)
	v.SetDefault("complexity.weights.files", complexityDefaults.Weights.Files)
	v.SetDefault("complexity.weights.size", complexityDefaults.Weights.Size)
	v.SetDefault("complexity.weights.parallel", complexityDefaults.Weights.Parallel)
	v.SetDefault("complexity.weights.difficulty", complexityDefaults.Weights.Difficulty)
	v.SetDefault("complexity.domains", complexityDefaults.Domains)
	v.SetDefault("complexity.verb_classes", complexityDefaults.VerbClasses)
	v.SetDefault("complexity.files.base", complexityDefaults.Files.Base)
	v.SetDefault("complexity.files.cap", complexityDefaults.Files.Cap)
	v.SetDefault("complexity.files.breadth_words", complexityDefaults.Files.BreadthWords)
	v.SetDefault("complexity.files.breadth_step", complexityDefaults.Files.BreadthStep)
	v.SetDefault("complexity.files.change_verb_step", complexityDefaults.Files.ChangeVerbStep)
	v.SetDefault("complexity.files.scope_words", complexityDefaults.Files.ScopeWords)
	v.SetDefault("complexity.files.scope_step", complexityDefaults.Files.ScopeStep)
	v.SetDefault("complexity.baseline_lines", complexityDefaults.BaselineLines)
	v.SetDefault("complexity.baseline_difficulty", complexityDefaults.BaselineDifficulty)
	v.SetDefault("complexity.size_ceiling", complexityDefaults.SizeCeiling)
	v.SetDefault("complexity.parallel_wide", complexityDefaults.ParallelWide)
	v.SetDefault("complexity.parallel_pair", complexityDefaults.ParallelPair)
	v.SetDefault("complexity.sequential_patterns", complexityDefaults.SequentialPatterns)

	v.SetDefault("intent.override_phrases", intentDefaults.OverridePhrases)
	v.SetDefault("intent.explain_phrases", intentDefaults.ExplainPhrases)
	v.SetDefault("intent.analysis_verbs", intentDefaults.AnalysisVerbs)
	v.SetDefault("intent.defect_nouns", intentDefaults.DefectNouns)
	v.SetDefault("intent.modification_verbs", intentDefaults.ModificationVerbs)
	v.SetDefault("intent.polite_prefixes", intentDefaults.PolitePrefixes)
	v.SetDefault("intent.interrogatives", intentDefaults.Interrogatives)
	v.SetDefault("intent.task_switch_phrases", intentDefaults.TaskSwitchPhrases)
}

func (c *Config) resolvePaths(projectDir string) {
	c.State.Root = resolvePath(projectDir, c.State.Root)
	c.State.FallbackRoot = resolvePath(projectDir, c.State.FallbackRoot)
	c.Folders.Root = resolvePath(projectDir, c.Folders.Root)
	c.Memory.DBPath = resolvePath(projectDir, c.Memory.DBPath)
	if strings.TrimSpace(c.Log.File) == "" {
		c.Log.File = filepath.Join(c.State.Root, logFileName)
	} else {
		c.Log.File = resolvePath(projectDir, c.Log.File)
	}
}

func resolvePath(base, path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if homeDir, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
		}
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	return filepath.Clean(path)
}

func (c Config) Validate() error {
	var errs []error

	if c.State.Root == "" && !c.State.Ephemeral {
		errs = append(errs, errors.New("state.root must be set"))
	}
	if c.Folders.Root == "" {
		errs = append(errs, errors.New("folders.root must be set"))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}

	for name, d := range map[string]time.Duration{
		"gate.timeout":   c.Gate.Timeout,
		"ttl.session":    c.TTL.Session,
		"ttl.confirm":    c.TTL.Confirm,
		"ttl.flow":       c.TTL.Flow,
		"ttl.preference": c.TTL.Preference,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}

	for name, score := range map[string]float64{
		"dispatch.parallel_score": c.Dispatch.ParallelScore,
		"dispatch.ask_score":      c.Dispatch.AskScore,
		"divergence.floor":        c.Divergence.Floor,
		"divergence.log_above":    c.Divergence.LogAbove,
		"divergence.block_above":  c.Divergence.BlockAbove,
	} {
		if score < 0 || score > 100 {
			errs = append(errs, fmt.Errorf("%s must be within 0..100, got %v", name, score))
		}
	}
	if c.Dispatch.AskScore > c.Dispatch.ParallelScore {
		errs = append(errs, fmt.Errorf("dispatch.ask_score %v exceeds dispatch.parallel_score %v", c.Dispatch.AskScore, c.Dispatch.ParallelScore))
	}
	if c.TTL.Confirm > c.TTL.Session {
		errs = append(errs, fmt.Errorf("ttl.confirm %s exceeds ttl.session %s", c.TTL.Confirm, c.TTL.Session))
	}
	if c.Divergence.LogAbove > c.Divergence.BlockAbove {
		errs = append(errs, fmt.Errorf("divergence.log_above %v exceeds divergence.block_above %v", c.Divergence.LogAbove, c.Divergence.BlockAbove))
	}

	if sum := c.Complexity.Weights.Sum(); math.Abs(sum-1) > 0.001 {
		errs = append(errs, fmt.Errorf("complexity.weights must sum to 1, got %.3f", sum))
	}
	if len(c.Complexity.Domains) == 0 {
		errs = append(errs, errors.New("complexity.domains must not be empty"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
