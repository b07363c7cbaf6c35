package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	foldersfs "github.com/bnema/gatekeeper/internal/adapters/folders/fs"
	memorychain "github.com/bnema/gatekeeper/internal/adapters/memory/chain"
	memoryfs "github.com/bnema/gatekeeper/internal/adapters/memory/fs"
	memorysqlite "github.com/bnema/gatekeeper/internal/adapters/memory/sqlite"
	questionadapter "github.com/bnema/gatekeeper/internal/adapters/render/question"
	statusadapter "github.com/bnema/gatekeeper/internal/adapters/render/status"
	statechain "github.com/bnema/gatekeeper/internal/adapters/state/chain"
	statememory "github.com/bnema/gatekeeper/internal/adapters/state/memory"
	"github.com/bnema/gatekeeper/internal/application"
	"github.com/bnema/gatekeeper/internal/config"
	"github.com/bnema/gatekeeper/internal/domain"
	"github.com/bnema/gatekeeper/internal/logging"
	"github.com/bnema/gatekeeper/internal/policy/complexity"
	"github.com/bnema/gatekeeper/internal/policy/dispatch"
	"github.com/bnema/gatekeeper/internal/policy/divergence"
	"github.com/bnema/gatekeeper/internal/policy/intent"
	"github.com/bnema/gatekeeper/internal/ports"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type app struct {
	cfg              config.Config
	logger           *zap.Logger
	gate             *application.GateService
	sessions         *application.SessionService
	memory           ports.MemoryIndex
	snapshots        *memorysqlite.Index
	statusRenderer   func(application.SessionStatus, statusadapter.RenderOptions) (string, error)
	questionRenderer func(domain.MandatoryQuestion) string
	now              func() time.Time
	closers          []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// wiring carries the pieces that only need configuration: the policy
// components used by classify and score as well as the gate.
type wiring struct {
	cfg      config.Config
	policies application.Policies
}

func wireConfig(projectDir string) (wiring, error) {
	cfg, err := config.Load(viper.New(), projectDir)
	if err != nil {
		return wiring{}, fmt.Errorf("load config: %w", err)
	}

	policies, err := buildPolicies(cfg)
	if err != nil {
		return wiring{}, err
	}

	return wiring{cfg: cfg, policies: policies}, nil
}

func buildPolicies(cfg config.Config) (application.Policies, error) {
	classifier, err := intent.NewClassifier(cfg.Intent)
	if err != nil {
		return application.Policies{}, fmt.Errorf("build intent classifier: %w", err)
	}

	scorer, err := complexity.NewScorer(cfg.Complexity)
	if err != nil {
		return application.Policies{}, fmt.Errorf("build complexity scorer: %w", err)
	}

	return application.Policies{
		Intent:     classifier,
		Complexity: scorer,
		Dispatch:   dispatch.NewEngine(cfg.Dispatch),
		Divergence: divergence.NewScorer(cfg.Divergence),
	}, nil
}

func gateConfig(cfg config.Config) application.GateConfig {
	return application.GateConfig{
		Timeout:          cfg.Gate.Timeout,
		SessionTTL:       cfg.TTL.Session,
		ConfirmTTL:       cfg.TTL.Confirm,
		FlowTTL:          cfg.TTL.Flow,
		RecencyWindow:    cfg.Gate.RecencyWindow,
		RelatedLimit:     cfg.Gate.RelatedLimit,
		SeveralSnapshots: cfg.Gate.SeveralSnapshots,
		ListLimit:        cfg.Gate.ListLimit,
	}
}

func wireApp(projectDir string) (*app, error) {
	w, err := wireConfig(projectDir)
	if err != nil {
		return nil, err
	}
	cfg := w.cfg
	clock := ports.SystemClock{}
	a := &app{
		cfg:              cfg,
		statusRenderer:   statusadapter.Render,
		questionRenderer: questionadapter.Render,
		now:              time.Now,
	}

	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		// The gate keeps working without its log file.
		logger = zap.NewNop()
		fmt.Fprintf(os.Stderr, "gatekeeper: logging disabled: %v\n", err)
	} else {
		a.closers = append(a.closers, closeLog)
	}
	a.logger = logger

	var store ports.StateStore
	if cfg.State.Ephemeral {
		store = statememory.NewStore(clock)
	} else {
		chained, err := statechain.NewProjectFirstWithTempFallback(cfg.State.Root, cfg.State.FallbackRoot, clock)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("wire state store: %w", err)
		}
		store = chained
	}

	folders, err := foldersfs.NewCatalog(cfg.Folders.Root)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("wire folder catalog: %w", err)
	}

	memory, err := wireMemory(a, cfg, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.memory = memory
	a.gate = application.NewGateService(application.GateDeps{
		Store:   store,
		Folders: folders,
		Memory:  memory,
		Clock:   clock,
		Logger:  logger,
	}, w.policies, gateConfig(cfg))
	a.sessions = application.NewSessionService(store, folders, w.policies.Dispatch, clock, gateConfig(cfg))

	return a, nil
}

// wireMemory prefers the SQLite snapshot index and falls back to the
// memory/ directory inside each folder. An unusable database leaves only
// the filesystem index.
func wireMemory(a *app, cfg config.Config, logger *zap.Logger) (ports.MemoryIndex, error) {
	files := memoryfs.NewIndex()
	if cfg.Memory.DBPath == "" {
		return files, nil
	}

	db, err := memorysqlite.Open(cfg.Memory.DBPath)
	if err != nil {
		logger.Warn("memory database unavailable, using folder snapshots only",
			zap.String("path", cfg.Memory.DBPath), zap.Error(err))
		return files, nil
	}
	a.snapshots = db
	a.closers = append(a.closers, db.Close)

	index, err := memorychain.NewIndex(db, files)
	if err != nil {
		return nil, fmt.Errorf("wire memory index: %w", err)
	}
	return index, nil
}
