package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/gatekeeper/internal/domain"
	"github.com/bnema/gatekeeper/internal/policy/complexity"
	"github.com/bnema/gatekeeper/internal/policy/dispatch"
	"github.com/bnema/gatekeeper/internal/policy/divergence"
	"github.com/bnema/gatekeeper/internal/policy/intent"
	"github.com/bnema/gatekeeper/internal/ports"
	"go.uber.org/zap"
)

type GateConfig struct {
	// Timeout bounds one evaluation. The gate allows the prompt when it runs out.
	Timeout time.Duration
	// SessionTTL bounds the active folder and fingerprint entries.
	SessionTTL time.Duration
	// ConfirmTTL bounds the folder confirmation. Zero means SessionTTL.
	ConfirmTTL time.Duration
	FlowTTL    time.Duration
	// RecencyWindow is how recently a folder must have changed to be offered as option A.
	RecencyWindow    time.Duration
	RelatedLimit     int
	SeveralSnapshots int
	ListLimit        int
}

func DefaultGateConfig() GateConfig {
	return GateConfig{
		Timeout:          2 * time.Second,
		SessionTTL:       24 * time.Hour,
		ConfirmTTL:       4 * time.Hour,
		FlowTTL:          30 * time.Minute,
		RecencyWindow:    2 * time.Hour,
		RelatedLimit:     3,
		SeveralSnapshots: 3,
		ListLimit:        9,
	}
}

func (c GateConfig) confirmationTTL() time.Duration {
	if c.ConfirmTTL <= 0 {
		return c.SessionTTL
	}
	return c.ConfirmTTL
}

// Policies groups the pure decision components the gate consults.
type Policies struct {
	Intent     *intent.Classifier
	Complexity *complexity.Scorer
	Dispatch   *dispatch.Engine
	Divergence *divergence.Scorer
}

func DefaultPolicies() Policies {
	return Policies{
		Intent:     intent.MustNewClassifier(intent.DefaultConfig()),
		Complexity: complexity.MustNewScorer(complexity.DefaultConfig()),
		Dispatch:   dispatch.NewEngine(dispatch.DefaultConfig()),
		Divergence: divergence.NewScorer(divergence.DefaultConfig()),
	}
}

type GateDeps struct {
	Store   ports.StateStore
	Folders ports.FolderCatalog
	Memory  ports.MemoryIndex
	Clock   ports.Clock
	Logger  *zap.Logger
}

// GateService decides, for every prompt, whether the agent may proceed.
type GateService struct {
	store      ports.StateStore
	folders    ports.FolderCatalog
	memory     ports.MemoryIndex
	clock      ports.Clock
	logger     *zap.Logger
	flows      *FlowController
	classifier *intent.Classifier
	complexity *complexity.Scorer
	dispatch   *dispatch.Engine
	divergence *divergence.Scorer
	cfg        GateConfig
}

func NewGateService(deps GateDeps, policies Policies, cfg GateConfig) *GateService {
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	defaults := DefaultPolicies()
	if policies.Intent == nil {
		policies.Intent = defaults.Intent
	}
	if policies.Complexity == nil {
		policies.Complexity = defaults.Complexity
	}
	if policies.Dispatch == nil {
		policies.Dispatch = defaults.Dispatch
	}
	if policies.Divergence == nil {
		policies.Divergence = defaults.Divergence
	}

	return &GateService{
		store:      deps.Store,
		folders:    deps.Folders,
		memory:     deps.Memory,
		clock:      deps.Clock,
		logger:     deps.Logger,
		flows:      NewFlowController(deps.Store, deps.Clock, cfg.FlowTTL),
		classifier: policies.Intent,
		complexity: policies.Complexity,
		dispatch:   policies.Dispatch,
		divergence: policies.Divergence,
		cfg:        cfg,
	}
}

// Evaluate never fails: any error inside the gate is logged and the prompt
// is allowed.
func (s *GateService) Evaluate(ctx context.Context, cmd GateCommand) GateResult {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	session := cmd.SessionID.OrDefault()
	logger := s.logger.With(zap.String("session", string(session)))
	if cmd.Cwd != "" {
		logger = logger.With(zap.String("cwd", cmd.Cwd))
	}

	result, err := s.withLogger(logger).evaluate(ctx, session, cmd.Prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("gate deadline exceeded, allowing prompt", zap.Error(err))
			return allow(result.Intent, "gate deadline exceeded")
		}
		logger.Warn("gate evaluation failed, allowing prompt", zap.Error(err))
		return allow(result.Intent, "gate state unavailable")
	}

	logger.Debug("gate decision",
		zap.String("decision", string(result.Decision)),
		zap.String("intent", string(result.Intent)),
		zap.String("reason", result.Reason),
	)
	return result
}

// withLogger returns a copy of the service that logs through logger.
func (s *GateService) withLogger(logger *zap.Logger) *GateService {
	scoped := *s
	scoped.logger = logger
	return &scoped
}

func (s *GateService) evaluate(ctx context.Context, session domain.SessionID, prompt string) (GateResult, error) {
	classification := s.classifier.Classify(prompt)

	flow, open, err := s.flows.Current(ctx, session)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return GateResult{Intent: classification.Intent}, ctxErr
		}
		s.logger.Warn("question flow unreadable, treating as absent", zap.Error(err))
		open = false
	}

	if open {
		result, err := s.answer(ctx, session, flow, prompt, classification)
		if err != nil {
			if cancelErr := s.flows.Cancel(context.WithoutCancel(ctx), session); cancelErr != nil {
				err = errors.Join(err, cancelErr)
			}
		}
		if result.Intent == "" {
			result.Intent = classification.Intent
		}
		return result, err
	}

	result, err := s.route(ctx, session, prompt, classification)
	result.Intent = classification.Intent
	return result, err
}

// route handles a prompt while no question is pending.
func (s *GateService) route(ctx context.Context, session domain.SessionID, prompt string, classification domain.Classification) (GateResult, error) {
	switch classification.Intent {
	case domain.IntentOverride:
		if err := s.store.Clear(ctx, domain.KeyFor(session, domain.StateDispatchPreference)); err != nil {
			s.logger.Warn("revoke dispatch preference", zap.Error(err))
		}
		return allow(classification.Intent, "dispatch preference revoked"), nil
	case domain.IntentTaskSwitch:
		s.resetTask(ctx, session)
		return allow(classification.Intent, "task context cleared"), nil
	case domain.IntentModification:
		return s.gate(ctx, session, prompt)
	default:
		return allow(classification.Intent, "no gating required for "+string(classification.Intent)), nil
	}
}

// gate runs the folder, divergence and dispatch checks for a modification request.
func (s *GateService) gate(ctx context.Context, session domain.SessionID, prompt string) (GateResult, error) {
	if s.classifier.HasTaskSwitch(prompt) {
		s.resetTask(ctx, session)
	}

	state := s.loadTask(ctx, session)
	if state.folder != nil && !s.folderExists(ctx, state.folder.Path) {
		s.logger.Info("active folder no longer exists, purging markers", zap.String("folder", state.folder.Path))
		s.resetTask(ctx, session)
		state = taskState{}
	}

	if state.confirmed() {
		folder := state.folderPath()
		if state.fingerprint != nil && !state.fingerprint.Empty() {
			score := s.divergence.Score(state.fingerprint.Keywords, prompt)
			switch s.divergence.Band(score) {
			case divergence.BandBlock:
				s.logger.Info("task divergence, asking about task change",
					zap.Float64("score", score),
					zap.Strings("keywords", state.fingerprint.Keywords),
				)
				return s.openFlow(ctx, session, domain.QuestionFlow{
					Stage:         domain.StageTaskChange,
					Target:        folder,
					Candidates:    taskChangeCandidates(folder),
					PendingPrompt: prompt,
				})
			case divergence.BandLog:
				s.logger.Info("borderline task divergence",
					zap.Float64("score", score),
					zap.Strings("keywords", state.fingerprint.Keywords),
					zap.Strings("prompt_keywords", s.divergence.Fingerprint(prompt)),
				)
			}
		}
		return s.dispatchStep(ctx, session, prompt, completion{folder: folder, skipped: folder == ""}, false)
	}

	if state.folder != nil {
		return s.openFlow(ctx, session, domain.QuestionFlow{
			Stage:         domain.StageSpecFolderConfirm,
			Target:        state.folder.Path,
			Candidates:    specFolderConfirmCandidates(state.folder.Path),
			PendingPrompt: prompt,
		})
	}

	candidates, detected := s.folderCandidates(ctx, folderQuery{prompt: prompt})
	return s.openFlow(ctx, session, domain.QuestionFlow{
		Stage:         domain.StageSpecFolder,
		Detected:      detected,
		Candidates:    candidates,
		PendingPrompt: prompt,
	})
}

// answer applies a reply to the open flow.
func (s *GateService) answer(ctx context.Context, session domain.SessionID, flow domain.QuestionFlow, prompt string, classification domain.Classification) (GateResult, error) {
	if classification.Intent == domain.IntentOverride {
		if err := s.flows.Cancel(ctx, session); err != nil {
			return GateResult{}, err
		}
		return allow(classification.Intent, "pending question cancelled"), nil
	}

	if flow.Stage != domain.StageTaskChange && (classification.Intent == domain.IntentTaskSwitch || s.classifier.HasTaskSwitch(prompt)) {
		if err := s.flows.Cancel(ctx, session); err != nil {
			return GateResult{}, err
		}
		result, err := s.route(ctx, session, prompt, classification)
		result.Intent = classification.Intent
		return result, err
	}

	choice, ok := ParseAnswer(flow, prompt)
	if !ok {
		s.logger.Debug("answer not recognized", zap.String("stage", string(flow.Stage)), zap.String("answer", prompt))
		return block(flow, "answer not recognized, pick one of the options"), nil
	}
	flow.LastChoice = choice

	switch flow.Stage {
	case domain.StageSpecFolder:
		return s.answerSpecFolder(ctx, session, flow, choice)
	case domain.StageSpecFolderConfirm:
		return s.answerSpecFolderConfirm(ctx, session, flow, choice)
	case domain.StageMemoryLoad:
		return s.answerMemoryLoad(ctx, session, flow, choice)
	case domain.StageTaskChange:
		return s.answerTaskChange(ctx, session, flow, choice)
	case domain.StageDispatch:
		return s.answerDispatch(ctx, session, flow, choice)
	default:
		return GateResult{}, fmt.Errorf("%w: answer in stage %s", domain.ErrIllegalTransition, flow.Stage)
	}
}

func (s *GateService) answerSpecFolder(ctx context.Context, session domain.SessionID, flow domain.QuestionFlow, choice string) (GateResult, error) {
	candidate, _ := flow.Candidate(choice)

	switch {
	case choice == "D":
		return s.complete(ctx, session, flow, completion{skipped: true})
	case choice == "B":
		path, err := s.createFolder(ctx, candidate.Ref, flow.PendingPrompt)
		if err != nil {
			return GateResult{}, err
		}
		return s.complete(ctx, session, flow, completion{folder: path, created: true})
	default:
		return s.afterFolderChosen(ctx, session, flow, candidate.Ref)
	}
}

func (s *GateService) answerSpecFolderConfirm(ctx context.Context, session domain.SessionID, flow domain.QuestionFlow, choice string) (GateResult, error) {
	switch choice {
	case "A":
		flow.Continues = true
		return s.afterFolderChosen(ctx, session, flow, flow.Target)
	case "B":
		candidates, detected := s.folderCandidates(ctx, folderQuery{prompt: flow.PendingPrompt, exclude: flow.Target})
		flow.Candidates = candidates
		flow.Detected = detected
		flow.Target = ""
		if err := s.flows.Advance(ctx, session, &flow, domain.StageSpecFolder); err != nil {
			return GateResult{}, err
		}
		return block(flow, "choose a work-tracking folder"), nil
	default:
		return s.complete(ctx, session, flow, completion{skipped: true})
	}
}

// afterFolderChosen offers saved context for the folder, or completes when
// there is none.
func (s *GateService) afterFolderChosen(ctx context.Context, session domain.SessionID, flow domain.QuestionFlow, folder string) (GateResult, error) {
	has, err := s.memory.HasSnapshots(ctx, folder)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return GateResult{}, ctxErr
		}
		s.logger.Warn("check context snapshots", zap.String("folder", folder), zap.Error(err))
		has = false
	}
	if !has {
		return s.complete(ctx, session, flow, completion{folder: folder})
	}

	flow.Target = folder
	flow.Candidates = memoryCandidates(s.cfg.SeveralSnapshots)
	if err := s.flows.Advance(ctx, session, &flow, domain.StageMemoryLoad); err != nil {
		return GateResult{}, err
	}
	return block(flow, "choose which saved context to load"), nil
}

func (s *GateService) answerMemoryLoad(ctx context.Context, session domain.SessionID, flow domain.QuestionFlow, choice string) (GateResult, error) {
	done := completion{folder: flow.Target}

	switch {
	case choice == "D":
		return s.complete(ctx, session, flow, done)
	case flow.Listing:
		candidate, _ := flow.Candidate(choice)
		done.snapshots = []domain.Snapshot{{ID: candidate.Ref, Title: candidate.Label}}
		return s.complete(ctx, session, flow, done)
	case choice == "C":
		snapshots, err := s.memory.ListSnapshots(ctx, flow.Target, s.cfg.ListLimit)
		if err != nil {
			return GateResult{}, fmt.Errorf("list context snapshots: %w", err)
		}
		if len(snapshots) == 0 {
			return s.complete(ctx, session, flow, done)
		}
		flow.Candidates = snapshotListCandidates(snapshots)
		flow.Listing = true
		if err := s.flows.Save(ctx, session, &flow); err != nil {
			return GateResult{}, err
		}
		return block(flow, "choose a snapshot"), nil
	default:
		limit := 1
		if choice == "B" {
			limit = s.cfg.SeveralSnapshots
		}
		snapshots, err := s.memory.ListSnapshots(ctx, flow.Target, limit)
		if err != nil {
			return GateResult{}, fmt.Errorf("list context snapshots: %w", err)
		}
		done.snapshots = snapshots
		return s.complete(ctx, session, flow, done)
	}
}

func (s *GateService) answerTaskChange(ctx context.Context, session domain.SessionID, flow domain.QuestionFlow, choice string) (GateResult, error) {
	switch choice {
	case "A":
		flow.Continues = true
		return s.complete(ctx, session, flow, completion{folder: flow.Target, skipped: flow.Target == ""})
	case "B":
		s.resetTask(ctx, session)
		candidates, detected := s.folderCandidates(ctx, folderQuery{prompt: flow.PendingPrompt, exclude: flow.Target})
		flow.Candidates = candidates
		flow.Detected = detected
		flow.Target = ""
		if err := s.flows.Advance(ctx, session, &flow, domain.StageSpecFolder); err != nil {
			return GateResult{}, err
		}
		return block(flow, "choose a folder for the new task"), nil
	default:
		candidates, detected := s.folderCandidates(ctx, folderQuery{prompt: flow.PendingPrompt, exclude: flow.Target, existingOnly: true})
		if len(candidates) == 1 {
			candidates, detected = s.folderCandidates(ctx, folderQuery{prompt: flow.PendingPrompt, exclude: flow.Target})
		}
		flow.Candidates = candidates
		flow.Detected = detected
		flow.Target = ""
		if err := s.flows.Advance(ctx, session, &flow, domain.StageSpecFolder); err != nil {
			return GateResult{}, err
		}
		return block(flow, "choose an existing folder"), nil
	}
}

func (s *GateService) answerDispatch(ctx context.Context, session domain.SessionID, flow domain.QuestionFlow, choice string) (GateResult, error) {
	mode, _ := dispatch.ModeForOption(choice)
	now := s.clock.Now().UTC()
	preference := s.dispatch.Remember(mode, now)
	if err := s.store.Write(ctx, domain.KeyFor(session, domain.StateDispatchPreference), preference, s.dispatch.PreferenceTTL()); err != nil {
		return GateResult{}, fmt.Errorf("write dispatch preference: %w", err)
	}
	if err := s.flows.Advance(ctx, session, &flow, domain.StageComplete); err != nil {
		return GateResult{}, err
	}

	state := s.loadTask(ctx, session)
	return s.dispatchStep(ctx, session, flow.PendingPrompt, completion{folder: state.folderPath(), skipped: state.folderPath() == ""}, true)
}

// completion is what a finished folder flow decided.
type completion struct {
	folder    string
	skipped   bool
	created   bool
	snapshots []domain.Snapshot
}

// complete closes the flow, records the session's folder decision and
// replays the pending request through dispatch. The fingerprint is only
// replaced when the flow starts a task; continuing keeps the existing one.
func (s *GateService) complete(ctx context.Context, session domain.SessionID, flow domain.QuestionFlow, done completion) (GateResult, error) {
	if done.folder == "" {
		done.skipped = true
	}
	if err := s.flows.Advance(ctx, session, &flow, domain.StageComplete); err != nil {
		return GateResult{}, err
	}

	now := s.clock.Now().UTC()
	if done.skipped {
		if err := s.store.Clear(ctx, domain.KeyFor(session, domain.StateActiveFolder)); err != nil {
			return GateResult{}, fmt.Errorf("clear active folder: %w", err)
		}
	} else {
		marker := domain.FolderMarker{Path: done.folder, SelectedAt: now}
		if err := s.store.Write(ctx, domain.KeyFor(session, domain.StateActiveFolder), marker, s.cfg.SessionTTL); err != nil {
			return GateResult{}, fmt.Errorf("write active folder: %w", err)
		}
	}

	confirmation := domain.ConfirmationMarker{Path: done.folder, Skipped: done.skipped, ConfirmedAt: now}
	if err := s.store.Write(ctx, domain.KeyFor(session, domain.StateFolderConfirmed), confirmation, s.cfg.confirmationTTL()); err != nil {
		return GateResult{}, fmt.Errorf("write folder confirmation: %w", err)
	}

	if flow.Continues && s.hasFingerprint(ctx, session) {
		return s.dispatchStep(ctx, session, flow.PendingPrompt, done, true)
	}

	fingerprint := domain.TaskFingerprint{
		Keywords:  s.divergence.Fingerprint(flow.PendingPrompt),
		Folder:    done.folder,
		CreatedAt: now,
	}
	if err := s.store.Write(ctx, domain.KeyFor(session, domain.StateFingerprint), fingerprint, s.cfg.SessionTTL); err != nil {
		return GateResult{}, fmt.Errorf("write task fingerprint: %w", err)
	}

	return s.dispatchStep(ctx, session, flow.PendingPrompt, done, true)
}

// dispatchStep scores the request and either allows it with the dispatch
// decision attached or asks how it should be handled.
func (s *GateService) dispatchStep(ctx context.Context, session domain.SessionID, prompt string, done completion, replay bool) (GateResult, error) {
	score := s.complexity.Score(prompt)
	now := s.clock.Now().UTC()
	decision := s.dispatch.Decide(score, s.loadPreference(ctx, session), now)

	if decision.Action == domain.DispatchAsk {
		return s.openFlow(ctx, session, domain.QuestionFlow{
			Stage:         domain.StageDispatch,
			Target:        done.folder,
			Detected:      strings.Join(score.Domains, ", "),
			Candidates:    dispatchCandidates(dispatch.Options()),
			PendingPrompt: prompt,
		})
	}

	result := allow(domain.IntentModification, "dispatch: "+decision.Reason)
	result.Dispatch = &decision
	result.AdditionalContext = additionalContext(done, decision, prompt, replay)
	return result, nil
}

func (s *GateService) openFlow(ctx context.Context, session domain.SessionID, flow domain.QuestionFlow) (GateResult, error) {
	opened, err := s.flows.Open(ctx, session, flow)
	if err != nil {
		return GateResult{}, err
	}
	return block(opened, string(opened.Stage)+" question pending"), nil
}

// taskState is the session's view of the current task. Unreadable entries
// are treated as absent.
type taskState struct {
	folder       *domain.FolderMarker
	confirmation *domain.ConfirmationMarker
	fingerprint  *domain.TaskFingerprint
}

func (t taskState) confirmed() bool {
	if t.confirmation == nil {
		return false
	}
	if t.confirmation.Skipped {
		return true
	}
	return t.folder != nil && t.confirmation.Path == t.folder.Path
}

func (t taskState) folderPath() string {
	if t.folder == nil || (t.confirmation != nil && t.confirmation.Skipped) {
		return ""
	}
	return t.folder.Path
}

func (s *GateService) loadTask(ctx context.Context, session domain.SessionID) taskState {
	var (
		state        taskState
		folder       domain.FolderMarker
		confirmation domain.ConfirmationMarker
		fingerprint  domain.TaskFingerprint
	)

	if s.readState(ctx, session, domain.StateActiveFolder, s.cfg.SessionTTL, &folder) && folder.Path != "" {
		state.folder = &folder
	}
	if s.readState(ctx, session, domain.StateFolderConfirmed, s.cfg.confirmationTTL(), &confirmation) {
		state.confirmation = &confirmation
	}
	if s.readState(ctx, session, domain.StateFingerprint, s.cfg.SessionTTL, &fingerprint) {
		state.fingerprint = &fingerprint
	}

	return state
}

func (s *GateService) hasFingerprint(ctx context.Context, session domain.SessionID) bool {
	var fingerprint domain.TaskFingerprint
	return s.readState(ctx, session, domain.StateFingerprint, s.cfg.SessionTTL, &fingerprint) && !fingerprint.Empty()
}

func (s *GateService) loadPreference(ctx context.Context, session domain.SessionID) domain.DispatchPreference {
	var preference domain.DispatchPreference
	if !s.readState(ctx, session, domain.StateDispatchPreference, s.dispatch.PreferenceTTL(), &preference) {
		return domain.DispatchPreference{}
	}
	return preference
}

func (s *GateService) readState(ctx context.Context, session domain.SessionID, name domain.StateName, ttl time.Duration, dst any) bool {
	found, err := s.store.Read(ctx, domain.KeyFor(session, name), ttl, dst)
	if err != nil {
		s.logger.Warn("session state unreadable, treating as absent", zap.String("state", string(name)), zap.Error(err))
		return false
	}
	return found
}

// resetTask forgets the folder, confirmation and fingerprint of the session.
func (s *GateService) resetTask(ctx context.Context, session domain.SessionID) {
	for _, name := range []domain.StateName{domain.StateActiveFolder, domain.StateFolderConfirmed, domain.StateFingerprint} {
		if err := s.store.Clear(ctx, domain.KeyFor(session, name)); err != nil {
			s.logger.Warn("clear session state", zap.String("state", string(name)), zap.Error(err))
		}
	}
}

func (s *GateService) folderExists(ctx context.Context, path string) bool {
	exists, err := s.folders.Exists(ctx, path)
	if err != nil {
		s.logger.Warn("check active folder", zap.String("folder", path), zap.Error(err))
		return true
	}
	return exists
}

func allow(kind domain.Intent, reason string) GateResult {
	return GateResult{Decision: DecisionAllow, Reason: reason, Intent: kind}
}

func block(flow domain.QuestionFlow, reason string) GateResult {
	question := QuestionFor(flow)
	return GateResult{
		Decision: DecisionBlock,
		Reason:   reason,
		Intent:   domain.IntentModification,
		Question: &question,
	}
}

func additionalContext(done completion, decision domain.DispatchDecision, prompt string, replay bool) string {
	var lines []string

	switch {
	case done.skipped:
		lines = append(lines, "Work-tracking folder: none (documentation skipped for this session)")
	case done.created:
		lines = append(lines, "Work-tracking folder: "+done.folder+" (created)")
	default:
		lines = append(lines, "Work-tracking folder: "+done.folder)
	}

	if len(done.snapshots) > 0 {
		refs := make([]string, 0, len(done.snapshots))
		for _, snapshot := range done.snapshots {
			if snapshot.Title != "" && snapshot.Title != snapshot.ID {
				refs = append(refs, fmt.Sprintf("%s (%s)", snapshot.ID, snapshot.Title))
				continue
			}
			refs = append(refs, snapshot.ID)
		}
		lines = append(lines, "Load context snapshots: "+strings.Join(refs, ", "))
	}

	lines = append(lines, fmt.Sprintf("Dispatch: %s (%s)", decision.Action, decision.Reason))
	if replay && prompt != "" {
		lines = append(lines, "Original request: "+prompt)
	}

	return strings.Join(lines, "\n")
}
